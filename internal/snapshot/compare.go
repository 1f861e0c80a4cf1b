package snapshot

import (
	"github.com/aymanbagabas/go-udiff"

	"toolproof/internal/toolerr"
)

// Compare checks rendered equality against the stored snapshot. On
// mismatch it returns a SnapshotMismatch error carrying a line-oriented
// diff, grounded on github.com/aymanbagabas/go-udiff (the diffing library
// already in the pack's dependency surface).
func Compare(stored, rendered string) error {
	if stored == rendered {
		return nil
	}
	diff := udiff.Unified("snapshot", "actual", stored, rendered)
	logger.Debugw("snapshot mismatch", "diff_lines", len(diff))
	return toolerr.New(toolerr.SnapshotMismatch, -1, diff)
}

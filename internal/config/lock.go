package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// RootLock is an advisory, cross-process lock on a discovery root,
// preventing two runner invocations from racing the same test tree. It is
// a supplement to the single-process concerns spec.md itself scopes
// (cross-process coordination between runner instances is an explicit
// non-goal for the kernel's execution model); this lock only guards the
// discovery root's on-disk state (flake history, quarantine list, run
// manifests) that a concurrent second invocation would otherwise corrupt.
type RootLock struct {
	fl *flock.Flock
}

// Acquire takes the root lock, grounded on the teacher's use of
// github.com/gofrs/flock for its own single-instance daemon lock.
func Acquire(root string) (*RootLock, error) {
	dir := filepath.Join(root, ".toolproof")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	path := filepath.Join(dir, "run.lock")
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring run lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another toolproof run is already in progress under %s", root)
	}
	return &RootLock{fl: fl}, nil
}

func (l *RootLock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}

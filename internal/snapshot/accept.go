package snapshot

import (
	"sync"

	"github.com/charmbracelet/huh"
	"go.uber.org/zap"

	"toolproof/internal/testdoc"
)

var logger = zap.NewNop().Sugar()

// SetLogger installs the snapshot engine's structured logger, used for
// mismatch/accept events instead of calling fmt.Println/log.Printf
// directly.
func SetLogger(l *zap.SugaredLogger) {
	if l != nil {
		logger = l
	}
}

// Prompter serialises the interactive "accept?" dialogue across workers:
// §4.4/§5 require that only one acceptance prompt is active at a time.
type Prompter struct {
	mu sync.Mutex
}

func NewPrompter() *Prompter { return &Prompter{} }

// Confirm shows the diff and asks the operator to accept the new
// rendering, blocking any other worker's prompt until this one resolves.
func (p *Prompter) Confirm(testName, diff string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	logger.Infow("snapshot mismatch", "test", testName, "diff", diff)
	var accept bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("accept?").
			Affirmative("y").
			Negative("N").
			Value(&accept),
	))
	if err := form.Run(); err != nil {
		return false, err
	}
	return accept, nil
}

// Accept rewrites doc's stored snapshot_content for the given step to
// rendered, persisting the change to the source YAML file.
func Accept(doc *testdoc.Document, st *testdoc.Step, rendered string) error {
	if err := doc.SetSnapshotContent(st.Node, rendered); err != nil {
		return err
	}
	logger.Debugw("accepted snapshot", "test", doc.Name)
	return nil
}

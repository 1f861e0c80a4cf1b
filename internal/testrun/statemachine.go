// Package testrun implements the test state machine: per test, resolve and
// execute each step in order → terminal state, recording the index of the
// failing step and attaching a failure screenshot.
package testrun

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"toolproof/internal/config"
	"toolproof/internal/platform"
	"toolproof/internal/registry"
	"toolproof/internal/runctx"
	"toolproof/internal/snapshot"
	"toolproof/internal/step"
	"toolproof/internal/testdoc"
	"toolproof/internal/toolerr"
	"toolproof/internal/value"
)

// Status is a test's terminal report status.
type Status string

const (
	Passed  Status = "passed"
	Failed  Status = "failed"
	Skipped Status = "skipped"
)

// Outcome is the terminal record the scheduler aggregates into a report.
type Outcome struct {
	TestName  string
	Status    Status
	FailedAt  int
	Err       error
	Duration  time.Duration
	TempDir   string
	Screenshot string
}

// Deps bundles the kernel collaborators a single test execution needs.
type Deps struct {
	Registry *registry.Registry
	Settings config.RunSettings
	Prompter *snapshot.Prompter
	Doc      *testdoc.Document                               // backs interactive snapshot acceptance rewrites
	OpenPage func(ctx context.Context) (runctx.Page, error) // nil when the test never uses the browser

	// PreStep, when set, is invoked before every step dispatch with the
	// step's resolved placeholder map; the debugger uses it to print the
	// upcoming step and block on operator input.
	PreStep func(stepIx int, st testdoc.Step, ctx *runctx.Context, placeholders map[string]string)

	// AutoAccept rewrites every mismatching (or missing) snapshot_content
	// without prompting, the non-interactive counterpart to Interactive.
	AutoAccept bool
}

// Run resolves and executes one materialised step sequence to a terminal
// Outcome. steps must already be macro/reference-expanded.
func Run(name string, steps []testdoc.Step, deps Deps) *Outcome {
	start := time.Now()
	out := &Outcome{TestName: name, FailedAt: -1, TempDir: ""}

	tempDir, err := os.MkdirTemp("", "toolproof-*")
	if err != nil {
		out.Status = Failed
		out.Err = toolerr.Wrap(toolerr.ResolutionError, -1, "creating temp dir", err)
		out.Duration = time.Since(start)
		return out
	}
	out.TempDir = tempDir

	ctx := runctx.New(tempDir, deps.Settings.Placeholders)
	host := platform.Host()

	if deps.OpenPage != nil {
		pageCtx, cancel := context.WithTimeout(context.Background(), deps.Settings.BrowserTimeout)
		page, err := deps.OpenPage(pageCtx)
		cancel()
		if err != nil {
			out.Status = Failed
			out.Err = err
			out.Duration = time.Since(start)
			_ = os.RemoveAll(tempDir)
			return out
		}
		ctx.SetPage(page)
	}

	defer func() {
		_ = ctx.Close()
		keepOnFailure := deps.Settings.FailureScreenshotDir != "" || deps.Settings.Verbose
		if out.Status != Failed || !keepOnFailure {
			_ = os.RemoveAll(tempDir)
		}
	}()

	for i, st := range steps {
		if !platform.Matches(st.Platforms, host) {
			continue
		}
		if deps.PreStep != nil {
			deps.PreStep(i, st, ctx, ctx.Placeholders(st.PlaceholderOverlay))
		}
		stepCtx, cancel := context.WithTimeout(context.Background(), deps.Settings.Timeout)
		err := execStep(stepCtx, ctx, st, deps)
		cancel()
		if err != nil {
			if stepCtx.Err() == context.DeadlineExceeded {
				err = toolerr.New(toolerr.StepTimeout, i, st.Sentence)
			}
			out.Status = Failed
			out.FailedAt = i
			out.Err = err
			out.Screenshot = captureFailureScreenshot(ctx, deps.Settings.FailureScreenshotDir, name, i)
			out.Duration = time.Since(start)
			return out
		}
	}

	out.Status = Passed
	out.Duration = time.Since(start)
	return out
}

func execStep(stepCtx context.Context, ctx *runctx.Context, st testdoc.Step, deps Deps) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("step handler panicked: %v", r)
			}
		}()
		done <- dispatchStep(ctx, st, deps)
	}()
	select {
	case err := <-done:
		return err
	case <-stepCtx.Done():
		return stepCtx.Err()
	}
}

func dispatchStep(ctx *runctx.Context, st testdoc.Step, deps Deps) error {
	placeholders := ctx.Placeholders(st.PlaceholderOverlay)
	delim := deps.Settings.PlaceholderDelimiter

	switch st.Kind {
	case testdoc.KindInstruction:
		return dispatchInstructionOrAssertion(ctx, st, deps, placeholders, delim)
	case testdoc.KindSnapshot:
		return dispatchSnapshot(ctx, st, deps, placeholders, delim)
	case testdoc.KindExtract:
		return dispatchExtract(ctx, st, deps, placeholders, delim)
	default:
		return toolerr.New(toolerr.ResolutionError, -1, "unexpanded step reached execution")
	}
}

func substituteAll(sentence string, values map[string]string, delim byte, placeholders map[string]string) (string, map[string]string, error) {
	s, err := step.Substitute(sentence, delim, placeholders)
	if err != nil {
		return "", nil, toolerr.Wrap(toolerr.PlaceholderMissing, -1, sentence, err)
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		sv, err := step.Substitute(v, delim, placeholders)
		if err != nil {
			return "", nil, toolerr.Wrap(toolerr.PlaceholderMissing, -1, k, err)
		}
		out[k] = sv
	}
	return s, out, nil
}

// dispatchInstructionOrAssertion first tries the sentence as a pure
// Instruction; if no instruction template matches, it is treated as a
// combined retrieval+assertion ("{retrieval} should {assertion}"), the
// representation this implementation uses for the data model's
// RetrievalAssertion variant.
func dispatchInstructionOrAssertion(ctx *runctx.Context, st testdoc.Step, deps Deps, placeholders map[string]string, delim byte) error {
	sentence, values, err := substituteAll(st.Sentence, st.Values, delim, placeholders)
	if err != nil {
		return err
	}

	handler, bound, err := deps.Registry.ResolveInstruction(sentence, values)
	if err == nil {
		return handler(ctx, bound.Values)
	}

	retrievalText, assertionText, ok := splitRetrievalAssertion(sentence)
	if !ok {
		return toolerr.Wrap(toolerr.StepUnresolved, -1, sentence, err)
	}
	return runRetrievalAssertion(ctx, deps, retrievalText, assertionText, values)
}

func splitRetrievalAssertion(sentence string) (retrieval, assertion string, ok bool) {
	const sep = " should "
	idx := strings.Index(sentence, sep)
	if idx < 0 {
		return "", "", false
	}
	return sentence[:idx], sentence[idx+len(sep):], true
}

func runRetrievalAssertion(ctx *runctx.Context, deps Deps, retrievalText, assertionText string, values map[string]string) error {
	retrieval, rBound, err := deps.Registry.ResolveRetrieval(retrievalText, values)
	if err != nil {
		return toolerr.Wrap(toolerr.StepUnresolved, -1, retrievalText, err)
	}
	actual, err := retrieval(ctx, rBound.Values)
	if err != nil {
		return err
	}

	assertion, aBound, err := deps.Registry.ResolveAssertion(assertionText, values)
	if err != nil {
		return toolerr.Wrap(toolerr.StepUnresolved, -1, assertionText, err)
	}
	var expected *value.Value
	if raw, ok := firstHoleValue(aBound); ok {
		v := value.String(raw)
		expected = &v
	}
	return assertion(actual, expected)
}

func firstHoleValue(b step.Bound) (string, bool) {
	names := b.Template.HoleNames()
	if len(names) == 0 {
		return "", false
	}
	v, ok := b.Values[names[0]]
	return v, ok
}

func dispatchSnapshot(ctx *runctx.Context, st testdoc.Step, deps Deps, placeholders map[string]string, delim byte) error {
	sentence, values, err := substituteAll(st.RetrievalSentence, st.Values, delim, placeholders)
	if err != nil {
		return err
	}
	retrieval, bound, err := deps.Registry.ResolveRetrieval(sentence, values)
	if err != nil {
		return toolerr.Wrap(toolerr.StepUnresolved, -1, sentence, err)
	}
	actual, err := retrieval(ctx, bound.Values)
	if err != nil {
		return err
	}
	rendered, err := snapshot.Render(actual)
	if err != nil {
		return err
	}

	// runAll is RunSettings.all, "interactive run all": once set, every
	// mismatch in this run is accepted the way an affirmative answer to
	// every individual prompt would be, without blocking on the operator.
	runAll := deps.Settings.Interactive && deps.Settings.All

	if st.SnapshotContent == nil {
		if (deps.AutoAccept || runAll) && deps.Doc != nil {
			if err := snapshot.Accept(deps.Doc, &st, rendered); err != nil {
				return toolerr.Wrap(toolerr.SnapshotMismatch, -1, "accepting snapshot", err)
			}
			return nil
		}
		return toolerr.New(toolerr.SnapshotMismatch, -1, "no stored snapshot_content; run interactively or with accept to store it")
	}

	cmpErr := snapshot.Compare(*st.SnapshotContent, rendered)
	if cmpErr == nil {
		return nil
	}
	if (deps.AutoAccept || runAll) && deps.Doc != nil {
		if err := snapshot.Accept(deps.Doc, &st, rendered); err != nil {
			return toolerr.Wrap(toolerr.SnapshotMismatch, -1, "accepting snapshot", err)
		}
		return nil
	}
	if !deps.Settings.Interactive || deps.Prompter == nil || deps.Doc == nil {
		return cmpErr
	}

	taggedErr, _ := toolerr.As(cmpErr)
	diff := ""
	if taggedErr != nil {
		diff = taggedErr.Detail
	}
	accept, promptErr := deps.Prompter.Confirm(deps.Doc.Name, diff)
	if promptErr != nil {
		return cmpErr
	}
	if !accept {
		return cmpErr
	}
	if err := snapshot.Accept(deps.Doc, &st, rendered); err != nil {
		return toolerr.Wrap(toolerr.SnapshotMismatch, -1, "accepting snapshot", err)
	}
	return nil
}

func dispatchExtract(ctx *runctx.Context, st testdoc.Step, deps Deps, placeholders map[string]string, delim byte) error {
	sentence, values, err := substituteAll(st.RetrievalSentence, st.Values, delim, placeholders)
	if err != nil {
		return err
	}
	retrieval, bound, err := deps.Registry.ResolveRetrieval(sentence, values)
	if err != nil {
		return toolerr.Wrap(toolerr.StepUnresolved, -1, sentence, err)
	}
	actual, err := retrieval(ctx, bound.Values)
	if err != nil {
		return err
	}
	rendered, err := snapshot.RenderExtract(actual)
	if err != nil {
		return err
	}
	loc, err := step.Substitute(st.ExtractLocation, delim, placeholders)
	if err != nil {
		return toolerr.Wrap(toolerr.PlaceholderMissing, -1, st.ExtractLocation, err)
	}
	path, err := ctx.ResolvePath(loc)
	if err != nil {
		return toolerr.Wrap(toolerr.FileEscapesTempDir, -1, loc, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(rendered), 0o644)
}

func captureFailureScreenshot(ctx *runctx.Context, dir, testName string, stepIx int) string {
	if dir == "" {
		return ""
	}
	page := ctx.Page()
	if page == nil {
		return ""
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%d.png", slug(testName), stepIx))
	if err := page.ScreenshotViewport(path); err != nil {
		return ""
	}
	return path
}

func slug(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

package testrun_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolproof/internal/config"
	"toolproof/internal/platform"
	"toolproof/internal/registry"
	"toolproof/internal/runctx"
	"toolproof/internal/testdoc"
	"toolproof/internal/testrun"
	"toolproof/internal/value"
)

func baseSettings() config.RunSettings {
	s := config.Defaults()
	s.Timeout = 2 * time.Second
	return s
}

func buildRegistry() *registry.Registry {
	r := registry.New()
	r.RegisterInstruction("I succeed", func(ctx *runctx.Context, args map[string]string) error {
		return nil
	})
	r.RegisterInstruction("I fail", func(ctx *runctx.Context, args map[string]string) error {
		return assertFailure{"boom"}
	})
	r.RegisterRetrieval("the number", func(ctx *runctx.Context, args map[string]string) (value.Value, error) {
		return value.Number(42), nil
	})
	r.RegisterRetrieval("the text", func(ctx *runctx.Context, args map[string]string) (value.Value, error) {
		return value.String("hello"), nil
	})
	r.RegisterAssertion("be exactly {expected}", func(actual value.Value, expected *value.Value) error {
		if expected == nil {
			return assertFailure{"no expected value"}
		}
		if !value.Equal(actual, *expected) {
			return assertFailure{"mismatch"}
		}
		return nil
	})
	return r
}

type assertFailure struct{ msg string }

func (e assertFailure) Error() string { return e.msg }

func TestRun_AllStepsPass(t *testing.T) {
	steps := []testdoc.Step{
		{Kind: testdoc.KindInstruction, Sentence: "I succeed", Values: map[string]string{}},
	}
	deps := testrun.Deps{Registry: buildRegistry(), Settings: baseSettings()}
	out := testrun.Run("passes", steps, deps)
	assert.Equal(t, testrun.Passed, out.Status)
	assert.Equal(t, -1, out.FailedAt)
}

func TestRun_StepFailureStopsExecution(t *testing.T) {
	steps := []testdoc.Step{
		{Kind: testdoc.KindInstruction, Sentence: "I succeed", Values: map[string]string{}},
		{Kind: testdoc.KindInstruction, Sentence: "I fail", Values: map[string]string{}},
		{Kind: testdoc.KindInstruction, Sentence: "I succeed", Values: map[string]string{}},
	}
	deps := testrun.Deps{Registry: buildRegistry(), Settings: baseSettings()}
	out := testrun.Run("fails", steps, deps)
	assert.Equal(t, testrun.Failed, out.Status)
	assert.Equal(t, 1, out.FailedAt)
	assert.ErrorContains(t, out.Err, "boom")
}

func TestRun_RetrievalAssertionSentence(t *testing.T) {
	steps := []testdoc.Step{
		{Kind: testdoc.KindInstruction, Sentence: `the text should be exactly "hello"`, Values: map[string]string{}},
	}
	deps := testrun.Deps{Registry: buildRegistry(), Settings: baseSettings()}
	out := testrun.Run("retrieval-assertion", steps, deps)
	assert.Equal(t, testrun.Passed, out.Status)
}

func TestRun_RetrievalAssertionFailureReported(t *testing.T) {
	steps := []testdoc.Step{
		{Kind: testdoc.KindInstruction, Sentence: `the text should be exactly "goodbye"`, Values: map[string]string{}},
	}
	deps := testrun.Deps{Registry: buildRegistry(), Settings: baseSettings()}
	out := testrun.Run("retrieval-assertion-fail", steps, deps)
	assert.Equal(t, testrun.Failed, out.Status)
}

func TestRun_UnresolvedStepFails(t *testing.T) {
	steps := []testdoc.Step{
		{Kind: testdoc.KindInstruction, Sentence: "I fly to the moon", Values: map[string]string{}},
	}
	deps := testrun.Deps{Registry: buildRegistry(), Settings: baseSettings()}
	out := testrun.Run("unresolved", steps, deps)
	assert.Equal(t, testrun.Failed, out.Status)
}

func TestRun_SnapshotMismatchWithoutInteractiveFails(t *testing.T) {
	content := "╎wrong"
	steps := []testdoc.Step{
		{Kind: testdoc.KindSnapshot, RetrievalSentence: "the text", SnapshotContent: &content, Values: map[string]string{}},
	}
	deps := testrun.Deps{Registry: buildRegistry(), Settings: baseSettings()}
	out := testrun.Run("snapshot-mismatch", steps, deps)
	assert.Equal(t, testrun.Failed, out.Status)
}

func TestRun_SnapshotMissingContentWithoutInteractiveFails(t *testing.T) {
	steps := []testdoc.Step{
		{Kind: testdoc.KindSnapshot, RetrievalSentence: "the text", Values: map[string]string{}},
	}
	deps := testrun.Deps{Registry: buildRegistry(), Settings: baseSettings()}
	out := testrun.Run("snapshot-missing", steps, deps)
	assert.Equal(t, testrun.Failed, out.Status)
}

func TestRun_PreStepHookCalledPerStep(t *testing.T) {
	steps := []testdoc.Step{
		{Kind: testdoc.KindInstruction, Sentence: "I succeed", Values: map[string]string{}},
		{Kind: testdoc.KindInstruction, Sentence: "I succeed", Values: map[string]string{}},
	}
	var calls []int
	deps := testrun.Deps{
		Registry: buildRegistry(),
		Settings: baseSettings(),
		PreStep: func(stepIx int, st testdoc.Step, ctx *runctx.Context, placeholders map[string]string) {
			calls = append(calls, stepIx)
		},
	}
	out := testrun.Run("with-prestep", steps, deps)
	require.Equal(t, testrun.Passed, out.Status)
	assert.Equal(t, []int{0, 1}, calls)
}

func TestRun_ExtractStepWritesFile(t *testing.T) {
	steps := []testdoc.Step{
		{Kind: testdoc.KindExtract, RetrievalSentence: "the text", ExtractLocation: "out.txt", Values: map[string]string{}},
	}
	deps := testrun.Deps{Registry: buildRegistry(), Settings: baseSettings()}
	out := testrun.Run("extract", steps, deps)
	assert.Equal(t, testrun.Passed, out.Status)
}

func TestRun_PlatformMismatchSkipsStep(t *testing.T) {
	other := platform.Windows
	if platform.Host() == platform.Windows {
		other = platform.Linux
	}
	steps := []testdoc.Step{
		{
			Kind: testdoc.KindInstruction, Sentence: "I fail", Values: map[string]string{},
			Platforms: []platform.Platform{other},
		},
	}
	deps := testrun.Deps{Registry: buildRegistry(), Settings: baseSettings()}
	out := testrun.Run("platform-skip", steps, deps)
	assert.Equal(t, testrun.Passed, out.Status)
}

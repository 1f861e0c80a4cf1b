package process_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolproof/internal/process"
	"toolproof/internal/toolerr"
)

func TestRun_CapturesStdoutAndStderr(t *testing.T) {
	res, err := process.Run(context.Background(), "echo out; echo err 1>&2", t.TempDir(), os.Environ(), false)
	require.NoError(t, err)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Equal(t, 0, res.ExitCode)
}

func TestRun_NonZeroExitIsError(t *testing.T) {
	res, err := process.Run(context.Background(), "exit 3", t.TempDir(), os.Environ(), false)
	require.Error(t, err)
	assert.Equal(t, 3, res.ExitCode)
	te, ok := toolerr.As(err)
	require.True(t, ok)
	assert.Equal(t, toolerr.ProcessNonZeroExit, te.Kind)
}

func TestRun_ExpectFailure_ZeroExitErrors(t *testing.T) {
	_, err := process.Run(context.Background(), "true", t.TempDir(), os.Environ(), true)
	require.Error(t, err)
	te, ok := toolerr.As(err)
	require.True(t, ok)
	assert.Equal(t, toolerr.ProcessZeroExitButFailureExpected, te.Kind)
}

func TestRun_ExpectFailure_NonZeroExitPasses(t *testing.T) {
	_, err := process.Run(context.Background(), "exit 1", t.TempDir(), os.Environ(), true)
	assert.NoError(t, err)
}

func TestRun_EnvironmentIsVisibleToChild(t *testing.T) {
	env := append(os.Environ(), "TOOLPROOF_TEST_VAR=hello")
	res, err := process.Run(context.Background(), "echo $TOOLPROOF_TEST_VAR", t.TempDir(), env, false)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", res.Stdout)
}

func TestRun_RunsInGivenDirectory(t *testing.T) {
	dir := t.TempDir()
	res, err := process.Run(context.Background(), "pwd", dir, os.Environ(), false)
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, dir)
}

func TestRun_ContextDeadlineKillsChild(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := process.Run(ctx, "sleep 5", t.TempDir(), os.Environ(), false)
	assert.Error(t, err)
}

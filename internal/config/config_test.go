package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolproof/internal/config"
)

func TestDefaults(t *testing.T) {
	d := config.Defaults()
	assert.Equal(t, ".", d.Root)
	assert.Equal(t, 4, d.Concurrency)
	assert.Equal(t, 10*time.Second, d.Timeout)
	assert.Equal(t, 8*time.Second, d.BrowserTimeout)
	assert.Equal(t, byte('%'), d.PlaceholderDelimiter)
	assert.Equal(t, config.BrowserChrome, d.Browser)
	assert.Equal(t, 0, d.RetryCount)
}

func TestLoadFile_MissingFileLeavesBaseUntouched(t *testing.T) {
	base := config.Defaults()
	out, err := config.LoadFile(filepath.Join(t.TempDir(), "nope.toml"), base)
	require.NoError(t, err)
	assert.Equal(t, base, out)
}

func TestLoadFile_OverlaysDeclaredFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "toolproof.toml")
	contents := `
concurrency = 8
timeout = 30
retry_count = 2
browser = "pagebrowse"
verbose = true
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	base := config.Defaults()
	out, err := config.LoadFile(path, base)
	require.NoError(t, err)
	assert.Equal(t, 8, out.Concurrency)
	assert.Equal(t, 30*time.Second, out.Timeout)
	assert.Equal(t, 2, out.RetryCount)
	assert.Equal(t, config.Browser("pagebrowse"), out.Browser)
	assert.True(t, out.Verbose)
	// Fields absent from the file keep the base layer's value.
	assert.Equal(t, base.Root, out.Root)
	assert.Equal(t, base.BrowserTimeout, out.BrowserTimeout)
}

func TestLoadFile_InvalidTomlErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "toolproof.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0o644))

	_, err := config.LoadFile(path, config.Defaults())
	assert.Error(t, err)
}

func TestOverlay_EnvVars(t *testing.T) {
	t.Setenv("TOOLPROOF_ROOT", "/tmp/suite")
	t.Setenv("TOOLPROOF_CONCURRENCY", "16")
	t.Setenv("TOOLPROOF_RETRY_COUNT", "3")
	t.Setenv("TOOLPROOF_PORCELAIN", "true")
	t.Setenv("TOOLPROOF_PLATFORMS", "linux,mac")

	out := config.Overlay(config.Defaults())
	assert.Equal(t, "/tmp/suite", out.Root)
	assert.Equal(t, 16, out.Concurrency)
	assert.Equal(t, 3, out.RetryCount)
	assert.True(t, out.Porcelain)
	assert.Equal(t, "linux,mac", out.Platforms)
}

func TestOverlay_InvalidIntIgnored(t *testing.T) {
	t.Setenv("TOOLPROOF_CONCURRENCY", "not-a-number")
	base := config.Defaults()
	out := config.Overlay(base)
	assert.Equal(t, base.Concurrency, out.Concurrency)
}

func TestOverlay_AbsentVarsLeaveBaseUntouched(t *testing.T) {
	base := config.Defaults()
	out := config.Overlay(base)
	assert.Equal(t, base, out)
}

func TestCheckVersion_EmptyRangeAlwaysPasses(t *testing.T) {
	assert.NoError(t, config.CheckVersion("0.1.0", ""))
}

func TestCheckVersion_Satisfied(t *testing.T) {
	assert.NoError(t, config.CheckVersion("0.1.0", ">=0.1.0 <1.0.0"))
}

func TestCheckVersion_Unsatisfied(t *testing.T) {
	err := config.CheckVersion("0.1.0", ">=2.0.0")
	assert.Error(t, err)
}

func TestCheckVersion_InvalidRunnerVersion(t *testing.T) {
	err := config.CheckVersion("not-semver", ">=1.0.0")
	assert.Error(t, err)
}

func TestAcquireRelease_PreventsDoubleLock(t *testing.T) {
	root := t.TempDir()
	lock, err := config.Acquire(root)
	require.NoError(t, err)

	_, err = config.Acquire(root)
	assert.Error(t, err, "a second acquire on the same root must fail while the first holds the lock")

	require.NoError(t, lock.Release())

	lock2, err := config.Acquire(root)
	require.NoError(t, err)
	require.NoError(t, lock2.Release())
}

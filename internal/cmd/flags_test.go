package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolproof/internal/config"
)

func newTestCmd(fv *flagVars) *cobra.Command {
	c := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	addCommonFlags(c, fv)
	return c
}

func TestResolve_DefaultsWhenNothingChanged(t *testing.T) {
	fv := &flagVars{}
	c := newTestCmd(fv)
	require.NoError(t, c.ParseFlags(nil))

	settings, err := fv.resolve(c)
	require.NoError(t, err)
	assert.Equal(t, config.Defaults().Concurrency, settings.Concurrency)
	assert.Equal(t, config.BrowserChrome, settings.Browser)
}

func TestResolve_FlagsOverrideDefaults(t *testing.T) {
	fv := &flagVars{}
	c := newTestCmd(fv)
	require.NoError(t, c.ParseFlags([]string{"--concurrency", "9", "--porcelain", "--retry-count", "2"}))

	settings, err := fv.resolve(c)
	require.NoError(t, err)
	assert.Equal(t, 9, settings.Concurrency)
	assert.True(t, settings.Porcelain)
	assert.Equal(t, 2, settings.RetryCount)
}

func TestResolve_FileLayerBelowFlags(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "toolproof.toml"), []byte("concurrency = 12\n"), 0o644))

	fv := &flagVars{}
	c := newTestCmd(fv)
	require.NoError(t, c.ParseFlags([]string{"--root", dir}))

	settings, err := fv.resolve(c)
	require.NoError(t, err)
	assert.Equal(t, 12, settings.Concurrency, "toolproof.toml value should apply when no --concurrency flag given")
}

func TestResolve_FlagOverridesFileLayer(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "toolproof.toml"), []byte("concurrency = 12\n"), 0o644))

	fv := &flagVars{}
	c := newTestCmd(fv)
	require.NoError(t, c.ParseFlags([]string{"--root", dir, "--concurrency", "5"}))

	settings, err := fv.resolve(c)
	require.NoError(t, err)
	assert.Equal(t, 5, settings.Concurrency)
}

func TestResolve_ShortFlags(t *testing.T) {
	fv := &flagVars{}
	c := newTestCmd(fv)
	require.NoError(t, c.ParseFlags([]string{"-c", "3", "-v", "-i", "-a", "-n", "my-test"}))

	settings, err := fv.resolve(c)
	require.NoError(t, err)
	assert.Equal(t, 3, settings.Concurrency)
	assert.True(t, settings.Verbose)
	assert.True(t, settings.Interactive)
	assert.True(t, settings.All)
	assert.Equal(t, "my-test", settings.Name)
}

func TestResolve_IncludeQuarantinedHasNoShortFlag(t *testing.T) {
	fv := &flagVars{}
	c := newTestCmd(fv)
	require.NoError(t, c.ParseFlags([]string{"--include-quarantined"}))

	settings, err := fv.resolve(c)
	require.NoError(t, err)
	assert.True(t, settings.IncludeQuarantined)
}

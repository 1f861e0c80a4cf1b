package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"toolproof/internal/config"
)

// flagVars mirrors config.RunSettings field-for-field the way cobra flags
// are bound in the teacher's tester_run.go var block.
type flagVars struct {
	root                 string
	concurrency          int
	timeout              time.Duration
	browserTimeout       time.Duration
	placeholderDelimiter string
	skipHooks            bool
	browser              string
	retryCount           int
	name                 string
	path                 string
	platforms            string
	interactive          bool
	all                  bool
	includeQuarantined   bool
	debugger             bool
	failureScreenshotDir string
	porcelain            bool
	verbose              bool
	supportedVersions    string
	compareTo            string
}

func addCommonFlags(cmd *cobra.Command, fv *flagVars) {
	cmd.Flags().StringVarP(&fv.root, "root", "r", ".", "discovery root containing *.toolproof.yml tests")
	cmd.Flags().IntVarP(&fv.concurrency, "concurrency", "c", 0, "maximum concurrently running tests")
	cmd.Flags().DurationVar(&fv.timeout, "timeout", 0, "per-step timeout")
	cmd.Flags().DurationVar(&fv.browserTimeout, "browser-timeout", 0, "browser startup/navigation timeout")
	cmd.Flags().StringVar(&fv.placeholderDelimiter, "placeholder-delimiter", "", "single-byte placeholder delimiter (default %)")
	cmd.Flags().BoolVar(&fv.skipHooks, "skip-hooks", false, "skip before_all hooks")
	cmd.Flags().StringVar(&fv.browser, "browser", "", "browser family to drive (chrome|pagebrowse)")
	cmd.Flags().IntVar(&fv.retryCount, "retry-count", 0, "additional attempts for a failing test before reporting it failed")
	cmd.Flags().StringVarP(&fv.name, "name", "n", "", "restrict to the test with this name")
	cmd.Flags().StringVarP(&fv.path, "path", "p", "", "restrict to tests discovered under this path")
	cmd.Flags().StringVar(&fv.platforms, "platforms", "", "override host platform filtering")
	cmd.Flags().BoolVarP(&fv.interactive, "interactive", "i", false, "prompt to accept snapshot mismatches")
	cmd.Flags().BoolVarP(&fv.all, "all", "a", false, "interactive run all: accept every snapshot mismatch without prompting")
	cmd.Flags().BoolVar(&fv.includeQuarantined, "include-quarantined", false, "run quarantined tests too")
	cmd.Flags().StringVarP(&fv.failureScreenshotDir, "failure-screenshot-dir", "s", "", "directory to write failure screenshots into")
	cmd.Flags().BoolVar(&fv.porcelain, "porcelain", false, "machine-readable line-oriented output")
	cmd.Flags().BoolVarP(&fv.verbose, "verbose", "v", false, "verbose logging and keep temp dirs on failure")
	cmd.Flags().StringVar(&fv.supportedVersions, "supported-versions", "", "semver range this runner must satisfy")
	cmd.Flags().StringVar(&fv.compareTo, "compare-to", "", "run ID or manifest path to diff this run's results against")
}

// resolve layers toolproof.toml then TOOLPROOF_* env vars onto the hard
// defaults, then applies every flag the operator actually set.
func (fv *flagVars) resolve(cmd *cobra.Command) (config.RunSettings, error) {
	settings := config.Defaults()
	if fv.root != "" {
		settings.Root = fv.root
	}

	fileSettings, err := config.LoadFile(filepath.Join(settings.Root, "toolproof.toml"), settings)
	if err == nil {
		settings = fileSettings
	}
	settings = config.Overlay(settings)

	flags := cmd.Flags()
	if flags.Changed("concurrency") {
		settings.Concurrency = fv.concurrency
	}
	if flags.Changed("timeout") {
		settings.Timeout = fv.timeout
	}
	if flags.Changed("browser-timeout") {
		settings.BrowserTimeout = fv.browserTimeout
	}
	if flags.Changed("placeholder-delimiter") && len(fv.placeholderDelimiter) == 1 {
		settings.PlaceholderDelimiter = fv.placeholderDelimiter[0]
	}
	if flags.Changed("skip-hooks") {
		settings.SkipHooks = fv.skipHooks
	}
	if flags.Changed("browser") {
		settings.Browser = config.Browser(fv.browser)
	}
	if flags.Changed("retry-count") {
		settings.RetryCount = fv.retryCount
	}
	if flags.Changed("name") {
		settings.Name = fv.name
	}
	if flags.Changed("path") {
		settings.Path = fv.path
	}
	if flags.Changed("platforms") {
		settings.Platforms = fv.platforms
	}
	if flags.Changed("interactive") {
		settings.Interactive = fv.interactive
	}
	if flags.Changed("all") {
		settings.All = fv.all
	}
	if flags.Changed("include-quarantined") {
		settings.IncludeQuarantined = fv.includeQuarantined
	}
	if flags.Changed("failure-screenshot-dir") {
		settings.FailureScreenshotDir = fv.failureScreenshotDir
	}
	if flags.Changed("porcelain") {
		settings.Porcelain = fv.porcelain
	}
	if flags.Changed("verbose") {
		settings.Verbose = fv.verbose
	}
	if flags.Changed("supported-versions") {
		settings.SupportedVersions = fv.supportedVersions
	}
	if flags.Changed("compare-to") {
		settings.CompareTo = fv.compareTo
	}
	if fv.root != "." {
		settings.Root = fv.root
	}

	// golang.org/x/term TTY detection: a non-terminal stdout (CI logs,
	// redirected output) falls back to porcelain by default, and the
	// interactive snapshot prompt is never offered with nothing to read
	// a keypress from, unless the operator overrode either explicitly.
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	if !isTTY {
		if !flags.Changed("porcelain") {
			settings.Porcelain = true
		}
		if !flags.Changed("interactive") {
			settings.Interactive = false
		}
	}
	return settings, nil
}

// Package config resolves RunSettings: the kernel's sole configuration
// input, layered CLI flag > env var > config file > defaults, the way the
// teacher's tester.DefaultConfig establishes baseline values before
// scenario-level overrides apply.
package config

import "time"

// Browser names the DevTools-protocol-capable browser family to drive.
type Browser string

const (
	BrowserChrome     Browser = "chrome"
	BrowserPagebrowse Browser = "pagebrowse"
)

// RunSettings is the resolved input to the step-execution kernel, carrying
// every option named in the data model.
type RunSettings struct {
	Root                 string
	Concurrency          int
	Timeout              time.Duration
	BrowserTimeout       time.Duration
	Placeholders         map[string]string
	PlaceholderDelimiter byte
	BeforeAll            []string
	SkipHooks            bool
	Browser              Browser
	RetryCount           int
	Name                 string
	Path                 string
	Platforms            string
	Interactive          bool
	All                  bool
	Debugger             bool
	FailureScreenshotDir string
	Porcelain            bool
	Verbose              bool
	SupportedVersions    string
	CompareTo            string
	IncludeQuarantined   bool
}

// Defaults returns the hard-coded baseline, grounded on
// tester.DefaultConfig()'s role as the first layer before overrides.
func Defaults() RunSettings {
	return RunSettings{
		Root:                 ".",
		Concurrency:          4,
		Timeout:              10 * time.Second,
		BrowserTimeout:       8 * time.Second,
		Placeholders:         map[string]string{},
		PlaceholderDelimiter: '%',
		Browser:              BrowserChrome,
		RetryCount:           0,
	}
}

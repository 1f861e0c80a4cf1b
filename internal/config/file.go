package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// fileSettings mirrors the subset of RunSettings an operator can put in a
// toolproof.toml project file; fields absent from the file are left at
// their prior layer's value.
type fileSettings struct {
	Root                 *string `toml:"root"`
	Concurrency          *int    `toml:"concurrency"`
	TimeoutSeconds       *int    `toml:"timeout"`
	BrowserTimeoutSecs   *int    `toml:"browser_timeout"`
	PlaceholderDelimiter *string `toml:"placeholder_delimiter"`
	BeforeAll            []string `toml:"before_all"`
	SkipHooks            *bool   `toml:"skip_hooks"`
	Browser              *string `toml:"browser"`
	RetryCount           *int    `toml:"retry_count"`
	Porcelain            *bool   `toml:"porcelain"`
	Verbose              *bool   `toml:"verbose"`
	SupportedVersions    *string `toml:"supported_versions"`
}

// LoadFile decodes a toolproof.toml file and overlays it onto base. A
// missing file is not an error; it simply leaves base untouched.
func LoadFile(path string, base RunSettings) (RunSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return base, fmt.Errorf("reading config file: %w", err)
	}
	var fs fileSettings
	if _, err := toml.Decode(string(data), &fs); err != nil {
		return base, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	out := base
	if fs.Root != nil {
		out.Root = *fs.Root
	}
	if fs.Concurrency != nil {
		out.Concurrency = *fs.Concurrency
	}
	if fs.TimeoutSeconds != nil {
		out.Timeout = time.Duration(*fs.TimeoutSeconds) * time.Second
	}
	if fs.BrowserTimeoutSecs != nil {
		out.BrowserTimeout = time.Duration(*fs.BrowserTimeoutSecs) * time.Second
	}
	if fs.PlaceholderDelimiter != nil && len(*fs.PlaceholderDelimiter) == 1 {
		out.PlaceholderDelimiter = (*fs.PlaceholderDelimiter)[0]
	}
	if len(fs.BeforeAll) > 0 {
		out.BeforeAll = fs.BeforeAll
	}
	if fs.SkipHooks != nil {
		out.SkipHooks = *fs.SkipHooks
	}
	if fs.Browser != nil {
		out.Browser = Browser(*fs.Browser)
	}
	if fs.RetryCount != nil {
		out.RetryCount = *fs.RetryCount
	}
	if fs.Porcelain != nil {
		out.Porcelain = *fs.Porcelain
	}
	if fs.Verbose != nil {
		out.Verbose = *fs.Verbose
	}
	if fs.SupportedVersions != nil {
		out.SupportedVersions = *fs.SupportedVersions
	}
	return out, nil
}

package config

import (
	"fmt"

	"github.com/blang/semver"
)

// CheckVersion gates a run against settings.SupportedVersions, a semver
// range. An empty range always passes. Failure is reported as the
// VersionUnsupported taxonomy kind by the caller (internal/cmd), which
// maps to exit code 2.
func CheckVersion(runnerVersion, rangeExpr string) error {
	if rangeExpr == "" {
		return nil
	}
	v, err := semver.Parse(runnerVersion)
	if err != nil {
		return fmt.Errorf("parsing runner version %q: %w", runnerVersion, err)
	}
	rng, err := semver.ParseRange(rangeExpr)
	if err != nil {
		return fmt.Errorf("parsing supported_versions %q: %w", rangeExpr, err)
	}
	if !rng(v) {
		return fmt.Errorf("runner version %s does not satisfy supported_versions %q", runnerVersion, rangeExpr)
	}
	return nil
}

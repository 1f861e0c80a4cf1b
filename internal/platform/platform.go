// Package platform implements the host platform filter: deciding whether a
// test or step runs on the current host given its declared platform set.
package platform

import "runtime"

// Platform is one of the three platforms a test or step can be restricted
// to.
type Platform string

const (
	Windows Platform = "windows"
	Mac     Platform = "mac"
	Linux   Platform = "linux"
)

// Host returns the running platform's Platform value.
func Host() Platform {
	switch runtime.GOOS {
	case "windows":
		return Windows
	case "darwin":
		return Mac
	default:
		return Linux
	}
}

// Matches reports whether host satisfies the declared set. An empty or nil
// set matches every host, per the test/step schema where platforms is
// optional.
func Matches(declared []Platform, host Platform) bool {
	if len(declared) == 0 {
		return true
	}
	for _, p := range declared {
		if p == host {
			return true
		}
	}
	return false
}

// Intersect combines a reference's platform filter with an included step's
// own filter, per the reference-expansion contract in the macro/reference
// section: the result runs only where both would have run.
func Intersect(a, b []Platform) []Platform {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	set := make(map[Platform]bool, len(b))
	for _, p := range b {
		set[p] = true
	}
	var out []Platform
	for _, p := range a {
		if set[p] {
			out = append(out, p)
		}
	}
	return out
}

// Parse converts schema strings ("windows", "mac", "linux") into Platform
// values, ignoring unrecognised entries.
func Parse(names []string) []Platform {
	out := make([]Platform, 0, len(names))
	for _, n := range names {
		switch Platform(n) {
		case Windows, Mac, Linux:
			out = append(out, Platform(n))
		}
	}
	return out
}

package testdoc

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Discover walks root for *.toolproof.yml (test/reference documents) and
// *.toolproof.macro.yml (macro documents), returning both sets sorted
// lexicographically by path — the deterministic draw order the scheduler
// relies on.
func Discover(root string) (tests []*Document, macros []*Document, err error) {
	var testPaths, macroPaths []string
	walkErr := filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		switch {
		case strings.HasSuffix(path, ".toolproof.macro.yml"):
			macroPaths = append(macroPaths, path)
		case strings.HasSuffix(path, ".toolproof.yml"):
			testPaths = append(testPaths, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, nil, walkErr
	}
	sort.Strings(testPaths)
	sort.Strings(macroPaths)

	for _, p := range testPaths {
		d, err := Load(p)
		if err != nil {
			return nil, nil, err
		}
		tests = append(tests, d)
	}
	for _, p := range macroPaths {
		d, err := Load(p)
		if err != nil {
			return nil, nil, err
		}
		macros = append(macros, d)
	}
	return tests, macros, nil
}

package cmd

import (
	"fmt"
	"sort"
	"strings"

	"toolproof/internal/config"
	"toolproof/internal/registry"
	"toolproof/internal/scheduler"
	"toolproof/internal/testdoc"
)

func buildRegistry(settings config.RunSettings) *registry.Registry {
	reg := registry.New()
	registry.RegisterBuiltins(reg, settings.Timeout)
	registry.RegisterBrowser(reg)
	return reg
}

// discoverEntries finds every test, expands macros/references, applies
// the name/path restriction filters, and tags each entry with whether it
// needs a browser page.
func discoverEntries(settings config.RunSettings, reg *registry.Registry) ([]scheduler.Entry, error) {
	tests, macros, err := testdoc.Discover(settings.Root)
	if err != nil {
		return nil, fmt.Errorf("discovering tests under %s: %w", settings.Root, err)
	}

	expander := testdoc.NewExpander(macros)
	var entries []scheduler.Entry
	for _, doc := range tests {
		if doc.IsReference() {
			continue
		}
		if settings.Name != "" && doc.Name != settings.Name {
			continue
		}
		if settings.Path != "" && !strings.Contains(doc.Path, settings.Path) {
			continue
		}
		steps, err := expander.Expand(doc)
		if err != nil {
			return nil, fmt.Errorf("expanding %s: %w", doc.Path, err)
		}
		entries = append(entries, scheduler.Entry{
			Doc:         doc,
			Steps:       steps,
			UsesBrowser: reg.StepsUseBrowser(steps),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Doc.Path != entries[j].Doc.Path {
			return entries[i].Doc.Path < entries[j].Doc.Path
		}
		return entries[i].Doc.Name < entries[j].Doc.Name
	})
	return entries, nil
}

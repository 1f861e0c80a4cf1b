package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"toolproof/internal/browser"
	"toolproof/internal/config"
	"toolproof/internal/log"
	"toolproof/internal/process"
	"toolproof/internal/registry"
	"toolproof/internal/runctx"
	"toolproof/internal/scheduler"
	"toolproof/internal/snapshot"
	"toolproof/internal/testrun"
)

func init() {
	fv := &flagVars{}
	acceptCmd := &cobra.Command{
		Use:   "accept",
		Short: "Run tests non-interactively, accepting every snapshot mismatch",
		Long: `Accept behaves like run except every snapshot step that mismatches (or
lacks) its stored content is immediately rewritten to the freshly
rendered value, without prompting — useful after an intentional output
change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return acceptMain(cmd, fv)
		},
	}
	addCommonFlags(acceptCmd, fv)
	rootCmd.AddCommand(acceptCmd)
}

func acceptMain(cmd *cobra.Command, fv *flagVars) error {
	settings, err := fv.resolve(cmd)
	if err != nil {
		return configError(err)
	}
	settings.Interactive = false
	settings.Concurrency = 1 // accepting rewrites files; serialise to avoid concurrent writers

	lock, err := config.Acquire(settings.Root)
	if err != nil {
		return configError(err)
	}
	defer lock.Release()

	logger := log.New(settings.Porcelain, settings.Verbose)
	defer logger.Sync()
	process.SetLogger(logger)
	snapshot.SetLogger(logger)

	reg := buildRegistry(settings)
	entries, err := discoverEntries(settings, reg)
	if err != nil {
		return configError(err)
	}

	pool := browser.NewPool(false)
	pool.SetLogger(logger)
	defer pool.Shutdown()

	failed := 0
	for _, entry := range entries {
		outcome := acceptEntry(entry, reg, settings, pool)
		if outcome.Status == testrun.Failed {
			failed++
			fmt.Printf("FAIL %s: %v\n", entry.Doc.Name, outcome.Err)
		} else {
			fmt.Printf("PASS %s\n", entry.Doc.Name)
		}
	}
	if failed > 0 {
		exitCode = 1
	}
	return nil
}

func acceptEntry(entry scheduler.Entry, reg *registry.Registry, settings config.RunSettings, pool *browser.Pool) *testrun.Outcome {
	var openPage func(context.Context) (runctx.Page, error)
	if entry.UsesBrowser {
		openPage = func(ctx context.Context) (runctx.Page, error) {
			return pool.Page(ctx, 0, settings.BrowserTimeout)
		}
	}
	deps := testrun.Deps{
		Registry:   reg,
		Settings:   settings,
		Doc:        entry.Doc,
		OpenPage:   openPage,
		AutoAccept: true,
	}
	return testrun.Run(entry.Doc.Name, entry.Steps, deps)
}

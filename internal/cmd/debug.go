package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"toolproof/internal/browser"
	"toolproof/internal/config"
	"toolproof/internal/debugger"
	"toolproof/internal/log"
	"toolproof/internal/process"
	"toolproof/internal/runctx"
	"toolproof/internal/snapshot"
)

func init() {
	fv := &flagVars{}
	debugCmd := &cobra.Command{
		Use:   "debug",
		Short: "Run a single named test interactively with a visible browser",
		Long: `Debug runs exactly one test (--name is required), forcing concurrency to
one and pausing before every step so the operator can inspect resolved
values, the test's temp directory, and its serve port before it runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return debugMain(cmd, fv)
		},
	}
	addCommonFlags(debugCmd, fv)
	rootCmd.AddCommand(debugCmd)
}

func debugMain(cmd *cobra.Command, fv *flagVars) error {
	settings, err := fv.resolve(cmd)
	if err != nil {
		return configError(err)
	}
	if settings.Name == "" {
		return configError(fmt.Errorf("debug requires --name"))
	}
	settings.Concurrency = 1
	settings.Debugger = true

	logger := log.New(settings.Porcelain, settings.Verbose)
	defer logger.Sync()
	process.SetLogger(logger)
	snapshot.SetLogger(logger)

	reg := buildRegistry(settings)
	entries, err := discoverEntries(settings, reg)
	if err != nil {
		return configError(err)
	}
	if len(entries) == 0 {
		return configError(fmt.Errorf("no test named %q found under %s", settings.Name, settings.Root))
	}
	entry := entries[0]

	pool := browser.NewPool(true)
	pool.SetLogger(logger)
	defer pool.Shutdown()

	var openPage func(context.Context) (runctx.Page, error)
	if entry.UsesBrowser {
		openPage = func(ctx context.Context) (runctx.Page, error) {
			return pool.Page(ctx, 0, settings.BrowserTimeout)
		}
	}

	outcome := debugger.Run(entry.Doc, entry.Steps, reg, settings, openPage, os.Stdout, os.Stdin)
	fmt.Printf("\n%s: %s\n", entry.Doc.Name, outcome.Status)
	if outcome.Status == "failed" {
		fmt.Println(outcome.Err)
		exitCode = 1
	}
	return nil
}

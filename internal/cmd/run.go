package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"toolproof/internal/config"
	"toolproof/internal/log"
	"toolproof/internal/report"
	"toolproof/internal/scheduler"
	"toolproof/internal/scheduler/flake"
	"toolproof/internal/toolerr"
)

var runnerVersion = "0.1.0"

func init() {
	fv := &flagVars{}
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Discover and run every test under the root",
		Long: `Run discovers every *.toolproof.yml test under --root, expands macro and
reference steps, and executes them with the configured concurrency.

Examples:
  toolproof run
  toolproof run --root ./e2e --concurrency 8
  toolproof run --name "signup flow" --interactive
  toolproof run --compare-to a1b2c3d4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMain(cmd, fv)
		},
	}
	addCommonFlags(runCmd, fv)
	rootCmd.AddCommand(runCmd)
}

func runMain(cmd *cobra.Command, fv *flagVars) error {
	settings, err := fv.resolve(cmd)
	if err != nil {
		return configError(err)
	}
	if err := config.CheckVersion(runnerVersion, settings.SupportedVersions); err != nil {
		return configError(toolerr.Wrap(toolerr.VersionUnsupported, -1, "", err))
	}

	lock, err := config.Acquire(settings.Root)
	if err != nil {
		return configError(err)
	}
	defer lock.Release()

	logger := log.New(settings.Porcelain, settings.Verbose)
	defer logger.Sync()

	detector, err := flake.Load(settings.Root)
	if err != nil {
		return configError(fmt.Errorf("loading flake history: %w", err))
	}

	reg := buildRegistry(settings)
	entries, err := discoverEntries(settings, reg)
	if err != nil {
		return configError(err)
	}
	logger.Infow("discovered tests", "count", len(entries))

	sched := scheduler.New(settings, reg, detector)
	sched.SetLogger(logger)
	defer sched.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok {
			cancel()
		}
	}()

	var sp *spinner.Spinner
	if !settings.Porcelain && term.IsTerminal(int(os.Stdout.Fd())) {
		sp = report.NewProgressSpinner(os.Stdout)
	}

	started := time.Now()
	records, err := sched.Run(ctx, entries)
	if sp != nil {
		sp.Stop()
	}
	if ctx.Err() != nil {
		return interrupted(fmt.Errorf("run interrupted"))
	}
	if err != nil {
		return configError(err)
	}

	manifest := scheduler.BuildManifest(started, records)
	if _, err := scheduler.SaveManifest(settings.Root, manifest); err != nil {
		logger.Warnw("failed to save run manifest", "error", err)
	}

	if settings.CompareTo != "" {
		baseline, err := scheduler.LoadManifest(settings.Root, settings.CompareTo)
		if err != nil {
			logger.Warnw("failed to load comparison baseline", "error", err)
		} else {
			printComparison(scheduler.Compare(records, baseline))
		}
	}

	if settings.Porcelain {
		report.WritePorcelain(os.Stdout, records)
	} else {
		report.WriteRich(os.Stdout, records)
	}

	exitCode = exitCodeFor(records)
	return nil
}

func exitCodeFor(records []scheduler.Record) int {
	for _, r := range records {
		if r.Status == "failed" {
			return 1
		}
	}
	return 0
}

func printComparison(c scheduler.Comparison) {
	fmt.Printf("\ncompared to baseline: %d fixed, %d new, %d recurring\n", len(c.Fixed), len(c.NewIssues), len(c.Recurring))
	for _, n := range c.NewIssues {
		fmt.Printf("  new failure: %s\n", n)
	}
}

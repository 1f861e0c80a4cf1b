// Package scheduler implements concurrency-limited fan-out over tests,
// retry policy, flaky detection, and interactive-mode serialisation,
// adapted from the worker-pool and retry/backoff idiom of the teacher's
// internal/tester/batch.Runner, upgraded to golang.org/x/sync/errgroup in
// place of the teacher's hand-rolled channel-and-WaitGroup pool.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"toolproof/internal/browser"
	"toolproof/internal/config"
	"toolproof/internal/platform"
	"toolproof/internal/process"
	"toolproof/internal/registry"
	"toolproof/internal/runctx"
	"toolproof/internal/scheduler/flake"
	"toolproof/internal/snapshot"
	"toolproof/internal/testdoc"
	"toolproof/internal/testrun"
)

// Record is one scheduled test's final reporting record, including
// whether it only passed after a retry (flaky).
type Record struct {
	Name     string
	Status   testrun.Status
	Attempts int
	Flaky    bool
	Outcome  *testrun.Outcome
}

// Scheduler runs a discovered, expanded test suite to completion.
type Scheduler struct {
	settings config.RunSettings
	registry *registry.Registry
	pool     *browser.Pool
	prompter *snapshot.Prompter
	detector *flake.Detector
	limiter  *rate.Limiter
	logger   *zap.SugaredLogger
}

func New(settings config.RunSettings, reg *registry.Registry, detector *flake.Detector) *Scheduler {
	return &Scheduler{
		settings: settings,
		registry: reg,
		pool:     browser.NewPool(settings.Debugger),
		prompter: snapshot.NewPrompter(),
		detector: detector,
		limiter:  rate.NewLimiter(rate.Every(50*time.Millisecond), 1),
		logger:   zap.NewNop().Sugar(),
	}
}

// SetLogger installs the scheduler's structured logger and propagates it
// to the subsystems it owns (the browser pool and, via package-level
// setters, the process and snapshot subsystems), the way the teacher's
// tester.Runner passes its logger down into each manager it constructs.
func (s *Scheduler) SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		return
	}
	s.logger = l
	s.pool.SetLogger(l)
	process.SetLogger(l)
	snapshot.SetLogger(l)
}

// Entry pairs a document with its macro/reference-expanded step sequence
// and whether any step in it drives the browser.
type Entry struct {
	Doc        *testdoc.Document
	Steps      []testdoc.Step
	UsesBrowser bool
}

// Run executes before_all hooks, then every scheduled entry, honouring
// concurrency, retries and interactive serialisation. Entries must already
// be sorted in the deterministic draw order (lexicographic by path, then
// name); Discover + selection upstream guarantees this.
func (s *Scheduler) Run(ctx context.Context, entries []Entry) ([]Record, error) {
	if !s.settings.SkipHooks {
		for _, cmd := range s.settings.BeforeAll {
			if _, err := process.Run(ctx, cmd, s.settings.Root, envWithOverlay(s.settings), false); err != nil {
				return nil, fmt.Errorf("before_all hook %q: %w", cmd, err)
			}
		}
	}

	concurrency := s.settings.Concurrency
	if s.settings.Interactive || s.settings.Debugger {
		concurrency = 1
	}
	if concurrency < 1 {
		concurrency = 1
	}

	records := make([]Record, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			worker := i % concurrency
			records[i] = s.runEntry(gctx, worker, entry)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return records, err
	}

	sort.SliceStable(records, func(i, j int) bool { return entries[i].Doc.Name < entries[j].Doc.Name })
	return records, nil
}

func (s *Scheduler) runEntry(ctx context.Context, worker int, entry Entry) Record {
	host := platform.Host()
	if !platform.Matches(entry.Doc.Platforms, host) {
		s.logger.Debugw("skipping test: platform mismatch", "test", entry.Doc.Name)
		return Record{Name: entry.Doc.Name, Status: testrun.Skipped}
	}
	if s.detector != nil && s.detector.IsQuarantined(entry.Doc.Name) && !s.settings.IncludeQuarantined {
		s.logger.Debugw("skipping test: quarantined", "test", entry.Doc.Name)
		return Record{Name: entry.Doc.Name, Status: testrun.Skipped}
	}

	attempts := 0
	var last *testrun.Outcome
	for {
		attempts++
		last = s.runOnce(ctx, worker, entry)
		if last.Status == testrun.Passed || attempts >= s.settings.RetryCount+1 {
			break
		}
		s.logger.Debugw("retrying test", "test", entry.Doc.Name, "attempt", attempts+1)
		_ = s.limiter.Wait(ctx)
	}

	rec := Record{Name: entry.Doc.Name, Status: last.Status, Attempts: attempts, Outcome: last}
	if last.Status == testrun.Passed && attempts > 1 {
		rec.Flaky = true
	}
	if s.detector != nil {
		outcome := flake.OutcomePass
		if last.Status != testrun.Passed {
			outcome = flake.OutcomeFail
		}
		s.detector.RecordRun(entry.Doc.Name, outcome, attempts)
	}
	return rec
}

func (s *Scheduler) runOnce(ctx context.Context, worker int, entry Entry) *testrun.Outcome {
	var openPage func(context.Context) (runctx.Page, error)
	if entry.UsesBrowser {
		openPage = func(pctx context.Context) (runctx.Page, error) {
			return s.pool.Page(pctx, worker, s.settings.BrowserTimeout)
		}
	}
	deps := testrun.Deps{
		Registry: s.registry,
		Settings: s.settings,
		Prompter: s.prompter,
		Doc:      entry.Doc,
		OpenPage: openPage,
	}
	return testrun.Run(entry.Doc.Name, entry.Steps, deps)
}

// Shutdown terminates every worker's browser process. Callers must invoke
// this unconditionally, including on panic or signal — the hard invariant
// that no child browser process outlives the runner.
func (s *Scheduler) Shutdown() error {
	return s.pool.Shutdown()
}

func envWithOverlay(settings config.RunSettings) []string {
	return nil // before_all hooks run with the inherited environment only
}

package browser

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pool owns one Manager per scheduler worker slot, lazily started on first
// use and torn down together on Shutdown — the "one browser process per
// worker, not per test" resource model.
type Pool struct {
	mu       sync.Mutex
	headed   bool
	managers map[int]*Manager
	logger   *zap.SugaredLogger
}

func NewPool(headed bool) *Pool {
	return &Pool{headed: headed, managers: map[int]*Manager{}, logger: zap.NewNop().Sugar()}
}

// SetLogger installs this pool's structured logger for worker browser
// lifecycle events.
func (p *Pool) SetLogger(l *zap.SugaredLogger) {
	if l != nil {
		p.logger = l
	}
}

// Page opens a fresh page on the manager owned by the given worker slot,
// starting that worker's browser process on first use.
func (p *Pool) Page(ctx context.Context, worker int, browserTimeout time.Duration) (*Page, error) {
	p.mu.Lock()
	m, ok := p.managers[worker]
	if !ok {
		p.logger.Debugw("launching browser for worker", "worker", worker)
		var err error
		m, err = NewManager(p.headed)
		if err != nil {
			p.mu.Unlock()
			p.logger.Debugw("browser launch failed", "worker", worker, "error", err)
			return nil, err
		}
		p.managers[worker] = m
	}
	p.mu.Unlock()
	return m.NewPage(ctx, browserTimeout)
}

// Shutdown closes every worker's browser process. Called unconditionally
// from the scheduler's shutdown handler, including on panic or signal.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	for worker, m := range p.managers {
		if err := m.Shutdown(); err != nil {
			p.logger.Debugw("browser shutdown failed", "worker", worker, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

package cleanup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"demoforge/internal/config"
	"demoforge/internal/logging"
	"demoforge/internal/store"
)

// Deleter removes a session and every blob stored under it.
type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// Sweeper periodically removes sessions whose retention window has lapsed.
type Sweeper struct {
	store   *store.Store
	deleter Deleter
	logger  *slog.Logger

	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option customizes the sweeper.
type Option func(*Sweeper)

// WithClock substitutes the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a sweeper from the workflow configuration.
func New(cfg *config.Config, st *store.Store, deleter Deleter, logger *slog.Logger, opts ...Option) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	interval := time.Duration(cfg.Workflow.CleanupIntervalHours) * time.Hour
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	s := &Sweeper{
		store:    st,
		deleter:  deleter,
		logger:   logger.With(logging.String(logging.FieldComponent, "cleanup")),
		interval: interval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the background sweep loop. An initial sweep runs
// immediately so restarts do not wait a full interval to reclaim space.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Sweep(runCtx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				s.Sweep(runCtx)
			}
		}
	}()
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
}

// Sweep deletes every expired session once. It reports the number removed;
// a failure on one session does not stop the rest of the batch.
func (s *Sweeper) Sweep(ctx context.Context) int {
	expired, err := s.store.ExpiredBefore(ctx, s.now())
	if err != nil {
		s.logger.Error("expired session query failed", logging.Error(err))
		return 0
	}
	if len(expired) == 0 {
		return 0
	}

	removed := 0
	for _, sess := range expired {
		if ctx.Err() != nil {
			break
		}
		if err := s.deleter.Delete(ctx, sess.ID); err != nil {
			s.logger.Warn("expired session removal failed",
				logging.String(logging.FieldSessionID, sess.ID),
				logging.Error(err))
			continue
		}
		removed++
	}
	s.logger.Info("cleanup sweep finished",
		logging.Int("expired", len(expired)),
		logging.Int("removed", removed))
	return removed
}

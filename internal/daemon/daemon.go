package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"demoforge/internal/blobstore"
	"demoforge/internal/cleanup"
	"demoforge/internal/config"
	"demoforge/internal/dispatch"
	"demoforge/internal/httpd"
	"demoforge/internal/logging"
	"demoforge/internal/notifications"
	"demoforge/internal/orchestrator"
	"demoforge/internal/processing"
	"demoforge/internal/repofetch"
	"demoforge/internal/store"
	"demoforge/internal/suggest"
)

// Daemon assembles the full pipeline runtime and enforces single-instance
// execution through a lock file.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store

	blobs   *blobstore.FSStore
	pool    *dispatch.Pool
	orch    *orchestrator.Orchestrator
	server  *httpd.Server
	sweeper *cleanup.Sweeper

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New wires the stores, processors, and HTTP surface from configuration.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil {
		return nil, errors.New("daemon requires config and store")
	}
	if logger == nil {
		logger = slog.Default()
	}

	blobs, err := blobstore.NewFS(cfg.Paths.BlobDir)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	workers := cfg.Workflow.WorkerCount
	if workers <= 0 {
		workers = 4
	}
	pool := dispatch.NewPool(workers, logger)

	fetcher := repofetch.NewClient(cfg.GitHub)
	suggester := suggest.NewGenerator(suggest.NewClient(cfg.Suggestions), cfg.Suggestions, cfg.Media, logger)
	media := processing.New(cfg, blobs, logger)
	notifier := notifications.NewService(cfg)

	orch := orchestrator.New(cfg, st, blobs, fetcher, suggester, media, notifier, pool, logger)
	server := httpd.New(cfg, orch, st, logger)
	sweeper := cleanup.New(cfg, st, orch, logger)

	d := &Daemon{
		cfg:      cfg,
		logger:   logger.With(logging.String(logging.FieldComponent, "daemon")),
		store:    st,
		blobs:    blobs,
		pool:     pool,
		orch:     orch,
		server:   server,
		sweeper:  sweeper,
		lockPath: filepath.Join(cfg.Paths.LogDir, "demoforge.lock"),
	}
	d.lock = flock.New(d.lockPath)
	return d, nil
}

// Orchestrator exposes the session coordinator for callers that run
// one-off operations in-process.
func (d *Daemon) Orchestrator() *orchestrator.Orchestrator {
	return d.orch
}

// Addr returns the bound API address, valid once Start has returned.
func (d *Daemon) Addr() string {
	return d.server.Addr()
}

// Start acquires the instance lock and launches the worker pool, the
// cleanup sweeper, and the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another demoforge instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.pool.Start(runCtx); err != nil {
		cancel()
		d.cancel = nil
		_ = d.lock.Unlock()
		return fmt.Errorf("start worker pool: %w", err)
	}
	d.sweeper.Start(runCtx)
	if err := d.server.Start(); err != nil {
		d.sweeper.Stop()
		d.pool.Stop()
		cancel()
		d.cancel = nil
		_ = d.lock.Unlock()
		return fmt.Errorf("start api server: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("demoforge daemon started",
		logging.String("lock", d.lockPath),
		logging.String("addr", d.server.Addr()))
	return nil
}

// Stop drains the API, the sweeper, and the worker pool, then releases
// the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.server.Shutdown(shutdownCtx); err != nil {
		d.logger.Warn("api shutdown", logging.Error(err))
	}
	d.sweeper.Stop()
	d.pool.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("demoforge daemon stopped")
}

// Close stops the daemon and closes the session store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

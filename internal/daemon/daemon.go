package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"recall/internal/config"
	"recall/internal/jobs"
	"recall/internal/logging"
	"recall/internal/memory"
	"recall/internal/preflight"
	"recall/internal/workflow"
)

const pruneInterval = 10 * time.Minute

// Daemon coordinates the background processing services and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *memory.Store
	registry *jobs.Registry
	pool     *workflow.Pool
	intake   *jobs.Intake
	api      *apiServer

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	startedAt time.Time
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	StartedAt    time.Time
	DatabasePath string
	LockFilePath string
	APIAddress   string
	Pool         workflow.Stats
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *memory.Store, registry *jobs.Registry, pool *workflow.Pool, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || registry == nil || pool == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, registry, pool, and logger")
	}

	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		registry: registry,
		pool:     pool,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	d.intake = jobs.NewIntake(cfg.Paths.UploadDir, registry, pool, logger)
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, then launches the workflow pool and the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another recall daemon instance is already running")
	}

	d.runPreflight(ctx)

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.pool.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start workflow: %w", err)
	}
	if err := d.api.start(runCtx); err != nil {
		cancel()
		d.pool.Stop()
		_ = d.lock.Unlock()
		return err
	}

	d.cancel = cancel
	d.startedAt = time.Now()
	if d.statusRetention() > 0 {
		d.wg.Add(1)
		go d.pruneStatuses(runCtx)
	}

	d.running.Store(true)
	d.logger.Info("recall daemon started",
		logging.String("lock", d.lockPath),
		logging.String("database", d.store.Path()),
		logging.String("api", d.api.address()),
	)
	return nil
}

// Stop stops accepting uploads, cancels in-flight jobs, and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.api.stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.pool.Stop()
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("recall daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          pid(),
		StartedAt:    d.startedAt,
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
		APIAddress:   d.api.address(),
		Pool:         d.pool.Stats(),
	}
}

func (d *Daemon) runPreflight(ctx context.Context) {
	for _, result := range preflight.Failed(preflight.RunAll(ctx, d.cfg)) {
		logging.WarnWithContext(d.logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "see `recall health` for details"),
		)
	}
}

func (d *Daemon) pruneStatuses(ctx context.Context) {
	defer d.wg.Done()
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := d.pruneFinished(now); removed > 0 {
				d.logger.Debug("pruned finished job statuses", logging.Int("count", removed))
			}
		}
	}
}

func (d *Daemon) statusRetention() time.Duration {
	return time.Duration(d.cfg.Workflow.StatusRetentionHours) * time.Hour
}

// pruneFinished drops terminal statuses older than the configured retention.
// A zero retention keeps every status.
func (d *Daemon) pruneFinished(now time.Time) int {
	retention := d.statusRetention()
	if retention <= 0 {
		return 0
	}
	return d.registry.Prune(now.Add(-retention))
}

package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"recall/internal/config"
	"recall/internal/jobs"
	"recall/internal/logging"
	"recall/internal/services"
)

var (
	// ErrQueueFull is returned by Submit when every queue slot is taken.
	ErrQueueFull = fmt.Errorf("%w: workflow queue full", services.ErrBusy)
	// ErrStopped is returned by Submit after Stop.
	ErrStopped = fmt.Errorf("%w: workflow stopped", services.ErrBusy)
)

// Runner executes a single task.
type Runner interface {
	Run(ctx context.Context, task jobs.Task) error
}

// Stats is a point-in-time view of pool activity.
type Stats struct {
	Workers   int   `json:"workers"`
	QueueSize int   `json:"queue_size"`
	Queued    int64 `json:"queued"`
	Running   int64 `json:"running"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Rejected  int64 `json:"rejected"`
}

// Pool is a fixed set of workers draining a bounded task queue.
type Pool struct {
	runner     Runner
	workers    int
	jobTimeout time.Duration
	logger     *slog.Logger
	tasks      chan jobs.Task

	mu      sync.RWMutex
	running bool
	stopped bool
	cancel  context.CancelFunc
	group   *errgroup.Group

	queued    atomic.Int64
	active    atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	rejected  atomic.Int64
}

// NewPool sizes a pool from the workflow configuration.
func NewPool(cfg *config.Config, runner Runner, logger *slog.Logger) *Pool {
	workers := cfg.Workflow.Workers
	if workers <= 0 {
		workers = 1
	}
	queueSize := cfg.Workflow.QueueSize
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Pool{
		runner:     runner,
		workers:    workers,
		jobTimeout: time.Duration(cfg.Workflow.JobTimeoutSeconds) * time.Second,
		logger:     logging.NewComponentLogger(logger, "workflow-pool"),
		tasks:      make(chan jobs.Task, queueSize),
	}
}

// Start launches the workers. Tasks submitted before Start stay queued.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return errors.New("workflow pool already stopped")
	}
	if p.running {
		return errors.New("workflow pool already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(runCtx)
	for range p.workers {
		group.Go(func() error {
			p.work(groupCtx)
			return nil
		})
	}
	p.cancel = cancel
	p.group = group
	p.running = true

	p.logger.Info("workflow pool started",
		logging.Int("workers", p.workers),
		logging.Int("queue_size", cap(p.tasks)),
	)
	return nil
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(task jobs.Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		p.rejected.Add(1)
		return ErrStopped
	}
	p.queued.Add(1)
	select {
	case p.tasks <- task:
		return nil
	default:
		p.queued.Add(-1)
		p.rejected.Add(1)
		return ErrQueueFull
	}
}

// Stop cancels in-flight tasks and waits for the workers to exit. Tasks still
// queued are run against the cancelled context so they fail promptly.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	cancel := p.cancel
	group := p.group
	p.running = false
	p.mu.Unlock()

	cancelled, cancelDrain := context.WithCancel(context.Background())
	cancelDrain()
	if cancel != nil {
		cancel()
		_ = group.Wait()
	}
	for {
		select {
		case task := <-p.tasks:
			p.queued.Add(-1)
			p.execute(cancelled, task)
		default:
			p.logger.Info("workflow pool stopped", logging.Args(p.statsAttrs()...)...)
			return
		}
	}
}

// Stats reports queue depth and task counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   p.workers,
		QueueSize: cap(p.tasks),
		Queued:    p.queued.Load(),
		Running:   p.active.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
		Rejected:  p.rejected.Load(),
	}
}

func (p *Pool) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-p.tasks:
			p.queued.Add(-1)
			p.execute(ctx, task)
		}
	}
}

func (p *Pool) execute(ctx context.Context, task jobs.Task) {
	if p.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.jobTimeout)
		defer cancel()
	}
	p.active.Add(1)
	defer p.active.Add(-1)

	if err := p.runner.Run(ctx, task); err != nil {
		p.failed.Add(1)
		if errors.Is(err, context.Canceled) {
			p.logger.Debug("task cancelled", logging.String(logging.FieldJobID, task.JobID))
			return
		}
		p.logger.Warn("task failed",
			logging.String(logging.FieldJobID, task.JobID),
			logging.String(logging.FieldErrorKind, string(services.Kind(err))),
			logging.Error(err),
			logging.String(logging.FieldEventType, "task_failed"),
		)
		return
	}
	p.completed.Add(1)
}

func (p *Pool) statsAttrs() []logging.Attr {
	stats := p.Stats()
	return []logging.Attr{
		logging.Int64("completed", stats.Completed),
		logging.Int64("failed", stats.Failed),
		logging.Int64("rejected", stats.Rejected),
	}
}

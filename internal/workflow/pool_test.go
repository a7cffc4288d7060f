package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"recall/internal/jobs"
	"recall/internal/logging"
	"recall/internal/services"
	"recall/internal/testsupport"
	"recall/internal/workflow"
)

type funcRunner func(ctx context.Context, task jobs.Task) error

func (f funcRunner) Run(ctx context.Context, task jobs.Task) error { return f(ctx, task) }

func TestPoolSubmitRejectsWhenQueueFull(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.Workers = 1
	cfg.Workflow.QueueSize = 1
	pool := workflow.NewPool(cfg, funcRunner(func(context.Context, jobs.Task) error { return nil }), logging.NewNop())

	if err := pool.Submit(jobs.Task{JobID: "a"}); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	err := pool.Submit(jobs.Task{JobID: "b"})
	if !errors.Is(err, workflow.ErrQueueFull) || !errors.Is(err, services.ErrBusy) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if stats := pool.Stats(); stats.Queued != 1 || stats.Rejected != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	pool.Stop()
}

func TestPoolRunsTasksAndCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.Workers = 2
	cfg.Workflow.QueueSize = 8

	var wg sync.WaitGroup
	wg.Add(4)
	pool := workflow.NewPool(cfg, funcRunner(func(_ context.Context, task jobs.Task) error {
		defer wg.Done()
		if task.JobID == "bad" {
			return errors.New("boom")
		}
		return nil
	}), logging.NewNop())
	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for _, id := range []string{"a", "b", "bad", "c"} {
		if err := pool.Submit(jobs.Task{JobID: id}); err != nil {
			t.Fatalf("Submit %s: %v", id, err)
		}
	}
	wg.Wait()
	pool.Stop()

	stats := pool.Stats()
	if stats.Completed != 3 || stats.Failed != 1 || stats.Running != 0 || stats.Queued != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if err := pool.Submit(jobs.Task{JobID: "late"}); !errors.Is(err, workflow.ErrStopped) {
		t.Fatalf("expected ErrStopped after Stop, got %v", err)
	}
}

func TestPoolStopCancelsInFlightTasks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.Workers = 1
	cfg.Workflow.QueueSize = 4

	started := make(chan struct{})
	pool := workflow.NewPool(cfg, funcRunner(func(ctx context.Context, task jobs.Task) error {
		if task.JobID == "slow" {
			close(started)
		}
		<-ctx.Done()
		return ctx.Err()
	}), logging.NewNop())
	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := pool.Submit(jobs.Task{JobID: "slow"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	<-started
	if err := pool.Submit(jobs.Task{JobID: "waiting"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
	if stats := pool.Stats(); stats.Failed != 2 || stats.Queued != 0 {
		t.Fatalf("expected both tasks to fail on shutdown, got %+v", stats)
	}
}

func TestPoolAppliesJobTimeout(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.Workers = 1
	cfg.Workflow.JobTimeoutSeconds = 1

	result := make(chan error, 1)
	pool := workflow.NewPool(cfg, funcRunner(func(ctx context.Context, task jobs.Task) error {
		<-ctx.Done()
		result <- ctx.Err()
		return ctx.Err()
	}), logging.NewNop())
	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer pool.Stop()
	if err := pool.Submit(jobs.Task{JobID: "stuck"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	select {
	case err := <-result:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline exceeded, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("job timeout was not applied")
	}
}

func TestPoolQueuedNeverNegative(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.Workers = 4
	cfg.Workflow.QueueSize = 1

	var pool *workflow.Pool
	var mu sync.Mutex
	minQueued := int64(0)
	done := make(chan struct{}, 1)
	pool = workflow.NewPool(cfg, funcRunner(func(context.Context, jobs.Task) error {
		q := pool.Stats().Queued
		mu.Lock()
		if q < minQueued {
			minQueued = q
		}
		mu.Unlock()
		done <- struct{}{}
		return nil
	}), logging.NewNop())
	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer pool.Stop()

	for i := 0; i < 200; i++ {
		if err := pool.Submit(jobs.Task{JobID: "job"}); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("task did not run")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if minQueued < 0 {
		t.Fatalf("queued count went negative: %d", minQueued)
	}
}

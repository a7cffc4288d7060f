package jobs

import (
	"errors"
	"sync"
	"testing"
	"time"

	"recall/internal/services"
)

func TestRegistryRegisterQueued(t *testing.T) {
	reg := NewRegistry()
	reg.Register("job-1", "alice")

	status, err := reg.Get("job-1", "alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if status.State != StateQueued || status.Progress != 10 || status.Message != MessageQueued {
		t.Fatalf("unexpected initial status: %+v", status)
	}
}

func TestRegistryUnknownJob(t *testing.T) {
	status, err := NewRegistry().Get("missing", "")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if status.State != StateUnknown || status.Progress != 0 || status.Message != "No status available" {
		t.Fatalf("unexpected unknown status: %+v", status)
	}
}

func TestRegistryProgressIsMonotonic(t *testing.T) {
	reg := NewRegistry()
	reg.Register("job-1", "")
	reg.Update("job-1", StateProcessing, 50, "Summarizing content...")
	reg.Update("job-1", StateProcessing, 30, "Transcribing audio...")

	status, _ := reg.Get("job-1", "")
	if status.Progress != 50 {
		t.Fatalf("expected progress clamped to 50, got %d", status.Progress)
	}
}

func TestRegistryTerminalStatesAreFinal(t *testing.T) {
	reg := NewRegistry()
	reg.Register("job-1", "")
	if !reg.Complete("job-1", "mem-1", "Memory processed successfully") {
		t.Fatal("expected completion to apply")
	}
	if reg.Update("job-1", StateProcessing, 80, "Saving to database...") {
		t.Fatal("expected update after completion to be ignored")
	}
	if reg.Fail("job-1", "Processing failed: late") {
		t.Fatal("expected failure after completion to be ignored")
	}

	status, _ := reg.Get("job-1", "")
	if status.State != StateCompleted || status.Progress != 100 || status.MemoryID != "mem-1" {
		t.Fatalf("unexpected terminal status: %+v", status)
	}
}

func TestRegistryFailCarriesFullProgress(t *testing.T) {
	reg := NewRegistry()
	reg.Register("job-1", "")
	reg.Update("job-1", StateProcessing, 30, "Transcribing audio...")
	reg.Fail("job-1", "Processing failed: boom")

	status, _ := reg.Get("job-1", "")
	if status.State != StateError || status.Progress != 100 {
		t.Fatalf("unexpected failure status: %+v", status)
	}
}

func TestRegistryCrossOwnerDenied(t *testing.T) {
	reg := NewRegistry()
	reg.Register("job-1", "alice")

	if _, err := reg.Get("job-1", "bob"); !errors.Is(err, services.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewRegistry()
	reg.Register("job-1", "")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(p int) {
			defer wg.Done()
			reg.Update("job-1", StateProcessing, 10+p, "working")
		}(i)
		go func() {
			defer wg.Done()
			_, _ = reg.Get("job-1", "")
		}()
	}
	wg.Wait()

	status, _ := reg.Get("job-1", "")
	if status.Progress != 59 {
		t.Fatalf("expected max progress 59, got %d", status.Progress)
	}
}

func TestRegistryPrune(t *testing.T) {
	reg := NewRegistry()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return base }
	reg.Register("done", "")
	reg.Register("active", "")
	reg.Complete("done", "mem", "Memory processed successfully")

	if removed := reg.Prune(base.Add(time.Minute)); removed != 1 {
		t.Fatalf("expected 1 pruned entry, got %d", removed)
	}
	if status, _ := reg.Get("active", ""); status.State != StateQueued {
		t.Fatalf("active job should survive prune, got %+v", status)
	}
	if counts := reg.Counts(); counts[StateQueued] != 1 || counts[StateCompleted] != 0 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

package jobs

import (
	"sync"
	"time"

	"recall/internal/services"
)

// State is the lifecycle state of a job.
type State string

const (
	StateQueued     State = "queued"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateError      State = "error"
	StateUnknown    State = "unknown"
)

// IsTerminal reports whether no further transitions are allowed.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateError
}

const (
	MessageQueued   = "File uploaded, starting processing..."
	MessageUnknown  = "No status available"
	ProgressQueued  = 10
	ProgressMaximum = 100
)

// Status is the client-visible snapshot of a job.
type Status struct {
	State     State     `json:"state"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message"`
	MemoryID  string    `json:"memory_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type entry struct {
	status Status
	owner  string
}

// Registry stores job status keyed by job id.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*entry
	now  func() time.Time
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*entry), now: time.Now}
}

// Register creates a queued entry for jobID owned by owner. An existing entry
// is left untouched.
func (r *Registry) Register(jobID, owner string) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.jobs[jobID]; ok {
		return existing.status
	}
	e := &entry{
		owner: owner,
		status: Status{
			State:     StateQueued,
			Progress:  ProgressQueued,
			Message:   MessageQueued,
			UpdatedAt: r.now(),
		},
	}
	r.jobs[jobID] = e
	return e.status
}

// Update records a non-terminal transition. Progress never decreases, and
// writes after a terminal state are ignored. The returned bool reports
// whether the write was applied.
func (r *Registry) Update(jobID string, state State, progress int, message string) bool {
	if state.IsTerminal() {
		if state == StateCompleted {
			return r.Complete(jobID, "", message)
		}
		return r.Fail(jobID, message)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.jobs[jobID]
	if !ok || e.status.State.IsTerminal() {
		return false
	}
	e.status.State = state
	e.status.Progress = clampProgress(e.status.Progress, progress)
	e.status.Message = message
	e.status.UpdatedAt = r.now()
	return true
}

// Complete marks the job finished with the stored memory id.
func (r *Registry) Complete(jobID, memoryID, message string) bool {
	return r.finish(jobID, StateCompleted, memoryID, message)
}

// Fail marks the job failed. Failed jobs always report full progress.
func (r *Registry) Fail(jobID, message string) bool {
	return r.finish(jobID, StateError, "", message)
}

func (r *Registry) finish(jobID string, state State, memoryID, message string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.jobs[jobID]
	if !ok || e.status.State.IsTerminal() {
		return false
	}
	e.status.State = state
	e.status.Progress = ProgressMaximum
	e.status.Message = message
	e.status.MemoryID = memoryID
	e.status.UpdatedAt = r.now()
	return true
}

// Get returns the status for jobID as seen by owner. Absent jobs report
// StateUnknown; a job registered to a different owner returns ErrAccessDenied.
func (r *Registry) Get(jobID, owner string) (Status, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.jobs[jobID]
	if !ok {
		return Status{State: StateUnknown, Progress: 0, Message: MessageUnknown}, nil
	}
	if e.owner != owner {
		return Status{}, services.Wrap(services.ErrAccessDenied, "status", "get job", "job belongs to another owner", nil)
	}
	return e.status, nil
}

// Counts returns the number of tracked jobs per state.
func (r *Registry) Counts() map[State]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[State]int, 4)
	for _, e := range r.jobs {
		counts[e.status.State]++
	}
	return counts
}

// Prune drops terminal entries last updated before cutoff and returns how
// many were removed.
func (r *Registry) Prune(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, e := range r.jobs {
		if e.status.State.IsTerminal() && e.status.UpdatedAt.Before(cutoff) {
			delete(r.jobs, id)
			removed++
		}
	}
	return removed
}

func clampProgress(current, next int) int {
	if next < current {
		next = current
	}
	if next > ProgressMaximum {
		next = ProgressMaximum
	}
	return next
}

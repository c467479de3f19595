package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunStatus is the state of a conversion run.
type RunStatus string

const (
	StatusIdle       RunStatus = "idle"
	StatusLoading    RunStatus = "loading"
	StatusRendering  RunStatus = "rendering"
	StatusPersisting RunStatus = "persisting"
	StatusDone       RunStatus = "done"
	StatusFailed     RunStatus = "failed"
)

// Run tracks the state of a single conversion.
type Run struct {
	mu sync.Mutex

	ID     string    `json:"run_id"`
	Status RunStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	errors []string
}

// Progress tracks how far a run has got.
type Progress struct {
	Loaded    int      `json:"loaded"`
	Limit     int      `json:"limit"`
	Processed int      `json:"processed"`
	Errors    []string `json:"errors"`
}

func NewRun() *Run {
	now := time.Now()
	return &Run{
		ID:        uuid.NewString(),
		Status:    StatusIdle,
		Phase:     "idle",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetStatus updates run status atomically.
func (r *Run) SetStatus(status RunStatus, phase string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = status
	r.Phase = phase
	r.UpdatedAt = time.Now()
}

// Fail records err and moves the run to StatusFailed.
func (r *Run) Fail(phase string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err.Error())
	r.Progress.Errors = r.errors
	r.Status = StatusFailed
	r.Phase = phase
	r.UpdatedAt = time.Now()
}

// SetLoaded records the number of loaded records and the page limit.
func (r *Run) SetLoaded(loaded, limit int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Progress.Loaded = loaded
	r.Progress.Limit = limit
	r.UpdatedAt = time.Now()
}

// IncrProcessed atomically increments the processed page count.
func (r *Run) IncrProcessed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Progress.Processed++
	r.UpdatedAt = time.Now()
}

// RunSnapshot is a read-only, JSON-safe copy of run state.
type RunSnapshot struct {
	ID       string    `json:"run_id"`
	Status   RunStatus `json:"status"`
	Phase    string    `json:"phase"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the run state.
func (r *Run) Snapshot() RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	errs := r.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return RunSnapshot{
		ID:     r.ID,
		Status: r.Status,
		Phase:  r.Phase,
		Progress: Progress{
			Loaded:    r.Progress.Loaded,
			Limit:     r.Progress.Limit,
			Processed: r.Progress.Processed,
			Errors:    errs,
		},
	}
}

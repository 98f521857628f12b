// Package tracking reports ingestion progress to pluggable sinks.
package tracking

import (
	"context"
	"sync"

	"github.com/helixml/moviesearch/domain/task"
)

// Reporter receives status changes.
type Reporter interface {
	OnChange(ctx context.Context, status task.Status) error
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ctx context.Context, status task.Status) error

// OnChange calls f.
func (f ReporterFunc) OnChange(ctx context.Context, status task.Status) error {
	return f(ctx, status)
}

// Recorder keeps every status it receives. Safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	statuses []task.Status
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// OnChange records the status.
func (r *Recorder) OnChange(_ context.Context, status task.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
	return nil
}

// Statuses returns a copy of the recorded statuses in arrival order.
func (r *Recorder) Statuses() []task.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]task.Status, len(r.statuses))
	copy(out, r.statuses)
	return out
}

// Last returns the most recent status recorded for op.
func (r *Recorder) Last(op task.Operation) (task.Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.statuses) - 1; i >= 0; i-- {
		if r.statuses[i].Operation() == op {
			return r.statuses[i], true
		}
	}
	return task.Status{}, false
}

package tracking

import (
	"context"
	"log/slog"
	"sync"

	"github.com/helixml/moviesearch/domain/task"
)

// Tracker owns one operation's Status and publishes every change to its
// reporters.
type Tracker struct {
	mu        sync.RWMutex
	status    task.Status
	reporters []Reporter
	logger    *slog.Logger
}

// NewTracker creates a root tracker for operation.
func NewTracker(operation task.Operation, logger *slog.Logger, reporters ...Reporter) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		status:    task.NewStatus(operation, nil),
		reporters: reporters,
		logger:    logger,
	}
}

// Status returns the current snapshot.
func (t *Tracker) Status() task.Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Start announces the operation.
func (t *Tracker) Start(ctx context.Context) {
	t.update(ctx, func(s task.Status) task.Status { return s })
}

// SetTotal sets the expected item count.
func (t *Tracker) SetTotal(ctx context.Context, total int) {
	t.update(ctx, func(s task.Status) task.Status { return s.SetTotal(total) })
}

// SetCurrent records the number of items processed so far.
func (t *Tracker) SetCurrent(ctx context.Context, current int, message string) {
	t.update(ctx, func(s task.Status) task.Status { return s.SetCurrent(current, message) })
}

// Fail marks the operation failed with err.
func (t *Tracker) Fail(ctx context.Context, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	t.update(ctx, func(s task.Status) task.Status { return s.Fail(msg) })
}

// Complete marks the operation completed.
func (t *Tracker) Complete(ctx context.Context) {
	t.update(ctx, func(s task.Status) task.Status { return s.Complete() })
}

// Child starts a tracker for a sub-operation sharing this tracker's reporters.
func (t *Tracker) Child(ctx context.Context, operation task.Operation) *Tracker {
	t.mu.RLock()
	parent := t.status
	reporters := append([]Reporter(nil), t.reporters...)
	t.mu.RUnlock()

	child := &Tracker{
		status:    task.NewStatus(operation, &parent),
		reporters: reporters,
		logger:    t.logger,
	}
	child.Start(ctx)
	return child
}

func (t *Tracker) update(ctx context.Context, fn func(task.Status) task.Status) {
	t.mu.Lock()
	t.status = fn(t.status)
	status := t.status
	reporters := append([]Reporter(nil), t.reporters...)
	t.mu.Unlock()

	for _, r := range reporters {
		if err := r.OnChange(ctx, status); err != nil {
			// A broken sink must not abort ingestion.
			t.logger.Warn("progress reporter failed",
				slog.String("operation", status.Operation().String()),
				slog.String("error", err.Error()),
			)
		}
	}
}

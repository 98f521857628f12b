package tracking

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/helixml/moviesearch/domain/task"
)

var (
	_ Reporter  = (*Cooldown)(nil)
	_ io.Closer = (*Cooldown)(nil)
)

// Cooldown limits how often in-progress updates reach the wrapped reporter.
// Started and terminal statuses always pass through. An in-progress update
// arriving inside the interval is held; the held update is dropped when a
// terminal status for the same operation supersedes it and flushed on Close.
type Cooldown struct {
	inner    Reporter
	interval time.Duration
	now      func() time.Time

	mu    sync.Mutex
	last  map[task.Operation]time.Time
	held  map[task.Operation]task.Status
	order []task.Operation
}

// NewCooldown wraps inner. A non-positive interval disables throttling.
func NewCooldown(inner Reporter, interval time.Duration) *Cooldown {
	return &Cooldown{
		inner:    inner,
		interval: interval,
		now:      time.Now,
		last:     make(map[task.Operation]time.Time),
		held:     make(map[task.Operation]task.Status),
	}
}

// OnChange forwards or holds the status.
func (c *Cooldown) OnChange(ctx context.Context, status task.Status) error {
	op := status.Operation()

	c.mu.Lock()
	if status.State() != task.ReportingStateInProgress || c.interval <= 0 {
		delete(c.held, op)
		c.last[op] = c.now()
		c.mu.Unlock()
		return c.inner.OnChange(ctx, status)
	}

	now := c.now()
	if now.Sub(c.last[op]) < c.interval {
		if _, ok := c.held[op]; !ok {
			c.order = append(c.order, op)
		}
		c.held[op] = status
		c.mu.Unlock()
		return nil
	}
	delete(c.held, op)
	c.last[op] = now
	c.mu.Unlock()
	return c.inner.OnChange(ctx, status)
}

// Close delivers held updates in the order their operations first waited.
func (c *Cooldown) Close() error {
	c.mu.Lock()
	var pending []task.Status
	for _, op := range c.order {
		if s, ok := c.held[op]; ok {
			pending = append(pending, s)
		}
	}
	c.held = make(map[task.Operation]task.Status)
	c.order = nil
	c.mu.Unlock()

	for _, s := range pending {
		if err := c.inner.OnChange(context.Background(), s); err != nil {
			return err
		}
	}
	return nil
}

package task

import (
	"time"
)

// ReportingState represents the state of a stage.
type ReportingState string

// ReportingState values.
const (
	ReportingStateStarted    ReportingState = "started"
	ReportingStateInProgress ReportingState = "in_progress"
	ReportingStateCompleted  ReportingState = "completed"
	ReportingStateFailed     ReportingState = "failed"
)

// IsTerminal returns true if the state is final.
func (s ReportingState) IsTerminal() bool {
	return s == ReportingStateCompleted || s == ReportingStateFailed
}

// Status is an immutable progress snapshot for one operation.
type Status struct {
	state        ReportingState
	operation    Operation
	message      string
	createdAt    time.Time
	updatedAt    time.Time
	total        int
	current      int
	errorMessage string
	parent       *Status
}

// NewStatus creates a started Status for the given operation.
func NewStatus(operation Operation, parent *Status) Status {
	now := time.Now().UTC()
	return Status{
		operation: operation,
		parent:    parent,
		state:     ReportingStateStarted,
		createdAt: now,
		updatedAt: now,
	}
}

// ID identifies the status; one status exists per operation in a run.
func (s Status) ID() string { return string(s.operation) }

// State returns the current state.
func (s Status) State() ReportingState { return s.state }

// Operation returns the operation.
func (s Status) Operation() Operation { return s.operation }

// Message returns the status message.
func (s Status) Message() string { return s.message }

// CreatedAt returns when the operation started.
func (s Status) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt returns when the status last changed.
func (s Status) UpdatedAt() time.Time { return s.updatedAt }

// Total returns the expected item count, or 0 if unknown.
func (s Status) Total() int { return s.total }

// Current returns the number of items processed.
func (s Status) Current() int { return s.current }

// Error returns the error message if failed.
func (s Status) Error() string { return s.errorMessage }

// Parent returns the parent status.
func (s Status) Parent() *Status { return s.parent }

// Elapsed returns the time between start and the last update.
func (s Status) Elapsed() time.Duration { return s.updatedAt.Sub(s.createdAt) }

// Rate returns processed items per second, or 0 before any time has passed.
func (s Status) Rate() float64 {
	secs := s.Elapsed().Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.current) / secs
}

// CompletionPercent returns progress clamped to [0, 100], or 0 when the
// total is unknown.
func (s Status) CompletionPercent() float64 {
	if s.total == 0 {
		return 0.0
	}
	percent := float64(s.current) / float64(s.total) * 100.0
	return min(max(percent, 0), 100)
}

// Fail marks the operation as failed.
func (s Status) Fail(errorMsg string) Status {
	s.state = ReportingStateFailed
	s.errorMessage = errorMsg
	s.updatedAt = time.Now().UTC()
	return s
}

// SetTotal sets the expected item count.
func (s Status) SetTotal(total int) Status {
	s.total = total
	s.updatedAt = time.Now().UTC()
	return s
}

// SetCurrent records progress and, when non-empty, a new message.
func (s Status) SetCurrent(current int, message string) Status {
	s.state = ReportingStateInProgress
	s.current = current
	if message != "" {
		s.message = message
	}
	s.updatedAt = time.Now().UTC()
	return s
}

// Complete marks the operation as completed. Terminal statuses are unchanged.
// When a total is known, current is raised to it.
func (s Status) Complete() Status {
	if s.state.IsTerminal() {
		return s
	}
	s.state = ReportingStateCompleted
	if s.total > 0 {
		s.current = s.total
	}
	s.updatedAt = time.Now().UTC()
	return s
}

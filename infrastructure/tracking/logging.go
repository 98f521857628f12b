package tracking

import (
	"context"
	"log/slog"

	"github.com/helixml/moviesearch/domain/task"
)

// LoggingReporter writes each status change as a structured log line.
type LoggingReporter struct {
	logger *slog.Logger
}

// NewLoggingReporter creates a new LoggingReporter.
func NewLoggingReporter(logger *slog.Logger) *LoggingReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingReporter{logger: logger}
}

// OnChange logs the status. Failures log at error level.
func (r *LoggingReporter) OnChange(ctx context.Context, status task.Status) error {
	attrs := []slog.Attr{
		slog.String("stage", status.Operation().Stage()),
		slog.String("state", string(status.State())),
		slog.Int("processed", status.Current()),
	}
	if status.Total() > 0 {
		attrs = append(attrs,
			slog.Int("total", status.Total()),
			slog.Float64("completion_percent", status.CompletionPercent()),
		)
	}
	if status.Message() != "" {
		attrs = append(attrs, slog.String("detail", status.Message()))
	}

	if status.State() == task.ReportingStateFailed {
		attrs = append(attrs, slog.String("error", status.Error()))
		r.logger.LogAttrs(ctx, slog.LevelError, status.Operation().String(), attrs...)
		return nil
	}
	if status.State().IsTerminal() {
		attrs = append(attrs,
			slog.Duration("elapsed", status.Elapsed()),
			slog.Float64("rows_per_second", status.Rate()),
		)
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, status.Operation().String(), attrs...)
	return nil
}

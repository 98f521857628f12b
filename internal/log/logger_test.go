package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/helixml/moviesearch/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var data map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &data), "line is not JSON: %s", line)
		out = append(out, data)
	}
	return out
}

func TestNewLogger(t *testing.T) {
	for _, format := range []config.LogFormat{config.LogFormatPretty, config.LogFormatJSON} {
		cfg := config.NewAppConfigWithOptions(config.WithLogLevel("INFO"), config.WithLogFormat(format))
		l := NewLogger(cfg)
		require.NotNil(t, l)
		assert.NotNil(t, l.Slog())
		assert.NotNil(t, l.Handler())
	}
}

func TestLogger_LogLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&buf, config.LogFormatJSON, "DEBUG")

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 4)
	assert.Equal(t, "DEBUG", lines[0]["level"])
	assert.Equal(t, "ERROR", lines[3]["level"])
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&buf, config.LogFormatJSON, "WARN")

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["msg"])
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO").With("component", "ingest")

	l.Info("loading movies")

	lines := decodeLines(t, &buf)
	assert.Equal(t, "ingest", lines[0]["component"])
}

func TestLogger_ContextIDs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	ctx := WithCorrelationID(context.Background(), "run-123")
	ctx = WithRequestID(ctx, "req-456")
	l.InfoContext(ctx, "search")

	lines := decodeLines(t, &buf)
	assert.Equal(t, "run-123", lines[0]["correlation_id"])
	assert.Equal(t, "req-456", lines[0]["request_id"])
}

func TestLogger_ContextIDsReachPlainSlog(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	ctx := WithCorrelationID(context.Background(), "run-789")
	l.Slog().With("component", "api").InfoContext(ctx, "request")

	lines := decodeLines(t, &buf)
	assert.Equal(t, "run-789", lines[0]["correlation_id"])
	assert.Equal(t, "api", lines[0]["component"])
}

func TestLogger_NoContextIDs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	l.InfoContext(context.Background(), "plain")

	lines := decodeLines(t, &buf)
	assert.NotContains(t, lines[0], "correlation_id")
	assert.NotContains(t, lines[0], "request_id")
}

func TestNewCorrelationID(t *testing.T) {
	id := NewCorrelationID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, NewCorrelationID())

	ctx := WithNewCorrelationID(context.Background())
	assert.NotEmpty(t, CorrelationID(ctx))
}

func TestContextIDs_NotSet(t *testing.T) {
	assert.Equal(t, "", CorrelationID(context.Background()))
	assert.Equal(t, "", RequestID(context.Background()))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.input), tt.input)
	}
}

func TestConfigure(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	cfg := config.NewAppConfigWithOptions(config.WithLogLevel("DEBUG"), config.WithLogFormat(config.LogFormatJSON))
	l := Configure(cfg)

	assert.Same(t, l, Default())
	assert.Same(t, l.Slog(), slog.Default())
}

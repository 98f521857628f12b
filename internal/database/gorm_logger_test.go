package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func captureLogger(level slog.Level) (gormLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})
	return newGormLogger(slog.New(h)), &buf
}

func TestGormLogger_DebugSuppressedAboveDebug(t *testing.T) {
	l, buf := captureLogger(slog.LevelInfo)
	called := false

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		called = true
		return "SELECT 1", 1
	}, nil)

	assert.False(t, called, "sql callback skipped when debug is off")
	assert.Empty(t, buf.String())
}

func TestGormLogger_DebugEmitted(t *testing.T) {
	l, buf := captureLogger(slog.LevelDebug)

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)

	assert.Contains(t, buf.String(), "gorm query")
	assert.Contains(t, buf.String(), "SELECT 1")
}

func TestGormLogger_RecordNotFoundIsNotError(t *testing.T) {
	l, buf := captureLogger(slog.LevelInfo)

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, gorm.ErrRecordNotFound)

	assert.Empty(t, buf.String())
}

func TestGormLogger_ErrorAndSlow(t *testing.T) {
	l, buf := captureLogger(slog.LevelWarn)

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "INSERT", 0 }, errors.New("disk full"))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "disk full")

	buf.Reset()
	l.Trace(context.Background(), time.Now().Add(-3*time.Second), func() (string, int64) { return "SELECT", 9 }, nil)
	assert.Contains(t, buf.String(), "slow gorm query")
}

func TestTruncateSQL(t *testing.T) {
	short := "SELECT movie_id FROM movies"
	assert.Equal(t, short, truncateSQL(short))

	long := "SELECT " + strings.Repeat("x", 500)
	got := truncateSQL(long)
	assert.LessOrEqual(t, len(got), maxSQLLength)
	assert.Contains(t, got, "...")
	assert.True(t, strings.HasPrefix(got, "SELECT "))
}

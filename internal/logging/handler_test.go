// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/evops/internal/model"
	"github.com/olegiv/evops/internal/store"
	"github.com/olegiv/evops/internal/testutil"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func newTestLogger(t *testing.T, level slog.Level) (*slog.Logger, *store.Queries) {
	t.Helper()
	q := store.New(testutil.MemoryDB(t))
	return slog.New(NewActivityLogHandlerWithLevel(discardHandler{}, q, level)), q
}

func recent(t *testing.T, q *store.Queries) []store.Activity {
	t.Helper()
	entries, err := q.ListRecentActivity(context.Background(), 10)
	require.NoError(t, err)
	return entries
}

func TestActivityLogHandler_Levels(t *testing.T) {
	logger, q := newTestLogger(t, slog.LevelWarn)

	logger.Debug("processing request", "request_id", "abc123")
	logger.Info("server started", "port", 8080)
	logger.Warn("slow query detected", "duration_ms", 5000)
	logger.Error("database connection failed", "host", "localhost")

	entries := recent(t, q)
	require.Len(t, entries, 2)
	assert.Equal(t, model.ActivityLevelError, entries[0].Level)
	assert.Equal(t, "database connection failed", entries[0].Message)
	assert.Equal(t, model.ActivityLevelWarning, entries[1].Level)
	assert.Equal(t, "slow query detected", entries[1].Message)
}

func TestActivityLogHandler_CustomLevel(t *testing.T) {
	logger, q := newTestLogger(t, slog.LevelInfo)

	logger.Info("server started", "port", 8080)
	logger.Debug("ignored")

	entries := recent(t, q)
	require.Len(t, entries, 1)
	assert.Equal(t, model.ActivityLevelInfo, entries[0].Level)
}

func TestActivityLogHandler_Category(t *testing.T) {
	tests := []struct {
		msg   string
		attrs []any
		want  string
	}{
		{"anything", []any{"category", model.ActivityCategoryCache}, model.ActivityCategoryCache},
		{"event partially provisioned", []any{"job_id", "20260227-SI-01"}, model.ActivityCategoryEvent},
		{"rollback failed", []any{"job_id", "20260227-SI-01"}, model.ActivityCategoryEvent},
		{"status update failed", []any{"assignment_id", 3}, model.ActivityCategoryAssignment},
		{"item creation failed", nil, model.ActivityCategoryInventory},
		{"consistency audit finding", []any{"kind", "x"}, model.ActivityCategoryAudit},
		{"disk full", nil, model.ActivityCategorySystem},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			logger, q := newTestLogger(t, slog.LevelWarn)
			logger.Warn(tt.msg, tt.attrs...)

			entries := recent(t, q)
			require.Len(t, entries, 1)
			assert.Equal(t, tt.want, entries[0].Category)
		})
	}
}

func TestActivityLogHandler_Metadata(t *testing.T) {
	logger, q := newTestLogger(t, slog.LevelWarn)

	logger.With("component", "provisioner").
		WithGroup("run").
		Warn("event partially provisioned",
			"job_id", "20260227-SI-01",
			"attempt", 2,
			"error", errors.New("venue insert failed"),
			"category", model.ActivityCategoryEvent,
		)

	entries := recent(t, q)
	require.Len(t, entries, 1)

	var meta map[string]any
	require.NoError(t, json.Unmarshal([]byte(entries[0].Metadata), &meta))
	assert.Equal(t, "provisioner", meta["component"])
	assert.Equal(t, "20260227-SI-01", meta["run.job_id"])
	assert.EqualValues(t, 2, meta["run.attempt"])
	assert.Equal(t, "venue insert failed", meta["run.error"])
	assert.NotContains(t, meta, "category")
	assert.Equal(t, model.ActivityCategoryEvent, entries[0].Category)
}

func TestActivityLogHandler_EmptyMetadata(t *testing.T) {
	logger, q := newTestLogger(t, slog.LevelWarn)
	logger.Warn("disk full")

	entries := recent(t, q)
	require.Len(t, entries, 1)
	assert.Equal(t, "{}", entries[0].Metadata)
}

func TestActivityLogHandler_CancelledContext(t *testing.T) {
	logger, q := newTestLogger(t, slog.LevelWarn)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	logger.WarnContext(ctx, "request aborted mid-rollback")

	assert.Len(t, recent(t, q), 1)
}

type failingWriter struct{}

func (failingWriter) CreateActivity(context.Context, store.CreateActivityParams) (int64, error) {
	return 0, errors.New("database is locked")
}

func TestActivityLogHandler_WriteFailureIgnored(t *testing.T) {
	h := NewActivityLogHandler(discardHandler{}, failingWriter{})
	r := slog.NewRecord(testutil.Date(2026, 2, 27), slog.LevelError, "boom", 0)
	assert.NoError(t, h.Handle(context.Background(), r))
}

func TestActivityLogHandler_Enabled(t *testing.T) {
	inner := slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError})
	h := NewActivityLogHandler(inner, failingWriter{})

	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

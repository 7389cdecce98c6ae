// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that mirrors warnings and errors
// into the persisted activity log, so that failed provisioning runs and audit
// findings outlive the process output.
package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/olegiv/evops/internal/model"
	"github.com/olegiv/evops/internal/store"
)

// CategoryKey is the attribute that sets an activity entry's category explicitly.
const CategoryKey = "category"

// ActivityWriter persists activity entries.
type ActivityWriter interface {
	CreateActivity(ctx context.Context, arg store.CreateActivityParams) (int64, error)
}

// ActivityLogHandler is a slog.Handler that forwards every record to an inner
// handler and also writes records at or above its level to the activity log.
type ActivityLogHandler struct {
	inner  slog.Handler
	writer ActivityWriter
	level  slog.Level
	attrs  []slog.Attr // accumulated through WithAttrs
	group  string
}

// NewActivityLogHandler wraps inner, persisting WARN and above through w.
func NewActivityLogHandler(inner slog.Handler, w ActivityWriter) *ActivityLogHandler {
	return NewActivityLogHandlerWithLevel(inner, w, slog.LevelWarn)
}

// NewActivityLogHandlerWithLevel wraps inner with a custom persistence threshold.
func NewActivityLogHandlerWithLevel(inner slog.Handler, w ActivityWriter, level slog.Level) *ActivityLogHandler {
	return &ActivityLogHandler{inner: inner, writer: w, level: level}
}

// Enabled implements slog.Handler.
func (h *ActivityLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level || h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ActivityLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.inner.Enabled(ctx, r.Level) {
		if err := h.inner.Handle(ctx, r); err != nil {
			return err
		}
	}
	if r.Level >= h.level {
		h.persist(ctx, r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *ActivityLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	c.inner = h.inner.WithAttrs(attrs)
	for _, a := range attrs {
		c.attrs = append(c.attrs, h.qualify(a))
	}
	return c
}

// WithGroup implements slog.Handler.
func (h *ActivityLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.inner = h.inner.WithGroup(name)
	if c.group != "" {
		c.group += "." + name
	} else {
		c.group = name
	}
	return c
}

func (h *ActivityLogHandler) clone() *ActivityLogHandler {
	c := *h
	c.attrs = append([]slog.Attr(nil), h.attrs...)
	return &c
}

func (h *ActivityLogHandler) qualify(a slog.Attr) slog.Attr {
	if h.group == "" || a.Key == CategoryKey {
		return a
	}
	return slog.Attr{Key: h.group + "." + a.Key, Value: a.Value}
}

// persist writes r to the activity log. Write errors are dropped: the record
// already reached the inner handler.
func (h *ActivityLogHandler) persist(ctx context.Context, r slog.Record) {
	attrs := append([]slog.Attr(nil), h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.qualify(a))
		return true
	})

	_, _ = h.writer.CreateActivity(context.WithoutCancel(ctx), store.CreateActivityParams{
		Level:     activityLevel(r.Level),
		Category:  category(r.Message, attrs),
		Message:   r.Message,
		Metadata:  metadata(attrs),
		CreatedAt: r.Time,
	})
}

func activityLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.ActivityLevelError
	case level >= slog.LevelWarn:
		return model.ActivityLevelWarning
	default:
		return model.ActivityLevelInfo
	}
}

// category returns the explicit category attribute, or infers one from the
// attribute keys and message.
func category(msg string, attrs []slog.Attr) string {
	keys := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		if a.Key == CategoryKey {
			return a.Value.String()
		}
		keys[a.Key] = true
	}

	msg = strings.ToLower(msg)
	switch {
	case keys["assignment_id"] || strings.Contains(msg, "assign"):
		return model.ActivityCategoryAssignment
	case keys["job_id"] || strings.Contains(msg, "provision") || strings.Contains(msg, "event"):
		return model.ActivityCategoryEvent
	case keys["asset_code"] || keys["item_id"] || strings.Contains(msg, "item"):
		return model.ActivityCategoryInventory
	case strings.Contains(msg, "audit") || strings.Contains(msg, "consistency"):
		return model.ActivityCategoryAudit
	case strings.Contains(msg, "cache"):
		return model.ActivityCategoryCache
	default:
		return model.ActivityCategorySystem
	}
}

func metadata(attrs []slog.Attr) string {
	m := make(map[string]any, len(attrs))
	for _, a := range attrs {
		if a.Key == CategoryKey {
			continue
		}
		v := a.Value.Resolve()
		switch v.Kind() {
		case slog.KindString, slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindBool:
			m[a.Key] = v.Any()
		default:
			m[a.Key] = v.String()
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}

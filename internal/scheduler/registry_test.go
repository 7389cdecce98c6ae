// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
)

func newTestRegistry() *Registry {
	return NewRegistry(cron.New(), slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)})), time.Second)
}

func TestRegistry_AddAndList(t *testing.T) {
	r := newTestRegistry()
	noop := func(context.Context) error { return nil }

	if err := r.Add("zeta", "last", "@hourly", noop); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Add("alpha", "first", "*/5 * * * *", noop); err != nil {
		t.Fatalf("Add: %v", err)
	}

	jobs := r.List()
	if len(jobs) != 2 {
		t.Fatalf("len(List()) = %d, want 2", len(jobs))
	}
	if jobs[0].Name != "alpha" || jobs[1].Name != "zeta" {
		t.Errorf("List() order = %s, %s; want alpha, zeta", jobs[0].Name, jobs[1].Name)
	}
	if jobs[0].Description != "first" || jobs[0].Schedule != "*/5 * * * *" {
		t.Errorf("alpha = %+v", jobs[0])
	}
}

func TestRegistry_AddReplaces(t *testing.T) {
	r := newTestRegistry()
	noop := func(context.Context) error { return nil }

	_ = r.Add("audit", "", "@hourly", noop)
	_ = r.Add("audit", "", "@daily", noop)

	if got := len(r.cron.Entries()); got != 1 {
		t.Errorf("cron entries = %d, want 1", got)
	}
	if got := r.List()[0].Schedule; got != "@daily" {
		t.Errorf("Schedule = %q, want @daily", got)
	}
}

func TestRegistry_AddInvalid(t *testing.T) {
	r := newTestRegistry()
	if err := r.Add("bad", "", "61 * * * *", func(context.Context) error { return nil }); err == nil {
		t.Error("Add() with invalid expression should fail")
	}
	if len(r.List()) != 0 {
		t.Error("invalid job should not be registered")
	}
}

func TestRegistry_TriggerNow(t *testing.T) {
	r := newTestRegistry()
	calls := 0
	var deadline bool
	_ = r.Add("audit", "", "@hourly", func(ctx context.Context) error {
		calls++
		_, deadline = ctx.Deadline()
		return errors.New("audit failed")
	})

	err := r.TriggerNow(context.Background(), "audit")
	if err == nil || err.Error() != "audit failed" {
		t.Errorf("TriggerNow() error = %v, want audit failed", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !deadline {
		t.Error("job context should carry the registry timeout")
	}

	if err := r.TriggerNow(context.Background(), "missing"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("TriggerNow(missing) = %v, want ErrJobNotFound", err)
	}
}

func TestRegistry_UpdateSchedule(t *testing.T) {
	r := newTestRegistry()
	_ = r.Add("audit", "", "@hourly", func(context.Context) error { return nil })

	if err := r.UpdateSchedule("audit", "not cron"); err == nil {
		t.Error("UpdateSchedule() with invalid expression should fail")
	}
	if got := r.List()[0].Schedule; got != "@hourly" {
		t.Errorf("Schedule after failed update = %q, want @hourly", got)
	}

	if err := r.UpdateSchedule("audit", "*/10 * * * *"); err != nil {
		t.Fatalf("UpdateSchedule: %v", err)
	}
	if got := r.List()[0].Schedule; got != "*/10 * * * *" {
		t.Errorf("Schedule = %q", got)
	}
	if got := len(r.cron.Entries()); got != 1 {
		t.Errorf("cron entries = %d, want 1", got)
	}

	if err := r.UpdateSchedule("missing", "@daily"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("UpdateSchedule(missing) = %v, want ErrJobNotFound", err)
	}
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs: the assignment
// consistency audit and activity log retention.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/evops/internal/clock"
	"github.com/olegiv/evops/internal/model"
	"github.com/olegiv/evops/internal/store"
)

// Job names
const (
	JobConsistencyAudit  = "consistency_audit"
	JobActivityRetention = "activity_retention"
)

// DefaultRetentionSchedule prunes the activity log once a day.
const DefaultRetentionSchedule = "@daily"

const jobTimeout = 2 * time.Minute

// Store is what the maintenance jobs read and prune.
type Store interface {
	ListStatusFindings(ctx context.Context) ([]store.StatusFinding, error)
	DeleteActivityBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Options configures which jobs Start registers.
type Options struct {
	// AuditSchedule is a cron expression; empty disables the audit job.
	AuditSchedule string
	// Retention is the activity log window; zero disables pruning.
	Retention         time.Duration
	RetentionSchedule string
	Clock             clock.Clock
}

// Scheduler owns the cron instance and the maintenance jobs.
type Scheduler struct {
	store    Store
	cron     *cron.Cron
	registry *Registry
	logger   *slog.Logger
	opts     Options
}

// New creates a new scheduler instance.
func New(s Store, logger *slog.Logger, opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = clock.NewSystem(nil)
	}
	if opts.RetentionSchedule == "" {
		opts.RetentionSchedule = DefaultRetentionSchedule
	}
	c := cron.New()
	return &Scheduler{
		store:    s,
		cron:     c,
		registry: NewRegistry(c, logger, jobTimeout),
		logger:   logger,
		opts:     opts,
	}
}

// Jobs returns the registry of scheduled jobs.
func (s *Scheduler) Jobs() *Registry {
	return s.registry
}

// Start registers the enabled jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.opts.AuditSchedule != "" {
		err := s.registry.Add(JobConsistencyAudit,
			"Reports items whose status contradicts their assignment",
			s.opts.AuditSchedule,
			func(ctx context.Context) error {
				_, err := s.Audit(ctx)
				return err
			})
		if err != nil {
			return err
		}
	}

	if s.opts.Retention > 0 {
		err := s.registry.Add(JobActivityRetention,
			"Deletes activity log entries past the retention window",
			s.opts.RetentionSchedule,
			func(ctx context.Context) error {
				_, err := s.PruneActivity(ctx)
				return err
			})
		if err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Audit lists status/assignment contradictions and logs each one as a warning.
func (s *Scheduler) Audit(ctx context.Context) ([]store.StatusFinding, error) {
	findings, err := s.store.ListStatusFindings(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing status findings: %w", err)
	}

	for _, f := range findings {
		s.logger.WarnContext(ctx, "consistency audit finding",
			"category", model.ActivityCategoryAudit,
			"kind", f.Kind,
			"item_id", f.ItemID,
			"asset_code", f.AssetCode,
			"status", f.Status,
			"event_id", f.EventID,
		)
	}
	if len(findings) > 0 {
		s.logger.InfoContext(ctx, "consistency audit complete", "findings", len(findings))
	}
	return findings, nil
}

// PruneActivity deletes activity log entries older than the retention window.
func (s *Scheduler) PruneActivity(ctx context.Context) (int64, error) {
	if s.opts.Retention <= 0 {
		return 0, nil
	}
	cutoff := s.opts.Clock.Now().Add(-s.opts.Retention)
	n, err := s.store.DeleteActivityBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning activity log: %w", err)
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "pruned activity log", "deleted", n, "cutoff", cutoff)
	}
	return n, nil
}

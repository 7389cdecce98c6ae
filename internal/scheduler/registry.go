// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrJobNotFound is returned for operations on an unregistered job name.
var ErrJobNotFound = errors.New("job not found")

// JobFunc is the body of a scheduled job.
type JobFunc func(ctx context.Context) error

// registeredJob holds metadata about a registered cron job.
type registeredJob struct {
	name        string
	description string
	schedule    string
	entryID     cron.EntryID
	run         JobFunc
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Schedule    string    `json:"schedule"`
	LastRun     time.Time `json:"last_run"`
	NextRun     time.Time `json:"next_run"`
}

// Registry tracks the jobs added to a cron instance so they can be listed,
// rescheduled and triggered by name.
type Registry struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
	mu      sync.RWMutex
	jobs    map[string]*registeredJob
}

// NewRegistry creates a registry over c. Every run gets a context bounded by timeout.
func NewRegistry(c *cron.Cron, logger *slog.Logger, timeout time.Duration) *Registry {
	return &Registry{
		cron:    c,
		logger:  logger,
		timeout: timeout,
		jobs:    make(map[string]*registeredJob),
	}
}

// Add schedules run under name. Adding an existing name replaces its schedule.
func (r *Registry) Add(name, description, schedule string, run JobFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job := &registeredJob{name: name, description: description, run: run}
	id, err := r.cron.AddFunc(schedule, func() { r.execute(job) })
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", schedule, err)
	}
	if old, ok := r.jobs[name]; ok {
		r.cron.Remove(old.entryID)
	}
	job.schedule = schedule
	job.entryID = id
	r.jobs[name] = job

	r.logger.Debug("registered scheduled job", "name", name, "schedule", schedule)
	return nil
}

// List returns all registered jobs sorted by name.
func (r *Registry) List() []JobInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]JobInfo, 0, len(r.jobs))
	for _, job := range r.jobs {
		entry := r.cron.Entry(job.entryID)
		result = append(result, JobInfo{
			Name:        job.name,
			Description: job.description,
			Schedule:    job.schedule,
			LastRun:     entry.Prev,
			NextRun:     entry.Next,
		})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// TriggerNow runs a job immediately on the caller's goroutine.
func (r *Registry) TriggerNow(ctx context.Context, name string) error {
	r.mu.RLock()
	job, ok := r.jobs[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	r.logger.Info("manually triggering job", "name", name)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return job.run(ctx)
}

// UpdateSchedule moves a job to a new cron expression. The old entry stays in
// place when the new expression does not parse.
func (r *Registry) UpdateSchedule(name, schedule string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	id, err := r.cron.AddFunc(schedule, func() { r.execute(job) })
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", schedule, err)
	}
	r.cron.Remove(job.entryID)
	job.entryID = id
	job.schedule = schedule

	r.logger.Info("updated job schedule", "name", name, "schedule", schedule)
	return nil
}

func (r *Registry) execute(job *registeredJob) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	if err := job.run(ctx); err != nil {
		r.logger.Error("scheduled job failed", "name", job.name, "error", err)
		return
	}
	r.logger.Debug("scheduled job finished", "name", job.name, "duration", time.Since(start))
}

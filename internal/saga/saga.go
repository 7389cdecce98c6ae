// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package saga runs ordered write steps without a database transaction and
// undoes completed steps with compensating actions when a later step fails.
//
// A step marked as the pivot commits the saga: once it succeeds, failures of
// later steps are reported but nothing is compensated.
package saga

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultCompensationTimeout bounds how long compensations may run after the
// caller's context is gone.
const DefaultCompensationTimeout = 10 * time.Second

// Step is one forward action of a saga.
type Step struct {
	Name string
	Do   func(ctx context.Context) error
	// Compensate undoes Do. Nil means the step is not rolled back.
	Compensate func(ctx context.Context) error
	// Pivot marks the point of no return.
	Pivot bool
}

// StepError reports a forward step that failed.
type StepError struct {
	Step      string
	Completed []string
	// Committed is true when a pivot had already succeeded and the
	// completed steps were kept.
	Committed bool
	// Compensated lists the steps that were rolled back.
	Compensated []string
	Err         error
}

func (e *StepError) Error() string {
	if e.Committed {
		return fmt.Sprintf("step %q failed after commit: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// CompensationError reports a forward failure whose rollback also failed.
// The store may hold orphaned rows from the steps listed in Failed.
type CompensationError struct {
	Step            string
	Err             error
	Failed          []string
	CompensationErr error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("step %q failed: %v; compensating %v failed: %v", e.Step, e.Err, e.Failed, e.CompensationErr)
}

func (e *CompensationError) Unwrap() error { return e.Err }

// Saga is an ordered list of steps.
type Saga struct {
	name    string
	steps   []Step
	logger  *slog.Logger
	timeout time.Duration
}

// New creates an empty saga. name is used in log records.
func New(name string, logger *slog.Logger) *Saga {
	if logger == nil {
		logger = slog.Default()
	}
	return &Saga{name: name, logger: logger, timeout: DefaultCompensationTimeout}
}

// Then appends a step.
func (s *Saga) Then(step Step) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// WithCompensationTimeout overrides DefaultCompensationTimeout.
func (s *Saga) WithCompensationTimeout(d time.Duration) *Saga {
	s.timeout = d
	return s
}

// Run executes the steps in order. On failure before the pivot it runs the
// compensations of completed steps in reverse order, on a context detached
// from ctx's cancellation, and waits for them before returning.
// It returns nil, a *StepError or a *CompensationError.
func (s *Saga) Run(ctx context.Context) error {
	var completed []string
	var undo []Step
	committed := false

	for _, step := range s.steps {
		err := ctx.Err()
		if err == nil {
			err = step.Do(ctx)
		}
		if err != nil {
			if committed {
				s.logger.Warn("saga step failed after commit",
					"saga", s.name, "step", step.Name, "completed", completed, "error", err)
				return &StepError{Step: step.Name, Completed: completed, Committed: true, Err: err}
			}
			return s.compensate(ctx, step.Name, completed, undo, err)
		}

		completed = append(completed, step.Name)
		if step.Pivot {
			committed = true
			undo = nil
			continue
		}
		if step.Compensate != nil {
			undo = append(undo, step)
		}
	}
	return nil
}

func (s *Saga) compensate(ctx context.Context, failed string, completed []string, undo []Step, cause error) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	var compensated, broken []string
	var errs []error
	for i := len(undo) - 1; i >= 0; i-- {
		step := undo[i]
		if err := step.Compensate(cctx); err != nil {
			s.logger.Error("saga compensation failed",
				"saga", s.name, "step", step.Name, "cause", cause, "error", err)
			broken = append(broken, step.Name)
			errs = append(errs, fmt.Errorf("%s: %w", step.Name, err))
			continue
		}
		compensated = append(compensated, step.Name)
	}

	if len(errs) > 0 {
		return &CompensationError{Step: failed, Err: cause, Failed: broken, CompensationErr: errors.Join(errs...)}
	}
	if len(compensated) > 0 {
		s.logger.Info("saga rolled back", "saga", s.name, "step", failed, "compensated", compensated)
	}
	return &StepError{Step: failed, Completed: completed, Compensated: compensated, Err: cause}
}

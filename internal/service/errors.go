// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/olegiv/evops/internal/store"
)

// Write steps named in DependencyWriteError and PartialProvisioningError.
const (
	StepEvent            = "event"
	StepPrimaryVenue     = "primary_venue"
	StepAdditionalVenues = "additional_venues"
	StepAdditionalDates  = "additional_dates"
	StepProduct          = "product"
	StepItem             = "item"
	StepAssignment       = "assignment"
	StepItemStatus       = "item_status"
)

// ValidationError reports invalid input, keyed by field. Nothing was written.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// validationErrors accumulates field errors.
type validationErrors map[string]string

func (v validationErrors) add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

func (v validationErrors) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Fields: v}
}

// DependencyWriteError reports a write the store rejected.
type DependencyWriteError struct {
	Step string
	Err  error
}

func (e *DependencyWriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Step, e.Err)
}

func (e *DependencyWriteError) Unwrap() error { return e.Err }

// ProvisioningFailedError reports that the primary venue could not be written
// and the event row was deleted again. Nothing remains in the store.
type ProvisioningFailedError struct {
	JobID string
	Cause error
}

func (e *ProvisioningFailedError) Error() string {
	return fmt.Sprintf("provisioning %s failed and was rolled back: %v", e.JobID, e.Cause)
}

func (e *ProvisioningFailedError) Unwrap() error { return e.Cause }

// CompensationFailedError reports a failed write whose cleanup also failed.
// Orphaned rows may remain.
type CompensationFailedError struct {
	Original          error
	CompensationCause error
}

func (e *CompensationFailedError) Error() string {
	return fmt.Sprintf("%v; cleanup failed: %v", e.Original, e.CompensationCause)
}

func (e *CompensationFailedError) Unwrap() error { return e.Original }

// PartialProvisioningError reports an event that was created with its primary
// venue while a later batch failed. The event is kept and Completed lists the
// steps that were written.
type PartialProvisioningError struct {
	Event     store.Event
	Completed []string
	Err       error
}

func (e *PartialProvisioningError) Error() string {
	return fmt.Sprintf("event %s partially provisioned (completed %s): %v",
		e.Event.JobID, strings.Join(e.Completed, ", "), e.Err)
}

func (e *PartialProvisioningError) Unwrap() error { return e.Err }

// ConflictError reports an operation that contradicts the current state.
type ConflictError struct {
	Resource string
	ID       int64
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Resource, e.ID, e.Reason)
}

// NotFoundError reports a missing record.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// lookupError converts store.ErrNotFound into a NotFoundError and wraps
// anything else.
func lookupError(err error, resource string, id int64) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return fmt.Errorf("loading %s %d: %w", resource, id, err)
}

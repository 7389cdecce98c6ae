// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/olegiv/evops/internal/clock"
	"github.com/olegiv/evops/internal/model"
	"github.com/olegiv/evops/internal/saga"
	"github.com/olegiv/evops/internal/store"
)

// AssignmentManager assigns items to events exclusively and keeps the item
// status in step: available -> in_use on assign, in_use -> available on
// unassign. Maintenance is a direct status edit.
type AssignmentManager struct {
	store    Store
	clock    clock.Clock
	logger   *slog.Logger
	notifier Notifier
}

// NewAssignmentManager creates an AssignmentManager.
func NewAssignmentManager(s Store, opts Options) *AssignmentManager {
	opts = opts.withDefaults()
	return &AssignmentManager{
		store:    s,
		clock:    opts.Clock,
		logger:   opts.Logger,
		notifier: opts.Notifier,
	}
}

// AssignResult is the outcome for one item of AssignMany.
type AssignResult struct {
	ItemID     int64
	Assignment *store.Assignment
	Err        error
}

// Assign gives itemID to eventID and marks the item in use.
//
// Errors: *NotFoundError for a missing event or item; *ConflictError when the
// item already has an assignment or is under maintenance;
// *DependencyWriteError when a write fails (a written assignment is removed
// again when the status update fails); *CompensationFailedError when that
// removal fails too.
func (m *AssignmentManager) Assign(ctx context.Context, eventID, itemID int64) (store.Assignment, error) {
	event, err := m.store.GetEventByID(ctx, eventID)
	if err != nil {
		return store.Assignment{}, lookupError(err, "event", eventID)
	}
	item, err := m.store.GetItemByID(ctx, itemID)
	if err != nil {
		return store.Assignment{}, lookupError(err, "item", itemID)
	}
	if item.Status == model.ItemStatusMaintenance {
		return store.Assignment{}, &ConflictError{Resource: "item", ID: itemID, Reason: "item is under maintenance"}
	}

	existing, err := m.store.GetAssignmentByItemID(ctx, itemID)
	switch {
	case err == nil:
		return store.Assignment{}, alreadyAssigned(itemID, existing.EventID)
	case !errors.Is(err, store.ErrNotFound):
		return store.Assignment{}, fmt.Errorf("checking assignment of item %d: %w", itemID, err)
	}

	now := m.clock.Now()
	var assignment store.Assignment
	err = saga.New("assign_item", m.logger).
		Then(saga.Step{
			Name: StepAssignment,
			Do: func(ctx context.Context) error {
				var err error
				assignment, err = m.store.CreateAssignment(ctx, store.CreateAssignmentParams{
					EventID:    eventID,
					ItemID:     itemID,
					AssignedAt: now,
				})
				return err
			},
			Compensate: func(ctx context.Context) error {
				return m.store.DeleteAssignment(ctx, assignment.ID)
			},
		}).
		Then(saga.Step{
			Name:  StepItemStatus,
			Pivot: true,
			Do: func(ctx context.Context) error {
				return m.store.UpdateItemStatus(ctx, store.UpdateItemStatusParams{
					ID:        itemID,
					Status:    model.ItemStatusInUse,
					UpdatedAt: now,
				})
			},
		}).
		Run(ctx)
	if err != nil {
		return store.Assignment{}, m.assignError(ctx, itemID, err)
	}

	m.logger.Info("item assigned", "job_id", event.JobID, "asset_code", item.AssetCode, "assignment_id", assignment.ID)
	m.notifier.Publish(ctx, EventItemAssigned, map[string]any{
		"assignment": assignment,
		"job_id":     event.JobID,
		"asset_code": item.AssetCode,
	})
	return assignment, nil
}

func (m *AssignmentManager) assignError(ctx context.Context, itemID int64, err error) error {
	var compErr *saga.CompensationError
	if errors.As(err, &compErr) {
		return &CompensationFailedError{
			Original:          &DependencyWriteError{Step: compErr.Step, Err: compErr.Err},
			CompensationCause: compErr.CompensationErr,
		}
	}

	var stepErr *saga.StepError
	if !errors.As(err, &stepErr) {
		return err
	}
	if stepErr.Step == StepAssignment && errors.Is(stepErr.Err, store.ErrDuplicate) {
		// Lost a race with a concurrent assign.
		if other, lookupErr := m.store.GetAssignmentByItemID(ctx, itemID); lookupErr == nil {
			return alreadyAssigned(itemID, other.EventID)
		}
		return &ConflictError{Resource: "item", ID: itemID, Reason: "item is already assigned"}
	}
	return &DependencyWriteError{Step: stepErr.Step, Err: stepErr.Err}
}

func alreadyAssigned(itemID, eventID int64) error {
	return &ConflictError{
		Resource: "item",
		ID:       itemID,
		Reason:   fmt.Sprintf("item is already assigned to event %d", eventID),
	}
}

// AssignMany assigns each item independently. A failure for one item does
// not affect the others.
func (m *AssignmentManager) AssignMany(ctx context.Context, eventID int64, itemIDs []int64) []AssignResult {
	results := make([]AssignResult, len(itemIDs))
	for i, itemID := range itemIDs {
		results[i].ItemID = itemID
		a, err := m.Assign(ctx, eventID, itemID)
		if err != nil {
			results[i].Err = err
			continue
		}
		results[i].Assignment = &a
	}
	return results
}

// Unassign removes an assignment and returns an in-use item to available.
// Items under maintenance keep their status.
//
// Errors: *NotFoundError when the assignment is gone; *ValidationError when
// itemID does not belong to the assignment; *DependencyWriteError when a
// write fails. A failed status update after the delete leaves the item
// in_use without an assignment, which the consistency audit reports.
func (m *AssignmentManager) Unassign(ctx context.Context, assignmentID, itemID int64) error {
	assignment, err := m.store.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		return lookupError(err, "assignment", assignmentID)
	}
	if assignment.ItemID != itemID {
		return &ValidationError{Fields: map[string]string{"item_id": "does not match the assignment"}}
	}

	if err := m.store.DeleteAssignment(ctx, assignmentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &NotFoundError{Resource: "assignment", ID: assignmentID}
		}
		return &DependencyWriteError{Step: StepAssignment, Err: err}
	}

	item, err := m.store.GetItemByID(ctx, itemID)
	if err != nil {
		return &DependencyWriteError{Step: StepItemStatus, Err: err}
	}
	if item.Status == model.ItemStatusInUse {
		err := m.store.UpdateItemStatus(ctx, store.UpdateItemStatusParams{
			ID:        itemID,
			Status:    model.ItemStatusAvailable,
			UpdatedAt: m.clock.Now(),
		})
		if err != nil {
			m.logger.Warn("item left in use after unassignment",
				"item_id", itemID, "asset_code", item.AssetCode, "error", err)
			return &DependencyWriteError{Step: StepItemStatus, Err: err}
		}
	}

	m.logger.Info("item unassigned", "asset_code", item.AssetCode, "assignment_id", assignmentID)
	m.notifier.Publish(ctx, EventItemUnassigned, map[string]any{
		"assignment": assignment,
		"asset_code": item.AssetCode,
	})
	return nil
}

// SetStatus edits an item's status directly. Transitions are not checked
// against assignments; putting an assigned item under maintenance is logged.
func (m *AssignmentManager) SetStatus(ctx context.Context, itemID int64, status string) (store.Item, error) {
	if !model.IsValidItemStatus(status) {
		return store.Item{}, &ValidationError{Fields: map[string]string{"status": "must be one of available, in_use, maintenance"}}
	}

	item, err := m.store.GetItemByID(ctx, itemID)
	if err != nil {
		return store.Item{}, lookupError(err, "item", itemID)
	}
	if item.Status == status {
		return item, nil
	}

	if status == model.ItemStatusMaintenance {
		a, err := m.store.GetAssignmentByItemID(ctx, itemID)
		if err == nil {
			m.logger.Warn("assigned item set to maintenance",
				"item_id", itemID, "asset_code", item.AssetCode, "event_id", a.EventID)
		}
	}

	now := m.clock.Now()
	if err := m.store.UpdateItemStatus(ctx, store.UpdateItemStatusParams{ID: itemID, Status: status, UpdatedAt: now}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Item{}, &NotFoundError{Resource: "item", ID: itemID}
		}
		return store.Item{}, &DependencyWriteError{Step: StepItemStatus, Err: err}
	}

	previous := item.Status
	item.Status = status
	item.UpdatedAt = now
	m.logger.Info("item status changed", "asset_code", item.AssetCode, "from", previous, "to", status)
	m.notifier.Publish(ctx, EventItemStatusChanged, map[string]any{"item": item, "previous": previous})
	return item, nil
}

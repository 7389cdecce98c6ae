// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

type CreateAssignmentParams struct {
	EventID    int64
	ItemID     int64
	AssignedAt time.Time
}

// CreateAssignment links an item to an event. The item_id column is unique,
// so a second active assignment for the same item yields ErrDuplicate.
func (q *Queries) CreateAssignment(ctx context.Context, arg CreateAssignmentParams) (Assignment, error) {
	id, err := q.insert(ctx,
		"INSERT INTO assignments (event_id, item_id, assigned_at) VALUES (?, ?, ?)",
		arg.EventID, arg.ItemID, arg.AssignedAt,
	)
	if err != nil {
		return Assignment{}, err
	}
	return Assignment{ID: id, EventID: arg.EventID, ItemID: arg.ItemID, AssignedAt: arg.AssignedAt}, nil
}

func (q *Queries) GetAssignmentByID(ctx context.Context, id int64) (Assignment, error) {
	var a Assignment
	err := q.queryRow(ctx, "SELECT id, event_id, item_id, assigned_at FROM assignments WHERE id = ?", id).
		Scan(&a.ID, &a.EventID, &a.ItemID, &a.AssignedAt)
	return a, translateError(err)
}

// GetAssignmentByItemID returns the active assignment of an item, or ErrNotFound.
func (q *Queries) GetAssignmentByItemID(ctx context.Context, itemID int64) (Assignment, error) {
	var a Assignment
	err := q.queryRow(ctx, "SELECT id, event_id, item_id, assigned_at FROM assignments WHERE item_id = ?", itemID).
		Scan(&a.ID, &a.EventID, &a.ItemID, &a.AssignedAt)
	return a, translateError(err)
}

func (q *Queries) ListAssignmentsByEvent(ctx context.Context, eventID int64) ([]Assignment, error) {
	rows, err := q.query(ctx,
		"SELECT id, event_id, item_id, assigned_at FROM assignments WHERE event_id = ? ORDER BY id",
		eventID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.EventID, &a.ItemID, &a.AssignedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (q *Queries) DeleteAssignment(ctx context.Context, id int64) error {
	return q.deleteByID(ctx, "assignments", id)
}

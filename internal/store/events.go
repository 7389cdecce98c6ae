// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const eventColumns = `id, job_id, name, client, description, event_type_id, setup_date, event_date,
	is_multiple_days, created_by, created_at`

type CreateEventParams struct {
	JobID          string
	Name           string
	Client         string
	Description    string
	EventTypeID    sql.NullInt64
	SetupDate      time.Time
	EventDate      time.Time
	IsMultipleDays bool
	CreatedBy      string
	CreatedAt      time.Time
}

// CreateEvent inserts an event. A job ID already in use yields ErrDuplicate.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (Event, error) {
	id, err := q.insert(ctx, `INSERT INTO events (job_id, name, client, description, event_type_id,
		setup_date, event_date, is_multiple_days, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.JobID, arg.Name, arg.Client, arg.Description, arg.EventTypeID,
		arg.SetupDate, arg.EventDate, arg.IsMultipleDays, arg.CreatedBy, arg.CreatedAt,
	)
	if err != nil {
		return Event{}, err
	}

	return Event{
		ID:             id,
		JobID:          arg.JobID,
		Name:           arg.Name,
		Client:         arg.Client,
		Description:    arg.Description,
		EventTypeID:    arg.EventTypeID,
		SetupDate:      arg.SetupDate,
		EventDate:      arg.EventDate,
		IsMultipleDays: arg.IsMultipleDays,
		CreatedBy:      arg.CreatedBy,
		CreatedAt:      arg.CreatedAt,
	}, nil
}

// DeleteEvent removes an event; its venues, dates and assignments cascade.
func (q *Queries) DeleteEvent(ctx context.Context, id int64) error {
	return q.deleteByID(ctx, "events", id)
}

func (q *Queries) GetEventByID(ctx context.Context, id int64) (Event, error) {
	return scanEvent(q.queryRow(ctx, "SELECT "+eventColumns+" FROM events WHERE id = ?", id))
}

func (q *Queries) GetEventByJobID(ctx context.Context, jobID string) (Event, error) {
	return scanEvent(q.queryRow(ctx, "SELECT "+eventColumns+" FROM events WHERE job_id = ?", jobID))
}

// LatestJobIDWithPrefix returns the most recently inserted surviving job ID
// starting with prefix, or ErrNotFound.
func (q *Queries) LatestJobIDWithPrefix(ctx context.Context, prefix string) (string, error) {
	var jobID string
	err := q.queryRow(ctx,
		"SELECT job_id FROM events WHERE job_id LIKE ? ORDER BY id DESC LIMIT 1",
		prefix+"%",
	).Scan(&jobID)
	if err != nil {
		return "", translateError(err)
	}
	return jobID, nil
}

func scanEvent(row *sql.Row) (Event, error) {
	var e Event
	err := row.Scan(
		&e.ID, &e.JobID, &e.Name, &e.Client, &e.Description, &e.EventTypeID,
		&e.SetupDate, &e.EventDate, &e.IsMultipleDays, &e.CreatedBy, &e.CreatedAt,
	)
	if err != nil {
		return Event{}, translateError(err)
	}
	return e, nil
}

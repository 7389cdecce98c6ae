// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

type CreateEventDateParams struct {
	EventID   int64
	EventDate time.Time
	DateOrder int64
	CreatedAt time.Time
}

// CreateEventDates inserts all dates with a single statement.
func (q *Queries) CreateEventDates(ctx context.Context, args []CreateEventDateParams) error {
	if len(args) == 0 {
		return nil
	}

	values := make([]any, 0, len(args)*4)
	for _, arg := range args {
		values = append(values, arg.EventID, arg.EventDate, arg.DateOrder, arg.CreatedAt)
	}

	_, err := q.exec(ctx,
		"INSERT INTO event_dates (event_id, event_date, date_order, created_at) VALUES "+valuesList(len(args), 4),
		values...,
	)
	return err
}

func (q *Queries) ListEventDatesByEvent(ctx context.Context, eventID int64) ([]EventDate, error) {
	rows, err := q.query(ctx,
		"SELECT id, event_id, event_date, date_order, created_at FROM event_dates WHERE event_id = ? ORDER BY date_order",
		eventID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var dates []EventDate
	for rows.Next() {
		var d EventDate
		if err := rows.Scan(&d.ID, &d.EventID, &d.EventDate, &d.DateOrder, &d.CreatedAt); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

type CreateVenueParams struct {
	EventID    int64
	Name       string
	Address    string
	VenueOrder int64
	CreatedAt  time.Time
}

func (q *Queries) CreateVenue(ctx context.Context, arg CreateVenueParams) (Venue, error) {
	id, err := q.insert(ctx,
		"INSERT INTO venues (event_id, name, address, venue_order, created_at) VALUES (?, ?, ?, ?, ?)",
		arg.EventID, arg.Name, arg.Address, arg.VenueOrder, arg.CreatedAt,
	)
	if err != nil {
		return Venue{}, err
	}
	return Venue{
		ID:         id,
		EventID:    arg.EventID,
		Name:       arg.Name,
		Address:    arg.Address,
		VenueOrder: arg.VenueOrder,
		CreatedAt:  arg.CreatedAt,
	}, nil
}

// CreateVenues inserts all venues with a single statement, so either every
// row is written or none is.
func (q *Queries) CreateVenues(ctx context.Context, args []CreateVenueParams) error {
	if len(args) == 0 {
		return nil
	}

	values := make([]any, 0, len(args)*5)
	for _, arg := range args {
		values = append(values, arg.EventID, arg.Name, arg.Address, arg.VenueOrder, arg.CreatedAt)
	}

	_, err := q.exec(ctx,
		"INSERT INTO venues (event_id, name, address, venue_order, created_at) VALUES "+valuesList(len(args), 5),
		values...,
	)
	return err
}

func (q *Queries) ListVenuesByEvent(ctx context.Context, eventID int64) ([]Venue, error) {
	rows, err := q.query(ctx,
		"SELECT id, event_id, name, address, venue_order, created_at FROM venues WHERE event_id = ? ORDER BY venue_order",
		eventID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var venues []Venue
	for rows.Next() {
		var v Venue
		if err := rows.Scan(&v.ID, &v.EventID, &v.Name, &v.Address, &v.VenueOrder, &v.CreatedAt); err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

// CountVenuesByEvent returns how many venues an event has.
func (q *Queries) CountVenuesByEvent(ctx context.Context, eventID int64) (int64, error) {
	var n int64
	err := q.queryRow(ctx, "SELECT COUNT(*) FROM venues WHERE event_id = ?", eventID).Scan(&n)
	return n, translateError(err)
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultEventTypes are the event types created by Seed.
var DefaultEventTypes = []CreateEventTypeParams{
	{Name: "Seminar", Code: "SI"},
	{Name: "Conference", Code: "CONF"},
	{Name: "Wedding", Code: "WED"},
	{Name: "Concert", Code: "CON"},
	{Name: "Exhibition", Code: "EXPO"},
}

// DefaultCategories are the equipment categories created by Seed.
var DefaultCategories = []CreateCategoryParams{
	{Name: "Camera", Code: "CAM"},
	{Name: "Audio", Code: "AUD"},
	{Name: "Lighting", Code: "LGT"},
	{Name: "Projector", Code: "PRJ"},
	{Name: "Cable", Code: "CBL"},
}

// Seed creates the reference event types and categories when missing.
func Seed(ctx context.Context, q *Queries) error {
	if _, err := q.GetEventTypeByCode(ctx, DefaultEventTypes[0].Code); err == nil {
		slog.Info("reference data already exists, skipping seed")
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("checking for reference data: %w", err)
	}

	now := time.Now()
	for _, et := range DefaultEventTypes {
		et.CreatedAt = now
		if _, err := q.CreateEventType(ctx, et); err != nil && !errors.Is(err, ErrDuplicate) {
			return fmt.Errorf("creating event type %s: %w", et.Code, err)
		}
	}
	for _, c := range DefaultCategories {
		c.CreatedAt = now
		if _, err := q.CreateCategory(ctx, c); err != nil && !errors.Is(err, ErrDuplicate) {
			return fmt.Errorf("creating category %s: %w", c.Code, err)
		}
	}

	slog.Info("seeded reference data",
		"event_types", len(DefaultEventTypes),
		"categories", len(DefaultCategories),
	)
	return nil
}

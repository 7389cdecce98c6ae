// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type EventType struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID         int64     `json:"id"`
	CategoryID int64     `json:"category_id"`
	Brand      string    `json:"brand"`
	BrandCode  string    `json:"brand_code"`
	Model      string    `json:"model"`
	CreatedAt  time.Time `json:"created_at"`
}

type Event struct {
	ID             int64         `json:"id"`
	JobID          string        `json:"job_id"`
	Name           string        `json:"name"`
	Client         string        `json:"client"`
	Description    string        `json:"description"`
	EventTypeID    sql.NullInt64 `json:"-"`
	SetupDate      time.Time     `json:"setup_date"`
	EventDate      time.Time     `json:"event_date"`
	IsMultipleDays bool          `json:"is_multiple_days"`
	CreatedBy      string        `json:"created_by"`
	CreatedAt      time.Time     `json:"created_at"`
}

type Venue struct {
	ID         int64     `json:"id"`
	EventID    int64     `json:"event_id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	VenueOrder int64     `json:"venue_order"`
	CreatedAt  time.Time `json:"created_at"`
}

type EventDate struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"event_id"`
	EventDate time.Time `json:"event_date"`
	DateOrder int64     `json:"date_order"`
	CreatedAt time.Time `json:"created_at"`
}

type Item struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	AssetCode string    `json:"asset_code"`
	Status    string    `json:"status"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Assignment struct {
	ID         int64     `json:"id"`
	EventID    int64     `json:"event_id"`
	ItemID     int64     `json:"item_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

type Activity struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"` // JSON string
	CreatedAt time.Time `json:"created_at"`
}

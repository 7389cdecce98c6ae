// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"time"

	"github.com/olegiv/evops/internal/store"
	"github.com/olegiv/evops/internal/util"
)

// dateLayout is the wire format of calendar dates.
const dateLayout = "2006-01-02"

// EventResponse represents an event in API responses.
type EventResponse struct {
	ID             int64     `json:"id"`
	JobID          string    `json:"job_id"`
	Name           string    `json:"name"`
	Client         string    `json:"client,omitempty"`
	Description    string    `json:"description,omitempty"`
	EventTypeID    *int64    `json:"event_type_id"`
	SetupDate      string    `json:"setup_date"`
	EventDate      string    `json:"event_date"`
	IsMultipleDays bool      `json:"is_multiple_days"`
	CreatedBy      string    `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// VenueResponse represents a venue in API responses.
type VenueResponse struct {
	ID      int64  `json:"id"`
	EventID int64  `json:"event_id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Order   int64  `json:"order"`
}

// EventDateResponse represents an additional event date in API responses.
type EventDateResponse struct {
	ID      int64  `json:"id"`
	EventID int64  `json:"event_id"`
	Date    string `json:"date"`
	Order   int64  `json:"order"`
}

// ItemResponse represents an inventory item in API responses.
type ItemResponse struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	AssetCode string    `json:"asset_code"`
	Status    string    `json:"status"`
	Location  string    `json:"location,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssignmentResponse represents an assignment in API responses.
type AssignmentResponse struct {
	ID         int64     `json:"id"`
	EventID    int64     `json:"event_id"`
	ItemID     int64     `json:"item_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

// AssignResultResponse is one entry of a batch assignment response.
type AssignResultResponse struct {
	ItemID     int64               `json:"item_id"`
	Assignment *AssignmentResponse `json:"assignment,omitempty"`
	Error      *ErrorDetail        `json:"error,omitempty"`
}

// PreviewResponse carries a previewed identifier.
type PreviewResponse struct {
	JobID     string `json:"job_id,omitempty"`
	AssetCode string `json:"asset_code,omitempty"`
}

// FindingResponse represents a consistency audit finding.
type FindingResponse struct {
	Kind      string `json:"kind"`
	ItemID    int64  `json:"item_id"`
	AssetCode string `json:"asset_code"`
	Status    string `json:"status"`
	EventID   int64  `json:"event_id,omitempty"`
}

func eventResponse(e store.Event) EventResponse {
	return EventResponse{
		ID:             e.ID,
		JobID:          e.JobID,
		Name:           e.Name,
		Client:         e.Client,
		Description:    e.Description,
		EventTypeID:    util.PtrFromNullInt64(e.EventTypeID),
		SetupDate:      e.SetupDate.Format(dateLayout),
		EventDate:      e.EventDate.Format(dateLayout),
		IsMultipleDays: e.IsMultipleDays,
		CreatedBy:      e.CreatedBy,
		CreatedAt:      e.CreatedAt,
	}
}

func venueResponses(vs []store.Venue) []VenueResponse {
	out := make([]VenueResponse, 0, len(vs))
	for _, v := range vs {
		out = append(out, VenueResponse{ID: v.ID, EventID: v.EventID, Name: v.Name, Address: v.Address, Order: v.VenueOrder})
	}
	return out
}

func eventDateResponses(ds []store.EventDate) []EventDateResponse {
	out := make([]EventDateResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, EventDateResponse{ID: d.ID, EventID: d.EventID, Date: d.EventDate.Format(dateLayout), Order: d.DateOrder})
	}
	return out
}

func itemResponse(i store.Item) ItemResponse {
	return ItemResponse{
		ID:        i.ID,
		ProductID: i.ProductID,
		AssetCode: i.AssetCode,
		Status:    i.Status,
		Location:  i.Location,
		UpdatedAt: i.UpdatedAt,
	}
}

func assignmentResponse(a store.Assignment) *AssignmentResponse {
	return &AssignmentResponse{ID: a.ID, EventID: a.EventID, ItemID: a.ItemID, AssignedAt: a.AssignedAt}
}

func findingResponses(fs []store.StatusFinding) []FindingResponse {
	out := make([]FindingResponse, 0, len(fs))
	for _, f := range fs {
		out = append(out, FindingResponse{Kind: f.Kind, ItemID: f.ItemID, AssetCode: f.AssetCode, Status: f.Status, EventID: f.EventID})
	}
	return out
}

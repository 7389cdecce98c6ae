// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package webhook delivers domain events to operator-configured HTTP endpoints.
package webhook

import (
	"time"

	"github.com/google/uuid"
)

// Event is the JSON body posted to every endpoint.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// NewEvent creates an event with a fresh delivery id.
func NewEvent(eventType string, data any, now time.Time) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: now.UTC(),
		Data:      data,
	}
}

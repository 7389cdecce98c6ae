// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements event provisioning, item creation and the
// equipment assignment state machine on top of the store.
//
// None of the operations use database transactions. Multi-row writes run as
// sagas (see internal/saga) with explicit compensations.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/olegiv/evops/internal/clock"
	"github.com/olegiv/evops/internal/sequence"
	"github.com/olegiv/evops/internal/store"
)

// DefaultIssueAttempts is how many freshly derived identifiers are tried
// before a duplicate-key rejection is reported.
const DefaultIssueAttempts = 3

// Store is the persistence used by the services. *store.Queries implements it.
type Store interface {
	sequence.Store

	CreateEvent(ctx context.Context, arg store.CreateEventParams) (store.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	GetEventByID(ctx context.Context, id int64) (store.Event, error)

	CreateVenue(ctx context.Context, arg store.CreateVenueParams) (store.Venue, error)
	CreateVenues(ctx context.Context, args []store.CreateVenueParams) error
	ListVenuesByEvent(ctx context.Context, eventID int64) ([]store.Venue, error)
	CountVenuesByEvent(ctx context.Context, eventID int64) (int64, error)

	CreateEventDates(ctx context.Context, args []store.CreateEventDateParams) error
	ListEventDatesByEvent(ctx context.Context, eventID int64) ([]store.EventDate, error)

	CreateProduct(ctx context.Context, arg store.CreateProductParams) (store.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	CreateItem(ctx context.Context, arg store.CreateItemParams) (store.Item, error)
	GetItemByID(ctx context.Context, id int64) (store.Item, error)
	UpdateItemStatus(ctx context.Context, arg store.UpdateItemStatusParams) error

	CreateAssignment(ctx context.Context, arg store.CreateAssignmentParams) (store.Assignment, error)
	GetAssignmentByID(ctx context.Context, id int64) (store.Assignment, error)
	GetAssignmentByItemID(ctx context.Context, itemID int64) (store.Assignment, error)
	DeleteAssignment(ctx context.Context, id int64) error
}

var _ Store = (*store.Queries)(nil)

// Notifier receives domain events after successful writes.
type Notifier interface {
	Publish(ctx context.Context, event string, data any)
}

// Domain events passed to Notifier.
const (
	EventProvisioned          = "event.provisioned"
	EventPartiallyProvisioned = "event.partially_provisioned"
	EventItemCreated          = "item.created"
	EventItemAssigned         = "item.assigned"
	EventItemUnassigned       = "item.unassigned"
	EventItemStatusChanged    = "item.status_changed"
)

// Options carries the collaborators shared by all services. Zero values get
// defaults.
type Options struct {
	Clock         clock.Clock
	Logger        *slog.Logger
	Notifier      Notifier
	IssueAttempts int
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = clock.NewSystem(nil)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Notifier == nil {
		o.Notifier = nopNotifier{}
	}
	if o.IssueAttempts < 1 {
		o.IssueAttempts = DefaultIssueAttempts
	}
	return o
}

type nopNotifier struct{}

func (nopNotifier) Publish(context.Context, string, any) {}

// dateOnly drops the time of day, keeping the calendar date as written.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

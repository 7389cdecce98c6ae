// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/olegiv/evops/internal/cache"
	"github.com/olegiv/evops/internal/clock"
	"github.com/olegiv/evops/internal/service"
	"github.com/olegiv/evops/internal/store"
	"github.com/olegiv/evops/internal/testutil"
)

var errInjected = errors.New("injected write failure")

// faultStore wraps the real queries and lets a test fail or intercept
// individual writes.
type faultStore struct {
	*store.Queries

	createVenue      error
	createVenues     error
	createEventDates error
	deleteEvent      error
	createItem       error
	deleteProduct    error
	updateItemStatus error
	deleteAssignment error

	beforeCreateEvent func(ctx context.Context, arg store.CreateEventParams)
	beforeCreateItem  func(ctx context.Context, arg store.CreateItemParams)
	beforeCreateVenue func(ctx context.Context)
}

func (f *faultStore) CreateEvent(ctx context.Context, arg store.CreateEventParams) (store.Event, error) {
	if f.beforeCreateEvent != nil {
		f.beforeCreateEvent(ctx, arg)
	}
	return f.Queries.CreateEvent(ctx, arg)
}

func (f *faultStore) CreateVenue(ctx context.Context, arg store.CreateVenueParams) (store.Venue, error) {
	if f.beforeCreateVenue != nil {
		f.beforeCreateVenue(ctx)
	}
	if f.createVenue != nil {
		return store.Venue{}, f.createVenue
	}
	return f.Queries.CreateVenue(ctx, arg)
}

func (f *faultStore) CreateVenues(ctx context.Context, args []store.CreateVenueParams) error {
	if f.createVenues != nil {
		return f.createVenues
	}
	return f.Queries.CreateVenues(ctx, args)
}

func (f *faultStore) CreateEventDates(ctx context.Context, args []store.CreateEventDateParams) error {
	if f.createEventDates != nil {
		return f.createEventDates
	}
	return f.Queries.CreateEventDates(ctx, args)
}

func (f *faultStore) DeleteEvent(ctx context.Context, id int64) error {
	if f.deleteEvent != nil {
		return f.deleteEvent
	}
	return f.Queries.DeleteEvent(ctx, id)
}

func (f *faultStore) CreateItem(ctx context.Context, arg store.CreateItemParams) (store.Item, error) {
	if f.beforeCreateItem != nil {
		f.beforeCreateItem(ctx, arg)
	}
	if f.createItem != nil {
		return store.Item{}, f.createItem
	}
	return f.Queries.CreateItem(ctx, arg)
}

func (f *faultStore) DeleteProduct(ctx context.Context, id int64) error {
	if f.deleteProduct != nil {
		return f.deleteProduct
	}
	return f.Queries.DeleteProduct(ctx, id)
}

func (f *faultStore) UpdateItemStatus(ctx context.Context, arg store.UpdateItemStatusParams) error {
	if f.updateItemStatus != nil {
		return f.updateItemStatus
	}
	return f.Queries.UpdateItemStatus(ctx, arg)
}

func (f *faultStore) DeleteAssignment(ctx context.Context, id int64) error {
	if f.deleteAssignment != nil {
		return f.deleteAssignment
	}
	return f.Queries.DeleteAssignment(ctx, id)
}

// recordingNotifier collects published domain events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingNotifier) Publish(_ context.Context, event string, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingNotifier) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type testEnv struct {
	db       *sql.DB
	q        *store.Queries
	fs       *faultStore
	fx       testutil.Fixtures
	notifier *recordingNotifier
	opts     service.Options
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.MemoryDB(t)
	q := store.New(db)
	fx := testutil.SeedFixtures(t, q)
	now := time.Date(2026, 2, 27, 9, 30, 0, 0, time.UTC)
	n := &recordingNotifier{}

	return &testEnv{
		db:       db,
		q:        q,
		fs:       &faultStore{Queries: q},
		fx:       fx,
		notifier: n,
		now:      now,
		opts: service.Options{
			Clock:    clock.NewFixed(now),
			Logger:   testutil.TestLoggerSilent(),
			Notifier: n,
		},
	}
}

func (e *testEnv) reference() *cache.Reference {
	return cache.NewReference(e.q, nil, 0)
}

func (e *testEnv) provisioner() *service.Provisioner {
	return service.NewProvisioner(e.fs, e.reference(), e.opts)
}

func (e *testEnv) assignments() *service.AssignmentManager {
	return service.NewAssignmentManager(e.fs, e.opts)
}

func (e *testEnv) inventory() *service.Inventory {
	return service.NewInventory(e.fs, e.reference(), e.opts)
}

func (e *testEnv) countRows(t *testing.T, table string) int {
	t.Helper()
	var n int
	if err := e.db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func ptr[T any](v T) *T {
	return &v
}

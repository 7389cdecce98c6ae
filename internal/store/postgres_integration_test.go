// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/olegiv/evops/internal/model"
	"github.com/olegiv/evops/internal/store"
	"github.com/olegiv/evops/internal/testutil"
)

// skipIfNoPostgres skips the test if Postgres is not configured.
func skipIfNoPostgres(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("EVOPS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("Skipping Postgres tests: EVOPS_TEST_DATABASE_URL not set")
	}
	return dsn
}

func TestPostgres_RoundTrip(t *testing.T) {
	dsn := skipIfNoPostgres(t)
	ctx := context.Background()

	db, err := store.NewPostgresDB(ctx, dsn)
	if err != nil {
		t.Fatalf("NewPostgresDB: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := store.Migrate(db, store.DialectPostgres); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	for _, table := range []string{"assignments", "items", "products", "categories", "event_dates", "venues", "events", "event_types", "activity_log", "issued_sequences"} {
		if _, err := db.ExecContext(ctx, "TRUNCATE "+table+" RESTART IDENTITY CASCADE"); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}

	q := store.NewWithDialect(db, store.DialectPostgres)
	fx := testutil.SeedFixtures(t, q)

	ev, err := q.CreateEvent(ctx, store.CreateEventParams{
		JobID:     "20260227-SI-01",
		Name:      "Launch",
		SetupDate: testutil.Date(2026, 2, 26),
		EventDate: testutil.Date(2026, 2, 27),
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	_, err = q.CreateEvent(ctx, store.CreateEventParams{
		JobID:     "20260227-SI-01",
		Name:      "Clash",
		SetupDate: testutil.Date(2026, 2, 26),
		EventDate: testutil.Date(2026, 2, 27),
		CreatedAt: time.Now(),
	})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("duplicate job id = %v, want ErrDuplicate", err)
	}

	if err := q.CreateVenues(ctx, []store.CreateVenueParams{
		{EventID: ev.ID, Name: "Main", VenueOrder: 1, CreatedAt: time.Now()},
		{EventID: ev.ID, Name: "Annex", VenueOrder: 2, CreatedAt: time.Now()},
	}); err != nil {
		t.Fatalf("CreateVenues: %v", err)
	}

	item, err := q.CreateItem(ctx, store.CreateItemParams{
		ProductID: fx.Sony.ID, AssetCode: "CAM-SNY-01", Status: model.ItemStatusAvailable, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	n, err := q.CountItemsWithAssetPrefix(ctx, "CAM-SNY-")
	if err != nil || n != 1 {
		t.Errorf("CountItemsWithAssetPrefix = %d, %v; want 1", n, err)
	}

	if _, err := q.CreateAssignment(ctx, store.CreateAssignmentParams{EventID: ev.ID, ItemID: item.ID, AssignedAt: time.Now()}); err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}

	if err := q.DeleteEvent(ctx, ev.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if _, err := q.GetAssignmentByItemID(ctx, item.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("assignment after event delete = %v, want ErrNotFound", err)
	}
}

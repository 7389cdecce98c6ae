// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the evops project.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/olegiv/evops/internal/store"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary file-backed SQLite database with migrations applied.
// Returns the database and a cleanup function that should be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "evops-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db, store.DialectSQLite); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}
}

// MemoryDB creates an in-memory SQLite database (mattn driver) with migrations applied.
// The pool is pinned to one connection so every query sees the same database.
func MemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := store.Migrate(db, store.DialectSQLite); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Fixtures holds reference rows created by SeedFixtures.
type Fixtures struct {
	Seminar store.EventType
	Wedding store.EventType
	Camera  store.Category
	Audio   store.Category
	Sony    store.Product
	Shure   store.Product
}

// SeedFixtures inserts a small, predictable catalog.
func SeedFixtures(t *testing.T, q *store.Queries) Fixtures {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	var fx Fixtures
	var err error

	if fx.Seminar, err = q.CreateEventType(ctx, store.CreateEventTypeParams{Name: "Seminar", Code: "SI", CreatedAt: now}); err != nil {
		t.Fatalf("CreateEventType: %v", err)
	}
	if fx.Wedding, err = q.CreateEventType(ctx, store.CreateEventTypeParams{Name: "Wedding", Code: "WED", CreatedAt: now}); err != nil {
		t.Fatalf("CreateEventType: %v", err)
	}
	if fx.Camera, err = q.CreateCategory(ctx, store.CreateCategoryParams{Name: "Camera", Code: "CAM", CreatedAt: now}); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if fx.Audio, err = q.CreateCategory(ctx, store.CreateCategoryParams{Name: "Audio", Code: "AUD", CreatedAt: now}); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if fx.Sony, err = q.CreateProduct(ctx, store.CreateProductParams{
		CategoryID: fx.Camera.ID, Brand: "Sony", BrandCode: "SNY", Model: "FX3", CreatedAt: now,
	}); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if fx.Shure, err = q.CreateProduct(ctx, store.CreateProductParams{
		CategoryID: fx.Audio.ID, Brand: "Shure", BrandCode: "SHR", Model: "SM58", CreatedAt: now,
	}); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	return fx
}

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NullID wraps id as a valid sql.NullInt64.
func NullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: true}
}

// DeleteRow removes one row by id with plain SQL, for tests that simulate an
// external collaborator deleting records the engine never deletes itself.
func DeleteRow(t *testing.T, db *sql.DB, table string, id int64) {
	t.Helper()
	res, err := db.Exec("DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		t.Fatalf("deleting %s %d: %v", table, id, err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		t.Fatalf("deleting %s %d: %d rows affected", table, id, n)
	}
}

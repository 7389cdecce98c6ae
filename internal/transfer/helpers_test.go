// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"database/sql"
	"testing"

	"github.com/olegiv/evops/internal/store"
	"github.com/olegiv/evops/internal/testutil"
)

type countingInvalidator struct {
	calls int
	err   error
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return c.err
}

func setupTransferTest(t *testing.T) (*sql.DB, *store.Queries, testutil.Fixtures) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	q := store.New(db)
	return db, q, testutil.SeedFixtures(t, q)
}

func sampleCatalog() *ExportData {
	return &ExportData{
		Version: ExportVersion,
		EventTypes: []ExportEventType{
			{Code: "SI", Name: "Seminar"},
			{Code: "CONF", Name: "Conference"},
		},
		Categories: []ExportCategory{
			{Code: "CAM", Name: "Cameras"},
			{Code: "LGT", Name: "Lighting"},
		},
		Products: []ExportProduct{
			{Category: "CAM", Brand: "Sony", BrandCode: "SNY", Model: "FX3"},
			{Category: "LGT", Brand: "Aputure", Model: "LS 600d"},
		},
	}
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/evops/internal/cache"
	"github.com/olegiv/evops/internal/clock"
	"github.com/olegiv/evops/internal/handler/api"
	"github.com/olegiv/evops/internal/scheduler"
	"github.com/olegiv/evops/internal/service"
	"github.com/olegiv/evops/internal/store"
	"github.com/olegiv/evops/internal/testutil"
)

var testNow = time.Date(2026, 2, 27, 9, 30, 0, 0, time.UTC)

type apiEnv struct {
	q      *store.Queries
	fx     testutil.Fixtures
	router http.Handler
}

// newAPIEnv wires the real services over an in-memory database.
func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	q := store.New(testutil.MemoryDB(t))
	fx := testutil.SeedFixtures(t, q)

	opts := service.Options{Clock: clock.NewFixed(testNow), Logger: testutil.TestLoggerSilent()}
	ref := cache.NewReference(q, cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute}), time.Minute)
	sched := scheduler.New(q, testutil.TestLoggerSilent(), scheduler.Options{})

	h := api.NewHandler(api.Deps{
		Provisioner: service.NewProvisioner(q, ref, opts),
		Inventory:   service.NewInventory(q, ref, opts),
		Assignments: service.NewAssignmentManager(q, opts),
		Auditor:     sched,
		Activity:    q,
		Logger:      testutil.TestLoggerSilent(),
	})
	return &apiEnv{q: q, fx: fx, router: mount(h)}
}

func mount(h *api.Handler) http.Handler {
	r := chi.NewRouter()
	r.Mount("/api/v1", h.Routes(nil))
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			rdr = bytes.NewBufferString(s)
		} else {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			rdr = bytes.NewReader(b)
		}
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// envelope is the decoded response wrapper with data left raw.
type envelope struct {
	Data  json.RawMessage  `json:"data"`
	Error *api.ErrorDetail `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &v), "body: %s", w.Body.String())
	return v
}

func provisionBody(typeID int64) map[string]any {
	return map[string]any{
		"name":          "Product Launch",
		"client":        "Acme",
		"event_type_id": typeID,
		"setup_date":    "2026-03-09",
		"event_date":    "2026-03-10",
		"primary_venue": map[string]string{"name": "Main Hall", "address": "1 Market St"},
	}
}

func (e *apiEnv) createItem(t *testing.T, productID int64) api.ItemResponse {
	t.Helper()
	w := do(t, e.router, http.MethodPost, "/api/v1/items", map[string]any{"product_id": productID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[api.ItemResponse](t, w)
}

func (e *apiEnv) createEvent(t *testing.T) api.EventResponse {
	t.Helper()
	w := do(t, e.router, http.MethodPost, "/api/v1/events", provisionBody(e.fx.Seminar.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[api.EventResponse](t, w)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

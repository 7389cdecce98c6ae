// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/evops/internal/handler/api"
)

func TestPreviewJobID(t *testing.T) {
	env := newAPIEnv(t)

	tests := []struct {
		name   string
		query  string
		status int
		want   string
	}{
		{"known type", "?event_type=SI", http.StatusOK, "20260227-SI-01"},
		{"lowercase type", "?event_type=wed", http.StatusOK, "20260227-WED-01"},
		{"no type", "", http.StatusOK, "20260227-XX-01"},
		{"unknown type", "?event_type=ZZ", http.StatusUnprocessableEntity, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, env.router, http.MethodGet, "/api/v1/job-ids/preview"+tt.query, nil)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status != http.StatusOK {
				assert.Contains(t, decode(t, w).Error.Details, "event_type")
				return
			}
			assert.Equal(t, tt.want, decodeData[api.PreviewResponse](t, w).JobID)
		})
	}
}

func TestPreviewJobID_DoesNotReserve(t *testing.T) {
	env := newAPIEnv(t)

	for i := 0; i < 2; i++ {
		w := do(t, env.router, http.MethodGet, "/api/v1/job-ids/preview?event_type=SI", nil)
		assert.Equal(t, "20260227-SI-01", decodeData[api.PreviewResponse](t, w).JobID)
	}

	env.createEvent(t)
	w := do(t, env.router, http.MethodGet, "/api/v1/job-ids/preview?event_type=WED", nil)
	assert.Equal(t, "20260227-WED-02", decodeData[api.PreviewResponse](t, w).JobID)
}

func TestCreateEvent(t *testing.T) {
	env := newAPIEnv(t)

	first := env.createEvent(t)
	assert.Equal(t, "20260227-SI-01", first.JobID)
	assert.Equal(t, "Product Launch", first.Name)
	assert.Equal(t, "2026-03-09", first.SetupDate)
	assert.Equal(t, "2026-03-10", first.EventDate)
	require.NotNil(t, first.EventTypeID)
	assert.Equal(t, env.fx.Seminar.ID, *first.EventTypeID)

	second := env.createEvent(t)
	assert.Equal(t, "20260227-SI-02", second.JobID)

	venues, err := env.q.ListVenuesByEvent(context.Background(), first.ID)
	require.NoError(t, err)
	require.Len(t, venues, 1)
	assert.Equal(t, "Main Hall", venues[0].Name)
}

func TestCreateEvent_MultiDay(t *testing.T) {
	env := newAPIEnv(t)

	body := provisionBody(env.fx.Wedding.ID)
	body["is_multiple_days"] = true
	body["additional_venues"] = []map[string]string{{"name": "Garden"}}
	body["additional_dates"] = []string{"2026-03-11", "2026-03-12"}

	w := do(t, env.router, http.MethodPost, "/api/v1/events", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	event := decodeData[api.EventResponse](t, w)
	assert.Equal(t, "20260227-WED-01", event.JobID)
	assert.True(t, event.IsMultipleDays)

	dates, err := env.q.ListEventDatesByEvent(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Len(t, dates, 2)
}

func TestCreateEvent_Validation(t *testing.T) {
	env := newAPIEnv(t)

	tests := []struct {
		name  string
		edit  func(map[string]any)
		field string
	}{
		{"missing name", func(b map[string]any) { b["name"] = " " }, "name"},
		{"missing type", func(b map[string]any) { delete(b, "event_type_id") }, "event_type_id"},
		{"bad setup date", func(b map[string]any) { b["setup_date"] = "09/03/2026" }, "setup_date"},
		{"missing event date", func(b map[string]any) { delete(b, "event_date") }, "event_date"},
		{"setup after event", func(b map[string]any) { b["setup_date"] = "2026-03-11" }, "event_date"},
		{"missing venue", func(b map[string]any) { delete(b, "primary_venue") }, "venue.name"},
		{"dates on single-day event", func(b map[string]any) { b["additional_dates"] = []string{"2026-03-11"} }, "additional_dates"},
		{"empty additional date", func(b map[string]any) { b["additional_dates"] = []string{""} }, "additional_dates[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := provisionBody(env.fx.Seminar.ID)
			tt.edit(body)

			w := do(t, env.router, http.MethodPost, "/api/v1/events", body)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
			res := decode(t, w)
			assert.Equal(t, "validation_error", res.Error.Code)
			assert.Contains(t, res.Error.Details, tt.field)
		})
	}

	_, err := env.q.LatestJobIDWithPrefix(context.Background(), "20260227-")
	assert.Error(t, err, "rejected forms must not write events")
}

func TestCreateEvent_UnknownType(t *testing.T) {
	env := newAPIEnv(t)

	w := do(t, env.router, http.MethodPost, "/api/v1/events", provisionBody(999))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Equal(t, "unknown event type", decode(t, w).Error.Details["event_type_id"])
}

func TestAddVenues(t *testing.T) {
	env := newAPIEnv(t)
	event := env.createEvent(t)

	path := "/api/v1/events/" + itoa(event.ID) + "/venues"
	w := do(t, env.router, http.MethodPost, path, map[string]any{
		"venues": []map[string]string{{"name": "Annex"}, {"name": "Terrace", "address": "Roof"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	venues := decodeData[[]api.VenueResponse](t, w)
	require.Len(t, venues, 3, "the response lists every venue of the event")
	assert.Equal(t, "Main Hall", venues[0].Name)
	assert.Equal(t, int64(2), venues[1].Order)
	assert.Equal(t, int64(3), venues[2].Order)

	w = do(t, env.router, http.MethodPost, path, map[string]any{"venues": []map[string]string{}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, env.router, http.MethodPost, "/api/v1/events/9999/venues", map[string]any{
		"venues": []map[string]string{{"name": "Ghost"}},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, env.router, http.MethodPost, "/api/v1/events/abc/venues", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddDates(t *testing.T) {
	env := newAPIEnv(t)

	body := provisionBody(env.fx.Seminar.ID)
	body["is_multiple_days"] = true
	w := do(t, env.router, http.MethodPost, "/api/v1/events", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	multi := decodeData[api.EventResponse](t, w)

	path := "/api/v1/events/" + itoa(multi.ID) + "/dates"
	w = do(t, env.router, http.MethodPost, path, map[string]any{"dates": []string{"2026-03-11", "2026-03-12"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	dates := decodeData[[]api.EventDateResponse](t, w)
	require.Len(t, dates, 2)
	assert.Equal(t, "2026-03-11", dates[0].Date)

	w = do(t, env.router, http.MethodPost, path, map[string]any{"dates": []string{"2026-03-12"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "dates must follow the last stored date")

	w = do(t, env.router, http.MethodPost, path, map[string]any{"dates": []string{"March 13"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode(t, w).Error.Details, "dates[0]")

	single := env.createEvent(t)
	w = do(t, env.router, http.MethodPost, "/api/v1/events/"+itoa(single.ID)+"/dates",
		map[string]any{"dates": []string{"2026-03-11"}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "event is not a multi-day event", decode(t, w).Error.Details["dates"])
}

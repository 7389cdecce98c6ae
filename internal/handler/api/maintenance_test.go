// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/evops/internal/handler/api"
	"github.com/olegiv/evops/internal/model"
	"github.com/olegiv/evops/internal/scheduler"
	"github.com/olegiv/evops/internal/store"
	"github.com/olegiv/evops/internal/testutil"
)

func TestAuditFindings(t *testing.T) {
	env := newAPIEnv(t)

	w := do(t, env.router, http.MethodGet, "/api/v1/audit/findings", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, decodeData[[]api.FindingResponse](t, w))

	item := env.createItem(t, env.fx.Sony.ID)
	require.NoError(t, env.q.UpdateItemStatus(context.Background(), store.UpdateItemStatusParams{
		ID: item.ID, Status: model.ItemStatusInUse, UpdatedAt: testNow,
	}))

	w = do(t, env.router, http.MethodGet, "/api/v1/audit/findings", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	findings := decodeData[[]api.FindingResponse](t, w)
	require.Len(t, findings, 1)
	assert.Equal(t, store.FindingInUseUnassigned, findings[0].Kind)
	assert.Equal(t, item.AssetCode, findings[0].AssetCode)
}

func TestListActivity(t *testing.T) {
	env := newAPIEnv(t)
	ctx := context.Background()
	for i, msg := range []string{"older", "newer"} {
		_, err := env.q.CreateActivity(ctx, store.CreateActivityParams{
			Level:     "WARN",
			Category:  model.ActivityCategorySystem,
			Message:   msg,
			Metadata:  "{}",
			CreatedAt: testNow.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	w := do(t, env.router, http.MethodGet, "/api/v1/activity", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	entries := decodeData[[]store.Activity](t, w)
	require.Len(t, entries, 2)
	assert.Equal(t, "newer", entries[0].Message)

	w = do(t, env.router, http.MethodGet, "/api/v1/activity?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]store.Activity](t, w), 1)

	for _, bad := range []string{"0", "-3", "ten"} {
		w = do(t, env.router, http.MethodGet, "/api/v1/activity?limit="+bad, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "limit=%s", bad)
	}
}

func TestOptionalMaintenanceRoutes(t *testing.T) {
	router := mount(api.NewHandler(api.Deps{Logger: testutil.TestLoggerSilent()}))

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/v1/audit/findings", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/v1/activity", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodPost, "/api/v1/jobs/consistency_audit/run", nil).Code)

	w := do(t, router, http.MethodGet, "/api/v1/jobs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeData[[]scheduler.JobInfo](t, w))
}

// stubJobs records triggered job names.
type stubJobs struct {
	jobs      []scheduler.JobInfo
	err       error
	triggered []string
}

func (s *stubJobs) List() []scheduler.JobInfo { return s.jobs }

func (s *stubJobs) TriggerNow(_ context.Context, name string) error {
	s.triggered = append(s.triggered, name)
	return s.err
}

func TestJobs(t *testing.T) {
	jobs := &stubJobs{jobs: []scheduler.JobInfo{{Name: scheduler.JobConsistencyAudit, Schedule: "*/15 * * * *"}}}
	router := mount(api.NewHandler(api.Deps{Jobs: jobs, Logger: testutil.TestLoggerSilent()}))

	w := do(t, router, http.MethodGet, "/api/v1/jobs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decodeData[[]scheduler.JobInfo](t, w)
	require.Len(t, listed, 1)
	assert.Equal(t, scheduler.JobConsistencyAudit, listed[0].Name)

	w = do(t, router, http.MethodPost, "/api/v1/jobs/consistency_audit/run", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, map[string]string{"name": "consistency_audit", "status": "completed"}, decodeData[map[string]string](t, w))
	assert.Equal(t, []string{"consistency_audit"}, jobs.triggered)

	jobs.err = scheduler.ErrJobNotFound
	w = do(t, router, http.MethodPost, "/api/v1/jobs/nope/run", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	jobs.err = errors.New("store unavailable")
	w = do(t, router, http.MethodPost, "/api/v1/jobs/consistency_audit/run", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "job_failed", decode(t, w).Error.Code)
}

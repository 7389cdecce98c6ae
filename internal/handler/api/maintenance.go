// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/evops/internal/scheduler"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

// AuditFindings handles GET /audit/findings.
func (h *Handler) AuditFindings(w http.ResponseWriter, r *http.Request) {
	if h.auditor == nil {
		WriteNotFound(w, "Audit is not available")
		return
	}
	findings, err := h.auditor.Audit(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, findingResponses(findings))
}

// ListActivity handles GET /activity?limit=.
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	if h.activity == nil {
		WriteNotFound(w, "Activity log is not available")
		return
	}

	limit := int64(defaultActivityLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			WriteValidationError(w, map[string]string{"limit": "must be a positive integer"})
			return
		}
		limit = min(n, maxActivityLimit)
	}

	entries, err := h.activity.ListRecentActivity(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, entries)
}

// ListJobs handles GET /jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, _ *http.Request) {
	if h.jobs == nil {
		WriteSuccess(w, []scheduler.JobInfo{})
		return
	}
	WriteSuccess(w, h.jobs.List())
}

// RunJob handles POST /jobs/{name}/run. The job runs synchronously.
func (h *Handler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.jobs == nil {
		WriteNotFound(w, "job not found: "+name)
		return
	}

	if err := h.jobs.TriggerNow(r.Context(), name); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			WriteNotFound(w, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "manual job run failed", "name", name, "error", err)
		WriteError(w, http.StatusInternalServerError, "job_failed", err.Error(), nil)
		return
	}
	WriteSuccess(w, map[string]string{"name": name, "status": "completed"})
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the /api/v1 router. writeLimit wraps every mutating route;
// nil leaves them unlimited.
func (h *Handler) Routes(writeLimit func(http.Handler) http.Handler) chi.Router {
	if writeLimit == nil {
		writeLimit = func(next http.Handler) http.Handler { return next }
	}

	r := chi.NewRouter()

	r.Get("/job-ids/preview", h.PreviewJobID)
	r.Get("/asset-codes/preview", h.PreviewAssetCode)
	r.Get("/audit/findings", h.AuditFindings)
	r.Get("/activity", h.ListActivity)
	r.Get("/jobs", h.ListJobs)
	r.Get("/catalog", h.ExportCatalog)

	r.Group(func(r chi.Router) {
		r.Use(writeLimit)

		r.Post("/events", h.CreateEvent)
		r.Post("/events/{id}/venues", h.AddVenues)
		r.Post("/events/{id}/dates", h.AddDates)
		r.Post("/events/{id}/assignments", h.CreateAssignments)
		r.Delete("/assignments/{id}", h.DeleteAssignment)
		r.Post("/items", h.CreateItem)
		r.Put("/items/{id}/status", h.SetItemStatus)
		r.Post("/jobs/{name}/run", h.RunJob)
		r.Post("/catalog/import", h.ImportCatalog)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteNotFound(w, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	return r
}

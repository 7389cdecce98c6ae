// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/olegiv/evops/internal/transfer"
)

// ExportCatalog handles GET /catalog.
func (h *Handler) ExportCatalog(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		WriteNotFound(w, "Catalog export is not available")
		return
	}
	data, err := h.exporter.Export(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, data)
}

// ImportCatalog handles POST /catalog/import?dry_run=true&conflict=skip|overwrite.
func (h *Handler) ImportCatalog(w http.ResponseWriter, r *http.Request) {
	if h.importer == nil {
		WriteNotFound(w, "Catalog import is not available")
		return
	}

	query := r.URL.Query()
	strategy, err := transfer.ParseConflictStrategy(query.Get("conflict"))
	if err != nil {
		WriteValidationError(w, map[string]string{"conflict": "must be skip or overwrite"})
		return
	}
	dryRun := false
	if raw := query.Get("dry_run"); raw != "" {
		if dryRun, err = strconv.ParseBool(raw); err != nil {
			WriteValidationError(w, map[string]string{"dry_run": "must be a boolean"})
			return
		}
	}

	var data transfer.ExportData
	if !decodeJSON(w, r, &data) {
		return
	}

	result, err := h.importer.Import(r.Context(), &data, transfer.ImportOptions{DryRun: dryRun, ConflictStrategy: strategy})
	if errors.Is(err, transfer.ErrInvalidCatalog) && result != nil {
		details := make(map[string]string, len(result.Errors))
		for _, e := range result.Errors {
			details[e.Entity+"."+e.ID] = e.Message
		}
		WriteJSON(w, http.StatusUnprocessableEntity, Response{
			Data:  result,
			Error: &ErrorDetail{Code: "invalid_catalog", Message: "Catalog rejected", Details: details},
		})
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, result)
}

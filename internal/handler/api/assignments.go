// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"

	"github.com/olegiv/evops/internal/service"
)

// AssignRequest is the body of POST /events/{id}/assignments.
type AssignRequest struct {
	ItemIDs []int64 `json:"item_ids"`
}

// CreateAssignments handles POST /events/{id}/assignments. Each item is
// assigned on its own: the response is 201 when all succeeded and 207 with
// per-item errors otherwise.
func (h *Handler) CreateAssignments(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requireIDParam(w, r, "event")
	if !ok {
		return
	}
	var req AssignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.ItemIDs) == 0 {
		WriteValidationError(w, map[string]string{"item_ids": "at least one item is required"})
		return
	}

	results := h.assignments.AssignMany(r.Context(), eventID, req.ItemIDs)

	out := make([]AssignResultResponse, len(results))
	failed := 0
	for i, res := range results {
		out[i].ItemID = res.ItemID
		if res.Err != nil {
			failed++
			out[i].Error = h.assignErrorDetail(r, res)
			continue
		}
		out[i].Assignment = assignmentResponse(*res.Assignment)
	}

	status := http.StatusCreated
	if failed > 0 {
		status = http.StatusMultiStatus
	}
	WriteJSON(w, status, Response{Data: out})
}

func (h *Handler) assignErrorDetail(r *http.Request, res service.AssignResult) *ErrorDetail {
	var (
		notFound   *service.NotFoundError
		conflict   *service.ConflictError
		validation *service.ValidationError
		compFailed *service.CompensationFailedError
		depWrite   *service.DependencyWriteError
	)
	err := res.Err
	switch {
	case errors.As(err, &notFound):
		return &ErrorDetail{Code: "not_found", Message: err.Error()}
	case errors.As(err, &conflict):
		return &ErrorDetail{Code: "conflict", Message: err.Error()}
	case errors.As(err, &validation):
		return &ErrorDetail{Code: "validation_error", Message: "Validation failed", Details: validation.Fields}
	case errors.As(err, &compFailed):
		h.logger.ErrorContext(r.Context(), "assignment cleanup failed", "item_id", res.ItemID, "error", err)
		return &ErrorDetail{Code: "compensation_failed", Message: err.Error()}
	case errors.As(err, &depWrite):
		return &ErrorDetail{Code: "dependency_write_failed", Message: err.Error(), Details: map[string]string{"step": depWrite.Step}}
	default:
		h.logger.ErrorContext(r.Context(), "assignment failed", "item_id", res.ItemID, "error", err)
		return &ErrorDetail{Code: "internal_error", Message: "Internal server error"}
	}
}

// DeleteAssignment handles DELETE /assignments/{id}?item_id=.
func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID, ok := requireIDParam(w, r, "assignment")
	if !ok {
		return
	}
	itemID, present, err := queryID(r, "item_id")
	switch {
	case err != nil:
		WriteValidationError(w, map[string]string{"item_id": err.Error()})
		return
	case !present:
		WriteValidationError(w, map[string]string{"item_id": "is required"})
		return
	}

	if err := h.assignments.Unassign(r.Context(), assignmentID, itemID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

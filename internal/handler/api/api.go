// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON API handlers for event provisioning,
// inventory and assignments.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/evops/internal/scheduler"
	"github.com/olegiv/evops/internal/service"
	"github.com/olegiv/evops/internal/store"
	"github.com/olegiv/evops/internal/transfer"
	"github.com/olegiv/evops/internal/util"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// Provisioner creates events and resumes partial provisioning.
type Provisioner interface {
	PreviewJobID(ctx context.Context, typeCode string) (string, error)
	Provision(ctx context.Context, in service.ProvisionInput) (store.Event, error)
	AddVenues(ctx context.Context, eventID int64, venues []service.VenueInput) ([]store.Venue, error)
	AddDates(ctx context.Context, eventID int64, dates []time.Time) ([]store.EventDate, error)
}

// Inventory previews asset codes and creates items.
type Inventory interface {
	PreviewAssetCode(ctx context.Context, productID int64) (string, error)
	PreviewScopeAssetCode(ctx context.Context, categoryID int64, brand string) (string, error)
	CreateItem(ctx context.Context, in service.CreateItemInput) (store.Item, error)
}

// Assignments links items to events and edits item status.
type Assignments interface {
	AssignMany(ctx context.Context, eventID int64, itemIDs []int64) []service.AssignResult
	Unassign(ctx context.Context, assignmentID, itemID int64) error
	SetStatus(ctx context.Context, itemID int64, status string) (store.Item, error)
}

// Auditor runs the consistency audit on demand.
type Auditor interface {
	Audit(ctx context.Context) ([]store.StatusFinding, error)
}

// Jobs lists and triggers scheduled jobs.
type Jobs interface {
	List() []scheduler.JobInfo
	TriggerNow(ctx context.Context, name string) error
}

// ActivityLog reads persisted warnings and errors.
type ActivityLog interface {
	ListRecentActivity(ctx context.Context, limit int64) ([]store.Activity, error)
}

// CatalogExporter reads the reference catalog.
type CatalogExporter interface {
	Export(ctx context.Context) (*transfer.ExportData, error)
}

// CatalogImporter loads a reference catalog document.
type CatalogImporter interface {
	Import(ctx context.Context, data *transfer.ExportData, opts transfer.ImportOptions) (*transfer.ImportResult, error)
}

// Deps are the services behind the API. Auditor, Jobs, Activity and the
// catalog services are optional; their routes answer 404 when nil.
type Deps struct {
	Provisioner     Provisioner
	Inventory       Inventory
	Assignments     Assignments
	Auditor         Auditor
	Jobs            Jobs
	Activity        ActivityLog
	CatalogExporter CatalogExporter
	CatalogImporter CatalogImporter
	Logger          *slog.Logger
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	provisioner Provisioner
	inventory   Inventory
	assignments Assignments
	auditor     Auditor
	jobs        Jobs
	activity    ActivityLog
	exporter    CatalogExporter
	importer    CatalogImporter
	logger      *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		provisioner: d.Provisioner,
		inventory:   d.Inventory,
		assignments: d.Assignments,
		auditor:     d.Auditor,
		jobs:        d.Jobs,
		activity:    d.Activity,
		exporter:    d.CatalogExporter,
		importer:    d.CatalogImporter,
		logger:      logger,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a 200 JSON response.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Data: data})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Details: details}})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, nil)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// writeServiceError maps the service layer's typed errors onto HTTP responses.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *service.ValidationError
		notFound   *service.NotFoundError
		conflict   *service.ConflictError
		partial    *service.PartialProvisioningError
		compFailed *service.CompensationFailedError
		provFailed *service.ProvisioningFailedError
		depWrite   *service.DependencyWriteError
	)

	switch {
	case errors.As(err, &validation):
		WriteValidationError(w, validation.Fields)
	case errors.As(err, &notFound):
		WriteNotFound(w, err.Error())
	case errors.As(err, &conflict):
		WriteError(w, http.StatusConflict, "conflict", err.Error(), nil)
	case errors.As(err, &partial):
		details := map[string]string{"completed": strings.Join(partial.Completed, ",")}
		var step *service.DependencyWriteError
		if errors.As(partial.Err, &step) {
			details["failed_step"] = step.Step
		}
		WriteJSON(w, http.StatusMultiStatus, Response{
			Data:  eventResponse(partial.Event),
			Error: &ErrorDetail{Code: "partial_provisioning", Message: err.Error(), Details: details},
		})
	case errors.As(err, &compFailed):
		h.logger.ErrorContext(r.Context(), "compensation failed", "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusInternalServerError, "compensation_failed", err.Error(), nil)
	case errors.As(err, &provFailed):
		WriteError(w, http.StatusBadGateway, "provisioning_failed", err.Error(), map[string]string{"job_id": provFailed.JobID})
	case errors.As(err, &depWrite):
		h.logger.ErrorContext(r.Context(), "dependency write failed", "path", r.URL.Path, "step", depWrite.Step, "error", err)
		WriteError(w, http.StatusInternalServerError, "dependency_write_failed", err.Error(), map[string]string{"step": depWrite.Step})
	default:
		h.logger.ErrorContext(r.Context(), "api request failed", "path", r.URL.Path, "error", err)
		WriteInternalError(w, "Internal server error")
	}
}

// decodeJSON reads a JSON body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteBadRequest(w, "Invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// requireIDParam parses the {id} URL parameter, writing a 400 on failure.
func requireIDParam(w http.ResponseWriter, r *http.Request, entityName string) (int64, bool) {
	id, ok := util.ParsePositiveID(chi.URLParam(r, "id"))
	if !ok {
		WriteBadRequest(w, "Invalid "+entityName+" ID")
	}
	return id, ok
}

// queryID parses an optional positive integer query parameter.
func queryID(r *http.Request, key string) (id int64, present bool, err error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, false, nil
	}
	id, ok := util.ParsePositiveID(raw)
	if !ok {
		return 0, true, errors.New("must be a positive integer")
	}
	return id, true, nil
}

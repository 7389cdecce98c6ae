// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/evops/internal/service"
)

// ProvisionRequest is the body of POST /events.
type ProvisionRequest struct {
	Name             string               `json:"name"`
	Client           string               `json:"client"`
	Description      string               `json:"description"`
	EventTypeID      *int64               `json:"event_type_id"`
	SetupDate        string               `json:"setup_date"`
	EventDate        string               `json:"event_date"`
	IsMultipleDays   bool                 `json:"is_multiple_days"`
	CreatedBy        string               `json:"created_by"`
	PrimaryVenue     service.VenueInput   `json:"primary_venue"`
	AdditionalVenues []service.VenueInput `json:"additional_venues"`
	AdditionalDates  []string             `json:"additional_dates"`
}

// AddVenuesRequest is the body of POST /events/{id}/venues.
type AddVenuesRequest struct {
	Venues []service.VenueInput `json:"venues"`
}

// AddDatesRequest is the body of POST /events/{id}/dates.
type AddDatesRequest struct {
	Dates []string `json:"dates"`
}

// PreviewJobID handles GET /job-ids/preview?event_type=CODE.
func (h *Handler) PreviewJobID(w http.ResponseWriter, r *http.Request) {
	jobID, err := h.provisioner.PreviewJobID(r.Context(), r.URL.Query().Get("event_type"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, PreviewResponse{JobID: jobID})
}

// CreateEvent handles POST /events.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req ProvisionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in, fieldErrs := req.toInput()
	if len(fieldErrs) > 0 {
		WriteValidationError(w, fieldErrs)
		return
	}

	event, err := h.provisioner.Provision(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, eventResponse(event))
}

// AddVenues handles POST /events/{id}/venues.
func (h *Handler) AddVenues(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requireIDParam(w, r, "event")
	if !ok {
		return
	}
	var req AddVenuesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	venues, err := h.provisioner.AddVenues(r.Context(), eventID, req.Venues)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, venueResponses(venues))
}

// AddDates handles POST /events/{id}/dates.
func (h *Handler) AddDates(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requireIDParam(w, r, "event")
	if !ok {
		return
	}
	var req AddDatesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fieldErrs := map[string]string{}
	dates := parseDates(req.Dates, "dates", fieldErrs)
	if len(fieldErrs) > 0 {
		WriteValidationError(w, fieldErrs)
		return
	}

	added, err := h.provisioner.AddDates(r.Context(), eventID, dates)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, eventDateResponses(added))
}

// toInput converts the request, collecting date format errors. Missing dates
// stay zero and are reported by the service's validation.
func (req ProvisionRequest) toInput() (service.ProvisionInput, map[string]string) {
	fieldErrs := map[string]string{}
	in := service.ProvisionInput{
		Name:             req.Name,
		Client:           req.Client,
		Description:      req.Description,
		EventTypeID:      req.EventTypeID,
		SetupDate:        parseDate(req.SetupDate, "setup_date", fieldErrs),
		EventDate:        parseDate(req.EventDate, "event_date", fieldErrs),
		IsMultipleDays:   req.IsMultipleDays,
		CreatedBy:        req.CreatedBy,
		PrimaryVenue:     req.PrimaryVenue,
		AdditionalVenues: req.AdditionalVenues,
		AdditionalDates:  parseDates(req.AdditionalDates, "additional_dates", fieldErrs),
	}
	return in, fieldErrs
}

func parseDate(raw, field string, fieldErrs map[string]string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		fieldErrs[field] = "must be a date formatted YYYY-MM-DD"
		return time.Time{}
	}
	return t
}

func parseDates(raw []string, field string, fieldErrs map[string]string) []time.Time {
	if len(raw) == 0 {
		return nil
	}
	out := make([]time.Time, 0, len(raw))
	for i, s := range raw {
		name := field + "[" + strconv.Itoa(i) + "]"
		if strings.TrimSpace(s) == "" {
			fieldErrs[name] = "is required"
			continue
		}
		out = append(out, parseDate(s, name, fieldErrs))
	}
	return out
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"fmt"
	"strings"
	"time"
)

const (
	maxNameLength    = 200
	maxAddressLength = 500
)

// ValidateProvision checks an event form before any write. Dates are compared
// by calendar day.
func ValidateProvision(in ProvisionInput) error {
	v := validationErrors{}

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		v.add("name", "is required")
	case len(name) > maxNameLength:
		v.add("name", fmt.Sprintf("must be at most %d characters", maxNameLength))
	}

	if in.EventTypeID == nil || *in.EventTypeID <= 0 {
		v.add("event_type_id", "is required")
	}

	validateVenue(v, "venue", in.PrimaryVenue)
	for i, venue := range in.AdditionalVenues {
		validateVenue(v, fmt.Sprintf("additional_venues[%d]", i), venue)
	}

	if in.SetupDate.IsZero() {
		v.add("setup_date", "is required")
	}
	if in.EventDate.IsZero() {
		v.add("event_date", "is required")
	}
	if !in.IsMultipleDays && len(in.AdditionalDates) > 0 {
		v.add("additional_dates", "only allowed for multi-day events")
	}
	if in.SetupDate.IsZero() || in.EventDate.IsZero() {
		return v.err()
	}

	setup := dateOnly(in.SetupDate)
	event := dateOnly(in.EventDate)
	if !event.After(setup) {
		v.add("event_date", "must be after the setup date")
	}

	last := event
	if in.IsMultipleDays {
		validateDateChain(v, event, "event date", in.AdditionalDates, 0)
		if n := len(in.AdditionalDates); n > 0 {
			last = dateOnly(in.AdditionalDates[n-1])
		}
	}
	if !setup.Before(last) {
		v.add("setup_date", "must be before the last event date")
	}

	return v.err()
}

func validateVenue(v validationErrors, field string, venue VenueInput) {
	name := strings.TrimSpace(venue.Name)
	switch {
	case name == "":
		v.add(field+".name", "is required")
	case len(name) > maxNameLength:
		v.add(field+".name", fmt.Sprintf("must be at most %d characters", maxNameLength))
	}
	if len(venue.Address) > maxAddressLength {
		v.add(field+".address", fmt.Sprintf("must be at most %d characters", maxAddressLength))
	}
}

// validateDateChain requires every date to be strictly after the previous one,
// the first one strictly after prev. Field indexes start at offset.
func validateDateChain(v validationErrors, prev time.Time, prevName string, dates []time.Time, offset int) {
	for i, d := range dates {
		field := fmt.Sprintf("additional_dates[%d]", offset+i)
		if d.IsZero() {
			v.add(field, "is required")
			return
		}
		day := dateOnly(d)
		if !day.After(prev) {
			v.add(field, "must be after the "+prevName)
		}
		prev = day
		prevName = "previous date"
	}
}

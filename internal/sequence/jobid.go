// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sequence derives human-readable identifiers: job IDs for events
// (YYYYMMDD-TYPE-SEQ) and asset codes for items (CATEGORY-BRAND-SEQ).
//
// The generators are pure functions. Issuer feeds them from persisted
// history so that every call reflects the store's current state.
package sequence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// PlaceholderType stands in for the event type code until one is selected.
	PlaceholderType = "XX"

	jobDateLayout = "20060102"
	jobSeqWidth   = 2

	minTypeCodeLen = 2
	maxTypeCodeLen = 6
)

// ErrMalformedJobID is returned by ParseJobID for strings not shaped YYYYMMDD-TYPE-SEQ.
var ErrMalformedJobID = errors.New("malformed job id")

// JobID is a parsed job identifier.
type JobID struct {
	Date string // YYYYMMDD
	Type string
	Seq  int
}

// String formats the job ID with a zero-padded sequence.
func (j JobID) String() string {
	return fmt.Sprintf("%s-%s-%0*d", j.Date, j.Type, jobSeqWidth, j.Seq)
}

// ParseJobID splits a job ID into its date, type and sequence segments.
func ParseJobID(s string) (JobID, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return JobID{}, fmt.Errorf("%w: %q", ErrMalformedJobID, s)
	}
	if _, err := time.Parse(jobDateLayout, parts[0]); err != nil || len(parts[0]) != len(jobDateLayout) {
		return JobID{}, fmt.Errorf("%w: bad date in %q", ErrMalformedJobID, s)
	}
	if parts[1] == "" {
		return JobID{}, fmt.Errorf("%w: empty type in %q", ErrMalformedJobID, s)
	}
	seq, err := strconv.Atoi(parts[2])
	if err != nil || seq < 0 {
		return JobID{}, fmt.Errorf("%w: bad sequence in %q", ErrMalformedJobID, s)
	}
	return JobID{Date: parts[0], Type: parts[1], Seq: seq}, nil
}

// DayPrefix returns the job ID prefix shared by every job issued on day.
func DayPrefix(day time.Time) string {
	return day.Format(jobDateLayout) + "-"
}

// NextJobID computes the job ID following lastIssuedToday.
//
// An empty typeCode yields the XX placeholder. An empty lastIssuedToday, one
// from another day, or one that fails to parse starts the day at sequence 01.
func NextJobID(today time.Time, lastIssuedToday, typeCode string) string {
	date := today.Format(jobDateLayout)

	seq := 1
	if last, err := ParseJobID(lastIssuedToday); err == nil && last.Date == date {
		seq = last.Seq + 1
	}

	return JobID{Date: date, Type: normalizeType(typeCode), Seq: seq}.String()
}

// DeriveJobID recomputes a job ID for a newly selected event type, keeping the
// date and sequence segments byte-identical. Malformed input is returned unchanged.
func DeriveJobID(template, typeCode string) string {
	parts := strings.Split(template, "-")
	if len(parts) != 3 {
		return template
	}
	parts[1] = normalizeType(typeCode)
	return strings.Join(parts, "-")
}

// ValidTypeCode reports whether code is a usable event type code:
// 2 to 6 uppercase letters or digits.
func ValidTypeCode(code string) bool {
	if len(code) < minTypeCodeLen || len(code) > maxTypeCodeLen {
		return false
	}
	return isUpperAlnum(code)
}

func normalizeType(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return PlaceholderType
	}
	return code
}

func isUpperAlnum(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

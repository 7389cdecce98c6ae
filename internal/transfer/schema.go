// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package transfer exports and imports the reference catalog: event types,
// equipment categories and products. Events, items and assignments are
// operational data and never travel through it.
package transfer

import (
	"fmt"
	"time"
)

// ExportVersion is the current version of the catalog format.
const ExportVersion = "1.0"

// ExportData is the complete catalog document.
type ExportData struct {
	Version    string            `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	EventTypes []ExportEventType `json:"event_types,omitempty"`
	Categories []ExportCategory  `json:"categories,omitempty"`
	Products   []ExportProduct   `json:"products,omitempty"`
}

// ExportEventType is an event type keyed by its code.
type ExportEventType struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ExportCategory is an equipment category keyed by its code.
type ExportCategory struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ExportProduct refers to its category by code. An empty BrandCode is
// derived from Brand on import.
type ExportProduct struct {
	Category  string `json:"category"`
	Brand     string `json:"brand"`
	BrandCode string `json:"brand_code,omitempty"`
	Model     string `json:"model"`
}

// ConflictStrategy decides what happens to catalog entries that already exist.
type ConflictStrategy string

const (
	// ConflictSkip keeps the stored entry.
	ConflictSkip ConflictStrategy = "skip"
	// ConflictOverwrite replaces the stored name. Codes never change since
	// issued identifiers embed them.
	ConflictOverwrite ConflictStrategy = "overwrite"
)

// ParseConflictStrategy accepts "", "skip" and "overwrite".
func ParseConflictStrategy(s string) (ConflictStrategy, error) {
	switch ConflictStrategy(s) {
	case "", ConflictSkip:
		return ConflictSkip, nil
	case ConflictOverwrite:
		return ConflictOverwrite, nil
	}
	return "", fmt.Errorf("unknown conflict strategy %q", s)
}

// ImportOptions configures an import.
type ImportOptions struct {
	DryRun           bool             `json:"dry_run"`
	ConflictStrategy ConflictStrategy `json:"conflict_strategy"`
}

// DefaultImportOptions returns options that skip existing entries.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{ConflictStrategy: ConflictSkip}
}

// Entity names used in ImportResult counters and errors.
const (
	EntityEventTypes = "event_types"
	EntityCategories = "categories"
	EntityProducts   = "products"
)

// ImportError describes one rejected entry.
type ImportError struct {
	Entity  string `json:"entity"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (e ImportError) Error() string {
	return e.Entity + " " + e.ID + ": " + e.Message
}

// ImportResult counts what an import did, or would do on a dry run.
type ImportResult struct {
	DryRun  bool           `json:"dry_run"`
	Created map[string]int `json:"created"`
	Updated map[string]int `json:"updated"`
	Skipped map[string]int `json:"skipped"`
	Errors  []ImportError  `json:"errors,omitempty"`
}

// NewImportResult creates an empty result.
func NewImportResult(dryRun bool) *ImportResult {
	return &ImportResult{
		DryRun:  dryRun,
		Created: make(map[string]int),
		Updated: make(map[string]int),
		Skipped: make(map[string]int),
	}
}

// AddError records a rejected entry.
func (r *ImportResult) AddError(entity, id, message string) {
	r.Errors = append(r.Errors, ImportError{Entity: entity, ID: id, Message: message})
}

// HasErrors reports whether any entry was rejected.
func (r *ImportResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// TotalCreated returns the number of created entries across entities.
func (r *ImportResult) TotalCreated() int {
	n := 0
	for _, c := range r.Created {
		n += c
	}
	return n
}

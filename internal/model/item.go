// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model holds domain constants shared by the store, services and handlers.
package model

// Item statuses
const (
	ItemStatusAvailable   = "available"
	ItemStatusInUse       = "in_use"
	ItemStatusMaintenance = "maintenance"
)

// ItemStatuses lists every valid item status.
var ItemStatuses = []string{
	ItemStatusAvailable,
	ItemStatusInUse,
	ItemStatusMaintenance,
}

// IsValidItemStatus reports whether s is a known item status.
func IsValidItemStatus(s string) bool {
	for _, status := range ItemStatuses {
		if s == status {
			return true
		}
	}
	return false
}

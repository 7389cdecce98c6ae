// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import "context"

// Audit finding kinds
const (
	FindingMaintenanceAssigned = "maintenance_assigned"
	FindingInUseUnassigned     = "in_use_unassigned"
	FindingAvailableAssigned   = "available_assigned"
)

// StatusFinding is an item whose status disagrees with its assignment.
type StatusFinding struct {
	Kind      string
	ItemID    int64
	AssetCode string
	Status    string
	EventID   int64 // zero when the item holds no assignment
}

// ListStatusFindings returns items whose status contradicts the presence or
// absence of an active assignment.
func (q *Queries) ListStatusFindings(ctx context.Context) ([]StatusFinding, error) {
	rows, err := q.query(ctx, `
		SELECT i.id, i.asset_code, i.status, COALESCE(a.event_id, 0)
		FROM items i
		LEFT JOIN assignments a ON a.item_id = i.id
		WHERE (i.status = 'maintenance' AND a.id IS NOT NULL)
		   OR (i.status = 'in_use' AND a.id IS NULL)
		   OR (i.status = 'available' AND a.id IS NOT NULL)
		ORDER BY i.id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var findings []StatusFinding
	for rows.Next() {
		var f StatusFinding
		if err := rows.Scan(&f.ItemID, &f.AssetCode, &f.Status, &f.EventID); err != nil {
			return nil, err
		}
		switch f.Status {
		case "maintenance":
			f.Kind = FindingMaintenanceAssigned
		case "in_use":
			f.Kind = FindingInUseUnassigned
		default:
			f.Kind = FindingAvailableAssigned
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

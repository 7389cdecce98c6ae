// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

type CreateActivityParams struct {
	Level     string
	Category  string
	Message   string
	Metadata  string
	CreatedAt time.Time
}

func (q *Queries) CreateActivity(ctx context.Context, arg CreateActivityParams) (int64, error) {
	return q.insert(ctx,
		"INSERT INTO activity_log (level, category, message, metadata, created_at) VALUES (?, ?, ?, ?, ?)",
		arg.Level, arg.Category, arg.Message, arg.Metadata, arg.CreatedAt,
	)
}

func (q *Queries) ListRecentActivity(ctx context.Context, limit int64) ([]Activity, error) {
	rows, err := q.query(ctx,
		"SELECT id, level, category, message, metadata, created_at FROM activity_log ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.Level, &a.Category, &a.Message, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteActivityBefore removes activity entries older than cutoff.
func (q *Queries) DeleteActivityBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.exec(ctx, "DELETE FROM activity_log WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

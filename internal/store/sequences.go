// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
)

// JobSequenceScope is the issued_sequences key of a job ID day prefix
// ("20260227-").
func JobSequenceScope(dayPrefix string) string {
	return "job:" + dayPrefix
}

// AssetSequenceScope is the issued_sequences key of an asset code scope
// prefix ("CAM-SNY-").
func AssetSequenceScope(scopePrefix string) string {
	return "asset:" + scopePrefix
}

// IssuedSequence returns the highest sequence ever inserted under scope, or 0
// when nothing was. Insert triggers on events and items keep the value; it
// never goes down when rows are deleted.
func (q *Queries) IssuedSequence(ctx context.Context, scope string) (int64, error) {
	var seq int64
	err := q.queryRow(ctx, "SELECT last_seq FROM issued_sequences WHERE scope = ?", scope).Scan(&seq)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, nil
	case err != nil:
		return 0, translateError(err)
	}
	return seq, nil
}

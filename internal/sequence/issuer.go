// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sequence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/evops/internal/store"
)

// Store is the persisted history the issuer reads from.
type Store interface {
	LatestJobIDWithPrefix(ctx context.Context, prefix string) (string, error)
	CountItemsWithAssetPrefix(ctx context.Context, prefix string) (int64, error)
	LatestAssetCodeWithPrefix(ctx context.Context, prefix string) (string, error)
	IssuedSequence(ctx context.Context, scope string) (int64, error)
}

// Issuer derives identifiers from the store's current state. It keeps no
// counters of its own; two issuers sharing a store agree with each other,
// and two concurrent calls may compute the same value. Uniqueness is left to
// the store's constraints.
//
// Sequence numbers are never reissued: the store's per-scope high-water mark
// outlives deleted events and items.
type Issuer struct {
	store Store
}

// NewIssuer creates an Issuer reading from s.
func NewIssuer(s Store) *Issuer {
	return &Issuer{store: s}
}

// LastJobIDForDay returns the job ID carrying the highest sequence issued on
// day, or "" if none. When that event was deleted the returned ID has the
// placeholder type.
func (i *Issuer) LastJobIDForDay(ctx context.Context, day time.Time) (string, error) {
	prefix := DayPrefix(day)
	last, err := i.store.LatestJobIDWithPrefix(ctx, prefix)
	switch {
	case errors.Is(err, store.ErrNotFound):
		last = ""
	case err != nil:
		return "", fmt.Errorf("finding latest job id: %w", err)
	}

	issued, err := i.store.IssuedSequence(ctx, store.JobSequenceScope(prefix))
	if err != nil {
		return "", fmt.Errorf("reading issued job sequence: %w", err)
	}
	if parsed, err := ParseJobID(last); err == nil && int64(parsed.Seq) >= issued {
		return last, nil
	}
	if issued == 0 {
		return last, nil
	}
	return JobID{Date: day.Format(jobDateLayout), Type: PlaceholderType, Seq: int(issued)}.String(), nil
}

// NextJobID derives the next job ID for today. An empty typeCode yields the
// XX placeholder.
func (i *Issuer) NextJobID(ctx context.Context, today time.Time, typeCode string) (string, error) {
	last, err := i.LastJobIDForDay(ctx, today)
	if err != nil {
		return "", err
	}
	return NextJobID(today, last, typeCode), nil
}

// IssuedInScope returns how many asset codes count as issued in a scope: the
// number of existing codes, raised to the highest sequence ever issued when
// deletions left that number behind.
func (i *Issuer) IssuedInScope(ctx context.Context, categoryCode, brandCode string) (int, error) {
	prefix := AssetScopePrefix(categoryCode, brandCode)

	count, err := i.store.CountItemsWithAssetPrefix(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("counting asset codes: %w", err)
	}

	issued := int(count)
	latest, err := i.store.LatestAssetCodeWithPrefix(ctx, prefix)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return 0, fmt.Errorf("finding latest asset code: %w", err)
	default:
		if seq, ok := ParseAssetSeq(latest); ok && seq > issued {
			issued = seq
		}
	}

	highWater, err := i.store.IssuedSequence(ctx, store.AssetSequenceScope(prefix))
	if err != nil {
		return 0, fmt.Errorf("reading issued asset sequence: %w", err)
	}
	return max(issued, int(highWater)), nil
}

// NextAssetCode derives the next asset code of a category/brand scope.
func (i *Issuer) NextAssetCode(ctx context.Context, categoryCode, brandCode string) (string, error) {
	issued, err := i.IssuedInScope(ctx, categoryCode, brandCode)
	if err != nil {
		return "", err
	}
	return NextAssetCode(categoryCode, brandCode, issued), nil
}

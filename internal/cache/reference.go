// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/olegiv/evops/internal/store"
)

// ReferenceStore loads the reference rows that Reference caches.
type ReferenceStore interface {
	GetEventTypeByID(ctx context.Context, id int64) (store.EventType, error)
	GetEventTypeByCode(ctx context.Context, code string) (store.EventType, error)
	GetCategoryByID(ctx context.Context, id int64) (store.Category, error)
	GetProductByID(ctx context.Context, id int64) (store.Product, error)
}

const (
	keyEventTypeID   = "ref:event_type:id:"
	keyEventTypeCode = "ref:event_type:code:"
	keyCategory      = "ref:category:"
	keyProduct       = "ref:product:"
	keyReference     = "ref:"
)

// Reference serves event types, categories and products through a cache.
// Lookup errors, including store.ErrNotFound, are returned unwrapped and
// never cached.
type Reference struct {
	store      ReferenceStore
	eventTypes *Typed[store.EventType]
	categories *Typed[store.Category]
	products   *Typed[store.Product]
}

// NewReference creates a cached reference lookup. A nil cache disables caching.
func NewReference(s ReferenceStore, c Cache, ttl time.Duration) *Reference {
	r := &Reference{store: s}
	if c != nil {
		r.eventTypes = NewTyped[store.EventType](c, ttl)
		r.categories = NewTyped[store.Category](c, ttl)
		r.products = NewTyped[store.Product](c, ttl)
	}
	return r
}

// EventTypeByID returns the event type with id.
func (r *Reference) EventTypeByID(ctx context.Context, id int64) (store.EventType, error) {
	load := func(ctx context.Context) (store.EventType, error) { return r.store.GetEventTypeByID(ctx, id) }
	if r.eventTypes == nil {
		return load(ctx)
	}
	return r.eventTypes.GetOrLoad(ctx, keyEventTypeID+strconv.FormatInt(id, 10), load)
}

// EventTypeByCode returns the event type with code.
func (r *Reference) EventTypeByCode(ctx context.Context, code string) (store.EventType, error) {
	load := func(ctx context.Context) (store.EventType, error) { return r.store.GetEventTypeByCode(ctx, code) }
	if r.eventTypes == nil {
		return load(ctx)
	}
	return r.eventTypes.GetOrLoad(ctx, keyEventTypeCode+code, load)
}

// CategoryByID returns the category with id.
func (r *Reference) CategoryByID(ctx context.Context, id int64) (store.Category, error) {
	load := func(ctx context.Context) (store.Category, error) { return r.store.GetCategoryByID(ctx, id) }
	if r.categories == nil {
		return load(ctx)
	}
	return r.categories.GetOrLoad(ctx, keyCategory+strconv.FormatInt(id, 10), load)
}

// ProductByID returns the product with id.
func (r *Reference) ProductByID(ctx context.Context, id int64) (store.Product, error) {
	load := func(ctx context.Context) (store.Product, error) { return r.store.GetProductByID(ctx, id) }
	if r.products == nil {
		return load(ctx)
	}
	return r.products.GetOrLoad(ctx, keyProduct+strconv.FormatInt(id, 10), load)
}

// ForgetProduct drops a cached product, e.g. after it was deleted.
func (r *Reference) ForgetProduct(ctx context.Context, id int64) {
	if r.products != nil {
		_ = r.products.Delete(ctx, keyProduct+strconv.FormatInt(id, 10))
	}
}

// Invalidate drops all cached reference data.
func (r *Reference) Invalidate(ctx context.Context) error {
	if r.products == nil {
		return nil
	}
	return r.products.cache.DeleteByPrefix(ctx, keyReference)
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/olegiv/evops/internal/store"
)

// ExportStore is the catalog read surface of the store.
type ExportStore interface {
	ListEventTypes(ctx context.Context) ([]store.EventType, error)
	ListCategories(ctx context.Context) ([]store.Category, error)
	ListProducts(ctx context.Context) ([]store.Product, error)
}

// Exporter writes the catalog as JSON.
type Exporter struct {
	store  ExportStore
	logger *slog.Logger
	now    func() time.Time
}

// NewExporter creates a new Exporter instance.
func NewExporter(s ExportStore, logger *slog.Logger) *Exporter {
	return &Exporter{store: s, logger: logger, now: time.Now}
}

// Export reads the whole catalog.
func (e *Exporter) Export(ctx context.Context) (*ExportData, error) {
	data := &ExportData{
		Version:    ExportVersion,
		ExportedAt: e.now().UTC(),
	}

	types, err := e.store.ListEventTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing event types: %w", err)
	}
	for _, t := range types {
		data.EventTypes = append(data.EventTypes, ExportEventType{Code: t.Code, Name: t.Name})
	}

	categories, err := e.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	categoryCodes := make(map[int64]string, len(categories))
	for _, c := range categories {
		categoryCodes[c.ID] = c.Code
		data.Categories = append(data.Categories, ExportCategory{Code: c.Code, Name: c.Name})
	}

	products, err := e.store.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	for _, p := range products {
		code, ok := categoryCodes[p.CategoryID]
		if !ok {
			e.logger.Warn("skipping product with unknown category", "product_id", p.ID, "category_id", p.CategoryID)
			continue
		}
		data.Products = append(data.Products, ExportProduct{
			Category:  code,
			Brand:     p.Brand,
			BrandCode: p.BrandCode,
			Model:     p.Model,
		})
	}

	e.logger.Info("catalog exported",
		"event_types", len(data.EventTypes),
		"categories", len(data.Categories),
		"products", len(data.Products),
	)
	return data, nil
}

// ExportToWriter writes the catalog as indented JSON to w.
func (e *Exporter) ExportToWriter(ctx context.Context, w io.Writer) error {
	data, err := e.Export(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	return nil
}

// ExportToFile writes the catalog to path, replacing any existing file.
func (e *Exporter) ExportToFile(ctx context.Context, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := e.ExportToWriter(ctx, f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

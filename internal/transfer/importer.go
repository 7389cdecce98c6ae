// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/olegiv/evops/internal/sequence"
	"github.com/olegiv/evops/internal/store"
	"github.com/olegiv/evops/internal/util"
)

// ErrInvalidCatalog is returned when a document fails validation. The
// ImportResult returned with it lists the rejected entries.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Invalidator drops cached reference data after an import.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Importer loads a catalog document in one transaction.
type Importer struct {
	db     *sql.DB
	store  *store.Queries
	cache  Invalidator
	logger *slog.Logger
}

// NewImporter creates an Importer. cache may be nil.
func NewImporter(queries *store.Queries, db *sql.DB, cache Invalidator, logger *slog.Logger) *Importer {
	return &Importer{db: db, store: queries, cache: cache, logger: logger}
}

// Import validates data and writes it. Nothing is written on a dry run or
// when any entry is rejected.
func (i *Importer) Import(ctx context.Context, data *ExportData, opts ImportOptions) (*ImportResult, error) {
	if opts.ConflictStrategy == "" {
		opts.ConflictStrategy = ConflictSkip
	}
	result := NewImportResult(opts.DryRun)

	if errs := i.Validate(data); len(errs) > 0 {
		result.Errors = errs
		return result, ErrInvalidCatalog
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	queries := i.store.WithTx(tx)
	now := time.Now()

	i.importEventTypes(ctx, queries, data.EventTypes, opts, result, now)
	i.importCategories(ctx, queries, data.Categories, opts, result, now)
	i.importProducts(ctx, queries, data.Products, result, now)

	if result.HasErrors() {
		return result, ErrInvalidCatalog
	}
	if opts.DryRun {
		return result, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	if i.cache != nil {
		if err := i.cache.Invalidate(ctx); err != nil {
			i.logger.Warn("failed to invalidate reference cache after import", "category", "cache", "error", err)
		}
	}
	i.logger.Info("catalog imported",
		"created", result.TotalCreated(),
		"conflict_strategy", string(opts.ConflictStrategy),
	)
	return result, nil
}

// ImportFromReader reads and imports a JSON document.
func (i *Importer) ImportFromReader(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	var data ExportData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return i.Import(ctx, &data, opts)
}

// ImportFromFile reads and imports the JSON document at path.
func (i *Importer) ImportFromFile(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return i.ImportFromReader(ctx, f, opts)
}

// Validate checks a document without touching the store.
func (i *Importer) Validate(data *ExportData) []ImportError {
	var errs []ImportError
	add := func(entity, id, msg string) {
		errs = append(errs, ImportError{Entity: entity, ID: id, Message: msg})
	}

	if data == nil {
		add("document", "", "is empty")
		return errs
	}
	if data.Version != ExportVersion {
		add("document", data.Version, fmt.Sprintf("unsupported version, want %s", ExportVersion))
	}

	seen := make(map[string]bool)
	for idx, t := range data.EventTypes {
		id := entryID(t.Code, idx)
		switch {
		case !sequence.ValidTypeCode(t.Code):
			add(EntityEventTypes, id, "code must be 2 to 6 uppercase letters or digits")
		case seen[t.Code]:
			add(EntityEventTypes, id, "duplicate code")
		}
		seen[t.Code] = true
		if strings.TrimSpace(t.Name) == "" {
			add(EntityEventTypes, id, "name is required")
		}
	}

	categories := make(map[string]bool)
	for idx, c := range data.Categories {
		id := entryID(c.Code, idx)
		switch {
		case !sequence.ValidScopeCode(c.Code):
			add(EntityCategories, id, "code must be uppercase letters or digits")
		case categories[c.Code]:
			add(EntityCategories, id, "duplicate code")
		}
		categories[c.Code] = true
		if strings.TrimSpace(c.Name) == "" {
			add(EntityCategories, id, "name is required")
		}
	}

	for idx, p := range data.Products {
		id := entryID(p.Category+"/"+p.Brand+"/"+p.Model, idx)
		if p.Category == "" {
			add(EntityProducts, id, "category is required")
		}
		if strings.TrimSpace(p.Brand) == "" {
			add(EntityProducts, id, "brand is required")
		}
		if strings.TrimSpace(p.Model) == "" {
			add(EntityProducts, id, "model is required")
		}
		if p.BrandCode != "" && !sequence.ValidScopeCode(p.BrandCode) {
			add(EntityProducts, id, "brand_code must be uppercase letters or digits")
		}
	}

	return errs
}

func entryID(key string, idx int) string {
	if key == "" {
		return fmt.Sprintf("#%d", idx)
	}
	return key
}

func (i *Importer) importEventTypes(ctx context.Context, queries *store.Queries, types []ExportEventType, opts ImportOptions, result *ImportResult, now time.Time) {
	for _, t := range types {
		name := strings.TrimSpace(t.Name)
		existing, err := queries.GetEventTypeByCode(ctx, t.Code)
		switch {
		case err == nil:
			if opts.ConflictStrategy != ConflictOverwrite || existing.Name == name {
				result.Skipped[EntityEventTypes]++
				continue
			}
			if err := queries.UpdateEventTypeName(ctx, existing.ID, name); err != nil {
				result.AddError(EntityEventTypes, t.Code, err.Error())
				continue
			}
			result.Updated[EntityEventTypes]++
		case errors.Is(err, store.ErrNotFound):
			if _, err := queries.CreateEventType(ctx, store.CreateEventTypeParams{Name: name, Code: t.Code, CreatedAt: now}); err != nil {
				result.AddError(EntityEventTypes, t.Code, err.Error())
				continue
			}
			result.Created[EntityEventTypes]++
		default:
			result.AddError(EntityEventTypes, t.Code, err.Error())
		}
	}
}

func (i *Importer) importCategories(ctx context.Context, queries *store.Queries, categories []ExportCategory, opts ImportOptions, result *ImportResult, now time.Time) {
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		existing, err := queries.GetCategoryByCode(ctx, c.Code)
		switch {
		case err == nil:
			if opts.ConflictStrategy != ConflictOverwrite || existing.Name == name {
				result.Skipped[EntityCategories]++
				continue
			}
			if err := queries.UpdateCategoryName(ctx, existing.ID, name); err != nil {
				result.AddError(EntityCategories, c.Code, err.Error())
				continue
			}
			result.Updated[EntityCategories]++
		case errors.Is(err, store.ErrNotFound):
			if _, err := queries.CreateCategory(ctx, store.CreateCategoryParams{Name: name, Code: c.Code, CreatedAt: now}); err != nil {
				result.AddError(EntityCategories, c.Code, err.Error())
				continue
			}
			result.Created[EntityCategories]++
		default:
			result.AddError(EntityCategories, c.Code, err.Error())
		}
	}
}

// importProducts matches products by category, brand code and model. A
// matched product is left untouched whatever the strategy.
func (i *Importer) importProducts(ctx context.Context, queries *store.Queries, products []ExportProduct, result *ImportResult, now time.Time) {
	categoryIDs := make(map[string]int64)
	for _, p := range products {
		id := p.Category + "/" + p.Brand + "/" + p.Model

		categoryID, ok := categoryIDs[p.Category]
		if !ok {
			category, err := queries.GetCategoryByCode(ctx, p.Category)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					result.AddError(EntityProducts, id, "unknown category "+p.Category)
				} else {
					result.AddError(EntityProducts, id, err.Error())
				}
				continue
			}
			categoryID = category.ID
			categoryIDs[p.Category] = categoryID
		}

		brandCode := p.BrandCode
		if brandCode == "" {
			brandCode = util.BrandCode(p.Brand)
		}
		if brandCode == "" {
			result.AddError(EntityProducts, id, "brand code cannot be derived from the brand")
			continue
		}
		model := strings.TrimSpace(p.Model)

		_, err := queries.FindProduct(ctx, categoryID, brandCode, model)
		switch {
		case err == nil:
			result.Skipped[EntityProducts]++
		case errors.Is(err, store.ErrNotFound):
			if _, err := queries.CreateProduct(ctx, store.CreateProductParams{
				CategoryID: categoryID,
				Brand:      strings.TrimSpace(p.Brand),
				BrandCode:  brandCode,
				Model:      model,
				CreatedAt:  now,
			}); err != nil {
				result.AddError(EntityProducts, id, err.Error())
				continue
			}
			result.Created[EntityProducts]++
		default:
			result.AddError(EntityProducts, id, err.Error())
		}
	}
}

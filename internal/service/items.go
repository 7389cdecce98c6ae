// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/olegiv/evops/internal/cache"
	"github.com/olegiv/evops/internal/clock"
	"github.com/olegiv/evops/internal/model"
	"github.com/olegiv/evops/internal/saga"
	"github.com/olegiv/evops/internal/sequence"
	"github.com/olegiv/evops/internal/store"
	"github.com/olegiv/evops/internal/util"
)

// ProductInput describes a product created together with its first item.
type ProductInput struct {
	CategoryID int64  `json:"category_id"`
	Brand      string `json:"brand"`
	BrandCode  string `json:"brand_code"` // derived from Brand when empty
	Model      string `json:"model"`
}

// CreateItemInput selects an existing product or describes a new one.
type CreateItemInput struct {
	ProductID  *int64
	NewProduct *ProductInput
	Location   string
	Status     string // available (default) or maintenance
}

// Inventory issues asset codes and creates items.
type Inventory struct {
	store    Store
	ref      *cache.Reference
	issuer   *sequence.Issuer
	clock    clock.Clock
	logger   *slog.Logger
	notifier Notifier
	attempts int
}

// NewInventory creates an Inventory.
func NewInventory(s Store, ref *cache.Reference, opts Options) *Inventory {
	opts = opts.withDefaults()
	return &Inventory{
		store:    s,
		ref:      ref,
		issuer:   sequence.NewIssuer(s),
		clock:    opts.Clock,
		logger:   opts.Logger,
		notifier: opts.Notifier,
		attempts: opts.IssueAttempts,
	}
}

// PreviewAssetCode returns the code the next item of productID would get.
// The authoritative code is derived again when the item is written.
func (inv *Inventory) PreviewAssetCode(ctx context.Context, productID int64) (string, error) {
	product, err := inv.ref.ProductByID(ctx, productID)
	if err != nil {
		return "", lookupError(err, "product", productID)
	}
	category, err := inv.ref.CategoryByID(ctx, product.CategoryID)
	if err != nil {
		return "", lookupError(err, "category", product.CategoryID)
	}
	return inv.issuer.NextAssetCode(ctx, category.Code, product.BrandCode)
}

// PreviewScopeAssetCode previews the code for a product that does not exist
// yet, given its category and brand name.
func (inv *Inventory) PreviewScopeAssetCode(ctx context.Context, categoryID int64, brand string) (string, error) {
	brandCode := util.BrandCode(brand)
	if brandCode == "" {
		return "", &ValidationError{Fields: map[string]string{"brand": "is required"}}
	}
	category, err := inv.ref.CategoryByID(ctx, categoryID)
	if err != nil {
		return "", lookupError(err, "category", categoryID)
	}
	return inv.issuer.NextAssetCode(ctx, category.Code, brandCode)
}

// CreateItem writes a new item, creating its product first when in names a
// new one. The asset code is derived from the store when the item is
// written; a duplicate code is retried with a fresh one. When the item
// cannot be written, a product created by this call is deleted again.
func (inv *Inventory) CreateItem(ctx context.Context, in CreateItemInput) (store.Item, error) {
	status := in.Status
	if status == "" {
		status = model.ItemStatusAvailable
	}
	if err := validateCreateItem(in, status); err != nil {
		return store.Item{}, err
	}

	var (
		product  store.Product
		category store.Category
		err      error
	)
	if in.ProductID != nil {
		if product, err = inv.ref.ProductByID(ctx, *in.ProductID); err != nil {
			return store.Item{}, lookupError(err, "product", *in.ProductID)
		}
		if category, err = inv.ref.CategoryByID(ctx, product.CategoryID); err != nil {
			return store.Item{}, lookupError(err, "category", product.CategoryID)
		}
	} else {
		if category, err = inv.ref.CategoryByID(ctx, in.NewProduct.CategoryID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return store.Item{}, &ValidationError{Fields: map[string]string{"product.category_id": "unknown category"}}
			}
			return store.Item{}, lookupError(err, "category", in.NewProduct.CategoryID)
		}
	}

	now := inv.clock.Now()
	var item store.Item
	s := saga.New("create_item", inv.logger)
	if in.NewProduct != nil {
		np := *in.NewProduct
		s.Then(saga.Step{
			Name: StepProduct,
			Do: func(ctx context.Context) error {
				var err error
				product, err = inv.store.CreateProduct(ctx, store.CreateProductParams{
					CategoryID: np.CategoryID,
					Brand:      strings.TrimSpace(np.Brand),
					BrandCode:  productBrandCode(np),
					Model:      strings.TrimSpace(np.Model),
					CreatedAt:  now,
				})
				return err
			},
			Compensate: func(ctx context.Context) error {
				inv.ref.ForgetProduct(ctx, product.ID)
				return inv.store.DeleteProduct(ctx, product.ID)
			},
		})
	}
	s.Then(saga.Step{
		Name:  StepItem,
		Pivot: true,
		Do: func(ctx context.Context) error {
			var err error
			item, err = inv.insertItem(ctx, product, category, strings.TrimSpace(in.Location), status)
			return err
		},
	})

	if err := s.Run(ctx); err != nil {
		var compErr *saga.CompensationError
		if errors.As(err, &compErr) {
			return store.Item{}, &CompensationFailedError{
				Original:          &DependencyWriteError{Step: compErr.Step, Err: compErr.Err},
				CompensationCause: compErr.CompensationErr,
			}
		}
		var stepErr *saga.StepError
		if errors.As(err, &stepErr) {
			return store.Item{}, &DependencyWriteError{Step: stepErr.Step, Err: stepErr.Err}
		}
		return store.Item{}, err
	}

	inv.logger.Info("item created", "asset_code", item.AssetCode, "product_id", product.ID)
	inv.notifier.Publish(ctx, EventItemCreated, item)
	return item, nil
}

func (inv *Inventory) insertItem(ctx context.Context, product store.Product, category store.Category, location, status string) (store.Item, error) {
	var lastErr error
	for attempt := 1; attempt <= inv.attempts; attempt++ {
		code, err := inv.issuer.NextAssetCode(ctx, category.Code, product.BrandCode)
		if err != nil {
			return store.Item{}, err
		}

		item, err := inv.store.CreateItem(ctx, store.CreateItemParams{
			ProductID: product.ID,
			AssetCode: code,
			Status:    status,
			Location:  location,
			CreatedAt: inv.clock.Now(),
		})
		if err == nil {
			return item, nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return store.Item{}, err
		}
		inv.logger.Info("asset code taken, deriving a new one", "asset_code", code, "attempt", attempt)
		lastErr = err
	}
	return store.Item{}, fmt.Errorf("no free asset code after %d attempts: %w", inv.attempts, lastErr)
}

func validateCreateItem(in CreateItemInput, status string) error {
	v := validationErrors{}

	switch {
	case in.ProductID == nil && in.NewProduct == nil:
		v.add("product_id", "select a product or describe a new one")
	case in.ProductID != nil && in.NewProduct != nil:
		v.add("product_id", "cannot be combined with a new product")
	case in.ProductID != nil && *in.ProductID <= 0:
		v.add("product_id", "must be positive")
	case in.NewProduct != nil:
		np := in.NewProduct
		if np.CategoryID <= 0 {
			v.add("product.category_id", "is required")
		}
		if strings.TrimSpace(np.Brand) == "" {
			v.add("product.brand", "is required")
		}
		if strings.TrimSpace(np.Model) == "" {
			v.add("product.model", "is required")
		}
		if np.BrandCode != "" && !sequence.ValidScopeCode(np.BrandCode) {
			v.add("product.brand_code", "must be uppercase letters or digits")
		}
		if np.BrandCode == "" && strings.TrimSpace(np.Brand) != "" && util.BrandCode(np.Brand) == "" {
			v.add("product.brand_code", "cannot be derived from the brand")
		}
	}

	switch status {
	case model.ItemStatusAvailable, model.ItemStatusMaintenance:
	case model.ItemStatusInUse:
		v.add("status", "new items cannot start in use")
	default:
		v.add("status", "must be available or maintenance")
	}

	return v.err()
}

func productBrandCode(np ProductInput) string {
	if np.BrandCode != "" {
		return np.BrandCode
	}
	return util.BrandCode(np.Brand)
}

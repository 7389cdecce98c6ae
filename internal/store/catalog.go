// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

type CreateEventTypeParams struct {
	Name      string
	Code      string
	CreatedAt time.Time
}

func (q *Queries) CreateEventType(ctx context.Context, arg CreateEventTypeParams) (EventType, error) {
	id, err := q.insert(ctx,
		"INSERT INTO event_types (name, code, created_at) VALUES (?, ?, ?)",
		arg.Name, arg.Code, arg.CreatedAt,
	)
	if err != nil {
		return EventType{}, err
	}
	return EventType{ID: id, Name: arg.Name, Code: arg.Code, CreatedAt: arg.CreatedAt}, nil
}

func (q *Queries) GetEventTypeByID(ctx context.Context, id int64) (EventType, error) {
	var t EventType
	err := q.queryRow(ctx, "SELECT id, name, code, created_at FROM event_types WHERE id = ?", id).
		Scan(&t.ID, &t.Name, &t.Code, &t.CreatedAt)
	return t, translateError(err)
}

func (q *Queries) GetEventTypeByCode(ctx context.Context, code string) (EventType, error) {
	var t EventType
	err := q.queryRow(ctx, "SELECT id, name, code, created_at FROM event_types WHERE code = ?", code).
		Scan(&t.ID, &t.Name, &t.Code, &t.CreatedAt)
	return t, translateError(err)
}

type CreateCategoryParams struct {
	Name      string
	Code      string
	CreatedAt time.Time
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	id, err := q.insert(ctx,
		"INSERT INTO categories (name, code, created_at) VALUES (?, ?, ?)",
		arg.Name, arg.Code, arg.CreatedAt,
	)
	if err != nil {
		return Category{}, err
	}
	return Category{ID: id, Name: arg.Name, Code: arg.Code, CreatedAt: arg.CreatedAt}, nil
}

func (q *Queries) GetCategoryByID(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := q.queryRow(ctx, "SELECT id, name, code, created_at FROM categories WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.Code, &c.CreatedAt)
	return c, translateError(err)
}

type CreateProductParams struct {
	CategoryID int64
	Brand      string
	BrandCode  string
	Model      string
	CreatedAt  time.Time
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	id, err := q.insert(ctx,
		"INSERT INTO products (category_id, brand, brand_code, model, created_at) VALUES (?, ?, ?, ?, ?)",
		arg.CategoryID, arg.Brand, arg.BrandCode, arg.Model, arg.CreatedAt,
	)
	if err != nil {
		return Product{}, err
	}
	return Product{
		ID:         id,
		CategoryID: arg.CategoryID,
		Brand:      arg.Brand,
		BrandCode:  arg.BrandCode,
		Model:      arg.Model,
		CreatedAt:  arg.CreatedAt,
	}, nil
}

func (q *Queries) GetProductByID(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := q.queryRow(ctx,
		"SELECT id, category_id, brand, brand_code, model, created_at FROM products WHERE id = ?", id,
	).Scan(&p.ID, &p.CategoryID, &p.Brand, &p.BrandCode, &p.Model, &p.CreatedAt)
	return p, translateError(err)
}

func (q *Queries) DeleteProduct(ctx context.Context, id int64) error {
	return q.deleteByID(ctx, "products", id)
}

func (q *Queries) ListEventTypes(ctx context.Context) ([]EventType, error) {
	rows, err := q.query(ctx, "SELECT id, name, code, created_at FROM event_types ORDER BY code")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var types []EventType
	for rows.Next() {
		var t EventType
		if err := rows.Scan(&t.ID, &t.Name, &t.Code, &t.CreatedAt); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (q *Queries) UpdateEventTypeName(ctx context.Context, id int64, name string) error {
	res, err := q.exec(ctx, "UPDATE event_types SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (q *Queries) GetCategoryByCode(ctx context.Context, code string) (Category, error) {
	var c Category
	err := q.queryRow(ctx, "SELECT id, name, code, created_at FROM categories WHERE code = ?", code).
		Scan(&c.ID, &c.Name, &c.Code, &c.CreatedAt)
	return c, translateError(err)
}

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.query(ctx, "SELECT id, name, code, created_at FROM categories ORDER BY code")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &c.CreatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (q *Queries) UpdateCategoryName(ctx context.Context, id int64, name string) error {
	res, err := q.exec(ctx, "UPDATE categories SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.query(ctx,
		"SELECT id, category_id, brand, brand_code, model, created_at FROM products ORDER BY category_id, brand_code, model, id",
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Brand, &p.BrandCode, &p.Model, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// FindProduct looks a product up by its natural key.
func (q *Queries) FindProduct(ctx context.Context, categoryID int64, brandCode, model string) (Product, error) {
	var p Product
	err := q.queryRow(ctx,
		"SELECT id, category_id, brand, brand_code, model, created_at FROM products WHERE category_id = ? AND brand_code = ? AND model = ? ORDER BY id LIMIT 1",
		categoryID, brandCode, model,
	).Scan(&p.ID, &p.CategoryID, &p.Brand, &p.BrandCode, &p.Model, &p.CreatedAt)
	return p, translateError(err)
}

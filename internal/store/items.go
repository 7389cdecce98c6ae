// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const itemColumns = "id, product_id, asset_code, status, location, created_at, updated_at"

type CreateItemParams struct {
	ProductID int64
	AssetCode string
	Status    string
	Location  string
	CreatedAt time.Time
}

// CreateItem inserts an item. An asset code already in use yields ErrDuplicate.
func (q *Queries) CreateItem(ctx context.Context, arg CreateItemParams) (Item, error) {
	id, err := q.insert(ctx,
		"INSERT INTO items (product_id, asset_code, status, location, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		arg.ProductID, arg.AssetCode, arg.Status, arg.Location, arg.CreatedAt, arg.CreatedAt,
	)
	if err != nil {
		return Item{}, err
	}
	return Item{
		ID:        id,
		ProductID: arg.ProductID,
		AssetCode: arg.AssetCode,
		Status:    arg.Status,
		Location:  arg.Location,
		CreatedAt: arg.CreatedAt,
		UpdatedAt: arg.CreatedAt,
	}, nil
}

func (q *Queries) GetItemByID(ctx context.Context, id int64) (Item, error) {
	return scanItem(q.queryRow(ctx, "SELECT "+itemColumns+" FROM items WHERE id = ?", id))
}

func (q *Queries) GetItemByAssetCode(ctx context.Context, code string) (Item, error) {
	return scanItem(q.queryRow(ctx, "SELECT "+itemColumns+" FROM items WHERE asset_code = ?", code))
}

type UpdateItemStatusParams struct {
	ID        int64
	Status    string
	UpdatedAt time.Time
}

func (q *Queries) UpdateItemStatus(ctx context.Context, arg UpdateItemStatusParams) error {
	res, err := q.exec(ctx, "UPDATE items SET status = ?, updated_at = ? WHERE id = ?",
		arg.Status, arg.UpdatedAt, arg.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// CountItemsWithAssetPrefix counts items whose asset code starts with prefix.
func (q *Queries) CountItemsWithAssetPrefix(ctx context.Context, prefix string) (int64, error) {
	var n int64
	err := q.queryRow(ctx, "SELECT COUNT(*) FROM items WHERE asset_code LIKE ?", prefix+"%").Scan(&n)
	return n, translateError(err)
}

// LatestAssetCodeWithPrefix returns the most recently inserted surviving asset
// code starting with prefix, or ErrNotFound. Deleted items are not seen: see
// IssuedSequence for the high-water mark.
func (q *Queries) LatestAssetCodeWithPrefix(ctx context.Context, prefix string) (string, error) {
	var code string
	err := q.queryRow(ctx,
		"SELECT asset_code FROM items WHERE asset_code LIKE ? ORDER BY id DESC LIMIT 1",
		prefix+"%",
	).Scan(&code)
	if err != nil {
		return "", translateError(err)
	}
	return code, nil
}

func scanItem(row *sql.Row) (Item, error) {
	var i Item
	err := row.Scan(&i.ID, &i.ProductID, &i.AssetCode, &i.Status, &i.Location, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return Item{}, translateError(err)
	}
	return i, nil
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strings"

	"github.com/olegiv/evops/internal/service"
)

// CreateItemRequest is the body of POST /items. Exactly one of ProductID and
// NewProduct is expected.
type CreateItemRequest struct {
	ProductID  *int64                `json:"product_id"`
	NewProduct *service.ProductInput `json:"new_product"`
	Location   string                `json:"location"`
	Status     string                `json:"status"`
}

// SetStatusRequest is the body of PUT /items/{id}/status.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// PreviewAssetCode handles GET /asset-codes/preview?product_id= or
// ?category_id=&brand=.
func (h *Handler) PreviewAssetCode(w http.ResponseWriter, r *http.Request) {
	productID, hasProduct, err := queryID(r, "product_id")
	if err != nil {
		WriteValidationError(w, map[string]string{"product_id": err.Error()})
		return
	}

	var code string
	if hasProduct {
		code, err = h.inventory.PreviewAssetCode(r.Context(), productID)
	} else {
		categoryID, hasCategory, cerr := queryID(r, "category_id")
		switch {
		case cerr != nil:
			WriteValidationError(w, map[string]string{"category_id": cerr.Error()})
			return
		case !hasCategory:
			WriteValidationError(w, map[string]string{"product_id": "product_id or category_id with brand is required"})
			return
		}
		code, err = h.inventory.PreviewScopeAssetCode(r.Context(), categoryID, strings.TrimSpace(r.URL.Query().Get("brand")))
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, PreviewResponse{AssetCode: code})
}

// CreateItem handles POST /items.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.inventory.CreateItem(r.Context(), service.CreateItemInput{
		ProductID:  req.ProductID,
		NewProduct: req.NewProduct,
		Location:   req.Location,
		Status:     req.Status,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteCreated(w, itemResponse(item))
}

// SetItemStatus handles PUT /items/{id}/status.
func (h *Handler) SetItemStatus(w http.ResponseWriter, r *http.Request) {
	itemID, ok := requireIDParam(w, r, "item")
	if !ok {
		return
	}
	var req SetStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.assignments.SetStatus(r.Context(), itemID, strings.TrimSpace(req.Status))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, itemResponse(item))
}

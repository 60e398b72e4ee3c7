package dto

import "time"

// CreateItemRequest body para POST /api/inventory/items.
type CreateItemRequest struct {
	SKU         string `json:"sku" validate:"required,max=50"`
	Name        string `json:"name" validate:"required,max=255"`
	Unit        string `json:"unit" validate:"omitempty,max=20"`
	Status      string `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE DISCONTINUED"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// UpdateItemRequest body para PUT /api/inventory/items/:id. El SKU es inmutable.
type UpdateItemRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Unit        *string `json:"unit" validate:"omitempty,max=20"`
	Status      *string `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE DISCONTINUED"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// ItemResponse representación HTTP de un ítem.
type ItemResponse struct {
	ID          string    `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Unit        string    `json:"unit"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	IsDeleted   bool      `json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemListResponse listado paginado de ítems.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

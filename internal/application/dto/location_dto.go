package dto

import "time"

// CreateLocationRequest body para POST /api/inventory/locations.
type CreateLocationRequest struct {
	Code     string  `json:"code" validate:"required,max=30"`
	Name     string  `json:"name" validate:"required,max=255"`
	Type     string  `json:"type" validate:"omitempty,oneof=WAREHOUSE BIN ZONE"`
	Address  string  `json:"address" validate:"omitempty,max=500"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid4"`
}

// UpdateLocationRequest body para PUT /api/inventory/locations/:id. El código es inmutable.
type UpdateLocationRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=255"`
	Type     *string `json:"type" validate:"omitempty,oneof=WAREHOUSE BIN ZONE"`
	Address  *string `json:"address" validate:"omitempty,max=500"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid4"`
}

// LocationResponse representación HTTP de una ubicación.
type LocationResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Address   string    `json:"address,omitempty"`
	ParentID  *string   `json:"parent_id,omitempty"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LocationListResponse listado paginado de ubicaciones.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

package entity

import "time"

// Estados de ciclo de vida de un ítem.
const (
	ItemStatusActive       = "ACTIVE"
	ItemStatusInactive     = "INACTIVE"
	ItemStatusDiscontinued = "DISCONTINUED"
)

// ValidItemStatus verifica que s sea un estado de ítem conocido.
func ValidItemStatus(s string) bool {
	switch s {
	case ItemStatusActive, ItemStatusInactive, ItemStatusDiscontinued:
		return true
	}
	return false
}

// Item representa un SKU almacenable (dato maestro de inventario).
// El SKU es inmutable y único entre ítems no eliminados. El borrado es lógico:
// el ítem deja de aparecer en búsquedas activas pero su historial en el ledger permanece intacto.
type Item struct {
	ID          string
	SKU         string // código único, inmutable
	Name        string
	Unit        string // unidad de medida: EA, PCS, KG, M, ...
	Status      string // ACTIVE, INACTIVE, DISCONTINUED
	Description string
	IsDeleted   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedBy   string
	UpdatedBy   string
}

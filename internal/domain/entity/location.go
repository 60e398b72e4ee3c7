package entity

import "time"

// Tipos de ubicación.
const (
	LocationTypeWarehouse = "WAREHOUSE"
	LocationTypeBin       = "BIN"
	LocationTypeZone      = "ZONE"
)

// ValidLocationType verifica que t sea un tipo de ubicación conocido.
func ValidLocationType(t string) bool {
	switch t {
	case LocationTypeWarehouse, LocationTypeBin, LocationTypeZone:
		return true
	}
	return false
}

// Location representa una bodega, zona o bin donde se almacena inventario.
// ParentID opcional forma un árbol (bodega > zona > bin); la aciclicidad se
// valida al escribir. Mismo borrado lógico que Item.
type Location struct {
	ID        string
	Code      string // código único, inmutable
	Name      string
	Type      string // WAREHOUSE, BIN, ZONE
	Address   string
	ParentID  *string
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
	UpdatedBy string
}

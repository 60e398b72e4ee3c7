package repository

import "github.com/stockerp/stockerp-api/internal/domain/entity"

// ItemRepository define el puerto de persistencia para Item (DIP).
// Las búsquedas "activas" excluyen ítems con borrado lógico.
type ItemRepository interface {
	Create(item *entity.Item) error
	GetByID(id string) (*entity.Item, error)
	// GetBySKU busca un ítem activo por SKU. Devuelve (nil, nil) si no existe.
	GetBySKU(sku string) (*entity.Item, error)
	Update(item *entity.Item) error
	// SoftDelete marca el ítem como eliminado; el historial del ledger permanece.
	SoftDelete(id, updatedBy string) error
	List(includeDeleted bool, limit, offset int) ([]*entity.Item, error)
}

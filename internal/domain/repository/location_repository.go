package repository

import "github.com/stockerp/stockerp-api/internal/domain/entity"

// LocationRepository define el puerto de persistencia para Location (DIP).
type LocationRepository interface {
	Create(location *entity.Location) error
	GetByID(id string) (*entity.Location, error)
	// GetByCode busca una ubicación activa por código. Devuelve (nil, nil) si no existe.
	GetByCode(code string) (*entity.Location, error)
	Update(location *entity.Location) error
	SoftDelete(id, updatedBy string) error
	List(includeDeleted bool, limit, offset int) ([]*entity.Location, error)
}

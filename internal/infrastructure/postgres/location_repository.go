package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/stockerp/stockerp-api/internal/domain"
	"github.com/stockerp/stockerp-api/internal/domain/entity"
	"github.com/stockerp/stockerp-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación del puerto LocationRepository sobre PostgreSQL (usable con pool o tx).
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador de persistencia para ubicaciones. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// Create persiste una nueva ubicación. Devuelve ErrDuplicate si el código ya existe entre activas.
func (r *LocationRepo) Create(location *entity.Location) error {
	query := `
		INSERT INTO locations (id, code, name, type, address, parent_id, is_deleted, created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		location.ID, location.Code, location.Name, location.Type, location.Address,
		location.ParentID, location.IsDeleted, location.CreatedAt, location.UpdatedAt,
		location.CreatedBy, location.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

// GetByID obtiene una ubicación por ID, incluyendo las eliminadas lógicamente.
func (r *LocationRepo) GetByID(id string) (*entity.Location, error) {
	query := locationSelect + ` WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetByCode busca una ubicación activa por código. Devuelve (nil, nil) si no existe.
func (r *LocationRepo) GetByCode(code string) (*entity.Location, error) {
	query := locationSelect + ` WHERE code = $1 AND NOT is_deleted`
	return r.scanOne(r.q.QueryRow(context.Background(), query, code))
}

// Update actualiza una ubicación existente. El código es inmutable y no se toca.
func (r *LocationRepo) Update(location *entity.Location) error {
	query := `
		UPDATE locations SET name = $2, type = $3, address = $4, parent_id = $5, updated_at = $6, updated_by = $7
		WHERE id = $1 AND NOT is_deleted`
	cmd, err := r.q.Exec(context.Background(), query,
		location.ID, location.Name, location.Type, location.Address, location.ParentID,
		location.UpdatedAt, location.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrLocationNotFound
	}
	return nil
}

// SoftDelete marca la ubicación como eliminada.
func (r *LocationRepo) SoftDelete(id, updatedBy string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE locations SET is_deleted = TRUE, updated_at = now(), updated_by = $2 WHERE id = $1 AND NOT is_deleted`,
		id, updatedBy,
	)
	if err != nil {
		return fmt.Errorf("soft delete location: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrLocationNotFound
	}
	return nil
}

// List lista ubicaciones con paginación, activas por defecto.
func (r *LocationRepo) List(includeDeleted bool, limit, offset int) ([]*entity.Location, error) {
	query := locationSelect
	if !includeDeleted {
		query += ` WHERE NOT is_deleted`
	}
	query += ` ORDER BY code LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Location
	for rows.Next() {
		var loc entity.Location
		if err := rows.Scan(&loc.ID, &loc.Code, &loc.Name, &loc.Type, &loc.Address, &loc.ParentID,
			&loc.IsDeleted, &loc.CreatedAt, &loc.UpdatedAt, &loc.CreatedBy, &loc.UpdatedBy); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, &loc)
	}
	return list, rows.Err()
}

const locationSelect = `
	SELECT id, code, name, type, address, parent_id, is_deleted, created_at, updated_at, created_by, updated_by
	FROM locations`

func (r *LocationRepo) scanOne(row pgx.Row) (*entity.Location, error) {
	var loc entity.Location
	err := row.Scan(&loc.ID, &loc.Code, &loc.Name, &loc.Type, &loc.Address, &loc.ParentID,
		&loc.IsDeleted, &loc.CreatedAt, &loc.UpdatedAt, &loc.CreatedBy, &loc.UpdatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &loc, nil
}

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

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de persistencia para ítems. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Create persiste un nuevo ítem. Devuelve ErrDuplicate si el SKU ya existe entre ítems activos.
func (r *ItemRepo) Create(item *entity.Item) error {
	query := `
		INSERT INTO items (id, sku, name, unit, status, description, is_deleted, created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.SKU, item.Name, item.Unit, item.Status, item.Description,
		item.IsDeleted, item.CreatedAt, item.UpdatedAt, item.CreatedBy, item.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetByID obtiene un ítem por ID, incluyendo los eliminados lógicamente.
func (r *ItemRepo) GetByID(id string) (*entity.Item, error) {
	query := itemSelect + ` WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetBySKU busca un ítem activo por SKU. Devuelve (nil, nil) si no existe.
func (r *ItemRepo) GetBySKU(sku string) (*entity.Item, error) {
	query := itemSelect + ` WHERE sku = $1 AND NOT is_deleted`
	return r.scanOne(r.q.QueryRow(context.Background(), query, sku))
}

// Update actualiza un ítem existente. El SKU es inmutable y no se toca.
func (r *ItemRepo) Update(item *entity.Item) error {
	query := `
		UPDATE items SET name = $2, unit = $3, status = $4, description = $5, updated_at = $6, updated_by = $7
		WHERE id = $1 AND NOT is_deleted`
	cmd, err := r.q.Exec(context.Background(), query,
		item.ID, item.Name, item.Unit, item.Status, item.Description, item.UpdatedAt, item.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// SoftDelete marca el ítem como eliminado; el historial del ledger permanece.
func (r *ItemRepo) SoftDelete(id, updatedBy string) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE items SET is_deleted = TRUE, updated_at = now(), updated_by = $2 WHERE id = $1 AND NOT is_deleted`,
		id, updatedBy,
	)
	if err != nil {
		return fmt.Errorf("soft delete item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// List lista ítems con paginación, activos por defecto.
func (r *ItemRepo) List(includeDeleted bool, limit, offset int) ([]*entity.Item, error) {
	query := itemSelect
	if !includeDeleted {
		query += ` WHERE NOT is_deleted`
	}
	query += ` ORDER BY sku LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		var it entity.Item
		if err := rows.Scan(&it.ID, &it.SKU, &it.Name, &it.Unit, &it.Status, &it.Description,
			&it.IsDeleted, &it.CreatedAt, &it.UpdatedAt, &it.CreatedBy, &it.UpdatedBy); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

const itemSelect = `
	SELECT id, sku, name, unit, status, description, is_deleted, created_at, updated_at, created_by, updated_by
	FROM items`

func (r *ItemRepo) scanOne(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	err := row.Scan(&it.ID, &it.SKU, &it.Name, &it.Unit, &it.Status, &it.Description,
		&it.IsDeleted, &it.CreatedAt, &it.UpdatedAt, &it.CreatedBy, &it.UpdatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &it, nil
}

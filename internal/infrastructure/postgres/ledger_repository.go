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

var _ repository.StockLedgerRepository = (*StockLedgerRepo)(nil)

// StockLedgerRepo implementación del puerto StockLedgerRepository sobre PostgreSQL (usable con pool o tx).
// Solo INSERT y SELECT: la tabla es append-only y las filas jamás se mutan.
type StockLedgerRepo struct {
	q Querier
}

// NewStockLedgerRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewStockLedgerRepository(q Querier) *StockLedgerRepo {
	return &StockLedgerRepo{q: q}
}

// Append persiste una fila del ledger. Devuelve ErrDuplicate si la clave de
// idempotencia ya fue usada para el mismo tipo de transacción.
func (r *StockLedgerRepo) Append(entry *entity.StockLedgerEntry) error {
	query := `
		INSERT INTO stock_ledger (id, transaction_id, item_id, location_id, type, quantity, unit_cost, reference_no, notes, from_location_id, to_location_id, idempotency_key, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.TransactionID, entry.ItemID, entry.LocationID, entry.Type,
		entry.Quantity, entry.UnitCost, entry.ReferenceNo, entry.Notes,
		entry.FromLocationID, entry.ToLocationID, entry.IdempotencyKey,
		entry.CreatedBy, entry.CreatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrDuplicate
		case isForeignKeyViolation(err):
			return domain.ErrNotFound
		case isCheckViolation(err):
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// GetByTransactionID obtiene una fila del ledger por su transaction_id. Devuelve (nil, nil) si no existe.
func (r *StockLedgerRepo) GetByTransactionID(transactionID string) (*entity.StockLedgerEntry, error) {
	query := ledgerSelect + ` WHERE transaction_id = $1`
	var e entity.StockLedgerEntry
	err := r.q.QueryRow(context.Background(), query, transactionID).Scan(
		&e.ID, &e.TransactionID, &e.ItemID, &e.LocationID, &e.Type, &e.Quantity,
		&e.UnitCost, &e.ReferenceNo, &e.Notes, &e.FromLocationID, &e.ToLocationID,
		&e.IdempotencyKey, &e.CreatedBy, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return &e, nil
}

// List devuelve filas del ledger filtradas, de más reciente a más antigua.
func (r *StockLedgerRepo) List(filter repository.LedgerFilter) ([]*entity.StockLedgerEntry, error) {
	query := ledgerSelect + ` WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.ItemID != "" {
		query += fmt.Sprintf(" AND item_id = $%d", pos)
		args = append(args, filter.ItemID)
		pos++
	}
	if filter.LocationID != "" {
		query += fmt.Sprintf(" AND location_id = $%d", pos)
		args = append(args, filter.LocationID)
		pos++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, filter.Type)
		pos++
	}
	if filter.ReferenceNo != "" {
		query += fmt.Sprintf(" AND reference_no = $%d", pos)
		args = append(args, filter.ReferenceNo)
		pos++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLedgerEntry
	for rows.Next() {
		var e entity.StockLedgerEntry
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.ItemID, &e.LocationID, &e.Type,
			&e.Quantity, &e.UnitCost, &e.ReferenceNo, &e.Notes, &e.FromLocationID,
			&e.ToLocationID, &e.IdempotencyKey, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

const ledgerSelect = `
	SELECT id, transaction_id, item_id, location_id, type, quantity, unit_cost, reference_no, notes, from_location_id, to_location_id, idempotency_key, created_by, created_at
	FROM stock_ledger`

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/stockerp/stockerp-api/internal/domain/entity"
	"github.com/stockerp/stockerp-api/internal/domain/repository"
)

var _ repository.StockBalanceRepository = (*StockBalanceRepo)(nil)

// StockBalanceRepo implementación del puerto StockBalanceRepository sobre PostgreSQL
// (usable con pool o tx). La tabla es una proyección derivada del ledger.
type StockBalanceRepo struct {
	q Querier
}

// NewStockBalanceRepository construye el adaptador de balances. Pasar pool o tx (Querier).
func NewStockBalanceRepository(q Querier) *StockBalanceRepo {
	return &StockBalanceRepo{q: q}
}

// Get obtiene el balance actual del par (ítem, ubicación). Ausencia de fila equivale a cero.
func (r *StockBalanceRepo) Get(itemID, locationID string) (*entity.StockBalance, error) {
	query := `
		SELECT item_id, location_id, quantity, updated_at
		FROM stock_balances WHERE item_id = $1 AND location_id = $2`
	var b entity.StockBalance
	err := r.q.QueryRow(context.Background(), query, itemID, locationID).Scan(
		&b.ItemID, &b.LocationID, &b.Quantity, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockBalance{ItemID: itemID, LocationID: locationID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}

// GetForUpdate obtiene el balance y bloquea la fila (SELECT FOR UPDATE).
// Ausencia de fila equivale a cero; en ese caso no hay fila que bloquear y el
// upsert posterior serializa contra inserciones concurrentes vía la PK.
func (r *StockBalanceRepo) GetForUpdate(itemID, locationID string) (*entity.StockBalance, error) {
	query := `
		SELECT item_id, location_id, quantity, updated_at
		FROM stock_balances WHERE item_id = $1 AND location_id = $2
		FOR UPDATE`
	var b entity.StockBalance
	err := r.q.QueryRow(context.Background(), query, itemID, locationID).Scan(
		&b.ItemID, &b.LocationID, &b.Quantity, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockBalance{ItemID: itemID, LocationID: locationID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get balance for update: %w", err)
	}
	return &b, nil
}

// ApplyDelta suma delta al balance del par (upsert aditivo) y devuelve la cantidad resultante.
func (r *StockBalanceRepo) ApplyDelta(itemID, locationID string, delta decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	query := `
		INSERT INTO stock_balances (item_id, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (item_id, location_id)
		DO UPDATE SET quantity = stock_balances.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
		RETURNING quantity`
	var qty decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, itemID, locationID, delta, at).Scan(&qty)
	if err != nil {
		return decimal.Zero, fmt.Errorf("apply balance delta: %w", err)
	}
	return qty, nil
}

// List devuelve balances con los datos de ítem/ubicación resueltos, en orden estable (SKU, código).
func (r *StockBalanceRepo) List(filter repository.BalanceFilter) ([]*repository.StockRow, error) {
	query := `
		SELECT b.item_id, i.sku, i.name, i.unit, i.status,
		       b.location_id, l.code, l.name, b.quantity, b.updated_at
		FROM stock_balances b
		JOIN items i ON i.id = b.item_id
		JOIN locations l ON l.id = b.location_id
		WHERE NOT i.is_deleted AND NOT l.is_deleted`
	args := []any{}
	pos := 1
	if filter.ItemSKU != "" {
		query += fmt.Sprintf(" AND i.sku = $%d", pos)
		args = append(args, filter.ItemSKU)
		pos++
	}
	if filter.LocationCode != "" {
		query += fmt.Sprintf(" AND l.code = $%d", pos)
		args = append(args, filter.LocationCode)
		pos++
	}
	if filter.NameSearch != "" {
		query += fmt.Sprintf(" AND i.name ILIKE $%d", pos)
		args = append(args, "%"+filter.NameSearch+"%")
		pos++
	}
	if filter.ItemStatus != "" {
		query += fmt.Sprintf(" AND i.status = $%d", pos)
		args = append(args, filter.ItemStatus)
		pos++
	}
	if filter.MinQuantity != nil {
		query += fmt.Sprintf(" AND b.quantity >= $%d", pos)
		args = append(args, *filter.MinQuantity)
		pos++
	}
	if filter.MaxQuantity != nil {
		query += fmt.Sprintf(" AND b.quantity <= $%d", pos)
		args = append(args, *filter.MaxQuantity)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY i.sku, l.code LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()
	var list []*repository.StockRow
	for rows.Next() {
		var s repository.StockRow
		if err := rows.Scan(&s.ItemID, &s.ItemSKU, &s.ItemName, &s.ItemUnit, &s.ItemStatus,
			&s.LocationID, &s.LocationCode, &s.LocationName, &s.Quantity, &s.LastMovementAt); err != nil {
			return nil, fmt.Errorf("scan balance row: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// Verify compara la proyección contra SUM(ledger) y devuelve los pares que difieren.
// FULL OUTER JOIN para detectar también balances huérfanos y sumas sin fila de balance.
func (r *StockBalanceRepo) Verify() ([]repository.Discrepancy, error) {
	query := `
		SELECT COALESCE(b.item_id, s.item_id),
		       COALESCE(b.location_id, s.location_id),
		       COALESCE(b.quantity, 0),
		       COALESCE(s.total, 0)
		FROM stock_balances b
		FULL OUTER JOIN (
			SELECT item_id, location_id, SUM(quantity) AS total
			FROM stock_ledger
			GROUP BY item_id, location_id
		) s ON s.item_id = b.item_id AND s.location_id = b.location_id
		WHERE COALESCE(b.quantity, 0) <> COALESCE(s.total, 0)`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("verify balances: %w", err)
	}
	defer rows.Close()
	var list []repository.Discrepancy
	for rows.Next() {
		var d repository.Discrepancy
		if err := rows.Scan(&d.ItemID, &d.LocationID, &d.BalanceQty, &d.LedgerQty); err != nil {
			return nil, fmt.Errorf("scan discrepancy: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// Rebuild reconstruye la tabla completa por replay del ledger. Ejecutar dentro de una tx.
func (r *StockBalanceRepo) Rebuild() error {
	ctx := context.Background()
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_balances`); err != nil {
		return fmt.Errorf("rebuild balances: clear: %w", err)
	}
	query := `
		INSERT INTO stock_balances (item_id, location_id, quantity, updated_at)
		SELECT item_id, location_id, SUM(quantity), MAX(created_at)
		FROM stock_ledger
		GROUP BY item_id, location_id`
	if _, err := r.q.Exec(ctx, query); err != nil {
		return fmt.Errorf("rebuild balances: replay: %w", err)
	}
	return nil
}

package repository

import (
	"time"

	"github.com/stockerp/stockerp-api/internal/domain/entity"
)

// LedgerFilter filtros para listar el ledger. Campos vacíos/nil no filtran.
type LedgerFilter struct {
	ItemID      string
	LocationID  string
	Type        string
	ReferenceNo string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// StockLedgerRepository define el puerto de persistencia para el ledger (append-only).
// Deliberadamente no existe Update ni Delete: las filas son inmutables.
type StockLedgerRepository interface {
	// Append persiste una fila del ledger. El ledger nunca se muta después.
	Append(entry *entity.StockLedgerEntry) error
	GetByTransactionID(transactionID string) (*entity.StockLedgerEntry, error)
	// List devuelve filas ordenadas de más reciente a más antigua.
	List(filter LedgerFilter) ([]*entity.StockLedgerEntry, error)
}

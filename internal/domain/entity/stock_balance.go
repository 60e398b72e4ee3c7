package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance es la proyección materializada del stock actual por (ítem, ubicación).
// Es una caché derivada: el ledger es la fuente de verdad y el balance es
// re-derivable por replay completo en cualquier momento.
// Invariante: Quantity == SUM(StockLedgerEntry.Quantity) para el par, en todo punto quiescente.
type StockBalance struct {
	ItemID     string
	LocationID string
	Quantity   decimal.Decimal
	UpdatedAt  time.Time // timestamp del último movimiento aplicado
}

package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockerp/stockerp-api/internal/domain/entity"
)

// StockRow fila de consulta de stock actual, con los datos de ítem y ubicación
// ya resueltos para el listado.
type StockRow struct {
	ItemID         string
	ItemSKU        string
	ItemName       string
	ItemUnit       string
	ItemStatus     string
	LocationID     string
	LocationCode   string
	LocationName   string
	Quantity       decimal.Decimal
	LastMovementAt time.Time
}

// BalanceFilter filtros para listar balances. Campos vacíos/nil no filtran.
type BalanceFilter struct {
	ItemSKU      string
	LocationCode string
	NameSearch   string // busca en nombre de ítem, case-insensitive
	ItemStatus   string
	MinQuantity  *decimal.Decimal
	MaxQuantity  *decimal.Decimal
	Limit        int
	Offset       int
}

// Discrepancy par (ítem, ubicación) cuyo balance materializado difiere de la
// suma del ledger. Señala un bug del proyector, no un error de negocio.
type Discrepancy struct {
	ItemID     string
	LocationID string
	BalanceQty decimal.Decimal
	LedgerQty  decimal.Decimal
}

// StockBalanceRepository define el puerto para la proyección materializada de balances.
// El ledger es la fuente de verdad; esta tabla existe solo para lecturas rápidas
// y debe poder reconstruirse por replay completo en cualquier momento.
type StockBalanceRepository interface {
	// Get devuelve el balance del par; ausencia de fila equivale a balance cero.
	Get(itemID, locationID string) (*entity.StockBalance, error)
	// GetForUpdate bloquea la fila del par (SELECT FOR UPDATE) durante la
	// secuencia leer-verificar-insertar. Ausencia de fila equivale a cero.
	GetForUpdate(itemID, locationID string) (*entity.StockBalance, error)
	// ApplyDelta suma delta al balance del par (upsert aditivo) y devuelve la cantidad resultante.
	ApplyDelta(itemID, locationID string, delta decimal.Decimal, at time.Time) (decimal.Decimal, error)
	// List devuelve balances con datos de ítem/ubicación, orden estable (SKU, código).
	List(filter BalanceFilter) ([]*StockRow, error)
	// Verify compara la proyección contra SUM(ledger) y devuelve los pares que difieren.
	Verify() ([]Discrepancy, error)
	// Rebuild reconstruye la tabla completa por replay del ledger.
	Rebuild() error
}

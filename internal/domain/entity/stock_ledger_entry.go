package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción del ledger de stock.
const (
	TxTypeIN          = "IN"           // entrada
	TxTypeOUT         = "OUT"          // salida
	TxTypeTransferIn  = "TRANSFER_IN"  // pierna de entrada de un traslado
	TxTypeTransferOut = "TRANSFER_OUT" // pierna de salida de un traslado
	TxTypeAdjustment  = "ADJUSTMENT"   // ajuste correctivo con delta firmado
)

// IsTransferType verifica si t es una de las dos piernas de un traslado.
func IsTransferType(t string) bool {
	return t == TxTypeTransferIn || t == TxTypeTransferOut
}

// StockLedgerEntry es una fila del ledger de stock: el registro contable permanente.
// Inmutable una vez creada; nunca se actualiza ni se elimina (ni lógicamente).
// Las correcciones se hacen con nuevas filas ADJUSTMENT, jamás mutando el historial.
//
// Invariantes (verificados antes del insert y por constraints en la tabla):
//   - Quantity != 0.
//   - TRANSFER_IN/TRANSFER_OUT <=> FromLocationID y ToLocationID presentes;
//     IN/OUT/ADJUSTMENT <=> ninguno presente.
type StockLedgerEntry struct {
	ID            string
	TransactionID string // identificador único de transacción, correlación externa
	ItemID        string
	LocationID    string // ubicación principal afectada por la fila
	Type          string
	Quantity      decimal.Decimal  // firmada: positiva entrada, negativa salida
	UnitCost      *decimal.Decimal // opcional
	ReferenceNo   string           // referencia externa: PO/SO/orden de trabajo
	Notes         string
	// Solo para TRANSFER_IN/TRANSFER_OUT: ambas piernas referencian origen y destino.
	FromLocationID *string
	ToLocationID   *string
	// IdempotencyKey opcional aportada por el caller; reenvíos con la misma clave se rechazan.
	IdempotencyKey *string
	CreatedBy      string
	CreatedAt      time.Time
}

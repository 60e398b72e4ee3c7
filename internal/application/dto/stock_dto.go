package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmitMovementRequest body para POST /api/inventory/stock/{in|out|transfer|adjustment}.
// El tipo lo fija la ruta; cada tipo usa un subconjunto de campos:
//   - IN/OUT: item_sku, location_code, quantity (magnitud positiva).
//   - TRANSFER: item_sku, from_location_code, to_location_code, quantity (magnitud positiva).
//   - ADJUSTMENT: item_sku, location_code, quantity (delta firmado, nunca cero).
type SubmitMovementRequest struct {
	ItemSKU          string           `json:"item_sku" validate:"required,max=50"`
	LocationCode     string           `json:"location_code" validate:"omitempty,max=30"`
	FromLocationCode string           `json:"from_location_code" validate:"omitempty,max=30"`
	ToLocationCode   string           `json:"to_location_code" validate:"omitempty,max=30"`
	Quantity         decimal.Decimal  `json:"quantity"`
	UnitCost         *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceNo      string           `json:"reference_no" validate:"omitempty,max=100"`
	Notes            string           `json:"notes" validate:"omitempty,max=500"`
	IdempotencyKey   string           `json:"idempotency_key" validate:"omitempty,max=100"`
}

// LedgerEntryResponse representación HTTP de una fila del ledger.
type LedgerEntryResponse struct {
	ID             string           `json:"id"`
	TransactionID  string           `json:"transaction_id"`
	ItemID         string           `json:"item_id"`
	LocationID     string           `json:"location_id"`
	Type           string           `json:"type"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceNo    string           `json:"reference_no,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	FromLocationID *string          `json:"from_location_id,omitempty"`
	ToLocationID   *string          `json:"to_location_id,omitempty"`
	CreatedBy      string           `json:"created_by"`
	CreatedAt      time.Time        `json:"created_at"`
}

// BalanceSnapshot balance resultante de un movimiento para un par (ítem, ubicación).
type BalanceSnapshot struct {
	LocationCode string          `json:"location_code"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// SubmitMovementResponse respuesta de un envío: filas creadas y balances resultantes.
// Un TRANSFER devuelve dos entradas y dos balances; los demás tipos, uno de cada uno.
type SubmitMovementResponse struct {
	Entries  []LedgerEntryResponse `json:"entries"`
	Balances []BalanceSnapshot     `json:"balances"`
}

// CurrentStockQuery filtros para GET /api/inventory/stock/current.
type CurrentStockQuery struct {
	ItemSKU      string           `query:"item_sku"`
	LocationCode string           `query:"location_code"`
	Name         string           `query:"name"`
	Status       string           `query:"status" validate:"omitempty,oneof=ACTIVE INACTIVE DISCONTINUED"`
	MinQuantity  *decimal.Decimal `query:"min_quantity"`
	MaxQuantity  *decimal.Decimal `query:"max_quantity"`
	PageRequest
}

// CurrentStockRow fila de la consulta de stock actual.
type CurrentStockRow struct {
	ItemSKU        string          `json:"item_sku"`
	ItemName       string          `json:"item_name"`
	ItemUnit       string          `json:"item_unit"`
	ItemStatus     string          `json:"item_status"`
	LocationCode   string          `json:"location_code"`
	LocationName   string          `json:"location_name"`
	Quantity       decimal.Decimal `json:"quantity"`
	LastMovementAt time.Time       `json:"last_movement_at"`
}

// CurrentStockResponse listado paginado de stock actual, ordenado por (SKU, código de ubicación).
type CurrentStockResponse struct {
	Items []CurrentStockRow `json:"items"`
	Page  PageResponse      `json:"page"`
}

// LedgerQuery filtros para GET /api/inventory/stock/ledger.
type LedgerQuery struct {
	ItemSKU      string `query:"item_sku"`
	LocationCode string `query:"location_code"`
	Type         string `query:"type" validate:"omitempty,oneof=IN OUT TRANSFER_IN TRANSFER_OUT ADJUSTMENT"`
	ReferenceNo  string `query:"reference_no"`
	From         string `query:"from"` // RFC 3339
	To           string `query:"to"`   // RFC 3339
	PageRequest
}

// LedgerListResponse listado paginado del ledger, de más reciente a más antiguo.
type LedgerListResponse struct {
	Items []LedgerEntryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// ReconcileResponse resultado de una reconciliación de balances.
type ReconcileResponse struct {
	Checked      bool                   `json:"checked"`
	Consistent   bool                   `json:"consistent"`
	Discrepancies []ReconcileDiscrepancy `json:"discrepancies,omitempty"`
	Rebuilt      bool                   `json:"rebuilt"`
}

// ReconcileDiscrepancy par cuyo balance materializado difiere del ledger.
type ReconcileDiscrepancy struct {
	ItemID     string          `json:"item_id"`
	LocationID string          `json:"location_id"`
	BalanceQty decimal.Decimal `json:"balance_qty"`
	LedgerQty  decimal.Decimal `json:"ledger_qty"`
}

package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/stockerp/stockerp-api/internal/domain"
	"github.com/stockerp/stockerp-api/internal/domain/entity"
)

// Tipos de envío aceptados por el motor. Un envío TRANSFER produce dos filas
// en el ledger (TRANSFER_OUT en origen y TRANSFER_IN en destino); los demás
// producen exactamente una.
const (
	SubmitIN         = entity.TxTypeIN
	SubmitOUT        = entity.TxTypeOUT
	SubmitTransfer   = "TRANSFER"
	SubmitAdjustment = entity.TxTypeAdjustment
)

// MovementInput es la forma estructural de un envío de movimiento, antes de
// resolver ítem y ubicaciones contra los registros maestros.
type MovementInput struct {
	Type         string
	ItemSKU      string
	LocationCode string // IN/OUT/ADJUSTMENT
	FromCode     string // TRANSFER
	ToCode       string // TRANSFER
	// Quantity es magnitud positiva para IN/OUT/TRANSFER y delta firmado para ADJUSTMENT.
	Quantity       decimal.Decimal
	UnitCost       *decimal.Decimal
	ReferenceNo    string
	Notes          string
	IdempotencyKey string
}

// Validate verifica la admisibilidad estructural de un envío: tipo conocido,
// campos de ubicación según el tipo, cantidad distinta de cero y con el signo
// correcto. No toca la base de datos; la integridad referencial y la política
// de stock suficiente se verifican después, dentro de la transacción.
func Validate(in MovementInput) error {
	if in.ItemSKU == "" {
		return domain.ErrInvalidInput
	}
	switch in.Type {
	case SubmitIN, SubmitOUT:
		if in.LocationCode == "" {
			return domain.ErrMissingLocation
		}
		if in.FromCode != "" || in.ToCode != "" {
			return domain.ErrInvalidInput
		}
		if in.Quantity.IsZero() {
			return domain.ErrZeroQuantity
		}
		if in.Quantity.IsNegative() {
			// IN/OUT reciben magnitud; el signo lo pone el motor
			return domain.ErrInvalidInput
		}
	case SubmitTransfer:
		if in.FromCode == "" || in.ToCode == "" {
			return domain.ErrInvalidLocationPair
		}
		if in.FromCode == in.ToCode {
			return domain.ErrInvalidLocationPair
		}
		if in.LocationCode != "" {
			return domain.ErrInvalidInput
		}
		if in.Quantity.IsZero() {
			return domain.ErrZeroQuantity
		}
		if in.Quantity.IsNegative() {
			return domain.ErrInvalidInput
		}
	case SubmitAdjustment:
		if in.LocationCode == "" {
			return domain.ErrMissingLocation
		}
		if in.FromCode != "" || in.ToCode != "" {
			return domain.ErrInvalidInput
		}
		// El ajuste lleva el delta firmado tal cual; solo cero es inadmisible.
		if in.Quantity.IsZero() {
			return domain.ErrZeroQuantity
		}
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

// CheckEntry verifica los invariantes de una fila ya construida, como última
// barrera antes del insert (espejo de los CHECK de la tabla).
func CheckEntry(e *entity.StockLedgerEntry) error {
	if e.Quantity.IsZero() {
		return domain.ErrZeroQuantity
	}
	hasFrom := e.FromLocationID != nil
	hasTo := e.ToLocationID != nil
	if entity.IsTransferType(e.Type) {
		if !hasFrom || !hasTo {
			return domain.ErrInvalidLocationPair
		}
	} else if hasFrom || hasTo {
		return domain.ErrInvalidLocationPair
	}
	return nil
}

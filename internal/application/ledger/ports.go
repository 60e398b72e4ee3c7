package ledger

import (
	"context"

	"github.com/stockerp/stockerp-api/internal/domain/entity"
	"github.com/stockerp/stockerp-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que las filas del ledger y las
// actualizaciones de balance de un mismo envío se confirmen o reviertan juntas.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ledgerRepo repository.StockLedgerRepository,
		balanceRepo repository.StockBalanceRepository,
	) error) error
}

// AuditRecorder puerto del colaborador de auditoría. Se invoca después del
// commit y su fallo nunca revierte ni bloquea la operación de negocio.
type AuditRecorder interface {
	Record(ctx context.Context, log *entity.AuditLog) error
}

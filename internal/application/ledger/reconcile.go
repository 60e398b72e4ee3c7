package ledger

import (
	"context"

	"github.com/stockerp/stockerp-api/internal/application/dto"
	"github.com/stockerp/stockerp-api/internal/domain"
	"github.com/stockerp/stockerp-api/internal/domain/entity"
	"github.com/stockerp/stockerp-api/internal/domain/repository"
	"github.com/stockerp/stockerp-api/pkg/logger"
)

// ReconcileUseCase compara la proyección materializada de balances contra la
// agregación en vivo del ledger (la fuente de verdad) y, opcionalmente, la
// reconstruye por replay completo. Corre periódicamente vía cron y bajo demanda
// desde el endpoint de administración.
type ReconcileUseCase struct {
	balanceRepo repository.StockBalanceRepository
	txRunner    TxRunner
	log         *logger.Logger
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(balanceRepo repository.StockBalanceRepository, txRunner TxRunner, log *logger.Logger) *ReconcileUseCase {
	return &ReconcileUseCase{balanceRepo: balanceRepo, txRunner: txRunner, log: log}
}

// Run verifica la consistencia balance/ledger. Con repair=true y discrepancias
// presentes, reconstruye la tabla de balances dentro de una transacción.
// Cualquier discrepancia es un bug del proyector y se reporta como tal.
func (uc *ReconcileUseCase) Run(ctx context.Context, principal entity.Principal, repair bool) (*dto.ReconcileResponse, error) {
	if !principal.CanAdminister() {
		return nil, domain.ErrForbidden
	}
	return uc.run(ctx, repair)
}

// RunScheduled versión para el job de cron: sin precondición de rol, solo
// verifica y reporta por log. Nunca repara automáticamente.
func (uc *ReconcileUseCase) RunScheduled(ctx context.Context) {
	out, err := uc.run(ctx, false)
	if err != nil {
		uc.log.Error().Err(err).Msg("reconciliación de balances falló")
		return
	}
	if out.Consistent {
		uc.log.Debug().Msg("reconciliación de balances: consistente")
		return
	}
	uc.log.Error().
		Int("discrepancies", len(out.Discrepancies)).
		Msg("reconciliación de balances: proyección inconsistente con el ledger")
}

func (uc *ReconcileUseCase) run(ctx context.Context, repair bool) (*dto.ReconcileResponse, error) {
	diffs, err := uc.balanceRepo.Verify()
	if err != nil {
		return nil, err
	}
	out := &dto.ReconcileResponse{Checked: true, Consistent: len(diffs) == 0}
	for _, d := range diffs {
		uc.log.Warn().
			Str("item_id", d.ItemID).
			Str("location_id", d.LocationID).
			Str("balance_qty", d.BalanceQty.String()).
			Str("ledger_qty", d.LedgerQty.String()).
			Msg("balance materializado difiere del ledger")
		out.Discrepancies = append(out.Discrepancies, dto.ReconcileDiscrepancy{
			ItemID:     d.ItemID,
			LocationID: d.LocationID,
			BalanceQty: d.BalanceQty,
			LedgerQty:  d.LedgerQty,
		})
	}
	if repair && !out.Consistent {
		err := uc.txRunner.Run(ctx, func(
			_ repository.StockLedgerRepository,
			balanceRepo repository.StockBalanceRepository,
		) error {
			return balanceRepo.Rebuild()
		})
		if err != nil {
			return nil, err
		}
		out.Rebuilt = true
		uc.log.Info().Int("discrepancies", len(diffs)).Msg("balances reconstruidos por replay del ledger")
	}
	return out, nil
}

package ledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockerp/stockerp-api/internal/domain"
	"github.com/stockerp/stockerp-api/internal/domain/entity"
	domledger "github.com/stockerp/stockerp-api/internal/domain/ledger"
	"github.com/stockerp/stockerp-api/internal/domain/repository"
	"github.com/stockerp/stockerp-api/pkg/logger"
)

// SubmitMovementUseCase registra movimientos de stock de forma transaccional
// (IN, OUT, TRANSFER, ADJUSTMENT) con bloqueo de fila sobre el balance
// (SELECT FOR UPDATE) y Commit/Rollback. Un TRANSFER produce sus dos piernas
// y ambas actualizaciones de balance en una sola unidad atómica.
type SubmitMovementUseCase struct {
	txRunner     TxRunner
	itemRepo     repository.ItemRepository
	locationRepo repository.LocationRepository
	audit        AuditRecorder
	log          *logger.Logger
	// allowNegative relaja la política de stock suficiente en OUT/TRANSFER.
	// Por defecto la política es estricta: se rechaza con ErrInsufficientStock.
	allowNegative bool
}

// NewSubmitMovementUseCase construye el caso de uso.
func NewSubmitMovementUseCase(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	audit AuditRecorder,
	log *logger.Logger,
	allowNegative bool,
) *SubmitMovementUseCase {
	return &SubmitMovementUseCase{
		txRunner:      txRunner,
		itemRepo:      itemRepo,
		locationRepo:  locationRepo,
		audit:         audit,
		log:           log,
		allowNegative: allowNegative,
	}
}

// BalanceChange balance resultante para un par afectado por el envío.
type BalanceChange struct {
	LocationID   string
	LocationCode string
	Quantity     decimal.Decimal
}

// MovementResult filas persistidas y balances resultantes de un envío.
type MovementResult struct {
	Entries  []*entity.StockLedgerEntry
	Balances []BalanceChange
}

// Submit valida el envío, resuelve ítem y ubicaciones contra los maestros y
// ejecuta la secuencia bloquear-verificar-aplicar-insertar dentro de una
// transacción. Tras el commit registra auditoría best-effort para ajustes.
//
// Precondición RBAC: IN/OUT/TRANSFER requieren staff+; ADJUSTMENT requiere admin+.
func (uc *SubmitMovementUseCase) Submit(ctx context.Context, principal entity.Principal, in domledger.MovementInput) (*MovementResult, error) {
	if in.Type == domledger.SubmitAdjustment {
		if !principal.CanAdminister() {
			return nil, domain.ErrForbidden
		}
	} else if !principal.CanMove() {
		return nil, domain.ErrForbidden
	}

	if err := domledger.Validate(in); err != nil {
		return nil, err
	}

	item, err := uc.itemRepo.GetBySKU(in.ItemSKU)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}

	var loc, from, to *entity.Location
	if in.Type == domledger.SubmitTransfer {
		if from, err = uc.resolveLocation(in.FromCode); err != nil {
			return nil, err
		}
		if to, err = uc.resolveLocation(in.ToCode); err != nil {
			return nil, err
		}
	} else {
		if loc, err = uc.resolveLocation(in.LocationCode); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	result := &MovementResult{}

	// Inicia transacción; Commit si todo ok, Rollback si algo falla (TxRunner.Run lo hace)
	err = uc.txRunner.Run(ctx, func(
		ledgerRepo repository.StockLedgerRepository,
		balanceRepo repository.StockBalanceRepository,
	) error {
		switch in.Type {
		case domledger.SubmitIN:
			return uc.doIN(ledgerRepo, balanceRepo, principal, item, loc, in, now, result)
		case domledger.SubmitOUT:
			return uc.doOUT(ledgerRepo, balanceRepo, principal, item, loc, in, now, result)
		case domledger.SubmitAdjustment:
			return uc.doAdjustment(ledgerRepo, balanceRepo, principal, item, loc, in, now, result)
		case domledger.SubmitTransfer:
			return uc.doTransfer(ledgerRepo, balanceRepo, principal, item, from, to, in, now, result)
		}
		return domain.ErrInvalidInput
	})
	if err != nil {
		return nil, err
	}

	// Auditoría best-effort post-commit: los ajustes son acciones de nivel admin.
	// Un fallo aquí se registra en el log y jamás se propaga al caller.
	if in.Type == domledger.SubmitAdjustment && uc.audit != nil {
		uc.recordAdjustmentAudit(ctx, principal, item, result)
	}

	return result, nil
}

func (uc *SubmitMovementUseCase) resolveLocation(code string) (*entity.Location, error) {
	l, err := uc.locationRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.ErrLocationNotFound
	}
	return l, nil
}

// doIN: suma la cantidad al balance (upsert aditivo) y agrega la fila IN.
// Las entradas no requieren bloqueo previo: nunca violan la política de stock.
func (uc *SubmitMovementUseCase) doIN(
	ledgerRepo repository.StockLedgerRepository,
	balanceRepo repository.StockBalanceRepository,
	principal entity.Principal,
	item *entity.Item, loc *entity.Location,
	in domledger.MovementInput, now time.Time,
	result *MovementResult,
) error {
	newQty, err := balanceRepo.ApplyDelta(item.ID, loc.ID, in.Quantity, now)
	if err != nil {
		return err
	}
	entry := uc.newEntry(principal, item, loc, entity.TxTypeIN, in.Quantity, in, now)
	if err := appendChecked(ledgerRepo, entry); err != nil {
		return err
	}
	result.Entries = append(result.Entries, entry)
	result.Balances = append(result.Balances, BalanceChange{LocationID: loc.ID, LocationCode: loc.Code, Quantity: newQty})
	return nil
}

// doOUT: bloquea la fila del balance, verifica la política de stock suficiente
// y resta la cantidad. Con política estricta el sobregiro se rechaza con
// ErrInsufficientStock; el bloqueo garantiza que la verificación no sea racy.
func (uc *SubmitMovementUseCase) doOUT(
	ledgerRepo repository.StockLedgerRepository,
	balanceRepo repository.StockBalanceRepository,
	principal entity.Principal,
	item *entity.Item, loc *entity.Location,
	in domledger.MovementInput, now time.Time,
	result *MovementResult,
) error {
	bal, err := balanceRepo.GetForUpdate(item.ID, loc.ID)
	if err != nil {
		return err
	}
	if !uc.allowNegative && bal.Quantity.LessThan(in.Quantity) {
		return domain.ErrInsufficientStock
	}
	newQty, err := balanceRepo.ApplyDelta(item.ID, loc.ID, in.Quantity.Neg(), now)
	if err != nil {
		return err
	}
	entry := uc.newEntry(principal, item, loc, entity.TxTypeOUT, in.Quantity.Neg(), in, now)
	if err := appendChecked(ledgerRepo, entry); err != nil {
		return err
	}
	result.Entries = append(result.Entries, entry)
	result.Balances = append(result.Balances, BalanceChange{LocationID: loc.ID, LocationCode: loc.Code, Quantity: newQty})
	return nil
}

// doAdjustment: aplica el delta firmado tal cual, sin verificación de stock.
// Los ajustes son correctivos y pueden legítimamente dejar el balance en negativo.
func (uc *SubmitMovementUseCase) doAdjustment(
	ledgerRepo repository.StockLedgerRepository,
	balanceRepo repository.StockBalanceRepository,
	principal entity.Principal,
	item *entity.Item, loc *entity.Location,
	in domledger.MovementInput, now time.Time,
	result *MovementResult,
) error {
	// Bloquea igualmente la fila para serializar con OUT/TRANSFER concurrentes.
	if _, err := balanceRepo.GetForUpdate(item.ID, loc.ID); err != nil {
		return err
	}
	newQty, err := balanceRepo.ApplyDelta(item.ID, loc.ID, in.Quantity, now)
	if err != nil {
		return err
	}
	entry := uc.newEntry(principal, item, loc, entity.TxTypeAdjustment, in.Quantity, in, now)
	if err := appendChecked(ledgerRepo, entry); err != nil {
		return err
	}
	result.Entries = append(result.Entries, entry)
	result.Balances = append(result.Balances, BalanceChange{LocationID: loc.ID, LocationCode: loc.Code, Quantity: newQty})
	return nil
}

// doTransfer: bloquea la fila de origen, verifica la política, resta en origen
// y suma en destino, y agrega las dos piernas (TRANSFER_OUT, TRANSFER_IN) con
// la misma referencia. Todo en la misma transacción: nunca se observa una
// pierna sin la otra.
func (uc *SubmitMovementUseCase) doTransfer(
	ledgerRepo repository.StockLedgerRepository,
	balanceRepo repository.StockBalanceRepository,
	principal entity.Principal,
	item *entity.Item, from, to *entity.Location,
	in domledger.MovementInput, now time.Time,
	result *MovementResult,
) error {
	origin, err := balanceRepo.GetForUpdate(item.ID, from.ID)
	if err != nil {
		return err
	}
	if !uc.allowNegative && origin.Quantity.LessThan(in.Quantity) {
		return domain.ErrInsufficientStock
	}
	fromQty, err := balanceRepo.ApplyDelta(item.ID, from.ID, in.Quantity.Neg(), now)
	if err != nil {
		return err
	}
	toQty, err := balanceRepo.ApplyDelta(item.ID, to.ID, in.Quantity, now)
	if err != nil {
		return err
	}

	outEntry := uc.newEntry(principal, item, from, entity.TxTypeTransferOut, in.Quantity.Neg(), in, now)
	outEntry.FromLocationID = &from.ID
	outEntry.ToLocationID = &to.ID
	if err := appendChecked(ledgerRepo, outEntry); err != nil {
		return err
	}

	inEntry := uc.newEntry(principal, item, to, entity.TxTypeTransferIn, in.Quantity, in, now)
	inEntry.FromLocationID = &from.ID
	inEntry.ToLocationID = &to.ID
	if err := appendChecked(ledgerRepo, inEntry); err != nil {
		return err
	}

	result.Entries = append(result.Entries, outEntry, inEntry)
	result.Balances = append(result.Balances,
		BalanceChange{LocationID: from.ID, LocationCode: from.Code, Quantity: fromQty},
		BalanceChange{LocationID: to.ID, LocationCode: to.Code, Quantity: toQty},
	)
	return nil
}

// newEntry construye una fila del ledger con identificadores frescos.
// quantity llega ya firmada según el tipo.
func (uc *SubmitMovementUseCase) newEntry(
	principal entity.Principal,
	item *entity.Item, loc *entity.Location,
	txType string, quantity decimal.Decimal,
	in domledger.MovementInput, now time.Time,
) *entity.StockLedgerEntry {
	var idemKey *string
	if in.IdempotencyKey != "" {
		k := in.IdempotencyKey
		idemKey = &k
	}
	return &entity.StockLedgerEntry{
		ID:             uuid.New().String(),
		TransactionID:  uuid.New().String(),
		ItemID:         item.ID,
		LocationID:     loc.ID,
		Type:           txType,
		Quantity:       quantity,
		UnitCost:       in.UnitCost,
		ReferenceNo:    in.ReferenceNo,
		Notes:          in.Notes,
		IdempotencyKey: idemKey,
		CreatedBy:      principal.UserID,
		CreatedAt:      now,
	}
}

// appendChecked verifica los invariantes de la fila y la agrega al ledger.
func appendChecked(ledgerRepo repository.StockLedgerRepository, e *entity.StockLedgerEntry) error {
	if err := domledger.CheckEntry(e); err != nil {
		return err
	}
	return ledgerRepo.Append(e)
}

// recordAdjustmentAudit registra en auditoría quién ajustó qué. Best-effort:
// el envío ya se confirmó y un fallo aquí solo se loguea.
func (uc *SubmitMovementUseCase) recordAdjustmentAudit(ctx context.Context, principal entity.Principal, item *entity.Item, result *MovementResult) {
	for _, e := range result.Entries {
		newValues, _ := json.Marshal(map[string]any{
			"transaction_id": e.TransactionID,
			"location_id":    e.LocationID,
			"quantity":       e.Quantity,
			"reference_no":   e.ReferenceNo,
			"notes":          e.Notes,
		})
		err := uc.audit.Record(ctx, &entity.AuditLog{
			ID:         uuid.New().String(),
			UserID:     principal.UserID,
			UserEmail:  principal.Email,
			UserRole:   principal.Role,
			Action:     entity.AuditActionAdjustment,
			EntityType: "stock_ledger",
			EntityID:   e.ID,
			EntityCode: item.SKU,
			NewValues:  string(newValues),
			CreatedAt:  time.Now(),
		})
		if err != nil && uc.log != nil {
			uc.log.Warn().Err(err).
				Str("entry_id", e.ID).
				Str("user_id", principal.UserID).
				Msg("fallo al registrar auditoría de ajuste")
		}
	}
}

package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockerp/stockerp-api/internal/application/dto"
	"github.com/stockerp/stockerp-api/internal/domain"
	"github.com/stockerp/stockerp-api/internal/domain/entity"
	"github.com/stockerp/stockerp-api/internal/domain/repository"
)

// StockQueryUseCase consultas de solo lectura sobre balances y ledger.
type StockQueryUseCase struct {
	balanceRepo  repository.StockBalanceRepository
	ledgerRepo   repository.StockLedgerRepository
	itemRepo     repository.ItemRepository
	locationRepo repository.LocationRepository
}

// NewStockQueryUseCase construye el caso de uso.
func NewStockQueryUseCase(
	balanceRepo repository.StockBalanceRepository,
	ledgerRepo repository.StockLedgerRepository,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
) *StockQueryUseCase {
	return &StockQueryUseCase{
		balanceRepo:  balanceRepo,
		ledgerRepo:   ledgerRepo,
		itemRepo:     itemRepo,
		locationRepo: locationRepo,
	}
}

// GetCurrentStock lista el stock actual por (ítem, ubicación) con filtros y
// paginación, ordenado por (SKU, código de ubicación) para paginación estable.
func (uc *StockQueryUseCase) GetCurrentStock(principal entity.Principal, q dto.CurrentStockQuery) (*dto.CurrentStockResponse, error) {
	if !principal.CanRead() {
		return nil, domain.ErrForbidden
	}
	q.DefaultPage()
	rows, err := uc.balanceRepo.List(repository.BalanceFilter{
		ItemSKU:      q.ItemSKU,
		LocationCode: q.LocationCode,
		NameSearch:   q.Name,
		ItemStatus:   q.Status,
		MinQuantity:  q.MinQuantity,
		MaxQuantity:  q.MaxQuantity,
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.CurrentStockRow, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.CurrentStockRow{
			ItemSKU:        r.ItemSKU,
			ItemName:       r.ItemName,
			ItemUnit:       r.ItemUnit,
			ItemStatus:     r.ItemStatus,
			LocationCode:   r.LocationCode,
			LocationName:   r.LocationName,
			Quantity:       r.Quantity,
			LastMovementAt: r.LastMovementAt,
		})
	}
	return &dto.CurrentStockResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}, nil
}

// GetBalance devuelve el balance actual de un par (SKU, código de ubicación).
// La ausencia de fila de balance equivale a cero, no a un error.
func (uc *StockQueryUseCase) GetBalance(principal entity.Principal, sku, locationCode string) (decimal.Decimal, error) {
	if !principal.CanRead() {
		return decimal.Zero, domain.ErrForbidden
	}
	item, err := uc.itemRepo.GetBySKU(sku)
	if err != nil {
		return decimal.Zero, err
	}
	if item == nil {
		return decimal.Zero, domain.ErrItemNotFound
	}
	loc, err := uc.locationRepo.GetByCode(locationCode)
	if err != nil {
		return decimal.Zero, err
	}
	if loc == nil {
		return decimal.Zero, domain.ErrLocationNotFound
	}
	bal, err := uc.balanceRepo.Get(item.ID, loc.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return bal.Quantity, nil
}

// ListLedger lista el historial del ledger de más reciente a más antiguo,
// con filtros por ítem, ubicación, tipo, rango de fechas y referencia.
func (uc *StockQueryUseCase) ListLedger(principal entity.Principal, q dto.LedgerQuery) (*dto.LedgerListResponse, error) {
	if !principal.CanRead() {
		return nil, domain.ErrForbidden
	}
	q.DefaultPage()

	filter := repository.LedgerFilter{
		Type:        q.Type,
		ReferenceNo: q.ReferenceNo,
		Limit:       q.Limit,
		Offset:      q.Offset,
	}
	if q.ItemSKU != "" {
		item, err := uc.itemRepo.GetBySKU(q.ItemSKU)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, domain.ErrItemNotFound
		}
		filter.ItemID = item.ID
	}
	if q.LocationCode != "" {
		loc, err := uc.locationRepo.GetByCode(q.LocationCode)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, domain.ErrLocationNotFound
		}
		filter.LocationID = loc.ID
	}
	var err error
	if filter.From, err = parseTimeParam(q.From); err != nil {
		return nil, err
	}
	if filter.To, err = parseTimeParam(q.To); err != nil {
		return nil, err
	}

	entries, err := uc.ledgerRepo.List(filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, ToLedgerEntryResponse(e))
	}
	return &dto.LedgerListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}, nil
}

// ToLedgerEntryResponse mapea una fila del ledger a su representación HTTP.
func ToLedgerEntryResponse(e *entity.StockLedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:             e.ID,
		TransactionID:  e.TransactionID,
		ItemID:         e.ItemID,
		LocationID:     e.LocationID,
		Type:           e.Type,
		Quantity:       e.Quantity,
		UnitCost:       e.UnitCost,
		ReferenceNo:    e.ReferenceNo,
		Notes:          e.Notes,
		FromLocationID: e.FromLocationID,
		ToLocationID:   e.ToLocationID,
		CreatedBy:      e.CreatedBy,
		CreatedAt:      e.CreatedAt,
	}
}

// parseTimeParam interpreta un parámetro de fecha RFC 3339 opcional.
func parseTimeParam(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	return &t, nil
}

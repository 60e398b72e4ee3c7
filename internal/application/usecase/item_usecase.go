package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/stockerp/stockerp-api/internal/application/dto"
	appledger "github.com/stockerp/stockerp-api/internal/application/ledger"
	"github.com/stockerp/stockerp-api/internal/domain"
	"github.com/stockerp/stockerp-api/internal/domain/entity"
	"github.com/stockerp/stockerp-api/internal/domain/repository"
	"github.com/stockerp/stockerp-api/pkg/logger"
)

// ItemUseCase casos de uso para el maestro de ítems (SKUs).
// Mutaciones solo admin+; el borrado es lógico y nunca toca el ledger.
type ItemUseCase struct {
	repo  repository.ItemRepository
	audit appledger.AuditRecorder
	log   *logger.Logger
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(repo repository.ItemRepository, audit appledger.AuditRecorder, log *logger.Logger) *ItemUseCase {
	return &ItemUseCase{repo: repo, audit: audit, log: log}
}

// Create crea un ítem nuevo. El SKU debe ser único entre ítems no eliminados.
func (uc *ItemUseCase) Create(ctx context.Context, principal entity.Principal, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if !principal.CanAdminister() {
		return nil, domain.ErrForbidden
	}
	existing, err := uc.repo.GetBySKU(in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	unit := in.Unit
	if unit == "" {
		unit = "PCS"
	}
	status := in.Status
	if status == "" {
		status = entity.ItemStatusActive
	}
	item := &entity.Item{
		ID:          uuid.New().String(),
		SKU:         in.SKU,
		Name:        in.Name,
		Unit:        unit,
		Status:      status,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   principal.UserID,
		UpdatedBy:   principal.UserID,
	}
	if err := uc.repo.Create(item); err != nil {
		return nil, err
	}
	uc.recordAudit(ctx, principal, entity.AuditActionCreate, item, nil)
	return toItemResponse(item), nil
}

// GetByID obtiene un ítem por ID. Devuelve (nil, nil) si no existe.
func (uc *ItemUseCase) GetByID(id string) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.IsDeleted {
		return nil, nil
	}
	return toItemResponse(item), nil
}

// Update actualiza nombre/unidad/estado/descripción. El SKU es inmutable.
func (uc *ItemUseCase) Update(ctx context.Context, principal entity.Principal, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	if !principal.CanAdminister() {
		return nil, domain.ErrForbidden
	}
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.IsDeleted {
		return nil, nil
	}
	old := *item
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.Unit != nil {
		item.Unit = *in.Unit
	}
	if in.Status != nil {
		if !entity.ValidItemStatus(*in.Status) {
			return nil, domain.ErrInvalidInput
		}
		item.Status = *in.Status
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	item.UpdatedAt = time.Now()
	item.UpdatedBy = principal.UserID
	if err := uc.repo.Update(item); err != nil {
		return nil, err
	}
	uc.recordAudit(ctx, principal, entity.AuditActionUpdate, item, &old)
	return toItemResponse(item), nil
}

// SoftDelete marca el ítem como eliminado. Las filas del ledger que lo
// referencian permanecen intactas para siempre.
func (uc *ItemUseCase) SoftDelete(ctx context.Context, principal entity.Principal, id string) error {
	if !principal.CanAdminister() {
		return domain.ErrForbidden
	}
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if item == nil || item.IsDeleted {
		return domain.ErrItemNotFound
	}
	if err := uc.repo.SoftDelete(id, principal.UserID); err != nil {
		return err
	}
	uc.recordAudit(ctx, principal, entity.AuditActionDelete, item, nil)
	return nil
}

// List lista ítems con paginación.
func (uc *ItemUseCase) List(includeDeleted bool, page dto.PageRequest) (*dto.ItemListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(includeDeleted, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *toItemResponse(it))
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// recordAudit auditoría best-effort de mutaciones de maestros; el fallo solo se loguea.
func (uc *ItemUseCase) recordAudit(ctx context.Context, principal entity.Principal, action string, item *entity.Item, old *entity.Item) {
	if uc.audit == nil {
		return
	}
	newValues, _ := json.Marshal(itemAuditValues(item))
	var oldValues []byte
	if old != nil {
		oldValues, _ = json.Marshal(itemAuditValues(old))
	}
	err := uc.audit.Record(ctx, &entity.AuditLog{
		ID:         uuid.New().String(),
		UserID:     principal.UserID,
		UserEmail:  principal.Email,
		UserRole:   principal.Role,
		Action:     action,
		EntityType: "item",
		EntityID:   item.ID,
		EntityCode: item.SKU,
		OldValues:  string(oldValues),
		NewValues:  string(newValues),
		CreatedAt:  time.Now(),
	})
	if err != nil && uc.log != nil {
		uc.log.Warn().Err(err).Str("item_id", item.ID).Msg("fallo al registrar auditoría de ítem")
	}
}

func itemAuditValues(i *entity.Item) map[string]any {
	return map[string]any{
		"sku":         i.SKU,
		"name":        i.Name,
		"unit":        i.Unit,
		"status":      i.Status,
		"description": i.Description,
		"is_deleted":  i.IsDeleted,
	}
}

func toItemResponse(i *entity.Item) *dto.ItemResponse {
	if i == nil {
		return nil
	}
	return &dto.ItemResponse{
		ID:          i.ID,
		SKU:         i.SKU,
		Name:        i.Name,
		Unit:        i.Unit,
		Status:      i.Status,
		Description: i.Description,
		IsDeleted:   i.IsDeleted,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

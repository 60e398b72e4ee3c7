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

// maxHierarchyDepth tope del recorrido de ancestros; un árbol de bodegas real
// no pasa de unos pocos niveles.
const maxHierarchyDepth = 32

// LocationUseCase casos de uso para el maestro de ubicaciones.
// El enlace padre/hijo forma un árbol; la aciclicidad se valida al escribir.
type LocationUseCase struct {
	repo  repository.LocationRepository
	audit appledger.AuditRecorder
	log   *logger.Logger
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository, audit appledger.AuditRecorder, log *logger.Logger) *LocationUseCase {
	return &LocationUseCase{repo: repo, audit: audit, log: log}
}

// Create crea una ubicación nueva. El código debe ser único entre ubicaciones no eliminadas.
func (uc *LocationUseCase) Create(ctx context.Context, principal entity.Principal, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if !principal.CanAdminister() {
		return nil, domain.ErrForbidden
	}
	existing, err := uc.repo.GetByCode(in.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	locType := in.Type
	if locType == "" {
		locType = entity.LocationTypeWarehouse
	}
	id := uuid.New().String()
	if err := uc.checkParent(id, in.ParentID); err != nil {
		return nil, err
	}
	now := time.Now()
	location := &entity.Location{
		ID:        id,
		Code:      in.Code,
		Name:      in.Name,
		Type:      locType,
		Address:   in.Address,
		ParentID:  in.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: principal.UserID,
		UpdatedBy: principal.UserID,
	}
	if err := uc.repo.Create(location); err != nil {
		return nil, err
	}
	uc.recordAudit(ctx, principal, entity.AuditActionCreate, location, nil)
	return toLocationResponse(location), nil
}

// GetByID obtiene una ubicación por ID. Devuelve (nil, nil) si no existe.
func (uc *LocationUseCase) GetByID(id string) (*dto.LocationResponse, error) {
	location, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if location == nil || location.IsDeleted {
		return nil, nil
	}
	return toLocationResponse(location), nil
}

// Update actualiza nombre/tipo/dirección/padre. El código es inmutable.
func (uc *LocationUseCase) Update(ctx context.Context, principal entity.Principal, id string, in dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	if !principal.CanAdminister() {
		return nil, domain.ErrForbidden
	}
	location, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if location == nil || location.IsDeleted {
		return nil, nil
	}
	old := *location
	if in.Name != nil {
		location.Name = *in.Name
	}
	if in.Type != nil {
		if !entity.ValidLocationType(*in.Type) {
			return nil, domain.ErrInvalidInput
		}
		location.Type = *in.Type
	}
	if in.Address != nil {
		location.Address = *in.Address
	}
	if in.ParentID != nil {
		if err := uc.checkParent(id, in.ParentID); err != nil {
			return nil, err
		}
		location.ParentID = in.ParentID
	}
	location.UpdatedAt = time.Now()
	location.UpdatedBy = principal.UserID
	if err := uc.repo.Update(location); err != nil {
		return nil, err
	}
	uc.recordAudit(ctx, principal, entity.AuditActionUpdate, location, &old)
	return toLocationResponse(location), nil
}

// SoftDelete marca la ubicación como eliminada; su historial en el ledger permanece.
func (uc *LocationUseCase) SoftDelete(ctx context.Context, principal entity.Principal, id string) error {
	if !principal.CanAdminister() {
		return domain.ErrForbidden
	}
	location, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if location == nil || location.IsDeleted {
		return domain.ErrLocationNotFound
	}
	if err := uc.repo.SoftDelete(id, principal.UserID); err != nil {
		return err
	}
	uc.recordAudit(ctx, principal, entity.AuditActionDelete, location, nil)
	return nil
}

// List lista ubicaciones con paginación.
func (uc *LocationUseCase) List(includeDeleted bool, page dto.PageRequest) (*dto.LocationListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(includeDeleted, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return &dto.LocationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// checkParent valida que el padre exista y que enlazarlo no forme un ciclo:
// recorre la cadena de ancestros y rechaza si reaparece la propia ubicación.
func (uc *LocationUseCase) checkParent(locationID string, parentID *string) error {
	if parentID == nil {
		return nil
	}
	if *parentID == locationID {
		return domain.ErrConflict
	}
	current := *parentID
	for depth := 0; depth < maxHierarchyDepth; depth++ {
		parent, err := uc.repo.GetByID(current)
		if err != nil {
			return err
		}
		if parent == nil || parent.IsDeleted {
			return domain.ErrLocationNotFound
		}
		if parent.ParentID == nil {
			return nil
		}
		if *parent.ParentID == locationID {
			return domain.ErrConflict
		}
		current = *parent.ParentID
	}
	return domain.ErrConflict
}

func (uc *LocationUseCase) recordAudit(ctx context.Context, principal entity.Principal, action string, location *entity.Location, old *entity.Location) {
	if uc.audit == nil {
		return
	}
	newValues, _ := json.Marshal(locationAuditValues(location))
	var oldValues []byte
	if old != nil {
		oldValues, _ = json.Marshal(locationAuditValues(old))
	}
	err := uc.audit.Record(ctx, &entity.AuditLog{
		ID:         uuid.New().String(),
		UserID:     principal.UserID,
		UserEmail:  principal.Email,
		UserRole:   principal.Role,
		Action:     action,
		EntityType: "location",
		EntityID:   location.ID,
		EntityCode: location.Code,
		OldValues:  string(oldValues),
		NewValues:  string(newValues),
		CreatedAt:  time.Now(),
	})
	if err != nil && uc.log != nil {
		uc.log.Warn().Err(err).Str("location_id", location.ID).Msg("fallo al registrar auditoría de ubicación")
	}
}

func locationAuditValues(l *entity.Location) map[string]any {
	values := map[string]any{
		"code":       l.Code,
		"name":       l.Name,
		"type":       l.Type,
		"address":    l.Address,
		"is_deleted": l.IsDeleted,
	}
	if l.ParentID != nil {
		values["parent_id"] = *l.ParentID
	}
	return values
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	if l == nil {
		return nil
	}
	return &dto.LocationResponse{
		ID:        l.ID,
		Code:      l.Code,
		Name:      l.Name,
		Type:      l.Type,
		Address:   l.Address,
		ParentID:  l.ParentID,
		IsDeleted: l.IsDeleted,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

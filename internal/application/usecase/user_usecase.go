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

// UserUseCase administración de usuarios (solo admin+).
type UserUseCase struct {
	repo  repository.UserRepository
	audit appledger.AuditRecorder
	log   *logger.Logger
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(repo repository.UserRepository, audit appledger.AuditRecorder, log *logger.Logger) *UserUseCase {
	return &UserUseCase{repo: repo, audit: audit, log: log}
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(principal entity.Principal, id string) (*dto.UserResponse, error) {
	if !principal.CanAdminister() {
		return nil, domain.ErrForbidden
	}
	user, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return ToUserResponse(user), nil
}

// List lista usuarios con paginación.
func (uc *UserUseCase) List(principal entity.Principal, page dto.PageRequest) (*dto.UserListResponse, error) {
	if !principal.CanAdminister() {
		return nil, domain.ErrForbidden
	}
	page.DefaultPage()
	list, err := uc.repo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *ToUserResponse(u))
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update cambia nombre/rol/estado de un usuario. Un admin no puede otorgar un
// rol superior al suyo propio.
func (uc *UserUseCase) Update(ctx context.Context, principal entity.Principal, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if !principal.CanAdminister() {
		return nil, domain.ErrForbidden
	}
	user, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	old := *user
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Role != nil {
		if entity.RoleLevel(*in.Role) == 0 {
			return nil, domain.ErrInvalidInput
		}
		if entity.RoleLevel(*in.Role) > entity.RoleLevel(principal.Role) {
			return nil, domain.ErrForbidden
		}
		user.Role = *in.Role
	}
	if in.Status != nil {
		user.Status = *in.Status
	}
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(user); err != nil {
		return nil, err
	}
	uc.recordAudit(ctx, principal, user, &old)
	return ToUserResponse(user), nil
}

func (uc *UserUseCase) recordAudit(ctx context.Context, principal entity.Principal, user *entity.User, old *entity.User) {
	if uc.audit == nil {
		return
	}
	newValues, _ := json.Marshal(userAuditValues(user))
	var oldValues []byte
	if old != nil {
		oldValues, _ = json.Marshal(userAuditValues(old))
	}
	err := uc.audit.Record(ctx, &entity.AuditLog{
		ID:         uuid.New().String(),
		UserID:     principal.UserID,
		UserEmail:  principal.Email,
		UserRole:   principal.Role,
		Action:     entity.AuditActionUpdate,
		EntityType: "user",
		EntityID:   user.ID,
		EntityCode: user.Email,
		OldValues:  string(oldValues),
		NewValues:  string(newValues),
		CreatedAt:  time.Now(),
	})
	if err != nil && uc.log != nil {
		uc.log.Warn().Err(err).Str("user_id", user.ID).Msg("fallo al registrar auditoría de usuario")
	}
}

func userAuditValues(u *entity.User) map[string]any {
	return map[string]any{
		"email":  u.Email,
		"name":   u.Name,
		"role":   u.Role,
		"status": u.Status,
	}
}

// ToUserResponse mapea un usuario a su representación HTTP (sin el hash).
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

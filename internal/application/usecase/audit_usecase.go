package usecase

import (
	"time"

	"github.com/stockerp/stockerp-api/internal/application/dto"
	"github.com/stockerp/stockerp-api/internal/domain"
	"github.com/stockerp/stockerp-api/internal/domain/entity"
	"github.com/stockerp/stockerp-api/internal/domain/repository"
)

// AuditUseCase consulta de solo lectura del registro de auditoría (admin+).
type AuditUseCase struct {
	repo repository.AuditLogRepository
}

// NewAuditUseCase construye el caso de uso.
func NewAuditUseCase(repo repository.AuditLogRepository) *AuditUseCase {
	return &AuditUseCase{repo: repo}
}

// List lista registros de auditoría de más reciente a más antiguo.
func (uc *AuditUseCase) List(principal entity.Principal, q dto.AuditQuery) (*dto.AuditListResponse, error) {
	if !principal.CanAdminister() {
		return nil, domain.ErrForbidden
	}
	q.DefaultPage()
	filter := repository.AuditFilter{
		UserID:     q.UserID,
		Action:     q.Action,
		EntityType: q.EntityType,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
	var err error
	if filter.From, err = parseAuditTime(q.From); err != nil {
		return nil, err
	}
	if filter.To, err = parseAuditTime(q.To); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AuditLogResponse, 0, len(list))
	for _, a := range list {
		items = append(items, dto.AuditLogResponse{
			ID:         a.ID,
			RequestID:  a.RequestID,
			UserID:     a.UserID,
			UserEmail:  a.UserEmail,
			UserRole:   a.UserRole,
			Action:     a.Action,
			EntityType: a.EntityType,
			EntityID:   a.EntityID,
			EntityCode: a.EntityCode,
			OldValues:  a.OldValues,
			NewValues:  a.NewValues,
			IPAddress:  a.IPAddress,
			Notes:      a.Notes,
			CreatedAt:  a.CreatedAt,
		})
	}
	return &dto.AuditListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}, nil
}

func parseAuditTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	return &t, nil
}

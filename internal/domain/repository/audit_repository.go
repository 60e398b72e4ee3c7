package repository

import (
	"time"

	"github.com/stockerp/stockerp-api/internal/domain/entity"
)

// AuditFilter filtros para listar el registro de auditoría.
type AuditFilter struct {
	UserID     string
	Action     string
	EntityType string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// AuditLogRepository define el puerto de persistencia para el registro de auditoría (append-only).
type AuditLogRepository interface {
	Create(log *entity.AuditLog) error
	List(filter AuditFilter) ([]*entity.AuditLog, error)
}

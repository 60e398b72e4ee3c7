package postgres

import (
	"context"
	"fmt"

	"github.com/stockerp/stockerp-api/internal/application/ledger"
	"github.com/stockerp/stockerp-api/internal/domain/entity"
	"github.com/stockerp/stockerp-api/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)
var _ ledger.AuditRecorder = (*AuditLogRepo)(nil)

// AuditLogRepo implementación del puerto AuditLogRepository sobre PostgreSQL.
// Solo INSERT y SELECT: la tabla es append-only.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador de auditoría. Pasar pool o tx (Querier).
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

// Create persiste un registro de auditoría.
func (r *AuditLogRepo) Create(log *entity.AuditLog) error {
	query := `
		INSERT INTO audit_log (id, request_id, user_id, user_email, user_role, action, entity_type, entity_id, entity_code, old_values, new_values, ip_address, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(context.Background(), query,
		log.ID, log.RequestID, log.UserID, log.UserEmail, log.UserRole, log.Action,
		log.EntityType, log.EntityID, log.EntityCode, log.OldValues, log.NewValues,
		log.IPAddress, log.Notes, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// Record satisface el puerto AuditRecorder de los casos de uso. Se invoca
// después del commit de la operación de negocio, fuera de su transacción.
func (r *AuditLogRepo) Record(ctx context.Context, log *entity.AuditLog) error {
	return r.Create(log)
}

// List lista registros de auditoría filtrados, de más reciente a más antiguo.
func (r *AuditLogRepo) List(filter repository.AuditFilter) ([]*entity.AuditLog, error) {
	query := `
		SELECT id, request_id, user_id, user_email, user_role, action, entity_type, entity_id, entity_code, old_values, new_values, ip_address, notes, created_at
		FROM audit_log WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.UserID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", pos)
		args = append(args, filter.UserID)
		pos++
	}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", pos)
		args = append(args, filter.Action)
		pos++
	}
	if filter.EntityType != "" {
		query += fmt.Sprintf(" AND entity_type = $%d", pos)
		args = append(args, filter.EntityType)
		pos++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit log: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditLog
	for rows.Next() {
		var a entity.AuditLog
		if err := rows.Scan(&a.ID, &a.RequestID, &a.UserID, &a.UserEmail, &a.UserRole,
			&a.Action, &a.EntityType, &a.EntityID, &a.EntityCode, &a.OldValues,
			&a.NewValues, &a.IPAddress, &a.Notes, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

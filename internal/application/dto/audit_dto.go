package dto

import "time"

// AuditQuery filtros para GET /api/audit.
type AuditQuery struct {
	UserID     string `query:"user_id"`
	Action     string `query:"action" validate:"omitempty,oneof=CREATE UPDATE DELETE ADJUSTMENT"`
	EntityType string `query:"entity_type"`
	From       string `query:"from"` // RFC 3339
	To         string `query:"to"`   // RFC 3339
	PageRequest
}

// AuditLogResponse representación HTTP de un registro de auditoría.
type AuditLogResponse struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id,omitempty"`
	UserID     string    `json:"user_id"`
	UserEmail  string    `json:"user_email"`
	UserRole   string    `json:"user_role"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id,omitempty"`
	EntityCode string    `json:"entity_code,omitempty"`
	OldValues  string    `json:"old_values,omitempty"`
	NewValues  string    `json:"new_values,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuditListResponse listado paginado de auditoría, de más reciente a más antiguo.
type AuditListResponse struct {
	Items []AuditLogResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

package entity

import "time"

// Acciones auditables.
const (
	AuditActionCreate     = "CREATE"
	AuditActionUpdate     = "UPDATE"
	AuditActionDelete     = "DELETE"
	AuditActionAdjustment = "ADJUSTMENT"
)

// AuditLog registro append-only de acciones administrativas sensibles.
// Quién/qué/cuándo, con valores antes/después en JSON. Los campos de usuario se
// desnormalizan para que el registro siga siendo legible si el usuario cambia o se desactiva.
type AuditLog struct {
	ID         string
	RequestID  string
	UserID     string
	UserEmail  string
	UserRole   string
	Action     string // CREATE, UPDATE, DELETE, ADJUSTMENT
	EntityType string // item, location, stock_ledger, user
	EntityID   string
	EntityCode string // SKU o código, para referencia humana
	OldValues  string // JSON, vacío si no aplica
	NewValues  string // JSON, vacío si no aplica
	IPAddress  string
	Notes      string
	CreatedAt  time.Time
}

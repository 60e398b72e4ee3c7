package entity

import "time"

// Roles válidos para User, ordenados de mayor a menor privilegio.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleStaff      = "staff"
	RoleViewer     = "viewer"
)

// roleLevels jerarquía de roles; un rol autoriza todo lo que autorizan los roles inferiores.
var roleLevels = map[string]int{
	RoleSuperAdmin: 4,
	RoleAdmin:      3,
	RoleStaff:      2,
	RoleViewer:     1,
}

// RoleLevel devuelve el nivel numérico del rol (0 si el rol no existe).
func RoleLevel(role string) int {
	return roleLevels[role]
}

// RoleAtLeast verifica que role tenga privilegio igual o superior a min.
// Un rol desconocido nunca autoriza nada.
func RoleAtLeast(role, min string) bool {
	lvl := roleLevels[role]
	return lvl > 0 && lvl >= roleLevels[min]
}

// Estados válidos para User.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa un usuario del sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // super_admin, admin, staff, viewer
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal identidad ya autenticada que ejecuta una operación (resuelta por el middleware JWT).
type Principal struct {
	UserID string
	Email  string
	Role   string
}

// CanRead lecturas de inventario: viewer o superior.
func (p Principal) CanRead() bool { return RoleAtLeast(p.Role, RoleViewer) }

// CanMove movimientos IN/OUT/TRANSFER: staff o superior.
func (p Principal) CanMove() bool { return RoleAtLeast(p.Role, RoleStaff) }

// CanAdminister ajustes, maestros y usuarios: admin o superior.
func (p Principal) CanAdminister() bool { return RoleAtLeast(p.Role, RoleAdmin) }

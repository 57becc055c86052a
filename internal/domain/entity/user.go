package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin      = "admin"
	RoleStaffAdmin = "staff-admin"
	RoleStaff      = "staff"
)

// Estados de usuario.
const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

// User representa un usuario del sistema (pertenece a un Business y, si es staff, a una duka).
type User struct {
	ID           string
	BusinessID   string
	StoreID      string // vacío = todas las dukas del negocio (admin)
	Email        string
	PasswordHash string // bcrypt hash
	Name         string
	Role         string // admin, staff-admin, staff
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsValidRole informa si role es uno de los roles conocidos.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleStaffAdmin, RoleStaff:
		return true
	}
	return false
}

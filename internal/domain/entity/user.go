package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin        = "admin"
	RoleCashier      = "cashier"
	RoleStockManager = "stock_manager"
)

// User representa un usuario del punto de venta (cajero, bodeguero o administrador).
type User struct {
	ID           string
	Username     string // único
	Email        string // único
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsValidRole indica si r es un rol conocido.
func IsValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleCashier, RoleStockManager:
		return true
	}
	return false
}

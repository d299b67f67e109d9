package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleJefe     = "jefe"
	RoleEmpleado = "empleado"
)

// User representa un usuario del sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt
	Name         string
	Role         string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidRole indica si r es un rol conocido.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleJefe || r == RoleEmpleado
}

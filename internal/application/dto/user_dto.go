package dto

import (
	"time"

	"github.com/ladespensa/despensa-api/internal/domain/rbac"
)

// RegisterRequest entrada para POST /auth/register (requiere usuarios:crear).
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"nombre" validate:"required,min=1,max=200"`
	Role     string `json:"rol" validate:"required,oneof=admin jefe empleado"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"nombre"`
	Role      string    `json:"rol"`
	Active    bool      `json:"activo"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse access token en el cuerpo; el refresh token viaja solo en cookie HttpOnly.
type LoginResponse struct {
	Token        string       `json:"token"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         UserResponse `json:"user"`
	RefreshToken string       `json:"-"`
	RefreshUntil time.Time    `json:"-"`
}

// PermissionsResponse tabla de permisos para ocultar acciones en la UI.
type PermissionsResponse struct {
	Role        string                       `json:"rol"`
	Permissions []rbac.Permission            `json:"permisos"`
	Table       map[string][]rbac.Permission `json:"tabla"`
}

// Actor usuario autenticado que ejecuta una operación (resuelto una vez por request desde el JWT).
type Actor struct {
	ID   string
	Name string
	Role string
}

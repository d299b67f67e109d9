package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ladespensa/despensa-api/internal/application/dto"
	"github.com/ladespensa/despensa-api/internal/domain/rbac"
	"github.com/ladespensa/despensa-api/pkg/jwt"
)

// Locals keys para los datos del usuario autenticado en Fiber.
const (
	LocalUserID   = "user_id"
	LocalRole     = "role"
	LocalUserName = "user_name"
)

// Cookies de sesión.
const (
	CookieAccess  = "jwt-auth"
	CookieRefresh = "jwt-refresh"
)

// AuthMiddleware valida el JWT de acceso (Bearer o cookie jwt-auth) y deja UserID, rol y
// nombre en c.Locals. Un refresh token no sirve como token de acceso.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, code, msg := accessToken(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: code, Message: msg})
		}
		claims, err := jwt.Parse(jwtSecret, tokenString, jwt.TypeAccess)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		if claims.Role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "el token no incluye rol"})
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalRole, claims.Role)
		c.Locals(LocalUserName, claims.Name)
		return c.Next()
	}
}

// accessToken prioriza el header Authorization; sin header usa la cookie.
func accessToken(c *fiber.Ctx) (token, code, msg string) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		if ck := strings.TrimSpace(c.Cookies(CookieAccess)); ck != "" {
			return ck, "", ""
		}
		return "", "MISSING_TOKEN", "Authorization header requerido"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", "INVALID_TOKEN", "formato: Bearer <token>"
	}
	token = strings.TrimSpace(parts[1])
	if token == "" {
		return "", "MISSING_TOKEN", "token vacío"
	}
	return token, "", ""
}

// RequirePermission autoriza según la tabla RBAC. Debe usarse DESPUÉS de AuthMiddleware.
func RequirePermission(perm rbac.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code: "MISSING_ROLE", Message: "rol no encontrado en el token",
			})
		}
		if !rbac.Can(role, perm) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "el rol '" + role + "' no tiene el permiso '" + string(perm) + "'",
			})
		}
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetRole devuelve el rol del contexto.
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}

// GetActor arma el actor de la operación desde el token.
func GetActor(c *fiber.Ctx) dto.Actor {
	name, _ := c.Locals(LocalUserName).(string)
	return dto.Actor{ID: GetUserID(c), Name: name, Role: GetRole(c)}
}

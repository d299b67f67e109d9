package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ladespensa/despensa-api/internal/application/auth"
	"github.com/ladespensa/despensa-api/internal/application/dto"
	"github.com/ladespensa/despensa-api/pkg/logger"
)

// AuthHandler maneja login, refresco, logout y consulta de sesión.
type AuthHandler struct {
	uc           *auth.AuthUseCase
	log          *logger.Logger
	secureCookie bool
}

// NewAuthHandler construye el handler de auth. secureCookie marca las cookies como Secure.
func NewAuthHandler(uc *auth.AuthUseCase, log *logger.Logger, secureCookie bool) *AuthHandler {
	return &AuthHandler{uc: uc, log: log, secureCookie: secureCookie}
}

// Register godoc
// @Summary      Registrar usuario (requiere usuarios:crear)
// @Tags         auth
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "email, password, nombre, rol"
// @Success      201   {object}  dto.UserResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if valid, err := bindAndValidate(c, &in); !valid {
		return err
	}
	user, err := h.uc.RegisterUser(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, user)
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if valid, err := bindAndValidate(c, &in); !valid {
		return err
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.setSession(c, out)
	return ok(c, fiber.StatusOK, out)
}

// Refresh godoc
// @Summary      Renovar el token de acceso con la cookie jwt-refresh
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.LoginResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/refresh [get]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	token := c.Cookies(CookieRefresh)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "sesión expirada"})
	}
	out, err := h.uc.Refresh(c.UserContext(), token)
	if err != nil {
		h.clearSession(c)
		return writeError(c, h.log, err)
	}
	h.setSession(c, out)
	return ok(c, fiber.StatusOK, out)
}

// Logout borra las cookies de sesión.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearSession(c)
	return c.SendStatus(fiber.StatusNoContent)
}

// Me devuelve el usuario autenticado.
// GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.uc.Me(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, user)
}

// Permissions devuelve los permisos del rol del token y la tabla completa.
// GET /api/auth/permissions
func (h *AuthHandler) Permissions(c *fiber.Ctx) error {
	return ok(c, fiber.StatusOK, h.uc.Permissions(GetRole(c)))
}

func (h *AuthHandler) setSession(c *fiber.Ctx, out *dto.LoginResponse) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieAccess,
		Value:    out.Token,
		Path:     "/",
		Expires:  out.ExpiresAt,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	if out.RefreshToken != "" {
		c.Cookie(&fiber.Cookie{
			Name:     CookieRefresh,
			Value:    out.RefreshToken,
			Path:     "/api/auth",
			Expires:  out.RefreshUntil,
			HTTPOnly: true,
			Secure:   h.secureCookie,
			SameSite: fiber.CookieSameSiteStrictMode,
		})
	}
}

func (h *AuthHandler) clearSession(c *fiber.Ctx) {
	past := time.Unix(0, 0)
	c.Cookie(&fiber.Cookie{Name: CookieAccess, Path: "/", Expires: past, Secure: h.secureCookie})
	c.Cookie(&fiber.Cookie{Name: CookieRefresh, Path: "/api/auth", Expires: past, HTTPOnly: true, Secure: h.secureCookie})
}

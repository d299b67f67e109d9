package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladespensa/despensa-api/internal/domain/rbac"
	apphttp "github.com/ladespensa/despensa-api/internal/interfaces/http"
	pkgjwt "github.com/ladespensa/despensa-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "la-despensa-test"
)

// protectedApp expone GET /protected detrás de AuthMiddleware y RequirePermission(perm).
func protectedApp(perm rbac.Permission) *fiber.App {
	app := fiber.New()
	app.Get("/protected", apphttp.AuthMiddleware(testJWTSecret), apphttp.RequirePermission(perm),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"role": apphttp.GetRole(c)})
		})
	return app
}

func tokenFor(t *testing.T, role, typ string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(pkgjwt.Params{
		Secret: testJWTSecret, Issuer: testIssuer, UserID: testUserID,
		Role: role, Name: "Marta", Type: typ, TTL: time.Hour,
	})
	require.NoError(t, err)
	return tok
}

func bearer(t *testing.T, role string) string {
	return "Bearer " + tokenFor(t, role, pkgjwt.TypeAccess)
}

func TestProtectedRoute(t *testing.T) {
	access := func(role string) string { return bearer(t, role) }

	cases := []struct {
		name    string
		perm    rbac.Permission
		header  string
		status  int
		bodyHas string
	}{
		{"admin accede a todo", rbac.UsersCreate, access("admin"), http.StatusOK, `"role":"admin"`},
		{"jefe con comodín ventas:*", rbac.SalesVoid, access("jefe"), http.StatusOK, `"role":"jefe"`},
		{"empleado no anula ventas", rbac.SalesVoid, access("empleado"), http.StatusForbidden, "FORBIDDEN"},
		{"rol desconocido", rbac.ProductsView, access("bodeguero"), http.StatusForbidden, "FORBIDDEN"},
		{"token sin rol", rbac.ProductsView, access(""), http.StatusUnauthorized, "MISSING_ROLE"},
		{"sin token", rbac.ProductsView, "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"token mal formado", rbac.ProductsView, "Bearer token.invalido.aqui", http.StatusUnauthorized, ""},
		{"refresh no sirve como acceso", rbac.ProductsView,
			"Bearer " + tokenFor(t, "admin", pkgjwt.TypeRefresh), http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := protectedApp(tc.perm).Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(body), tc.bodyHas)
		})
	}
}

func TestAuthMiddleware_TokenEnCookie(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		a := apphttp.GetActor(c)
		return c.JSON(fiber.Map{"user_id": a.ID, "role": a.Role, "name": a.Name})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: apphttp.CookieAccess, Value: tokenFor(t, "jefe", pkgjwt.TypeAccess)})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, "jefe", body["role"])
	assert.Equal(t, "Marta", body["name"])
}

package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladespensa/despensa-api/internal/application/analytics"
	"github.com/ladespensa/despensa-api/internal/application/auth"
	"github.com/ladespensa/despensa-api/internal/application/inventory"
	"github.com/ladespensa/despensa-api/internal/application/usecase"
	"github.com/ladespensa/despensa-api/internal/infrastructure/excel"
	"github.com/ladespensa/despensa-api/internal/infrastructure/memory"
	"github.com/ladespensa/despensa-api/internal/infrastructure/pdf"
	"github.com/ladespensa/despensa-api/internal/infrastructure/storage"
	apphttp "github.com/ladespensa/despensa-api/internal/interfaces/http"
	pkgjwt "github.com/ladespensa/despensa-api/pkg/jwt"
	"github.com/ladespensa/despensa-api/pkg/logger"
)

type testAPI struct {
	app    *fiber.App
	authUC *auth.AuthUseCase
}

// newTestAPI arma la API completa sobre el almacenamiento en memoria.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	st := memory.New()
	fs, err := storage.NewStorageOnFs(afero.NewMemMapFs(), "/uploads", "/uploads")
	require.NoError(t, err)

	authUC := auth.NewAuthUseCase(st.Users(), auth.JWTConfig{
		Secret: testJWTSecret, Issuer: testIssuer, AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour,
	})
	productUC := usecase.NewProductUseCase(st.TxRunner(), st.Products(), st.PriceChanges(), st.Movements(), fs, nil, 30, 1<<20)
	lotUC := inventory.NewLotUseCase(st.TxRunner(), st.Products(), st.Lots(), nil, 30)
	saleUC := inventory.NewSaleUseCase(st.TxRunner(), st.Tickets(), nil)
	supplierUC := usecase.NewSupplierUseCase(st.Suppliers(), st.Products(), nil)
	payableUC := usecase.NewPayableUseCase(st.Payables(), nil)
	statsUC := analytics.NewStatsUseCase(st.Analytics(), lotUC, 30)
	reportUC := usecase.NewReportUseCase(productUC, saleUC, supplierUC, payableUC, statsUC,
		pdf.NewMarotoReportRenderer(""), excel.NewReportRenderer())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      authUC,
		ProductUC:   productUC,
		LotUC:       lotUC,
		SaleUC:      saleUC,
		SupplierUC:  supplierUC,
		PayableUC:   payableUC,
		StatsUC:     statsUC,
		ReportUC:    reportUC,
		AssistantUC: usecase.NewAssistantUseCase(nil, productUC),
		Log:         logger.Nop(),
		Metrics:     apphttp.NewMetrics(),
		Health:      apphttp.NewHealthHandler("la-despensa", st, nil),
		JWTSecret:   testJWTSecret,
	})
	return &testAPI{app: app, authUC: authUC}
}

type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta struct {
		Total   int    `json:"total"`
		Message string `json:"message"`
	} `json:"meta"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

func (a *testAPI) do(t *testing.T, method, path, role string, body any) (*http.Response, envelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", bearer(t, role))
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var env envelope
	if resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func (a *testAPI) createProduct(t *testing.T, barcode string, qty int) string {
	t.Helper()
	resp, env := a.do(t, http.MethodPost, "/api/products", "jefe", map[string]any{
		"nombre": "Arroz", "categoria": "Granos", "codigo_barras": barcode,
		"precio_compra": "1000", "precio_venta": "1500", "cantidad": qty,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[struct {
		ID string `json:"id"`
	}](t, env.Data).ID
}

func TestLoginRefreshYMe(t *testing.T) {
	api := newTestAPI(t)
	created, err := api.authUC.EnsureAdmin(context.Background(), "admin@despensa.test", "clave-segura", "Admin")
	require.NoError(t, err)
	require.True(t, created)

	resp, env := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ADMIN@despensa.test", "password": "clave-segura",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[struct {
		Token string `json:"token"`
	}](t, env.Data)
	require.NotEmpty(t, login.Token)

	var refresh *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == apphttp.CookieRefresh {
			refresh = ck
		}
	}
	require.NotNil(t, refresh)
	assert.True(t, refresh.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: apphttp.CookieRefresh, Value: refresh.Value})
	r2, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer r2.Body.Close()
	assert.Equal(t, http.StatusOK, r2.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	r3, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer r3.Body.Close()
	assert.Equal(t, http.StatusOK, r3.StatusCode)
	body, _ := io.ReadAll(r3.Body)
	assert.Contains(t, string(body), "admin@despensa.test")
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	api := newTestAPI(t)
	resp, env := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nadie@despensa.test", "password": "x",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", env.Code)
}

func TestRefresh_SinCookie(t *testing.T) {
	api := newTestAPI(t)
	resp, _ := api.do(t, http.MethodGet, "/api/auth/refresh", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRefresh_AccessTokenNoSirve(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: apphttp.CookieRefresh, Value: tokenFor(t, "admin", pkgjwt.TypeAccess)})
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegister_SoloConPermiso(t *testing.T) {
	api := newTestAPI(t)
	in := map[string]string{"email": "rosa@despensa.test", "password": "12345678", "nombre": "Rosa", "rol": "empleado"}

	resp, _ := api.do(t, http.MethodPost, "/api/auth/register", "jefe", in)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = api.do(t, http.MethodPost, "/api/auth/register", "admin", in)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env := api.do(t, http.MethodPost, "/api/auth/register", "admin", in)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "EMAIL_EXISTS", env.Code)
}

func TestPermissions(t *testing.T) {
	api := newTestAPI(t)
	resp, env := api.do(t, http.MethodGet, "/api/auth/permissions", "empleado", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	perms := decode[struct {
		Role        string   `json:"rol"`
		Permissions []string `json:"permisos"`
	}](t, env.Data)
	assert.Equal(t, "empleado", perms.Role)
	assert.Contains(t, perms.Permissions, "ventas:crear")
	assert.NotContains(t, perms.Permissions, "ventas:anular")
	assert.NotContains(t, perms.Permissions, "productos:crear")
}

func TestCrearProducto_EmpleadoSinPermiso(t *testing.T) {
	api := newTestAPI(t)
	resp, env := api.do(t, http.MethodPost, "/api/products", "empleado", map[string]any{
		"nombre": "Arroz", "categoria": "Granos", "codigo_barras": "770009", "precio_venta": "1500",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", env.Code)
}

func TestCrearProducto_Validacion422(t *testing.T) {
	api := newTestAPI(t)
	resp, env := api.do(t, http.MethodPost, "/api/products", "jefe", map[string]any{
		"categoria": "Granos", "codigo_barras": "770001", "precio_venta": "0",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Equal(t, "required", env.Fields["nombre"])
	assert.Equal(t, "gt", env.Fields["precio_venta"])
}

func TestCrearProducto_CodigoDuplicado(t *testing.T) {
	api := newTestAPI(t)
	api.createProduct(t, "770001", 0)
	resp, env := api.do(t, http.MethodPost, "/api/products", "jefe", map[string]any{
		"nombre": "Otro", "categoria": "Granos", "codigo_barras": "770001", "precio_venta": "10",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", env.Code)
}

func TestListadoProductos(t *testing.T) {
	api := newTestAPI(t)
	api.createProduct(t, "770001", 5)

	resp, env := api.do(t, http.MethodGet, "/api/products?q=arroz", "empleado", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, env.Meta.Total)

	resp, env = api.do(t, http.MethodGet, "/api/products?q=fideos", "empleado", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, env.Meta.Total)
	assert.Equal(t, "no hay resultados", env.Meta.Message)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestVenta_StockYAnulacion(t *testing.T) {
	api := newTestAPI(t)
	id := api.createProduct(t, "770001", 10)

	sale := func(qty int) (*http.Response, envelope) {
		return api.do(t, http.MethodPost, "/api/ventas", "empleado", map[string]any{
			"items":       []map[string]any{{"producto_id": id, "cantidad": qty}},
			"metodo_pago": "efectivo",
		})
	}

	resp, env := sale(3)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	ticket := decode[struct {
		ID     string `json:"id"`
		Total  string `json:"total"`
		Status string `json:"estado"`
	}](t, env.Data)
	assert.Equal(t, "4500", ticket.Total)

	resp, env = sale(100)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", env.Code)

	resp, _ = api.do(t, http.MethodDelete, "/api/ventas/ticket/"+ticket.ID, "empleado", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, env = api.do(t, http.MethodDelete, "/api/ventas/ticket/"+ticket.ID, "jefe", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "anulada", decode[struct {
		Status string `json:"estado"`
	}](t, env.Data).Status)

	resp, env = api.do(t, http.MethodGet, "/api/products/"+id, "empleado", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 10, decode[struct {
		Stock int `json:"stock"`
	}](t, env.Data).Stock)
}

func TestVenta_FiadoSinDeudor(t *testing.T) {
	api := newTestAPI(t)
	id := api.createProduct(t, "770001", 10)
	resp, env := api.do(t, http.MethodPost, "/api/ventas", "empleado", map[string]any{
		"items":       []map[string]any{{"producto_id": id, "cantidad": 1}},
		"metodo_pago": "fiado",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "required_if", env.Fields["deudor"])
}

func TestHistorialTickets_FechaInvalida(t *testing.T) {
	api := newTestAPI(t)
	resp, _ := api.do(t, http.MethodGet, "/api/ventas/tickets?desde=04-05-2026", "empleado", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProductoInexistente404(t *testing.T) {
	api := newTestAPI(t)
	resp, env := api.do(t, http.MethodGet, "/api/products/no-existe", "empleado", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestReporteXLSX(t *testing.T) {
	api := newTestAPI(t)
	api.createProduct(t, "770001", 4)

	resp, _ := api.do(t, http.MethodGet, "/api/reportes/productos?formato=xlsx", "empleado", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = api.do(t, http.MethodGet, "/api/reportes/productos?formato=xlsx", "jefe", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "reporte-productos-")

	resp, _ = api.do(t, http.MethodGet, "/api/reportes/inventado", "jefe", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReportePDF_SinDatos(t *testing.T) {
	api := newTestAPI(t)
	resp, _ := api.do(t, http.MethodGet, "/api/reportes/productos", "jefe", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestCuentasPorPagar_Duplicada(t *testing.T) {
	api := newTestAPI(t)
	in := map[string]any{"proveedor": "Granos SA", "categoria": "Granos", "mes": "2026-05", "monto": "30000"}

	resp, _ := api.do(t, http.MethodPost, "/api/cuentasPorPagar", "jefe", in)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env := api.do(t, http.MethodPost, "/api/cuentasPorPagar", "jefe", in)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", env.Code)

	in["mes"] = "mayo"
	resp, env = api.do(t, http.MethodPost, "/api/cuentasPorPagar", "jefe", in)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "datetime", env.Fields["mes"])
}

func TestEstadisticas(t *testing.T) {
	api := newTestAPI(t)
	api.createProduct(t, "770001", 4)
	resp, _ := api.do(t, http.MethodGet, "/api/estadisticas/resumen", "jefe", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = api.do(t, http.MethodGet, "/api/estadisticas/resumen", "empleado", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAsistenteSinConfigurar(t *testing.T) {
	api := newTestAPI(t)
	resp, env := api.do(t, http.MethodPost, "/api/assistant/query", "empleado", map[string]string{"consulta": "¿qué vence?"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "AI_UNAVAILABLE", env.Code)
}

func TestHealthYMetrics(t *testing.T) {
	api := newTestAPI(t)
	resp, err := api.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "up", health["db"])
	assert.Equal(t, "disabled", health["cache"])

	resp, err = api.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "despensa_http_requests_total")
}

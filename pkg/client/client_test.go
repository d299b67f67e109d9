package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladespensa/despensa-api/internal/application/dto"
	"github.com/ladespensa/despensa-api/pkg/client"
)

// fakeAPI servidor mínimo con el contrato de sesión de la API.
type fakeAPI struct {
	refreshes  atomic.Int32
	calls      atomic.Int32
	refreshOK  bool
	newToken   string
	validToken string
	delay      time.Duration

	mu    sync.Mutex
	auths []string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshes.Add(1)
		time.Sleep(f.delay)
		if _, err := r.Cookie("jwt-refresh"); err != nil || !f.refreshOK {
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "sesión expirada"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "jwt-auth", Value: f.newToken, Path: "/"})
		writeJSON(w, http.StatusOK, dto.Envelope{Data: dto.LoginResponse{Token: f.newToken}})
	})
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		auth := r.Header.Get("Authorization")
		f.mu.Lock()
		f.auths = append(f.auths, auth)
		f.mu.Unlock()
		if auth != "Bearer "+f.validToken {
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido"})
			return
		}
		writeJSON(w, http.StatusOK, dto.Envelope{
			Data: []dto.ProductResponse{{ID: "p1", Name: "Arroz"}},
			Meta: dto.PageMeta{Page: 1, Limit: 10, Total: 1, TotalPages: 1},
		})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestRefresh_UnReintentoConTokenNuevo(t *testing.T) {
	f := &fakeAPI{refreshOK: true, newToken: "nuevo", validToken: "nuevo"}
	srv := httptest.NewServer(f.handler())
	defer srv.Close()

	c, err := client.New(srv.URL+"/api", client.WithToken("viejo"), client.WithRefreshCookie("r1"))
	require.NoError(t, err)

	page, err := c.Products.List(context.Background(), dto.ProductListQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Arroz", page.Items[0].Name)
	assert.Equal(t, 1, page.Meta.TotalPages)

	assert.Equal(t, int32(1), f.refreshes.Load())
	assert.Equal(t, []string{"Bearer viejo", "Bearer nuevo"}, f.auths)
	assert.Equal(t, "nuevo", c.Token())
}

func TestRefresh_Segundo401NoHaceLoop(t *testing.T) {
	f := &fakeAPI{refreshOK: true, newToken: "nuevo", validToken: "otro"}
	srv := httptest.NewServer(f.handler())
	defer srv.Close()

	c, err := client.New(srv.URL+"/api", client.WithToken("viejo"), client.WithRefreshCookie("r1"))
	require.NoError(t, err)

	_, err = c.Products.List(context.Background(), dto.ProductListQuery{})
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "INVALID_TOKEN", apiErr.Code)
	assert.Equal(t, int32(1), f.refreshes.Load())
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestRefresh_FallaLimpiaSesionYAvisa(t *testing.T) {
	f := &fakeAPI{refreshOK: false, validToken: "nuevo"}
	srv := httptest.NewServer(f.handler())
	defer srv.Close()

	var expired atomic.Int32
	c, err := client.New(srv.URL+"/api",
		client.WithToken("viejo"),
		client.WithRefreshCookie("r1"),
		client.WithSessionExpired(func() { expired.Add(1) }),
	)
	require.NoError(t, err)

	_, err = c.Products.List(context.Background(), dto.ProductListQuery{})
	assert.ErrorIs(t, err, client.ErrSessionExpired)
	assert.Equal(t, int32(1), expired.Load())
	assert.Empty(t, c.Token())
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestRefresh_Concurrentes401CompartenUnRefresh(t *testing.T) {
	f := &fakeAPI{refreshOK: true, newToken: "nuevo", validToken: "nuevo", delay: 50 * time.Millisecond}
	srv := httptest.NewServer(f.handler())
	defer srv.Close()

	c, err := client.New(srv.URL+"/api", client.WithToken("viejo"), client.WithRefreshCookie("r1"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Products.List(context.Background(), dto.ProductListQuery{})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), f.refreshes.Load())
}

func TestLogin_GuardaSesion(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in dto.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Password != "secreto123" {
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Code: "INVALID_CREDENTIALS", Message: "credenciales inválidas"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "jwt-auth", Value: "tok-1", Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: "jwt-refresh", Value: "ref-1", Path: "/api/auth", HttpOnly: true})
		writeJSON(w, http.StatusOK, dto.Envelope{Data: dto.LoginResponse{Token: "tok-1"}})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Code: "MISSING_TOKEN"})
			return
		}
		writeJSON(w, http.StatusOK, dto.Envelope{Data: dto.UserResponse{ID: "u1", Role: "jefe"}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := client.New(srv.URL + "/api")
	require.NoError(t, err)

	_, err = c.Auth.Login(context.Background(), "marta@despensa.test", "mala")
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	_, err = c.Auth.Login(context.Background(), "marta@despensa.test", "secreto123")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", c.Token())

	me, err := c.Auth.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jefe", me.Role)

	c.ClearSession()
	assert.Empty(t, c.Token())
}

func TestAPIError_MapeaSentinels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/no-existe"):
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
		case r.Method == http.MethodDelete:
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: "sin permiso"})
		default:
			writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
				Code: "VALIDATION_ERROR", Message: "datos inválidos", Fields: map[string]string{"nombre": "required"},
			})
		}
	}))
	defer srv.Close()

	c, err := client.New(srv.URL+"/api", client.WithToken("t"))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Products.Get(ctx, "no-existe")
	assert.ErrorIs(t, err, client.ErrNotFound)

	err = c.Products.Delete(ctx, "p1")
	assert.ErrorIs(t, err, client.ErrForbidden)

	_, err = c.Products.Create(ctx, dto.CreateProductRequest{})
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.ErrorIs(t, err, client.ErrValidation)
	assert.Equal(t, "required", apiErr.Fields["nombre"])
}

func TestReportes_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/reportes/productos", r.URL.Path)
		assert.Equal(t, "xlsx", r.URL.Query().Get("formato"))
		assert.Equal(t, "arroz", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="reporte-productos.xlsx"`)
		_, _ = w.Write([]byte("PK"))
	}))
	defer srv.Close()

	c, err := client.New(srv.URL+"/api", client.WithToken("t"))
	require.NoError(t, err)

	rep, err := c.Reportes.Download(context.Background(), "productos", "xlsx", dto.ListQuery{Q: "arroz"})
	require.NoError(t, err)
	assert.Equal(t, "reporte-productos.xlsx", rep.Filename)
	assert.Equal(t, []byte("PK"), rep.Content)
}

func TestNew_BaseURLInvalida(t *testing.T) {
	_, err := client.New("localhost:8080")
	assert.Error(t, err)
}

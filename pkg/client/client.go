// Package client es el SDK HTTP de La Despensa: token bearer tomado de la cookie de sesión,
// un único refresh silencioso ante un 401 y servicios tipados por recurso.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ladespensa/despensa-api/internal/application/dto"
)

const (
	cookieAccess   = "jwt-auth"
	cookieRefresh  = "jwt-refresh"
	refreshPath    = "/auth/refresh"
	defaultTimeout = 30 * time.Second
)

// Client cliente de la API. Es seguro para uso concurrente.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	jar     *sessionJar

	mu        sync.RWMutex
	token     string
	onExpired func()

	refreshGroup singleflight.Group

	Auth            *AuthService
	Products        *ProductsService
	Lotes           *LotesService
	Ventas          *VentasService
	Proveedores     *ProveedoresService
	CuentasPorPagar *CuentasService
	Assistant       *AssistantService
	Reportes        *ReportesService
}

// Option configura el cliente.
type Option func(*Client)

// WithHTTPClient usa un *http.Client propio. Su Jar se reemplaza por el de la sesión.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout tiempo máximo por request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithToken fija el access token en lugar de leerlo de la cookie.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithRefreshCookie restaura una sesión persistida cargando el refresh token en el jar.
func WithRefreshCookie(token string) Option {
	return func(c *Client) {
		u := *c.baseURL
		u.Path = c.baseURL.Path + "/auth"
		c.jar.SetCookies(&u, []*http.Cookie{{Name: cookieRefresh, Value: token, Path: u.Path, HttpOnly: true}})
	}
}

// WithSessionExpired callback invocado cuando el refresh falla y la sesión se limpia.
func WithSessionExpired(fn func()) Option {
	return func(c *Client) { c.onExpired = fn }
}

// New crea un cliente para baseURL (p. ej. "http://localhost:8080/api").
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("client: base url %q sin esquema o host", baseURL)
	}
	jar, err := newSessionJar()
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
		jar:     jar,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.Jar = c.jar

	c.Auth = &AuthService{c: c}
	c.Products = &ProductsService{c: c}
	c.Lotes = &LotesService{c: c}
	c.Ventas = &VentasService{c: c}
	c.Proveedores = &ProveedoresService{c: c}
	c.CuentasPorPagar = &CuentasService{c: c}
	c.Assistant = &AssistantService{c: c}
	c.Reportes = &ReportesService{c: c}
	return c, nil
}

// Token access token vigente: el fijado explícitamente o el de la cookie jwt-auth.
func (c *Client) Token() string {
	c.mu.RLock()
	tok := c.token
	c.mu.RUnlock()
	if tok != "" {
		return tok
	}
	for _, ck := range c.jar.Cookies(c.baseURL) {
		if ck.Name == cookieAccess {
			return ck.Value
		}
	}
	return ""
}

func (c *Client) setToken(tok string) {
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
	c.jar.SetCookies(c.baseURL, []*http.Cookie{{Name: cookieAccess, Value: tok, Path: "/"}})
}

// ClearSession borra token y cookies.
func (c *Client) ClearSession() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	c.jar.reset()
}

// request describe una llamada; el cuerpo se serializa una sola vez para poder reintentar.
type request struct {
	method string
	path   string
	query  url.Values
	body   []byte
	ctype  string
}

func (c *Client) newRequest(method, path string, query url.Values, in any) (*request, error) {
	r := &request{method: method, path: path, query: query}
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		r.body = b
		r.ctype = "application/json"
	}
	return r, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) send(ctx context.Context, r *request, token string) (*http.Response, error) {
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, c.endpoint(r.path, r.query), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if r.ctype != "" {
		req.Header.Set("Content-Type", r.ctype)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.http.Do(req)
}

// do ejecuta la llamada con la política de sesión: ante un 401 refresca una vez y reintenta
// una vez. Un segundo 401 se devuelve como ErrUnauthorized.
func (c *Client) do(ctx context.Context, r *request) (*http.Response, error) {
	token := c.Token()
	resp, err := c.send(ctx, r, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || !c.refreshable(r.path) {
		return resp, nil
	}
	drain(resp)

	if err := c.refresh(ctx, token); err != nil {
		return nil, err
	}
	resp, err = c.send(ctx, r, c.Token())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, decodeError(resp)
	}
	return resp, nil
}

func (c *Client) refreshable(path string) bool {
	return path != refreshPath && path != "/auth/login"
}

// refresh comparte un único GET /auth/refresh entre los 401 concurrentes. Si otro request ya
// renovó el token desde que éste lo leyó, no se vuelve a refrescar.
func (c *Client) refresh(ctx context.Context, used string) error {
	if cur := c.Token(); cur != "" && cur != used {
		return nil
	}
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		if cur := c.Token(); cur != "" && cur != used {
			return nil, nil
		}
		resp, err := c.send(context.WithoutCancel(ctx), &request{method: http.MethodGet, path: refreshPath}, "")
		if err != nil {
			return nil, err
		}
		var out dto.LoginResponse
		if err := decode(resp, &out, nil); err != nil || out.Token == "" {
			c.expire()
			return nil, ErrSessionExpired
		}
		c.setToken(out.Token)
		return nil, nil
	})
	return err
}

func (c *Client) expire() {
	c.ClearSession()
	c.mu.RLock()
	fn := c.onExpired
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// call ejecuta la llamada y decodifica data (y meta si no es nil) del envelope.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, in, out, meta any) error {
	r, err := c.newRequest(method, path, query, in)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	return decode(resp, out, meta)
}

// envelope forma normalizada de las respuestas exitosas.
type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta json.RawMessage `json:"meta"`
}

func decode(resp *http.Response, out, meta any) error {
	defer drain(resp)
	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if resp.StatusCode == http.StatusNoContent || (out == nil && meta == nil) {
		return nil
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("client: respuesta inválida (%d): %w", resp.StatusCode, err)
	}
	if out != nil {
		if len(env.Data) == 0 {
			return fmt.Errorf("client: respuesta sin data (%d)", resp.StatusCode)
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("client: decode data: %w", err)
		}
	}
	if meta != nil && len(env.Meta) > 0 {
		if err := json.Unmarshal(env.Meta, meta); err != nil {
			return fmt.Errorf("client: decode meta: %w", err)
		}
	}
	return nil
}

func decodeError(resp *http.Response) *APIError {
	defer drain(resp)
	apiErr := &APIError{Status: resp.StatusCode}
	var body dto.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
		apiErr.Fields = body.Fields
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"github.com/ladespensa/despensa-api/internal/application/dto"
)

// Page página de un listado con sus metadatos.
type Page[T any] struct {
	Items []T
	Meta  dto.PageMeta
}

func list[T any](ctx context.Context, c *Client, path string, q url.Values) (*Page[T], error) {
	p := &Page[T]{}
	if err := c.call(ctx, http.MethodGet, path, q, nil, &p.Items, &p.Meta); err != nil {
		return nil, err
	}
	return p, nil
}

func get[T any](ctx context.Context, c *Client, method, path string, in any) (*T, error) {
	out := new(T)
	if err := c.call(ctx, method, path, nil, in, out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func listValues(q dto.ListQuery) url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("q", q.Q)
	set("categoria", q.Categoria)
	set("estado", q.Estado)
	set("orden", q.Orden)
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func productValues(q dto.ProductListQuery) url.Values {
	v := listValues(q.ListQuery)
	if q.Disponibilidad != "" {
		v.Set("disponibilidad", q.Disponibilidad)
	}
	if q.Dias != nil {
		v.Set("dias", strconv.Itoa(*q.Dias))
	}
	return v
}

func ticketValues(q dto.TicketListQuery) url.Values {
	v := listValues(q.ListQuery)
	for k, s := range map[string]string{"metodo_pago": q.MetodoPago, "desde": q.Desde, "hasta": q.Hasta} {
		if s != "" {
			v.Set(k, s)
		}
	}
	return v
}

// AuthService /auth.
type AuthService struct{ c *Client }

// Login inicia sesión; el token queda guardado en el cliente y el refresh en el jar.
func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	out, err := get[dto.LoginResponse](ctx, s.c, http.MethodPost, "/auth/login", dto.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	s.c.setToken(out.Token)
	return out, nil
}

// Logout cierra la sesión en el servidor y limpia la local aunque el servidor falle.
func (s *AuthService) Logout(ctx context.Context) error {
	err := s.c.call(ctx, http.MethodPost, "/auth/logout", nil, nil, nil, nil)
	s.c.ClearSession()
	return err
}

func (s *AuthService) Me(ctx context.Context) (*dto.UserResponse, error) {
	return get[dto.UserResponse](ctx, s.c, http.MethodGet, "/auth/me", nil)
}

func (s *AuthService) Permissions(ctx context.Context) (*dto.PermissionsResponse, error) {
	return get[dto.PermissionsResponse](ctx, s.c, http.MethodGet, "/auth/permissions", nil)
}

func (s *AuthService) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	return get[dto.UserResponse](ctx, s.c, http.MethodPost, "/auth/register", in)
}

// ProductsService /products.
type ProductsService struct{ c *Client }

func (s *ProductsService) List(ctx context.Context, q dto.ProductListQuery) (*Page[dto.ProductResponse], error) {
	return list[dto.ProductResponse](ctx, s.c, "/products", productValues(q))
}

func (s *ProductsService) Get(ctx context.Context, id string) (*dto.ProductResponse, error) {
	return get[dto.ProductResponse](ctx, s.c, http.MethodGet, "/products/"+url.PathEscape(id), nil)
}

func (s *ProductsService) GetByBarcode(ctx context.Context, code string) (*dto.ProductResponse, error) {
	return get[dto.ProductResponse](ctx, s.c, http.MethodGet, "/products/barcode/"+url.PathEscape(code), nil)
}

func (s *ProductsService) Categories(ctx context.Context) ([]string, error) {
	var out []string
	if err := s.c.call(ctx, http.MethodGet, "/products/categorias", nil, nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ProductsService) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	return get[dto.ProductResponse](ctx, s.c, http.MethodPost, "/products", in)
}

func (s *ProductsService) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	return get[dto.ProductResponse](ctx, s.c, http.MethodPatch, "/products/"+url.PathEscape(id), in)
}

func (s *ProductsService) Deactivate(ctx context.Context, id string, in dto.DeactivateProductRequest) (*dto.ProductResponse, error) {
	return get[dto.ProductResponse](ctx, s.c, http.MethodPatch, "/products/"+url.PathEscape(id)+"/desactivar", in)
}

func (s *ProductsService) Activate(ctx context.Context, id string) (*dto.ProductResponse, error) {
	return get[dto.ProductResponse](ctx, s.c, http.MethodPatch, "/products/"+url.PathEscape(id)+"/activar", nil)
}

func (s *ProductsService) Delete(ctx context.Context, id string) error {
	return s.c.call(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil, nil, nil)
}

func (s *ProductsService) PriceHistory(ctx context.Context, id string) ([]dto.PriceChangeResponse, error) {
	var out []dto.PriceChangeResponse
	if err := s.c.call(ctx, http.MethodGet, "/products/"+url.PathEscape(id)+"/historial-precios", nil, nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ProductsService) StockHistory(ctx context.Context, id string) ([]dto.StockMovementResponse, error) {
	var out []dto.StockMovementResponse
	if err := s.c.call(ctx, http.MethodGet, "/products/historial-stock/"+url.PathEscape(id), nil, nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadImage sube la imagen como multipart (campo "imagen").
func (s *ProductsService) UploadImage(ctx context.Context, id, filename, contentType string, content io.Reader) (*dto.ImageUploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="imagen"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("client: leer imagen: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	r := &request{
		method: http.MethodPost,
		path:   "/products/" + url.PathEscape(id) + "/imagen",
		body:   buf.Bytes(),
		ctype:  mw.FormDataContentType(),
	}
	resp, err := s.c.do(ctx, r)
	if err != nil {
		return nil, err
	}
	var out dto.ImageUploadResponse
	if err := decode(resp, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// LotesService /products/:id/lotes.
type LotesService struct{ c *Client }

// List lotes anotados; dias nil usa el umbral del servidor.
func (s *LotesService) List(ctx context.Context, productID string, dias *int) (*dto.ProductLotsResponse, error) {
	var q url.Values
	if dias != nil {
		q = url.Values{"dias": {strconv.Itoa(*dias)}}
	}
	out := &dto.ProductLotsResponse{}
	if err := s.c.call(ctx, http.MethodGet, "/products/"+url.PathEscape(productID)+"/lotes", q, nil, out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *LotesService) Add(ctx context.Context, productID string, in dto.CreateLotRequest) (*dto.LotResponse, error) {
	return get[dto.LotResponse](ctx, s.c, http.MethodPost, "/products/"+url.PathEscape(productID)+"/lotes", in)
}

func (s *LotesService) Update(ctx context.Context, productID, lotID string, in dto.UpdateLotRequest) (*dto.LotResponse, error) {
	path := "/products/" + url.PathEscape(productID) + "/lotes/" + url.PathEscape(lotID)
	return get[dto.LotResponse](ctx, s.c, http.MethodPatch, path, in)
}

// VentasService /ventas.
type VentasService struct{ c *Client }

func (s *VentasService) Create(ctx context.Context, in dto.CreateSaleRequest) (*dto.TicketResponse, error) {
	return get[dto.TicketResponse](ctx, s.c, http.MethodPost, "/ventas", in)
}

func (s *VentasService) List(ctx context.Context, q dto.TicketListQuery) (*Page[dto.TicketResponse], error) {
	return list[dto.TicketResponse](ctx, s.c, "/ventas/tickets", ticketValues(q))
}

func (s *VentasService) Get(ctx context.Context, id string) (*dto.TicketResponse, error) {
	return get[dto.TicketResponse](ctx, s.c, http.MethodGet, "/ventas/ticket/"+url.PathEscape(id), nil)
}

// Return devolución parcial.
func (s *VentasService) Return(ctx context.Context, id string, in dto.ReturnRequest) (*dto.TicketResponse, error) {
	return get[dto.TicketResponse](ctx, s.c, http.MethodPut, "/ventas/ticket/"+url.PathEscape(id), in)
}

// Void anula el ticket y repone el stock.
func (s *VentasService) Void(ctx context.Context, id string) (*dto.TicketResponse, error) {
	return get[dto.TicketResponse](ctx, s.c, http.MethodDelete, "/ventas/ticket/"+url.PathEscape(id), nil)
}

// ProveedoresService /proveedores.
type ProveedoresService struct{ c *Client }

func (s *ProveedoresService) List(ctx context.Context, q dto.ListQuery) (*Page[dto.SupplierResponse], error) {
	return list[dto.SupplierResponse](ctx, s.c, "/proveedores", listValues(q))
}

func (s *ProveedoresService) Get(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	return get[dto.SupplierResponse](ctx, s.c, http.MethodGet, "/proveedores/"+url.PathEscape(id), nil)
}

func (s *ProveedoresService) Create(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	return get[dto.SupplierResponse](ctx, s.c, http.MethodPost, "/proveedores", in)
}

func (s *ProveedoresService) Update(ctx context.Context, id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	return get[dto.SupplierResponse](ctx, s.c, http.MethodPatch, "/proveedores/"+url.PathEscape(id), in)
}

func (s *ProveedoresService) SetActive(ctx context.Context, id string, active bool) (*dto.SupplierResponse, error) {
	return get[dto.SupplierResponse](ctx, s.c, http.MethodPatch, "/proveedores/"+url.PathEscape(id)+"/estado", dto.SetActiveRequest{Active: &active})
}

func (s *ProveedoresService) Delete(ctx context.Context, id string) error {
	return s.c.call(ctx, http.MethodDelete, "/proveedores/"+url.PathEscape(id), nil, nil, nil, nil)
}

// CuentasService /cuentasPorPagar.
type CuentasService struct{ c *Client }

func (s *CuentasService) List(ctx context.Context, q dto.ListQuery) (*Page[dto.PayableResponse], error) {
	return list[dto.PayableResponse](ctx, s.c, "/cuentasPorPagar", listValues(q))
}

func (s *CuentasService) Get(ctx context.Context, id string) (*dto.PayableResponse, error) {
	return get[dto.PayableResponse](ctx, s.c, http.MethodGet, "/cuentasPorPagar/"+url.PathEscape(id), nil)
}

func (s *CuentasService) Create(ctx context.Context, in dto.CreatePayableRequest) (*dto.PayableResponse, error) {
	return get[dto.PayableResponse](ctx, s.c, http.MethodPost, "/cuentasPorPagar", in)
}

func (s *CuentasService) Update(ctx context.Context, id string, in dto.UpdatePayableRequest) (*dto.PayableResponse, error) {
	return get[dto.PayableResponse](ctx, s.c, http.MethodPatch, "/cuentasPorPagar/"+url.PathEscape(id), in)
}

// Pagar marca la cuenta como pagada.
func (s *CuentasService) Pagar(ctx context.Context, id string) (*dto.PayableResponse, error) {
	return get[dto.PayableResponse](ctx, s.c, http.MethodPatch, "/cuentasPorPagar/"+url.PathEscape(id)+"/pagar", nil)
}

func (s *CuentasService) Delete(ctx context.Context, id string) error {
	return s.c.call(ctx, http.MethodDelete, "/cuentasPorPagar/"+url.PathEscape(id), nil, nil, nil, nil)
}

// AssistantService /assistant.
type AssistantService struct{ c *Client }

func (s *AssistantService) Query(ctx context.Context, consulta string) (*dto.AssistantQueryResponse, error) {
	return get[dto.AssistantQueryResponse](ctx, s.c, http.MethodPost, "/assistant/query", dto.AssistantQueryRequest{Query: consulta})
}

// ReportesService /reportes.
type ReportesService struct{ c *Client }

// Report documento descargado.
type Report struct {
	ContentType string
	Filename    string
	Content     []byte
}

// Download descarga el reporte tipo (productos, ventas, proveedores, cuentas, general) en
// formato pdf o xlsx.
func (s *ReportesService) Download(ctx context.Context, tipo, formato string, q dto.ListQuery) (*Report, error) {
	v := listValues(q)
	if formato != "" {
		v.Set("formato", formato)
	}
	resp, err := s.c.do(ctx, &request{method: http.MethodGet, path: "/reportes/" + url.PathEscape(tipo), query: v})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(resp)
	}
	defer drain(resp)
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: leer reporte: %w", err)
	}
	rep := &Report{ContentType: resp.Header.Get("Content-Type"), Content: body}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		rep.Filename = params["filename"]
	}
	return rep, nil
}

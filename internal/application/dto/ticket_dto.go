package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea de una venta.
type SaleItemRequest struct {
	ProductID string `json:"producto_id" validate:"required"`
	Quantity  int    `json:"cantidad" validate:"required,gt=0"`
}

// CreateSaleRequest body de POST /ventas.
type CreateSaleRequest struct {
	Items         []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string            `json:"metodo_pago" validate:"required,oneof=efectivo tarjeta transferencia fiado"`
	Debtor        string            `json:"deudor" validate:"required_if=PaymentMethod fiado,max=120"`
	AllowExpired  bool              `json:"permitir_vencidos"`
}

// ReturnItemRequest cantidad a devolver de un producto del ticket.
type ReturnItemRequest struct {
	ProductID string `json:"producto_id" validate:"required"`
	Quantity  int    `json:"cantidad" validate:"required,gt=0"`
}

// ReturnRequest body de PUT /ventas/ticket/:id (devolución parcial).
type ReturnRequest struct {
	Items []ReturnItemRequest `json:"items" validate:"required,min=1,dive"`
}

// TicketListQuery filtros del historial de ventas.
type TicketListQuery struct {
	ListQuery
	MetodoPago string `query:"metodo_pago"`
	Desde      string `query:"desde"`
	Hasta      string `query:"hasta"`
}

// TicketItemResponse línea de un ticket.
type TicketItemResponse struct {
	ProductID string          `json:"producto_id"`
	Name      string          `json:"nombre"`
	Barcode   string          `json:"codigo_barras"`
	Category  string          `json:"categoria"`
	Quantity  int             `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_venta"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// TicketResponse salida de un ticket de venta.
type TicketResponse struct {
	ID            string               `json:"id"`
	Number        int64                `json:"numero"`
	Items         []TicketItemResponse `json:"items"`
	Total         decimal.Decimal      `json:"total"`
	PaymentMethod string               `json:"metodo_pago"`
	Debtor        string               `json:"deudor,omitempty"`
	UserID        string               `json:"usuario_id"`
	UserName      string               `json:"usuario"`
	Status        string               `json:"estado"`
	CreatedAt     time.Time            `json:"fecha"`
	VoidedAt      *time.Time           `json:"fecha_anulacion,omitempty"`
	VoidedBy      string               `json:"anulado_por,omitempty"`
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. Si trae Cantidad > 0 se crea
// además el primer lote con esos precios y vencimiento.
type CreateProductRequest struct {
	Name          string          `json:"nombre" validate:"required,min=1,max=200"`
	Brand         string          `json:"marca" validate:"max=120"`
	Category      string          `json:"categoria" validate:"required,max=120"`
	Barcode       string          `json:"codigo_barras" validate:"required,max=64"`
	PurchasePrice decimal.Decimal `json:"precio_compra" validate:"gte=0"`
	SalePrice     decimal.Decimal `json:"precio_venta" validate:"gt=0"`
	Quantity      int             `json:"cantidad" validate:"gte=0"`
	LotNumber     string          `json:"numero_lote" validate:"max=64"`
	ExpiryDate    *time.Time      `json:"fecha_vencimiento"`
	ImageURL      string          `json:"imagen_url" validate:"omitempty,max=500"`
}

// UpdateProductRequest entrada para PATCH /products/:id. Stock no se edita aquí: cambia
// a través de lotes, ventas y devoluciones.
type UpdateProductRequest struct {
	Name          *string          `json:"nombre" validate:"omitempty,min=1,max=200"`
	Brand         *string          `json:"marca" validate:"omitempty,max=120"`
	Category      *string          `json:"categoria" validate:"omitempty,min=1,max=120"`
	Barcode       *string          `json:"codigo_barras" validate:"omitempty,min=1,max=64"`
	PurchasePrice *decimal.Decimal `json:"precio_compra" validate:"omitempty,gte=0"`
	SalePrice     *decimal.Decimal `json:"precio_venta" validate:"omitempty,gt=0"`
	ImageURL      *string          `json:"imagen_url" validate:"omitempty,max=500"`
}

// DeactivateProductRequest motivo de la desactivación.
type DeactivateProductRequest struct {
	Reason  string `json:"motivo" validate:"required,oneof=vencido descontinuado dañado otro"`
	Comment string `json:"comentario" validate:"max=500"`
}

// ProductListQuery filtros de GET /products.
type ProductListQuery struct {
	ListQuery
	Disponibilidad string `query:"disponibilidad"`
	Dias           *int   `query:"dias"`
}

// DeactivationResponse auditoría de la desactivación.
type DeactivationResponse struct {
	Reason   string    `json:"motivo"`
	Comment  string    `json:"comentario,omitempty"`
	UserID   string    `json:"usuario_id"`
	UserName string    `json:"usuario"`
	At       time.Time `json:"fecha"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string                `json:"id"`
	Name          string                `json:"nombre"`
	Brand         string                `json:"marca"`
	Category      string                `json:"categoria"`
	Barcode       string                `json:"codigo_barras"`
	Stock         int                   `json:"stock"`
	PurchasePrice decimal.Decimal       `json:"precio_compra"`
	SalePrice     decimal.Decimal       `json:"precio_venta"`
	Margin        decimal.Decimal       `json:"margen"`
	MarginPercent decimal.Decimal       `json:"margen_porcentaje"`
	ExpiryDate    *time.Time            `json:"fecha_vencimiento,omitempty"`
	ExpiryStatus  string                `json:"estado_vencimiento"`
	ImageURL      string                `json:"imagen_url,omitempty"`
	Active        bool                  `json:"activo"`
	Deactivation  *DeactivationResponse `json:"desactivacion,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// PriceChangeResponse entrada del historial de precios.
type PriceChangeResponse struct {
	ID                  string          `json:"id"`
	PurchasePriceBefore decimal.Decimal `json:"precio_compra_anterior"`
	PurchasePriceAfter  decimal.Decimal `json:"precio_compra_nuevo"`
	SalePriceBefore     decimal.Decimal `json:"precio_venta_anterior"`
	SalePriceAfter      decimal.Decimal `json:"precio_venta_nuevo"`
	Reason              string          `json:"motivo"`
	UserID              string          `json:"usuario_id"`
	CreatedAt           time.Time       `json:"fecha"`
}

// StockMovementResponse entrada del historial de stock.
type StockMovementResponse struct {
	ID         string    `json:"id"`
	LotID      string    `json:"lote_id,omitempty"`
	Type       string    `json:"tipo"`
	Quantity   int       `json:"cantidad"`
	StockAfter int       `json:"stock_resultante"`
	Reference  string    `json:"referencia,omitempty"`
	UserID     string    `json:"usuario_id"`
	CreatedAt  time.Time `json:"fecha"`
}

// ImageUploadResponse URL pública de la imagen subida.
type ImageUploadResponse struct {
	URL string `json:"imagen_url"`
}

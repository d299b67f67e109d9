package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateLotRequest body de POST /products/:id/lotes.
type CreateLotRequest struct {
	Number        string          `json:"numero_lote" validate:"max=64"`
	Quantity      int             `json:"cantidad" validate:"required,gt=0"`
	PurchasePrice decimal.Decimal `json:"precio_compra" validate:"gte=0"`
	SalePrice     decimal.Decimal `json:"precio_venta" validate:"gt=0"`
	ExpiryDate    *time.Time      `json:"fecha_vencimiento"`
}

// UpdateLotRequest body de PATCH /products/:id/lotes/:loteId.
type UpdateLotRequest struct {
	Number        *string          `json:"numero_lote" validate:"omitempty,max=64"`
	Quantity      *int             `json:"cantidad" validate:"omitempty,gte=0"`
	PurchasePrice *decimal.Decimal `json:"precio_compra" validate:"omitempty,gte=0"`
	SalePrice     *decimal.Decimal `json:"precio_venta" validate:"omitempty,gt=0"`
	ExpiryDate    *time.Time       `json:"fecha_vencimiento"`
	ClearExpiry   bool             `json:"sin_vencimiento"`
}

// LotResponse lote anotado para pantalla.
type LotResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"producto_id"`
	Number          string          `json:"numero_lote"`
	Quantity        int             `json:"cantidad"`
	InitialQuantity int             `json:"cantidad_inicial"`
	PurchasePrice   decimal.Decimal `json:"precio_compra"`
	SalePrice       decimal.Decimal `json:"precio_venta"`
	Margin          decimal.Decimal `json:"margen"`
	MarginPercent   decimal.Decimal `json:"margen_porcentaje"`
	ExpiryDate      *time.Time      `json:"fecha_vencimiento,omitempty"`
	DaysToExpiry    *int            `json:"dias_para_vencer,omitempty"`
	ExpiryStatus    string          `json:"estado_vencimiento"`
	NextToConsume   bool            `json:"proximo_a_consumir"`
	NextToSell      bool            `json:"proximo_a_vender"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ProductLotsResponse respuesta de GET /products/:id/lotes.
type ProductLotsResponse struct {
	Product ProductResponse `json:"producto"`
	Lots    []LotResponse   `json:"lotes"`
}

// ExpiringLotResponse lote próximo a vencer con datos del producto (estadísticas).
type ExpiringLotResponse struct {
	LotResponse
	ProductName string `json:"producto"`
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot (lote) es una cantidad recibida de un producto con su propio precio y vencimiento.
// Pertenece a exactamente un producto; Quantity nunca es negativa.
type Lot struct {
	ID              string
	ProductID       string
	Number          string // número de lote impreso por el proveedor o generado
	Quantity        int
	InitialQuantity int
	PurchasePrice   decimal.Decimal
	SalePrice       decimal.Decimal
	ExpiryDate      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

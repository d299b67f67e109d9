package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceChange registro inmutable de un cambio de precio de producto.
type PriceChange struct {
	ID                  string
	ProductID           string
	PurchasePriceBefore decimal.Decimal
	PurchasePriceAfter  decimal.Decimal
	SalePriceBefore     decimal.Decimal
	SalePriceAfter      decimal.Decimal
	Reason              string // manual | lote
	UserID              string
	CreatedAt           time.Time
}

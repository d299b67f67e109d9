package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una cuenta por pagar.
const (
	PayablePending = "pendiente"
	PayablePaid    = "pagado"
)

// Payable (cuenta por pagar) obligación mensual con un proveedor.
// Única por (Provider, Category, Month) entre las activas.
type Payable struct {
	ID                 string
	Provider           string
	VerificationNumber string
	Category           string
	Month              string // YYYY-MM
	Amount             decimal.Decimal
	Status             string
	Active             bool
	PaidAt             *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePayableRequest body de POST /cuentasPorPagar.
type CreatePayableRequest struct {
	Provider           string          `json:"proveedor" validate:"required,max=200"`
	VerificationNumber string          `json:"numero_verificador" validate:"max=64"`
	Category           string          `json:"categoria" validate:"required,max=120"`
	Month              string          `json:"mes" validate:"required,datetime=2006-01"`
	Amount             decimal.Decimal `json:"monto" validate:"gt=0"`
}

// UpdatePayableRequest body de PATCH /cuentasPorPagar/:id.
type UpdatePayableRequest struct {
	Provider           *string          `json:"proveedor" validate:"omitempty,min=1,max=200"`
	VerificationNumber *string          `json:"numero_verificador" validate:"omitempty,max=64"`
	Category           *string          `json:"categoria" validate:"omitempty,min=1,max=120"`
	Month              *string          `json:"mes" validate:"omitempty,datetime=2006-01"`
	Amount             *decimal.Decimal `json:"monto" validate:"omitempty,gt=0"`
	Active             *bool            `json:"activo"`
}

// PayableResponse salida de una cuenta por pagar.
type PayableResponse struct {
	ID                 string          `json:"id"`
	Provider           string          `json:"proveedor"`
	VerificationNumber string          `json:"numero_verificador"`
	Category           string          `json:"categoria"`
	Month              string          `json:"mes"`
	Amount             decimal.Decimal `json:"monto"`
	Status             string          `json:"estado"`
	Active             bool            `json:"activo"`
	PaidAt             *time.Time      `json:"fecha_pago,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

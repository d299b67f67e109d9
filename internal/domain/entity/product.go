package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del almacén.
// Stock es el agregado de las cantidades de sus lotes; PurchasePrice es el costo promedio
// ponderado de los lotes con existencias y SalePrice el precio vigente de venta.
type Product struct {
	ID            string
	Name          string
	Brand         string
	Category      string
	Barcode       string // único entre productos
	Stock         int
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	ExpiryDate    *time.Time // vencimiento del lote más próximo (nil si ninguno vence)
	ImageURL      string
	Active        bool
	Deactivation  *Deactivation // nil mientras el producto está activo
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Deactivation metadatos de auditoría al desactivar un producto.
type Deactivation struct {
	Reason   string
	Comment  string
	UserID   string
	UserName string
	At       time.Time
}

// Available indica si el producto puede venderse.
func (p *Product) Available() bool {
	return p.Active && p.Stock > 0
}

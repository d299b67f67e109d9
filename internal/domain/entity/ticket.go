package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados en caja.
const (
	PaymentCash     = "efectivo"
	PaymentCard     = "tarjeta"
	PaymentTransfer = "transferencia"
	PaymentCredit   = "fiado" // requiere deudor
)

// Estados de un ticket.
const (
	TicketActive = "activa"
	TicketVoided = "anulada"
)

// Ticket es una venta registrada con una o más líneas.
type Ticket struct {
	ID            string
	Number        int64 // correlativo visible en caja
	Items         []TicketItem
	Total         decimal.Decimal
	PaymentMethod string
	Debtor        string
	UserID        string
	UserName      string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	VoidedAt      *time.Time
	VoidedBy      string
}

// TicketItem línea del ticket. Subtotal = Quantity × UnitPrice al momento de la venta.
type TicketItem struct {
	ProductID   string
	Name        string
	Barcode     string
	Category    string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
	Allocations []LotAllocation // lotes consumidos (FEFO)
}

// LotAllocation cantidad tomada de un lote para una línea de venta.
type LotAllocation struct {
	LotID    string
	Quantity int
}

// RecalculateTotals recalcula subtotales y total a partir de cantidades y precios unitarios.
func (t *Ticket) RecalculateTotals() {
	total := decimal.Zero
	for i := range t.Items {
		it := &t.Items[i]
		it.Subtotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(it.Subtotal)
	}
	t.Total = total
}

// ValidPaymentMethod indica si m es un método de pago aceptado.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentCredit:
		return true
	}
	return false
}

package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TopProductResult unidades e ingresos de un producto en un período.
type TopProductResult struct {
	ProductID string
	Name      string
	Units     int
	Revenue   decimal.Decimal
}

// AnalyticsRepository consultas read-only para estadísticas.
type AnalyticsRepository interface {
	// SalesTotals suma de tickets activos y cantidad de tickets en [from, to].
	SalesTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, int, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProductResult, error)
	// InventoryValue valor de compra del stock de productos activos (Σ cantidad_lote × precio_compra_lote).
	InventoryValue(ctx context.Context) (decimal.Decimal, error)
	// PendingPayables total y cantidad de cuentas activas pendientes.
	PendingPayables(ctx context.Context) (decimal.Decimal, int, error)
}

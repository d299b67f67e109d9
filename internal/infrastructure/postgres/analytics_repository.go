package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ladespensa/despensa-api/internal/domain/entity"
	"github.com/ladespensa/despensa-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el tablero de estadísticas.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// SalesTotals suma y cuenta los tickets activos del rango.
func (r *AnalyticsRepo) SalesTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, int, error) {
	const query = `
	SELECT COALESCE(SUM(total), 0), COUNT(*)
	FROM tickets
	WHERE status = $1
	  AND created_at BETWEEN $2 AND $3`

	var (
		total decimal.Decimal
		count int
	)
	if err := r.q.QueryRow(ctx, query, entity.TicketActive, from, to).Scan(&total, &count); err != nil {
		return decimal.Zero, 0, fmt.Errorf("analytics.SalesTotals: %w", err)
	}
	return total, count, nil
}

// TopProducts productos con más unidades vendidas en el rango (tickets activos).
func (r *AnalyticsRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]repository.TopProductResult, error) {
	const query = `
	SELECT
	    d.product_id,
	    MAX(d.name)         AS name,
	    SUM(d.quantity)     AS units,
	    SUM(d.subtotal)     AS revenue
	FROM ticket_items d
	JOIN tickets t ON t.id = d.ticket_id
	WHERE t.status = $1
	  AND t.created_at BETWEEN $2 AND $3
	GROUP BY d.product_id
	ORDER BY units DESC, revenue DESC
	LIMIT $4`

	rows, err := r.q.Query(ctx, query, entity.TicketActive, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.TopProducts: %w", err)
	}
	defer rows.Close()

	results := make([]repository.TopProductResult, 0, limit)
	for rows.Next() {
		var row repository.TopProductResult
		if err := rows.Scan(&row.ProductID, &row.Name, &row.Units, &row.Revenue); err != nil {
			return nil, fmt.Errorf("analytics.TopProducts scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// InventoryValue Σ cantidad × precio de compra de los lotes de productos activos.
func (r *AnalyticsRepo) InventoryValue(ctx context.Context) (decimal.Decimal, error) {
	const query = `
	SELECT COALESCE(SUM(l.quantity * l.purchase_price), 0)
	FROM lots l
	JOIN products p ON p.id = l.product_id
	WHERE p.active AND l.quantity > 0`

	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("analytics.InventoryValue: %w", err)
	}
	return total, nil
}

// PendingPayables total y cantidad de cuentas activas pendientes.
func (r *AnalyticsRepo) PendingPayables(ctx context.Context) (decimal.Decimal, int, error) {
	const query = `
	SELECT COALESCE(SUM(amount), 0), COUNT(*)
	FROM payables
	WHERE active AND status = $1`

	var (
		total decimal.Decimal
		count int
	)
	if err := r.q.QueryRow(ctx, query, entity.PayablePending).Scan(&total, &count); err != nil {
		return decimal.Zero, 0, fmt.Errorf("analytics.PendingPayables: %w", err)
	}
	return total, count, nil
}

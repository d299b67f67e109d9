// Package analytics contiene el resumen de estadísticas del tablero.
package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ladespensa/despensa-api/internal/application/dto"
	"github.com/ladespensa/despensa-api/internal/domain/repository"
)

const dashboardTopProducts = 5 // productos en el widget de más vendidos

// ExpiringLots lotes próximos a vencer (lo implementa el caso de uso de lotes).
type ExpiringLots interface {
	Expiring(ctx context.Context, days *int) ([]dto.ExpiringLotResponse, error)
}

// StatsUseCase genera el resumen del día y del mes en curso.
//
// Fuente de datos: AnalyticsRepository (consultas read-only) y los lotes por vencer.
type StatsUseCase struct {
	analyticsRepo    repository.AnalyticsRepository
	lots             ExpiringLots
	expiringSoonDays int
	now              func() time.Time
}

// NewStatsUseCase construye el caso de uso.
func NewStatsUseCase(analyticsRepo repository.AnalyticsRepository, lots ExpiringLots, expiringSoonDays int) *StatsUseCase {
	return &StatsUseCase{analyticsRepo: analyticsRepo, lots: lots, expiringSoonDays: expiringSoonDays, now: time.Now}
}

// Summary construye el StatsSummaryResponse. Las seis consultas corren en paralelo;
// el primer error cancela el resto.
func (uc *StatsUseCase) Summary(ctx context.Context, days *int) (*dto.StatsSummaryResponse, error) {
	now := uc.now()

	// Hoy: 00:00:00.000 – 23:59:59.999
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.Add(24*time.Hour - time.Nanosecond)
	// Mes en curso: día 1 a las 00:00 – hoy a las 23:59:59
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	out := &dto.StatsSummaryResponse{PeriodLabel: monthLabel(now), ThresholdDays: uc.expiringSoonDays}
	if days != nil && *days >= 0 {
		out.ThresholdDays = *days
	}

	var top []repository.TopProductResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.TodaySales, out.TodayTickets, err = uc.analyticsRepo.SalesTotals(gctx, todayStart, todayEnd)
		if err != nil {
			return fmt.Errorf("estadísticas: ventas de hoy: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		out.MonthSales, out.MonthTickets, err = uc.analyticsRepo.SalesTotals(gctx, monthStart, todayEnd)
		if err != nil {
			return fmt.Errorf("estadísticas: ventas del mes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		top, err = uc.analyticsRepo.TopProducts(gctx, monthStart, todayEnd, dashboardTopProducts)
		if err != nil {
			return fmt.Errorf("estadísticas: más vendidos: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		out.InventoryValue, err = uc.analyticsRepo.InventoryValue(gctx)
		if err != nil {
			return fmt.Errorf("estadísticas: valor de inventario: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		out.PendingPayables, out.PendingCount, err = uc.analyticsRepo.PendingPayables(gctx)
		if err != nil {
			return fmt.Errorf("estadísticas: cuentas pendientes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		threshold := out.ThresholdDays
		lots, err := uc.lots.Expiring(gctx, &threshold)
		if err != nil {
			return fmt.Errorf("estadísticas: lotes por vencer: %w", err)
		}
		out.ExpiringLots = lots
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.TodaySales = out.TodaySales.Round(2)
	out.MonthSales = out.MonthSales.Round(2)
	out.InventoryValue = out.InventoryValue.Round(2)
	out.TopProducts = make([]dto.TopProductResponse, 0, len(top))
	for _, t := range top {
		out.TopProducts = append(out.TopProducts, dto.TopProductResponse{
			ProductID: t.ProductID,
			Name:      t.Name,
			Units:     t.Units,
			Revenue:   t.Revenue.Round(2),
		})
	}
	if out.ExpiringLots == nil {
		out.ExpiringLots = []dto.ExpiringLotResponse{}
	}
	return out, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}

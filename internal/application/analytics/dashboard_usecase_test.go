package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladespensa/despensa-api/internal/application/dto"
	appinv "github.com/ladespensa/despensa-api/internal/application/inventory"
	"github.com/ladespensa/despensa-api/internal/domain/entity"
	"github.com/ladespensa/despensa-api/internal/domain/repository"
	"github.com/ladespensa/despensa-api/internal/infrastructure/memory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSummary(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	now := time.Now()
	require.NoError(t, st.Products().Create(ctx, &entity.Product{
		ID: "p1", Name: "Leche", Category: "Lácteos", Barcode: "7801", SalePrice: dec("1500"), Active: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, st.Payables().Create(ctx, &entity.Payable{
		ID: "c1", Provider: "CGE", Category: "Luz", Month: now.Format("2006-01"), Amount: dec("30000"), Status: entity.PayablePending, Active: true,
	}))

	lots := appinv.NewLotUseCase(st.TxRunner(), st.Products(), st.Lots(), nil, 30)
	sales := appinv.NewSaleUseCase(st.TxRunner(), st.Tickets(), nil)
	actor := dto.Actor{ID: "u1", Name: "Rosa", Role: entity.RoleEmpleado}
	expiry := now.AddDate(0, 0, 5)
	_, err := lots.Add(ctx, actor, "p1", dto.CreateLotRequest{Quantity: 10, PurchasePrice: dec("1000"), SalePrice: dec("1500"), ExpiryDate: &expiry})
	require.NoError(t, err)
	_, err = sales.Create(ctx, actor, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: "p1", Quantity: 3}},
		PaymentMethod: entity.PaymentCash,
	})
	require.NoError(t, err)

	uc := NewStatsUseCase(st.Analytics(), lots, 30)
	out, err := uc.Summary(ctx, nil)
	require.NoError(t, err)

	assert.True(t, out.TodaySales.Equal(dec("4500")))
	assert.Equal(t, 1, out.TodayTickets)
	assert.True(t, out.MonthSales.Equal(dec("4500")))
	assert.True(t, out.InventoryValue.Equal(dec("7000")))
	assert.True(t, out.PendingPayables.Equal(dec("30000")))
	assert.Equal(t, 1, out.PendingCount)
	require.Len(t, out.ExpiringLots, 1)
	assert.Equal(t, "Leche", out.ExpiringLots[0].ProductName)
	require.Len(t, out.TopProducts, 1)
	assert.Equal(t, 3, out.TopProducts[0].Units)
	assert.Equal(t, 30, out.ThresholdDays)
	assert.Equal(t, monthLabel(now), out.PeriodLabel)

	days := 2
	out, err = uc.Summary(ctx, &days)
	require.NoError(t, err)
	assert.Empty(t, out.ExpiringLots)
	assert.Equal(t, 2, out.ThresholdDays)
}

type failingAnalytics struct{ repository.AnalyticsRepository }

func (failingAnalytics) SalesTotals(context.Context, time.Time, time.Time) (decimal.Decimal, int, error) {
	return decimal.Zero, 0, errors.New("conexión cerrada")
}

func (failingAnalytics) TopProducts(context.Context, time.Time, time.Time, int) ([]repository.TopProductResult, error) {
	return nil, nil
}

func (failingAnalytics) InventoryValue(context.Context) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (failingAnalytics) PendingPayables(context.Context) (decimal.Decimal, int, error) {
	return decimal.Zero, 0, nil
}

type noLots struct{}

func (noLots) Expiring(context.Context, *int) ([]dto.ExpiringLotResponse, error) { return nil, nil }

func TestSummary_PropagaError(t *testing.T) {
	uc := NewStatsUseCase(failingAnalytics{}, noLots{}, 30)
	_, err := uc.Summary(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conexión cerrada")
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Febrero 2026", monthLabel(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)))
}

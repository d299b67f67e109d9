package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladespensa/despensa-api/internal/application/dto"
	"github.com/ladespensa/despensa-api/internal/domain"
	"github.com/ladespensa/despensa-api/internal/domain/entity"
	"github.com/ladespensa/despensa-api/internal/domain/listing"
)

func (f *fixture) lotQty(t *testing.T, id string) int {
	t.Helper()
	l, err := f.store.Lots().GetByID(context.Background(), id)
	require.NoError(t, err)
	return l.Quantity
}

func sale(items ...dto.SaleItemRequest) dto.CreateSaleRequest {
	return dto.CreateSaleRequest{Items: items, PaymentMethod: entity.PaymentCash}
}

func TestSaleCreate_ConsumeFEFO(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p1", "Azúcar", "1500")
	vencido := f.addLot(t, "p1", 4, "900", "1500", inDays(-2))
	pronto := f.addLot(t, "p1", 3, "900", "1500", inDays(5))
	tarde := f.addLot(t, "p1", 10, "1000", "1500", inDays(90))

	ticket, err := f.sales.Create(context.Background(), cajero, sale(
		dto.SaleItemRequest{ProductID: "p1", Quantity: 2},
		dto.SaleItemRequest{ProductID: "p1", Quantity: 3},
	))
	require.NoError(t, err)
	require.Len(t, ticket.Items, 1)
	assert.Equal(t, 5, ticket.Items[0].Quantity)
	assert.True(t, ticket.Items[0].Subtotal.Equal(dec("7500")))
	assert.True(t, ticket.Total.Equal(dec("7500")))
	assert.Equal(t, entity.TicketActive, ticket.Status)
	assert.Equal(t, int64(1), ticket.Number)

	assert.Equal(t, 4, f.lotQty(t, vencido.ID))
	assert.Equal(t, 0, f.lotQty(t, pronto.ID))
	assert.Equal(t, 8, f.lotQty(t, tarde.ID))
	assert.Equal(t, 12, f.product(t, "p1").Stock)
}

func TestSaleCreate_StockInsuficienteNoModificaNada(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p1", "Aceite", "3000")
	f.seedProduct(t, "p2", "Sal", "600")
	l1 := f.addLot(t, "p1", 5, "2000", "3000", nil)
	f.addLot(t, "p2", 1, "300", "600", nil)

	_, err := f.sales.Create(context.Background(), cajero, sale(
		dto.SaleItemRequest{ProductID: "p1", Quantity: 2},
		dto.SaleItemRequest{ProductID: "p2", Quantity: 5},
	))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 5, f.lotQty(t, l1.ID))
	assert.Equal(t, 5, f.product(t, "p1").Stock)
}

func TestSaleCreate_Validaciones(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p1", "Té", "900")
	f.addLot(t, "p1", 5, "500", "900", nil)

	req := sale(dto.SaleItemRequest{ProductID: "p1", Quantity: 1})
	req.PaymentMethod = entity.PaymentCredit
	_, err := f.sales.Create(context.Background(), cajero, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "fiado sin deudor")

	req.PaymentMethod = "cheque"
	_, err = f.sales.Create(context.Background(), cajero, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	p := f.product(t, "p1")
	p.Active = false
	require.NoError(t, f.store.Products().Update(context.Background(), p))
	_, err = f.sales.Create(context.Background(), cajero, sale(dto.SaleItemRequest{ProductID: "p1", Quantity: 1}))
	assert.ErrorIs(t, err, domain.ErrProductInactive)
}

func TestSaleReturn_RepondeEnLotesDeOrigen(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p1", "Café", "4000")
	a := f.addLot(t, "p1", 2, "2500", "4000", inDays(3))
	b := f.addLot(t, "p1", 5, "2500", "4000", inDays(30))

	ticket, err := f.sales.Create(context.Background(), cajero, sale(dto.SaleItemRequest{ProductID: "p1", Quantity: 4}))
	require.NoError(t, err)
	assert.Equal(t, 0, f.lotQty(t, a.ID))
	assert.Equal(t, 3, f.lotQty(t, b.ID))

	out, err := f.sales.Return(context.Background(), cajero, ticket.ID, dto.ReturnRequest{
		Items: []dto.ReturnItemRequest{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Items[0].Quantity)
	assert.True(t, out.Total.Equal(dec("12000")))
	// la última asignación (lote b) se repone primero
	assert.Equal(t, 4, f.lotQty(t, b.ID))
	assert.Equal(t, 0, f.lotQty(t, a.ID))

	_, err = f.sales.Return(context.Background(), cajero, ticket.ID, dto.ReturnRequest{
		Items: []dto.ReturnItemRequest{{ProductID: "p1", Quantity: 4}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no se puede devolver más de lo vendido")

	out, err = f.sales.Return(context.Background(), cajero, ticket.ID, dto.ReturnRequest{
		Items: []dto.ReturnItemRequest{{ProductID: "p1", Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TicketVoided, out.Status)
	assert.Equal(t, 2, f.lotQty(t, a.ID))
	assert.Equal(t, 5, f.lotQty(t, b.ID))
	assert.Equal(t, 7, f.product(t, "p1").Stock)
}

func TestSaleVoidYDevolucion_ProductoEliminado(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p1", "Pan", "200")
	f.seedProduct(t, "p2", "Leche", "900")
	f.addLot(t, "p1", 10, "100", "200", nil)
	leche := f.addLot(t, "p2", 5, "700", "900", nil)

	anular, err := f.sales.Create(context.Background(), cajero, sale(dto.SaleItemRequest{ProductID: "p1", Quantity: 2}))
	require.NoError(t, err)
	devolver, err := f.sales.Create(context.Background(), cajero, sale(
		dto.SaleItemRequest{ProductID: "p1", Quantity: 3},
		dto.SaleItemRequest{ProductID: "p2", Quantity: 2},
	))
	require.NoError(t, err)
	require.NoError(t, f.store.Products().Delete(context.Background(), "p1"))

	out, err := f.sales.Void(context.Background(), cajero, anular.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TicketVoided, out.Status)

	out, err = f.sales.Return(context.Background(), cajero, devolver.ID, dto.ReturnRequest{
		Items: []dto.ReturnItemRequest{{ProductID: "p1", Quantity: 3}, {ProductID: "p2", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TicketActive, out.Status)
	require.Len(t, out.Items, 1)
	assert.Equal(t, 1, out.Items[0].Quantity)
	assert.Equal(t, 4, f.lotQty(t, leche.ID))
	assert.Equal(t, 4, f.product(t, "p2").Stock)
}

func TestSaleVoid(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p1", "Pan", "200")
	lot := f.addLot(t, "p1", 10, "100", "200", nil)

	ticket, err := f.sales.Create(context.Background(), cajero, sale(dto.SaleItemRequest{ProductID: "p1", Quantity: 6}))
	require.NoError(t, err)

	out, err := f.sales.Void(context.Background(), cajero, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TicketVoided, out.Status)
	assert.NotNil(t, out.VoidedAt)
	assert.Equal(t, 10, f.lotQty(t, lot.ID))

	_, err = f.sales.Void(context.Background(), cajero, ticket.ID)
	assert.ErrorIs(t, err, domain.ErrTicketVoided)

	_, err = f.sales.Void(context.Background(), cajero, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	movs, err := f.store.Movements().ListByProduct(context.Background(), "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementVoid, movs[0].Type)
	assert.Equal(t, 10, movs[0].StockAfter)
}

func TestSaleList_FiltrosYPaginacion(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p1", "Galletas", "700")
	f.addLot(t, "p1", 50, "400", "700", nil)

	for i := 0; i < 6; i++ {
		req := sale(dto.SaleItemRequest{ProductID: "p1", Quantity: 1})
		if i%2 == 0 {
			req.PaymentMethod = entity.PaymentCredit
			req.Debtor = "Don Julio"
		}
		_, err := f.sales.Create(context.Background(), cajero, req)
		require.NoError(t, err)
	}

	res, err := f.sales.List(context.Background(), TicketFilter{PaymentMethod: entity.PaymentCredit}, listing.Query{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Meta.Total)
	assert.Equal(t, 2, res.Meta.TotalPages)
	assert.Len(t, res.Items, 2)

	res, err = f.sales.List(context.Background(), TicketFilter{}, listing.Query{Search: "julio", Sort: "numero"})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, int64(1), res.Items[0].Number)

	res, err = f.sales.List(context.Background(), TicketFilter{}, listing.Query{Search: "nadie"})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, dto.NoResultsMessage, res.Meta.Message)
}

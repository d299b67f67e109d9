package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladespensa/despensa-api/internal/application/ports"
	"github.com/ladespensa/despensa-api/internal/domain/entity"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "$0", Money(decimal.Zero))
	assert.Equal(t, "$999", Money(decimal.NewFromInt(999)))
	assert.Equal(t, "$25.000", Money(decimal.NewFromInt(25000)))
	assert.Equal(t, "$1.000.000", Money(decimal.NewFromInt(1000000)))
	assert.Equal(t, "-$4.500", Money(decimal.NewFromInt(-4500)))
}

func TestText(t *testing.T) {
	assert.Equal(t, "—", Text(""))
	assert.Equal(t, "12", Text(12))
	assert.Equal(t, "$1.300", Text(decimal.NewFromInt(1300)))
	assert.Equal(t, "—", Date(nil))
}

func TestTables_PorTipo(t *testing.T) {
	data := ports.ReportData{
		Tickets: []*entity.Ticket{{
			Number: 3, PaymentMethod: "efectivo", Status: "activa",
			Items:     []entity.TicketItem{{Name: "Arroz", Quantity: 2}, {Name: "Sal", Quantity: 1}},
			Total:     decimal.NewFromInt(3000),
			CreatedAt: time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC),
		}},
		Suppliers: []*entity.Supplier{{Name: "Granos SA", Active: false}},
	}

	tables, err := Tables(ports.ReportSales, data)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	require.Len(t, tables[0].Rows, 1)
	assert.Equal(t, "Arroz x2, Sal x1", tables[0].Rows[0][2])
	assert.Equal(t, "04/05/2026 09:30", tables[0].Rows[0][1])

	tables, err = Tables(ports.ReportSuppliers, data)
	require.NoError(t, err)
	assert.Equal(t, "inactivo", tables[0].Rows[0][4])

	tables, err = Tables(ports.ReportGeneral, data)
	require.NoError(t, err)
	assert.Len(t, tables, 3)

	_, err = Tables("otro", data)
	assert.Error(t, err)
}

func TestTables_AnchosSuman12(t *testing.T) {
	for _, tb := range []Table{Products(nil), Tickets(nil), Suppliers(nil), Payables(nil)} {
		sum := 0
		for _, c := range tb.Columns {
			sum += c.Width
		}
		assert.Equal(t, 12, sum, tb.Title)
		assert.Empty(t, tb.Rows)
	}
}

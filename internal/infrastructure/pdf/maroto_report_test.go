package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladespensa/despensa-api/internal/application/ports"
	"github.com/ladespensa/despensa-api/internal/domain/entity"
)

func sampleData() ports.ReportData {
	exp := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	return ports.ReportData{
		Title:       "Reporte de productos",
		GeneratedAt: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
		GeneratedBy: "Marta",
		Products: []*entity.Product{
			{Name: "Arroz", Category: "Granos", Barcode: "770001", Stock: 12,
				PurchasePrice: decimal.NewFromInt(1000), SalePrice: decimal.NewFromInt(1300), ExpiryDate: &exp},
			{Name: "Aceite", Category: "Abarrotes", Barcode: "770002", Stock: 3,
				PurchasePrice: decimal.NewFromInt(5000), SalePrice: decimal.NewFromInt(6500)},
		},
		Total: decimal.NewFromInt(27000),
	}
}

func TestRender_Productos(t *testing.T) {
	out, err := NewMarotoReportRenderer("").Render(ports.ReportProducts, sampleData())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRender_ColeccionVaciaSoloEncabezado(t *testing.T) {
	data := sampleData()
	data.Products = nil
	out, err := NewMarotoReportRenderer("La Despensa").Render(ports.ReportProducts, data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRender_General(t *testing.T) {
	data := sampleData()
	data.Title = "Reporte general"
	data.KPIs = []ports.KPI{
		{Label: "Ventas del mes", Value: "$45.000"},
		{Label: "Inventario", Value: "$27.000"},
		{Label: "Cuentas pendientes", Value: "$30.000"},
		{Label: "Por vencer", Value: "1"},
		{Label: "Productos activos", Value: "2"},
	}
	data.Tickets = []*entity.Ticket{{
		Number: 7, PaymentMethod: entity.PaymentCash, Status: entity.TicketActive,
		Items: []entity.TicketItem{{Name: "Arroz", Quantity: 3}}, Total: decimal.NewFromInt(3900),
		CreatedAt: data.GeneratedAt,
	}}
	out, err := NewMarotoReportRenderer("").Render(ports.ReportGeneral, data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRender_TipoDesconocido(t *testing.T) {
	_, err := NewMarotoReportRenderer("").Render("inventados", sampleData())
	assert.Error(t, err)
}

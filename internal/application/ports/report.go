package ports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ladespensa/despensa-api/internal/domain/entity"
)

// KPI tarjeta de indicador del reporte general.
type KPI struct {
	Label string
	Value string
}

// ReportData colecciones ya cargadas y filtradas que se vuelcan al documento.
// Los renderizadores no acceden a red ni a BD.
type ReportData struct {
	Title       string
	GeneratedAt time.Time
	GeneratedBy string
	Products    []*entity.Product
	Tickets     []*entity.Ticket
	Suppliers   []*entity.Supplier
	Payables    []*entity.Payable
	KPIs        []KPI
	Total       decimal.Decimal
}

// Tipos de reporte.
const (
	ReportProducts  = "productos"
	ReportSales     = "ventas"
	ReportSuppliers = "proveedores"
	ReportPayables  = "cuentas"
	ReportGeneral   = "general"
)

// PDFRenderer genera reportes PDF.
type PDFRenderer interface {
	Render(kind string, data ReportData) ([]byte, error)
}

// ExcelRenderer genera reportes XLSX.
type ExcelRenderer interface {
	Render(kind string, data ReportData) ([]byte, error)
}

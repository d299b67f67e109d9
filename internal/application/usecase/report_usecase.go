package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ladespensa/despensa-api/internal/application/dto"
	appinv "github.com/ladespensa/despensa-api/internal/application/inventory"
	"github.com/ladespensa/despensa-api/internal/application/ports"
	"github.com/ladespensa/despensa-api/internal/domain"
	"github.com/ladespensa/despensa-api/internal/domain/entity"
	"github.com/ladespensa/despensa-api/internal/domain/listing"
)

// SummaryProvider KPIs del tablero para el reporte general.
type SummaryProvider interface {
	Summary(ctx context.Context, days *int) (*dto.StatsSummaryResponse, error)
}

// ReportUseCase genera reportes PDF/XLSX a partir de las mismas colecciones filtradas
// que muestran los listados.
type ReportUseCase struct {
	products  *ProductUseCase
	sales     *appinv.SaleUseCase
	suppliers *SupplierUseCase
	payables  *PayableUseCase
	stats     SummaryProvider
	pdf       ports.PDFRenderer
	xlsx      ports.ExcelRenderer
	now       func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(
	products *ProductUseCase,
	sales *appinv.SaleUseCase,
	suppliers *SupplierUseCase,
	payables *PayableUseCase,
	stats SummaryProvider,
	pdf ports.PDFRenderer,
	xlsx ports.ExcelRenderer,
) *ReportUseCase {
	return &ReportUseCase{
		products:  products,
		sales:     sales,
		suppliers: suppliers,
		payables:  payables,
		stats:     stats,
		pdf:       pdf,
		xlsx:      xlsx,
		now:       time.Now,
	}
}

// ReportRequest tipo, formato y filtros del reporte.
type ReportRequest struct {
	Kind     string
	Format   string
	Actor    dto.Actor
	Products dto.ProductListQuery
	Sales    appinv.TicketFilter
	Query    listing.Query
}

var reportTitles = map[string]string{
	ports.ReportProducts:  "Reporte de productos",
	ports.ReportSales:     "Reporte de ventas",
	ports.ReportSuppliers: "Reporte de proveedores",
	ports.ReportPayables:  "Reporte de cuentas por pagar",
	ports.ReportGeneral:   "Reporte general",
}

// Generate carga la colección pedida y la entrega al renderizador del formato.
func (uc *ReportUseCase) Generate(ctx context.Context, req ReportRequest) (*dto.ReportFile, error) {
	title, ok := reportTitles[req.Kind]
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	if req.Format == "" {
		req.Format = dto.FormatPDF
	}
	if req.Format != dto.FormatPDF && req.Format != dto.FormatXLSX {
		return nil, domain.ErrInvalidInput
	}

	now := uc.now()
	data := ports.ReportData{Title: title, GeneratedAt: now, GeneratedBy: req.Actor.Name}
	if err := uc.load(ctx, req, &data); err != nil {
		return nil, err
	}

	var (
		content     []byte
		err         error
		contentType string
	)
	switch req.Format {
	case dto.FormatXLSX:
		content, err = SafeRender(uc.xlsx.Render, req.Kind, data)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		content, err = SafeRender(uc.pdf.Render, req.Kind, data)
		contentType = "application/pdf"
	}
	if err != nil {
		return nil, err
	}
	return &dto.ReportFile{
		Filename:    fmt.Sprintf("reporte-%s-%s.%s", req.Kind, now.Format("20060102-1504"), req.Format),
		ContentType: contentType,
		Content:     content,
	}, nil
}

func (uc *ReportUseCase) load(ctx context.Context, req ReportRequest, data *ports.ReportData) error {
	var err error
	switch req.Kind {
	case ports.ReportProducts:
		data.Products, err = uc.products.Products(ctx, req.Products)
		data.Total = inventoryTotal(data.Products)
	case ports.ReportSales:
		data.Tickets, err = uc.sales.Tickets(ctx, req.Sales, req.Query)
		data.Total = salesTotal(data.Tickets)
	case ports.ReportSuppliers:
		data.Suppliers, err = uc.suppliers.Suppliers(ctx, req.Query)
	case ports.ReportPayables:
		data.Payables, err = uc.payables.Payables(ctx, req.Query)
		data.Total = payablesTotal(data.Payables)
	case ports.ReportGeneral:
		err = uc.loadGeneral(ctx, req, data)
	}
	return err
}

func (uc *ReportUseCase) loadGeneral(ctx context.Context, req ReportRequest, data *ports.ReportData) error {
	var err error
	if data.Products, err = uc.products.Products(ctx, dto.ProductListQuery{}); err != nil {
		return err
	}
	if data.Payables, err = uc.payables.Payables(ctx, listing.Query{Status: entity.PayablePending}); err != nil {
		return err
	}
	now := uc.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if data.Tickets, err = uc.sales.Tickets(ctx, appinv.TicketFilter{From: &from}, listing.Query{Status: entity.TicketActive}); err != nil {
		return err
	}
	data.Total = salesTotal(data.Tickets)
	if uc.stats == nil {
		return nil
	}
	s, err := uc.stats.Summary(ctx, req.Products.Dias)
	if err != nil {
		return err
	}
	data.KPIs = []ports.KPI{
		{Label: "Ventas hoy", Value: s.TodaySales.StringFixed(0)},
		{Label: "Ventas del mes", Value: s.MonthSales.StringFixed(0)},
		{Label: "Tickets del mes", Value: fmt.Sprint(s.MonthTickets)},
		{Label: "Valor inventario", Value: s.InventoryValue.StringFixed(0)},
		{Label: "Cuentas pendientes", Value: s.PendingPayables.StringFixed(0)},
		{Label: "Lotes por vencer", Value: fmt.Sprint(len(s.ExpiringLots))},
	}
	return nil
}

// SafeRender ejecuta el renderizador y convierte errores y pánicos de la librería en
// domain.ErrReportFailed. Un documento a medio construir se descarta.
func SafeRender(render func(string, ports.ReportData) ([]byte, error), kind string, data ports.ReportData) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: %v", domain.ErrReportFailed, r)
		}
	}()
	out, err = render(kind, data)
	if err != nil {
		if errors.Is(err, domain.ErrReportFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrReportFailed, err)
	}
	return out, nil
}

func inventoryTotal(products []*entity.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.PurchasePrice.Mul(decimal.NewFromInt(int64(p.Stock))))
	}
	return total
}

func salesTotal(tickets []*entity.Ticket) decimal.Decimal {
	total := decimal.Zero
	for _, t := range tickets {
		if t.Status == entity.TicketActive {
			total = total.Add(t.Total)
		}
	}
	return total
}

func payablesTotal(payables []*entity.Payable) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payables {
		if p.Status == entity.PayablePending {
			total = total.Add(p.Amount)
		}
	}
	return total
}

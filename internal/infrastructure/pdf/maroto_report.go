// Package pdf genera los reportes PDF con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: La Despensa + título  │  Fecha + usuario           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  KPIs (solo reporte general)                                │
//	│  TABLA(S): una por colección                                │
//	│  TOTAL                                                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: leyenda                                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/ladespensa/despensa-api/internal/application/ports"
	"github.com/ladespensa/despensa-api/internal/infrastructure/report"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorStripe  = &props.Color{Red: 240, Green: 244, Blue: 248}
)

// ── Renderer ──────────────────────────────────────────────────────────────────

// MarotoReportRenderer implementa ports.PDFRenderer usando Maroto v2.
type MarotoReportRenderer struct {
	company string
}

// NewMarotoReportRenderer construye el renderizador; company encabeza cada página.
func NewMarotoReportRenderer(company string) *MarotoReportRenderer {
	if company == "" {
		company = "La Despensa"
	}
	return &MarotoReportRenderer{company: company}
}

// Render genera el PDF del reporte kind y devuelve sus bytes.
func (g *MarotoReportRenderer) Render(kind string, data ports.ReportData) ([]byte, error) {
	tables, err := report.Tables(kind, data)
	if err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(data.Title, true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)

	if err := m.RegisterHeader(
		headerRow(g.company, data),
		line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}),
	); err != nil {
		return nil, fmt.Errorf("pdf: registrar encabezado: %w", err)
	}
	if err := m.RegisterFooter(footerRow()); err != nil {
		return nil, fmt.Errorf("pdf: registrar pie: %w", err)
	}

	if len(data.KPIs) > 0 {
		m.AddRows(kpiRows(data.KPIs)...)
	}
	printed := 0
	for _, t := range tables {
		if len(t.Rows) == 0 {
			continue
		}
		printed += len(t.Rows)
		if len(tables) > 1 {
			m.AddRows(sectionRow(t.Title))
		}
		m.AddRows(tableHeaderRow(t.Columns))
		m.AddRows(tableRows(t)...)
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	}
	if printed > 0 && kind != ports.ReportSuppliers {
		m.AddRows(totalRow(data.Total))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre del negocio + título (izq) y fecha + usuario (der).
func headerRow(company string, data ports.ReportData) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(data.Title, props.Text{
				Size: 10, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Generado: "+data.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
			text.New("Por: "+nonEmpty(data.GeneratedBy, "—"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func footerRow() core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New("La Despensa · reporte de uso interno", props.Text{
			Size: 6.5, Color: colorGray, Align: align.Center, Top: 3,
		}),
	))
}

// kpiRows: tarjetas de a cuatro por fila.
func kpiRows(kpis []ports.KPI) []core.Row {
	var rows []core.Row
	for i := 0; i < len(kpis); i += 4 {
		r := row.New(14)
		for _, k := range kpis[i:min(i+4, len(kpis))] {
			r.Add(col.New(3).Add(
				text.New(k.Label, props.Text{Size: 7, Color: colorGray, Top: 1, Left: 1}),
				text.New(k.Value, props.Text{
					Style: fontstyle.Bold, Size: 11, Color: colorPrimary, Top: 6, Left: 1,
				}),
			))
		}
		rows = append(rows, r)
	}
	return append(rows, row.New(3))
}

func sectionRow(title string) core.Row {
	return row.New(9).Add(col.New(12).Add(
		text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 3,
		}),
	))
}

// tableHeaderRow: cabecera de la tabla con fondo azul.
func tableHeaderRow(columns []report.Column) core.Row {
	cols := make([]core.Col, 0, len(columns))
	for _, c := range columns {
		cols = append(cols, col.New(c.Width).Add(text.New(c.Header, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(cols...).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableRows: una fila por registro, montos alineados a la derecha.
func tableRows(t report.Table) []core.Row {
	result := make([]core.Row, 0, len(t.Rows))
	for i, cells := range t.Rows {
		cols := make([]core.Col, 0, len(cells))
		for j, cell := range cells {
			p := props.Text{Size: 8, Top: 1, Left: 1, Right: 1}
			switch cell.(type) {
			case decimal.Decimal, int:
				p.Align = align.Right
			}
			cols = append(cols, col.New(t.Columns[j].Width).Add(text.New(report.Text(cell), p)))
		}
		r := row.New(7).Add(cols...)
		if i%2 == 1 {
			r.WithStyle(&props.Cell{BackgroundColor: colorStripe})
		}
		result = append(result, r)
	}
	return result
}

func totalRow(total decimal.Decimal) core.Row {
	return row.New(10).Add(
		col.New(8),
		col.New(2).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 2,
		})),
		col.New(2).Add(text.New(report.Money(total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1,
		})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

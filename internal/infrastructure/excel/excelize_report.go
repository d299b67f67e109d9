// Package excel genera los reportes XLSX con excelize.
package excel

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ladespensa/despensa-api/internal/application/ports"
	"github.com/ladespensa/despensa-api/internal/infrastructure/report"
)

const kpiSheet = "Resumen"

// ReportRenderer implementa ports.ExcelRenderer: una hoja por tabla del reporte.
type ReportRenderer struct{}

func NewReportRenderer() *ReportRenderer { return &ReportRenderer{} }

// Render genera el libro del reporte kind y devuelve sus bytes.
func (ReportRenderer) Render(kind string, data ports.ReportData) ([]byte, error) {
	tables, err := report.Tables(kind, data)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"00467F"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo de encabezado: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	if err != nil {
		return nil, fmt.Errorf("excel: estilo de montos: %w", err)
	}

	first := f.GetSheetName(f.GetActiveSheetIndex())
	sheets := make([]string, 0, len(tables)+1)
	if len(data.KPIs) > 0 {
		sheets = append(sheets, kpiSheet)
	}
	for _, t := range tables {
		sheets = append(sheets, t.Title)
	}
	if err := f.SetSheetName(first, sheets[0]); err != nil {
		return nil, fmt.Errorf("excel: renombrar hoja: %w", err)
	}
	for _, name := range sheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("excel: crear hoja %s: %w", name, err)
		}
	}

	if len(data.KPIs) > 0 {
		if err := writeKPIs(f, data, headerStyle); err != nil {
			return nil, err
		}
	}
	for _, t := range tables {
		if err := writeTable(f, t, headerStyle, moneyStyle); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: escribir libro: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

func writeKPIs(f *excelize.File, data ports.ReportData, headerStyle int) error {
	header := []interface{}{"Indicador", "Valor"}
	if err := f.SetSheetRow(kpiSheet, "A1", &header); err != nil {
		return fmt.Errorf("excel: encabezado de resumen: %w", err)
	}
	if err := f.SetCellStyle(kpiSheet, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("excel: estilo de resumen: %w", err)
	}
	for i, k := range data.KPIs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("excel: celda de resumen: %w", err)
		}
		values := []interface{}{k.Label, k.Value}
		if err := f.SetSheetRow(kpiSheet, cell, &values); err != nil {
			return fmt.Errorf("excel: fila de resumen: %w", err)
		}
	}
	return f.SetColWidth(kpiSheet, "A", "B", 24)
}

func writeTable(f *excelize.File, t report.Table, headerStyle, moneyStyle int) error {
	header := make([]interface{}, 0, len(t.Columns))
	for _, c := range t.Columns {
		header = append(header, c.Header)
	}
	if err := f.SetSheetRow(t.Title, "A1", &header); err != nil {
		return fmt.Errorf("excel: encabezado %s: %w", t.Title, err)
	}
	last, err := excelize.CoordinatesToCellName(len(t.Columns), 1)
	if err != nil {
		return fmt.Errorf("excel: celdas %s: %w", t.Title, err)
	}
	if err := f.SetCellStyle(t.Title, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("excel: estilo %s: %w", t.Title, err)
	}

	for i, cells := range t.Rows {
		rowNum := i + 2
		values := make([]interface{}, 0, len(cells))
		for _, c := range cells {
			switch v := c.(type) {
			case decimal.Decimal:
				values = append(values, v.InexactFloat64())
			default:
				values = append(values, v)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return fmt.Errorf("excel: celdas %s: %w", t.Title, err)
		}
		if err := f.SetSheetRow(t.Title, cell, &values); err != nil {
			return fmt.Errorf("excel: fila %s: %w", t.Title, err)
		}
		for j, c := range cells {
			if _, ok := c.(decimal.Decimal); !ok {
				continue
			}
			money, _ := excelize.CoordinatesToCellName(j+1, rowNum)
			if err := f.SetCellStyle(t.Title, money, money, moneyStyle); err != nil {
				return fmt.Errorf("excel: estilo de monto %s: %w", t.Title, err)
			}
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(t.Columns))
	return f.SetColWidth(t.Title, "A", lastCol, 16)
}

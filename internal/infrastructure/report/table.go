// Package report arma las tablas comunes a los reportes PDF y Excel.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ladespensa/despensa-api/internal/application/ports"
	"github.com/ladespensa/despensa-api/internal/domain/entity"
)

// Column encabezado y ancho (grilla de 12) de una columna.
type Column struct {
	Header string
	Width  int
}

// Table sección tabular de un reporte. Las celdas son string, int o decimal.Decimal.
type Table struct {
	Title   string
	Columns []Column
	Rows    [][]any
}

// Tables devuelve las tablas del reporte kind en el orden en que se imprimen.
func Tables(kind string, data ports.ReportData) ([]Table, error) {
	switch kind {
	case ports.ReportProducts:
		return []Table{Products(data.Products)}, nil
	case ports.ReportSales:
		return []Table{Tickets(data.Tickets)}, nil
	case ports.ReportSuppliers:
		return []Table{Suppliers(data.Suppliers)}, nil
	case ports.ReportPayables:
		return []Table{Payables(data.Payables)}, nil
	case ports.ReportGeneral:
		return []Table{
			Products(data.Products),
			Tickets(data.Tickets),
			Payables(data.Payables),
		}, nil
	}
	return nil, fmt.Errorf("report: tipo desconocido %q", kind)
}

func Products(products []*entity.Product) Table {
	t := Table{
		Title: "Productos",
		Columns: []Column{
			{"Nombre", 3}, {"Categoría", 2}, {"Código", 2}, {"Stock", 1},
			{"Compra", 1}, {"Venta", 1}, {"Vence", 2},
		},
	}
	for _, p := range products {
		t.Rows = append(t.Rows, []any{
			p.Name, p.Category, p.Barcode, p.Stock,
			p.PurchasePrice, p.SalePrice, Date(p.ExpiryDate),
		})
	}
	return t
}

func Tickets(tickets []*entity.Ticket) Table {
	t := Table{
		Title: "Ventas",
		Columns: []Column{
			{"N°", 1}, {"Fecha", 2}, {"Ítems", 4}, {"Método", 2}, {"Estado", 1}, {"Total", 2},
		},
	}
	for _, tk := range tickets {
		items := make([]string, 0, len(tk.Items))
		for _, it := range tk.Items {
			items = append(items, fmt.Sprintf("%s x%d", it.Name, it.Quantity))
		}
		t.Rows = append(t.Rows, []any{
			int(tk.Number), tk.CreatedAt.Format("02/01/2006 15:04"),
			strings.Join(items, ", "), tk.PaymentMethod, tk.Status, tk.Total,
		})
	}
	return t
}

func Suppliers(suppliers []*entity.Supplier) Table {
	t := Table{
		Title: "Proveedores",
		Columns: []Column{
			{"Nombre", 3}, {"Contacto", 2}, {"Teléfono", 2}, {"Email", 3}, {"Estado", 2},
		},
	}
	for _, s := range suppliers {
		status := "activo"
		if !s.Active {
			status = "inactivo"
		}
		t.Rows = append(t.Rows, []any{s.Name, s.Contact, s.Phone, s.Email, status})
	}
	return t
}

func Payables(payables []*entity.Payable) Table {
	t := Table{
		Title: "Cuentas por pagar",
		Columns: []Column{
			{"Proveedor", 3}, {"Categoría", 2}, {"Mes", 2}, {"N° verificación", 2}, {"Estado", 1}, {"Monto", 2},
		},
	}
	for _, p := range payables {
		t.Rows = append(t.Rows, []any{
			p.Provider, p.Category, p.Month, p.VerificationNumber, p.Status, p.Amount,
		})
	}
	return t
}

// Date formatea fechas opcionales como dd/mm/aaaa o "—".
func Date(t *time.Time) string {
	if t == nil {
		return "—"
	}
	return t.Format("02/01/2006")
}

// Text representación impresa de una celda.
func Text(cell any) string {
	switch v := cell.(type) {
	case string:
		if v == "" {
			return "—"
		}
		return v
	case decimal.Decimal:
		return Money(v)
	case int:
		return fmt.Sprintf("%d", v)
	case nil:
		return "—"
	}
	return fmt.Sprint(cell)
}

// Money formatea un monto sin decimales con puntos de miles: 25000 → "$25.000".
func Money(d decimal.Decimal) string {
	s := d.Abs().StringFixed(0)
	sign := ""
	if d.Round(0).IsNegative() {
		sign = "-"
	}
	return sign + "$" + thousands(s)
}

func thousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}

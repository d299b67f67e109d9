package inventory

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Margin diferencia entre precio de venta y de compra.
type Margin struct {
	Amount  decimal.Decimal
	Percent decimal.Decimal // relativo al precio de compra, redondeado a 2 decimales
}

// CalculateMargin margen = venta - compra; margen% = (venta - compra) / compra × 100.
// Con precio de compra 0 el porcentaje es 0.
func CalculateMargin(purchase, sale decimal.Decimal) Margin {
	amount := sale.Sub(purchase)
	if purchase.IsZero() {
		return Margin{Amount: amount, Percent: decimal.Zero}
	}
	return Margin{
		Amount:  amount,
		Percent: amount.Div(purchase).Mul(hundred).Round(2),
	}
}

// WeightedPurchasePrice costo promedio ponderado de los lotes con existencias:
// Σ(cantidad × precio_compra) / Σ cantidad. Si no hay existencias devuelve fallback.
func WeightedPurchasePrice(lots []LotView, fallback decimal.Decimal) decimal.Decimal {
	units := decimal.Zero
	total := decimal.Zero
	for _, l := range lots {
		if l.Quantity <= 0 {
			continue
		}
		q := decimal.NewFromInt(int64(l.Quantity))
		units = units.Add(q)
		total = total.Add(q.Mul(l.PurchasePrice))
	}
	if units.IsZero() {
		return fallback
	}
	return total.Div(units).Round(2)
}

package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ladespensa/despensa-api/internal/domain"
	"github.com/ladespensa/despensa-api/internal/domain/entity"
)

// LotView lote anotado para mostrar en pantalla.
type LotView struct {
	entity.Lot
	Status        ExpiryStatus
	DaysToExpiry  *int
	Margin        Margin
	NextToConsume bool
	// NextToSell primer lote que tomaría una venta normal (con cantidad y sin vencer).
	NextToSell bool
}

// SortFEFO ordena in-place: vencimiento ascendente, sin vencimiento al final,
// empates por fecha de creación. Es el mismo orden que aplica el repositorio.
func SortFEFO(lots []*entity.Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		switch {
		case a.ExpiryDate == nil && b.ExpiryDate == nil:
			return a.CreatedAt.Before(b.CreatedAt)
		case a.ExpiryDate == nil:
			return false
		case b.ExpiryDate == nil:
			return true
		case !a.ExpiryDate.Equal(*b.ExpiryDate):
			return a.ExpiryDate.Before(*b.ExpiryDate)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
}

// AnnotateLots clasifica cada lote, calcula su margen y marca como próximo a consumir
// el primer lote con cantidad positiva en el orden recibido. NextToSell coincide con el
// primer lote de PlanFEFO, que salta los vencidos. No modifica stock.
func AnnotateLots(lots []*entity.Lot, today time.Time, thresholdDays int) []LotView {
	out := make([]LotView, 0, len(lots))
	marked, markedSale := false, false
	for _, l := range lots {
		v := LotView{
			Lot:    *l,
			Status: ClassifyExpiry(l.ExpiryDate, today, thresholdDays),
			Margin: CalculateMargin(l.PurchasePrice, l.SalePrice),
		}
		if l.ExpiryDate != nil {
			d := DaysUntil(*l.ExpiryDate, today)
			v.DaysToExpiry = &d
		}
		if !marked && l.Quantity > 0 {
			v.NextToConsume = true
			marked = true
		}
		if !markedSale && l.Quantity > 0 && v.Status != StatusExpired {
			v.NextToSell = true
			markedSale = true
		}
		out = append(out, v)
	}
	return out
}

// Allocation cantidad a descontar de un lote.
type Allocation struct {
	Lot      *entity.Lot
	Quantity int
}

// PlanFEFO reparte qty entre los lotes (ya ordenados FEFO) sin modificarlos.
// Los lotes vencidos se saltan salvo allowExpired. Devuelve domain.ErrInsufficientStock
// si las existencias utilizables no alcanzan.
func PlanFEFO(lots []*entity.Lot, qty int, today time.Time, allowExpired bool) ([]Allocation, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidInput
	}
	remaining := qty
	plan := make([]Allocation, 0, 2)
	for _, l := range lots {
		if remaining == 0 {
			break
		}
		if l.Quantity <= 0 {
			continue
		}
		if !allowExpired && ClassifyExpiry(l.ExpiryDate, today, 0) == StatusExpired {
			continue
		}
		take := l.Quantity
		if take > remaining {
			take = remaining
		}
		plan = append(plan, Allocation{Lot: l, Quantity: take})
		remaining -= take
	}
	if remaining > 0 {
		return nil, domain.ErrInsufficientStock
	}
	return plan, nil
}

// Summary agregados del producto derivados de sus lotes.
type Summary struct {
	Stock         int
	PurchasePrice decimal.Decimal
	NextExpiry    *time.Time
}

// Summarize calcula stock total, costo ponderado y vencimiento más próximo con existencias.
func Summarize(lots []*entity.Lot, fallbackPrice decimal.Decimal) Summary {
	views := make([]LotView, 0, len(lots))
	s := Summary{}
	for _, l := range lots {
		views = append(views, LotView{Lot: *l})
		if l.Quantity <= 0 {
			continue
		}
		s.Stock += l.Quantity
		if l.ExpiryDate != nil && (s.NextExpiry == nil || l.ExpiryDate.Before(*s.NextExpiry)) {
			e := *l.ExpiryDate
			s.NextExpiry = &e
		}
	}
	s.PurchasePrice = WeightedPurchasePrice(views, fallbackPrice)
	return s
}

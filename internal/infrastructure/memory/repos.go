package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ladespensa/despensa-api/internal/domain"
	"github.com/ladespensa/despensa-api/internal/domain/entity"
	"github.com/ladespensa/despensa-api/internal/domain/inventory"
	"github.com/ladespensa/despensa-api/internal/domain/repository"
)

var (
	_ repository.UserRepository          = (*UserRepo)(nil)
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.LotRepository           = (*LotRepo)(nil)
	_ repository.TicketRepository        = (*TicketRepo)(nil)
	_ repository.SupplierRepository      = (*SupplierRepo)(nil)
	_ repository.PayableRepository       = (*PayableRepo)(nil)
	_ repository.StockMovementRepository = (*MovementRepo)(nil)
	_ repository.PriceChangeRepository   = (*PriceChangeRepo)(nil)
	_ repository.AnalyticsRepository     = (*AnalyticsRepo)(nil)
)

// UserRepo usuarios en memoria.
type UserRepo struct{ v view }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	return r.v.do(func(st *state) error {
		for _, x := range st.users {
			if strings.EqualFold(x.Email, u.Email) {
				return domain.ErrEmailAlreadyExists
			}
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.v.do(func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.v.do(func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}

// ProductRepo productos en memoria. El código de barras es único.
type ProductRepo struct{ v view }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.v.do(func(st *state) error {
		if barcodeTaken(st, p.Barcode, p.ID) {
			return domain.ErrDuplicate
		}
		st.products[p.ID] = cloneProduct(*p)
		return nil
	})
}

func barcodeTaken(st *state, barcode, exceptID string) bool {
	for id, x := range st.products {
		if id != exceptID && x.Barcode == barcode {
			return true
		}
	}
	return false
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.do(func(st *state) error {
		if p, ok := st.products[id]; ok {
			c := cloneProduct(p)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetByBarcode(_ context.Context, barcode string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.do(func(st *state) error {
		for _, p := range st.products {
			if p.Barcode == barcode {
				c := cloneProduct(p)
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

// GetForUpdate en memoria equivale a GetByID: la transacción ya tiene el almacén bloqueado.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.products[p.ID]; !ok {
			return domain.ErrNotFound
		}
		if barcodeTaken(st, p.Barcode, p.ID) {
			return domain.ErrDuplicate
		}
		st.products[p.ID] = cloneProduct(*p)
		return nil
	})
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.products, id)
		for lid, l := range st.lots {
			if l.ProductID == id {
				delete(st.lots, lid)
			}
		}
		return nil
	})
}

func (r *ProductRepo) ListAll(_ context.Context, includeInactive bool) ([]*entity.Product, error) {
	out := []*entity.Product{}
	err := r.v.do(func(st *state) error {
		for _, p := range st.products {
			if !includeInactive && !p.Active {
				continue
			}
			c := cloneProduct(p)
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *ProductRepo) Categories(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	out := []string{}
	err := r.v.do(func(st *state) error {
		for _, p := range st.products {
			if p.Category != "" && !seen[p.Category] {
				seen[p.Category] = true
				out = append(out, p.Category)
			}
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

// LotRepo lotes en memoria; los listados salen en orden FEFO.
type LotRepo struct{ v view }

func (r *LotRepo) Create(_ context.Context, l *entity.Lot) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.products[l.ProductID]; !ok {
			return domain.ErrNotFound
		}
		if l.Quantity < 0 {
			return domain.ErrInvalidInput
		}
		st.lots[l.ID] = cloneLot(*l)
		return nil
	})
}

func (r *LotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	var out *entity.Lot
	err := r.v.do(func(st *state) error {
		if l, ok := st.lots[id]; ok {
			c := cloneLot(l)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *LotRepo) Update(_ context.Context, l *entity.Lot) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.lots[l.ID]; !ok {
			return domain.ErrNotFound
		}
		if l.Quantity < 0 {
			return domain.ErrInvalidInput
		}
		st.lots[l.ID] = cloneLot(*l)
		return nil
	})
}

func (r *LotRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Lot, error) {
	return r.list(func(l entity.Lot) bool { return l.ProductID == productID })
}

func (r *LotRepo) ListByProductForUpdate(ctx context.Context, productID string) ([]*entity.Lot, error) {
	return r.ListByProduct(ctx, productID)
}

func (r *LotRepo) ListExpiringBefore(_ context.Context, limit time.Time) ([]*entity.Lot, error) {
	return r.list(func(l entity.Lot) bool {
		return l.Quantity > 0 && l.ExpiryDate != nil && l.ExpiryDate.Before(limit)
	})
}

func (r *LotRepo) list(keep func(entity.Lot) bool) ([]*entity.Lot, error) {
	out := []*entity.Lot{}
	err := r.v.do(func(st *state) error {
		for _, l := range st.lots {
			if keep(l) {
				c := cloneLot(l)
				out = append(out, &c)
			}
		}
		return nil
	})
	inventory.SortFEFO(out)
	return out, err
}

// TicketRepo tickets en memoria con correlativo propio.
type TicketRepo struct{ v view }

func (r *TicketRepo) Create(_ context.Context, t *entity.Ticket) error {
	return r.v.do(func(st *state) error {
		st.ticketSeq++
		t.Number = st.ticketSeq
		st.tickets[t.ID] = cloneTicket(*t)
		return nil
	})
}

func (r *TicketRepo) GetByID(_ context.Context, id string) (*entity.Ticket, error) {
	var out *entity.Ticket
	err := r.v.do(func(st *state) error {
		if t, ok := st.tickets[id]; ok {
			c := cloneTicket(t)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *TicketRepo) GetForUpdate(ctx context.Context, id string) (*entity.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r *TicketRepo) Update(_ context.Context, t *entity.Ticket) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.tickets[t.ID]; !ok {
			return domain.ErrNotFound
		}
		st.tickets[t.ID] = cloneTicket(*t)
		return nil
	})
}

func (r *TicketRepo) List(_ context.Context, f repository.TicketFilter) ([]*entity.Ticket, error) {
	out := []*entity.Ticket{}
	err := r.v.do(func(st *state) error {
		for _, t := range st.tickets {
			if f.From != nil && t.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && t.CreatedAt.After(*f.To) {
				continue
			}
			c := cloneTicket(t)
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, err
}

// SupplierRepo proveedores en memoria.
type SupplierRepo struct{ v view }

func (r *SupplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	return r.v.do(func(st *state) error {
		st.suppliers[s.ID] = cloneSupplier(*s)
		return nil
	})
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.v.do(func(st *state) error {
		if s, ok := st.suppliers[id]; ok {
			c := cloneSupplier(s)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *SupplierRepo) Update(_ context.Context, s *entity.Supplier) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.suppliers[s.ID]; !ok {
			return domain.ErrNotFound
		}
		st.suppliers[s.ID] = cloneSupplier(*s)
		return nil
	})
}

func (r *SupplierRepo) Delete(_ context.Context, id string) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.suppliers[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.suppliers, id)
		return nil
	})
}

func (r *SupplierRepo) ListAll(_ context.Context) ([]*entity.Supplier, error) {
	out := []*entity.Supplier{}
	err := r.v.do(func(st *state) error {
		for _, s := range st.suppliers {
			c := cloneSupplier(s)
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

// PayableRepo cuentas por pagar en memoria; aplica la unicidad (proveedor, categoría, mes).
type PayableRepo struct{ v view }

func payableClash(st *state, p *entity.Payable) bool {
	if !p.Active {
		return false
	}
	for id, x := range st.payables {
		if id != p.ID && x.Active &&
			strings.EqualFold(x.Provider, p.Provider) &&
			strings.EqualFold(x.Category, p.Category) &&
			x.Month == p.Month {
			return true
		}
	}
	return false
}

func (r *PayableRepo) Create(_ context.Context, p *entity.Payable) error {
	return r.v.do(func(st *state) error {
		if payableClash(st, p) {
			return domain.ErrDuplicate
		}
		st.payables[p.ID] = clonePayable(*p)
		return nil
	})
}

func (r *PayableRepo) GetByID(_ context.Context, id string) (*entity.Payable, error) {
	var out *entity.Payable
	err := r.v.do(func(st *state) error {
		if p, ok := st.payables[id]; ok {
			c := clonePayable(p)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *PayableRepo) Update(_ context.Context, p *entity.Payable) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.payables[p.ID]; !ok {
			return domain.ErrNotFound
		}
		if payableClash(st, p) {
			return domain.ErrDuplicate
		}
		st.payables[p.ID] = clonePayable(*p)
		return nil
	})
}

func (r *PayableRepo) ListAll(_ context.Context, includeInactive bool) ([]*entity.Payable, error) {
	out := []*entity.Payable{}
	err := r.v.do(func(st *state) error {
		for _, p := range st.payables {
			if !includeInactive && !p.Active {
				continue
			}
			c := clonePayable(p)
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month > out[j].Month
		}
		return out[i].Provider < out[j].Provider
	})
	return out, err
}

// MovementRepo historial de stock en memoria.
type MovementRepo struct{ v view }

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.v.do(func(st *state) error {
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *MovementRepo) ListByProduct(_ context.Context, productID string, limit int) ([]*entity.StockMovement, error) {
	out := []*entity.StockMovement{}
	err := r.v.do(func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			if m := st.movements[i]; m.ProductID == productID {
				out = append(out, &m)
				if limit > 0 && len(out) == limit {
					break
				}
			}
		}
		return nil
	})
	return out, err
}

// PriceChangeRepo historial de precios en memoria (append-only).
type PriceChangeRepo struct{ v view }

func (r *PriceChangeRepo) Create(_ context.Context, c *entity.PriceChange) error {
	return r.v.do(func(st *state) error {
		st.prices = append(st.prices, *c)
		return nil
	})
}

func (r *PriceChangeRepo) ListByProduct(_ context.Context, productID string, limit int) ([]*entity.PriceChange, error) {
	out := []*entity.PriceChange{}
	err := r.v.do(func(st *state) error {
		for i := len(st.prices) - 1; i >= 0; i-- {
			if c := st.prices[i]; c.ProductID == productID {
				out = append(out, &c)
				if limit > 0 && len(out) == limit {
					break
				}
			}
		}
		return nil
	})
	return out, err
}

// AnalyticsRepo agregados calculados recorriendo las colecciones.
type AnalyticsRepo struct{ v view }

func (r *AnalyticsRepo) SalesTotals(_ context.Context, from, to time.Time) (decimal.Decimal, int, error) {
	total := decimal.Zero
	count := 0
	err := r.v.do(func(st *state) error {
		for _, t := range st.tickets {
			if t.Status != entity.TicketActive || t.CreatedAt.Before(from) || t.CreatedAt.After(to) {
				continue
			}
			total = total.Add(t.Total)
			count++
		}
		return nil
	})
	return total, count, err
}

func (r *AnalyticsRepo) TopProducts(_ context.Context, from, to time.Time, limit int) ([]repository.TopProductResult, error) {
	byID := map[string]*repository.TopProductResult{}
	err := r.v.do(func(st *state) error {
		for _, t := range st.tickets {
			if t.Status != entity.TicketActive || t.CreatedAt.Before(from) || t.CreatedAt.After(to) {
				continue
			}
			for _, it := range t.Items {
				res, ok := byID[it.ProductID]
				if !ok {
					res = &repository.TopProductResult{ProductID: it.ProductID, Name: it.Name}
					byID[it.ProductID] = res
				}
				res.Units += it.Quantity
				res.Revenue = res.Revenue.Add(it.Subtotal)
			}
		}
		return nil
	})
	out := make([]repository.TopProductResult, 0, len(byID))
	for _, v := range byID {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].ProductID < out[j].ProductID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r *AnalyticsRepo) InventoryValue(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.v.do(func(st *state) error {
		for _, l := range st.lots {
			p, ok := st.products[l.ProductID]
			if !ok || !p.Active || l.Quantity <= 0 {
				continue
			}
			total = total.Add(l.PurchasePrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		return nil
	})
	return total, err
}

func (r *AnalyticsRepo) PendingPayables(_ context.Context) (decimal.Decimal, int, error) {
	total := decimal.Zero
	count := 0
	err := r.v.do(func(st *state) error {
		for _, p := range st.payables {
			if p.Active && p.Status == entity.PayablePending {
				total = total.Add(p.Amount)
				count++
			}
		}
		return nil
	})
	return total, count, err
}

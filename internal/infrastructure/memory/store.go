// Package memory implementa los puertos de persistencia en memoria. Se usa en desarrollo
// (STORAGE_DRIVER=memory) y como doble de prueba de los casos de uso.
package memory

import (
	"context"
	"sync"

	"github.com/ladespensa/despensa-api/internal/application/ports"
	"github.com/ladespensa/despensa-api/internal/domain/entity"
)

// Store guarda todas las colecciones. Las transacciones se serializan con mu y trabajan
// sobre una copia del estado que solo se publica si fn no devuelve error.
type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	users     map[string]entity.User
	products  map[string]entity.Product
	lots      map[string]entity.Lot
	tickets   map[string]entity.Ticket
	suppliers map[string]entity.Supplier
	payables  map[string]entity.Payable
	movements []entity.StockMovement
	prices    []entity.PriceChange
	ticketSeq int64
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{state: newState()}
}

func newState() *state {
	return &state{
		users:     map[string]entity.User{},
		products:  map[string]entity.Product{},
		lots:      map[string]entity.Lot{},
		tickets:   map[string]entity.Ticket{},
		suppliers: map[string]entity.Supplier{},
		payables:  map[string]entity.Payable{},
	}
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.products {
		c.products[k] = cloneProduct(v)
	}
	for k, v := range st.lots {
		c.lots[k] = cloneLot(v)
	}
	for k, v := range st.tickets {
		c.tickets[k] = cloneTicket(v)
	}
	for k, v := range st.suppliers {
		c.suppliers[k] = cloneSupplier(v)
	}
	for k, v := range st.payables {
		c.payables[k] = clonePayable(v)
	}
	c.movements = append(c.movements, st.movements...)
	c.prices = append(c.prices, st.prices...)
	c.ticketSeq = st.ticketSeq
	return c
}

// view da acceso al estado: dentro de una transacción usa la copia sin bloquear;
// fuera de ella bloquea el almacén durante la operación.
type view struct {
	s  *Store
	tx *state
}

func (v view) do(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn(v.s.state)
}

func (s *Store) Users() *UserRepo               { return &UserRepo{view{s: s}} }
func (s *Store) Products() *ProductRepo         { return &ProductRepo{view{s: s}} }
func (s *Store) Lots() *LotRepo                 { return &LotRepo{view{s: s}} }
func (s *Store) Tickets() *TicketRepo           { return &TicketRepo{view{s: s}} }
func (s *Store) Suppliers() *SupplierRepo       { return &SupplierRepo{view{s: s}} }
func (s *Store) Payables() *PayableRepo         { return &PayableRepo{view{s: s}} }
func (s *Store) Movements() *MovementRepo       { return &MovementRepo{view{s: s}} }
func (s *Store) PriceChanges() *PriceChangeRepo { return &PriceChangeRepo{view{s: s}} }
func (s *Store) Analytics() *AnalyticsRepo      { return &AnalyticsRepo{view{s: s}} }
func (s *Store) TxRunner() *TxRunner            { return &TxRunner{s: s} }

// TxRunner implementa ports.TxRunner sobre el almacén.
type TxRunner struct {
	s *Store
}

var _ ports.TxRunner = (*TxRunner)(nil)

// Run ejecuta fn sobre una copia del estado; si fn falla la copia se descarta.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tx := r.s.state.clone()
	v := view{s: r.s, tx: tx}
	repos := ports.TxRepos{
		Products:     &ProductRepo{v},
		Lots:         &LotRepo{v},
		Tickets:      &TicketRepo{v},
		Movements:    &MovementRepo{v},
		PriceChanges: &PriceChangeRepo{v},
	}
	if err := fn(repos); err != nil {
		return err
	}
	r.s.state = tx
	return nil
}

// Ping siempre responde; existe para el health check.
func (s *Store) Ping(context.Context) error { return nil }

func cloneProduct(p entity.Product) entity.Product {
	if p.ExpiryDate != nil {
		d := *p.ExpiryDate
		p.ExpiryDate = &d
	}
	if p.Deactivation != nil {
		d := *p.Deactivation
		p.Deactivation = &d
	}
	return p
}

func cloneLot(l entity.Lot) entity.Lot {
	if l.ExpiryDate != nil {
		d := *l.ExpiryDate
		l.ExpiryDate = &d
	}
	return l
}

func cloneTicket(t entity.Ticket) entity.Ticket {
	items := make([]entity.TicketItem, len(t.Items))
	for i, it := range t.Items {
		it.Allocations = append([]entity.LotAllocation(nil), it.Allocations...)
		items[i] = it
	}
	t.Items = items
	if t.VoidedAt != nil {
		d := *t.VoidedAt
		t.VoidedAt = &d
	}
	return t
}

func cloneSupplier(s entity.Supplier) entity.Supplier {
	s.Categories = append([]string(nil), s.Categories...)
	s.ProductIDs = append([]string(nil), s.ProductIDs...)
	return s
}

func clonePayable(p entity.Payable) entity.Payable {
	if p.PaidAt != nil {
		d := *p.PaidAt
		p.PaidAt = &d
	}
	return p
}

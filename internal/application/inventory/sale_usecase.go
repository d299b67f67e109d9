package inventory

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ladespensa/despensa-api/internal/application/dto"
	"github.com/ladespensa/despensa-api/internal/application/ports"
	"github.com/ladespensa/despensa-api/internal/domain"
	"github.com/ladespensa/despensa-api/internal/domain/entity"
	"github.com/ladespensa/despensa-api/internal/domain/inventory"
	"github.com/ladespensa/despensa-api/internal/domain/listing"
	"github.com/ladespensa/despensa-api/internal/domain/repository"
)

// SaleUseCase registro de ventas, devoluciones parciales y anulaciones.
// Cada operación descuenta o repone stock lote por lote (FEFO) en una sola transacción.
type SaleUseCase struct {
	txRunner   ports.TxRunner
	ticketRepo repository.TicketRepository
	cache      ports.Cache
	now        func() time.Time
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(txRunner ports.TxRunner, ticketRepo repository.TicketRepository, cache ports.Cache) *SaleUseCase {
	if cache == nil {
		cache = ports.NoCache{}
	}
	return &SaleUseCase{txRunner: txRunner, ticketRepo: ticketRepo, cache: cache, now: time.Now}
}

// Create registra una venta. Por cada línea bloquea el producto y sus lotes, consume en orden
// FEFO (saltando vencidos salvo AllowExpired) y guarda el precio de venta vigente.
func (uc *SaleUseCase) Create(ctx context.Context, actor dto.Actor, in dto.CreateSaleRequest) (*dto.TicketResponse, error) {
	if len(in.Items) == 0 || !entity.ValidPaymentMethod(in.PaymentMethod) {
		return nil, domain.ErrInvalidInput
	}
	if in.PaymentMethod == entity.PaymentCredit && in.Debtor == "" {
		return nil, domain.ErrInvalidInput
	}
	lines, err := mergeLines(in.Items)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	ticket := &entity.Ticket{
		ID:            uuid.New().String(),
		PaymentMethod: in.PaymentMethod,
		Debtor:        in.Debtor,
		UserID:        actor.ID,
		UserName:      actor.Name,
		Status:        entity.TicketActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.PaymentMethod != entity.PaymentCredit {
		ticket.Debtor = ""
	}

	err = uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		ticket.Items = ticket.Items[:0]
		for _, line := range lines {
			item, err := consume(ctx, repos, line.productID, line.qty, ticket.ID, actor.ID, now, in.AllowExpired)
			if err != nil {
				return err
			}
			ticket.Items = append(ticket.Items, *item)
		}
		ticket.RecalculateTotals()
		return repos.Tickets.Create(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, uc.cache, ports.CacheSales, ports.CacheProducts)
	out := dto.FromTicket(ticket)
	return &out, nil
}

type saleLine struct {
	productID string
	qty       int
}

// mergeLines agrupa líneas repetidas del mismo producto y las ordena por id de producto
// para bloquear filas siempre en el mismo orden.
func mergeLines(items []dto.SaleItemRequest) ([]saleLine, error) {
	byID := make(map[string]int, len(items))
	for _, it := range items {
		if it.ProductID == "" || it.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
		byID[it.ProductID] += it.Quantity
	}
	out := make([]saleLine, 0, len(byID))
	for id, q := range byID {
		out = append(out, saleLine{productID: id, qty: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].productID < out[j].productID })
	return out, nil
}

// consume descuenta qty unidades del producto siguiendo el plan FEFO.
func consume(ctx context.Context, repos ports.TxRepos, productID string, qty int, ref, userID string, now time.Time, allowExpired bool) (*entity.TicketItem, error) {
	p, err := repos.Products.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if !p.Active {
		return nil, domain.ErrProductInactive
	}
	lots, err := repos.Lots.ListByProductForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	inventory.SortFEFO(lots)
	plan, err := inventory.PlanFEFO(lots, qty, now, allowExpired)
	if err != nil {
		return nil, err
	}

	item := &entity.TicketItem{
		ProductID: p.ID,
		Name:      p.Name,
		Barcode:   p.Barcode,
		Category:  p.Category,
		Quantity:  qty,
		UnitPrice: p.SalePrice,
	}
	stock := p.Stock
	for _, a := range plan {
		a.Lot.Quantity -= a.Quantity
		a.Lot.UpdatedAt = now
		if err := repos.Lots.Update(ctx, a.Lot); err != nil {
			return nil, err
		}
		stock -= a.Quantity
		if err := movement(ctx, repos, p.ID, a.Lot.ID, entity.MovementSale, -a.Quantity, stock, ref, userID, now); err != nil {
			return nil, err
		}
		item.Allocations = append(item.Allocations, entity.LotAllocation{LotID: a.Lot.ID, Quantity: a.Quantity})
	}
	if err := syncProduct(ctx, repos, p, now); err != nil {
		return nil, err
	}
	return item, nil
}

// restock devuelve qty unidades a los lotes de donde salieron, empezando por la última
// asignación. Devuelve las asignaciones restantes. Si el producto ya fue eliminado (junto
// con sus lotes) no hay stock que reponer y solo se descuentan las asignaciones.
func restock(ctx context.Context, repos ports.TxRepos, item *entity.TicketItem, qty int, kind, ref, userID string, now time.Time) ([]entity.LotAllocation, error) {
	p, err := repos.Products.GetForUpdate(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	allocs := append([]entity.LotAllocation(nil), item.Allocations...)
	var stock int
	if p != nil {
		stock = p.Stock
	}
	remaining := qty
	for i := len(allocs) - 1; i >= 0 && remaining > 0; i-- {
		a := &allocs[i]
		give := a.Quantity
		if give > remaining {
			give = remaining
		}
		if p != nil {
			lot, err := repos.Lots.GetByID(ctx, a.LotID)
			if err != nil {
				return nil, err
			}
			if lot == nil {
				return nil, domain.ErrConflict
			}
			lot.Quantity += give
			lot.UpdatedAt = now
			if err := repos.Lots.Update(ctx, lot); err != nil {
				return nil, err
			}
			stock += give
			if err := movement(ctx, repos, p.ID, lot.ID, kind, give, stock, ref, userID, now); err != nil {
				return nil, err
			}
		}
		a.Quantity -= give
		remaining -= give
	}
	if remaining > 0 {
		return nil, domain.ErrConflict
	}
	if p != nil {
		if err := syncProduct(ctx, repos, p, now); err != nil {
			return nil, err
		}
	}
	kept := allocs[:0]
	for _, a := range allocs {
		if a.Quantity > 0 {
			kept = append(kept, a)
		}
	}
	return kept, nil
}

// Return devolución parcial: reduce cantidades del ticket y repone stock en los lotes de origen.
// Si el ticket queda sin ítems pasa a anulado.
func (uc *SaleUseCase) Return(ctx context.Context, actor dto.Actor, ticketID string, in dto.ReturnRequest) (*dto.TicketResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	lines, err := mergeLines(toSaleItems(in.Items))
	if err != nil {
		return nil, err
	}
	now := uc.now()
	var ticket *entity.Ticket
	err = uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		t, err := repos.Tickets.GetForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if t.Status == entity.TicketVoided {
			return domain.ErrTicketVoided
		}
		for _, line := range lines {
			idx := itemIndex(t, line.productID)
			if idx < 0 || line.qty > t.Items[idx].Quantity {
				return domain.ErrInvalidInput
			}
			it := &t.Items[idx]
			rest, err := restock(ctx, repos, it, line.qty, entity.MovementReturn, t.ID, actor.ID, now)
			if err != nil {
				return err
			}
			it.Allocations = rest
			it.Quantity -= line.qty
		}
		kept := t.Items[:0]
		for _, it := range t.Items {
			if it.Quantity > 0 {
				kept = append(kept, it)
			}
		}
		t.Items = kept
		t.RecalculateTotals()
		t.UpdatedAt = now
		if len(t.Items) == 0 {
			markVoided(t, actor, now)
		}
		ticket = t
		return repos.Tickets.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, uc.cache, ports.CacheSales, ports.CacheProducts)
	out := dto.FromTicket(ticket)
	return &out, nil
}

// Void anula el ticket y repone todo su stock.
func (uc *SaleUseCase) Void(ctx context.Context, actor dto.Actor, ticketID string) (*dto.TicketResponse, error) {
	now := uc.now()
	var ticket *entity.Ticket
	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		t, err := repos.Tickets.GetForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if t.Status == entity.TicketVoided {
			return domain.ErrTicketVoided
		}
		sort.SliceStable(t.Items, func(i, j int) bool { return t.Items[i].ProductID < t.Items[j].ProductID })
		for i := range t.Items {
			it := &t.Items[i]
			if _, err := restock(ctx, repos, it, it.Quantity, entity.MovementVoid, t.ID, actor.ID, now); err != nil {
				return err
			}
		}
		markVoided(t, actor, now)
		ticket = t
		return repos.Tickets.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, uc.cache, ports.CacheSales, ports.CacheProducts)
	out := dto.FromTicket(ticket)
	return &out, nil
}

func markVoided(t *entity.Ticket, actor dto.Actor, now time.Time) {
	t.Status = entity.TicketVoided
	t.VoidedAt = &now
	t.VoidedBy = actor.ID
	t.UpdatedAt = now
}

func itemIndex(t *entity.Ticket, productID string) int {
	for i := range t.Items {
		if t.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func toSaleItems(in []dto.ReturnItemRequest) []dto.SaleItemRequest {
	out := make([]dto.SaleItemRequest, len(in))
	for i, it := range in {
		out[i] = dto.SaleItemRequest{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return out
}

// GetByID devuelve un ticket.
func (uc *SaleUseCase) GetByID(ctx context.Context, id string) (*dto.TicketResponse, error) {
	t, err := uc.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.FromTicket(t)
	return &out, nil
}

// TicketFilter filtros del historial además del pipeline de listado.
type TicketFilter struct {
	From          *time.Time
	To            *time.Time
	PaymentMethod string
}

// Tickets carga (vía caché) los tickets del rango y les aplica el filtro de método de pago
// y el pipeline de búsqueda y orden, sin paginar.
func (uc *SaleUseCase) Tickets(ctx context.Context, f TicketFilter, q listing.Query) ([]*entity.Ticket, error) {
	key := "tickets:" + timeKey(f.From) + ":" + timeKey(f.To)
	var all []*entity.Ticket
	err := uc.cache.FetchJSON(ctx, ports.CacheSales, key, &all, func(ctx context.Context) (any, error) {
		return uc.ticketRepo.List(ctx, repository.TicketFilter{From: f.From, To: f.To})
	})
	if err != nil {
		return nil, err
	}
	if f.PaymentMethod != "" {
		filtered := all[:0]
		for _, t := range all {
			if t.PaymentMethod == f.PaymentMethod {
				filtered = append(filtered, t)
			}
		}
		all = filtered
	}
	return listing.Apply(all, q, TicketSpec), nil
}

// List historial de ventas paginado.
func (uc *SaleUseCase) List(ctx context.Context, f TicketFilter, q listing.Query) (*dto.ListResponse[dto.TicketResponse], error) {
	tickets, err := uc.Tickets(ctx, f, q)
	if err != nil {
		return nil, err
	}
	page := listing.Paginate(tickets, q.Page, q.PageSize)
	items := make([]dto.TicketResponse, 0, len(page.Items))
	for _, t := range page.Items {
		items = append(items, dto.FromTicket(t))
	}
	return &dto.ListResponse[dto.TicketResponse]{Items: items, Meta: dto.NewPageMeta(page)}, nil
}

func timeKey(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return strconv.FormatInt(t.Unix(), 10)
}

// TicketSpec búsqueda por número, deudor o vendedor; estado activa|anulada.
var TicketSpec = listing.Spec[*entity.Ticket]{
	SearchFields: func(t *entity.Ticket) []string { return []string{dto.TicketLabel(t), t.Debtor, t.UserName} },
	StatusMatch:  func(t *entity.Ticket, s string) bool { return s == "todos" || t.Status == s },
	Sorters:      ticketSorters,
	DefaultSort:  "reciente",
}

var ticketSorters = map[string]func(a, b *entity.Ticket) bool{
	"reciente": func(a, b *entity.Ticket) bool { return a.CreatedAt.After(b.CreatedAt) },
	"antiguo":  func(a, b *entity.Ticket) bool { return a.CreatedAt.Before(b.CreatedAt) },
	"total":    func(a, b *entity.Ticket) bool { return a.Total.LessThan(b.Total) },
	"numero":   func(a, b *entity.Ticket) bool { return a.Number < b.Number },
}

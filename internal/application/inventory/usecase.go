// Package inventory contiene los casos de uso que mueven stock: lotes y ventas.
// Todas las mutaciones corren en una transacción con bloqueo de filas (SELECT FOR UPDATE).
package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ladespensa/despensa-api/internal/application/dto"
	"github.com/ladespensa/despensa-api/internal/application/ports"
	"github.com/ladespensa/despensa-api/internal/domain"
	"github.com/ladespensa/despensa-api/internal/domain/entity"
	"github.com/ladespensa/despensa-api/internal/domain/inventory"
	"github.com/ladespensa/despensa-api/internal/domain/rbac"
	"github.com/ladespensa/despensa-api/internal/domain/repository"
)

// LotUseCase alta, edición y consulta de lotes de un producto.
type LotUseCase struct {
	txRunner         ports.TxRunner
	productRepo      repository.ProductRepository
	lotRepo          repository.LotRepository
	cache            ports.Cache
	expiringSoonDays int
	now              func() time.Time
}

// NewLotUseCase construye el caso de uso.
func NewLotUseCase(
	txRunner ports.TxRunner,
	productRepo repository.ProductRepository,
	lotRepo repository.LotRepository,
	cache ports.Cache,
	expiringSoonDays int,
) *LotUseCase {
	if cache == nil {
		cache = ports.NoCache{}
	}
	return &LotUseCase{
		txRunner:         txRunner,
		productRepo:      productRepo,
		lotRepo:          lotRepo,
		cache:            cache,
		expiringSoonDays: expiringSoonDays,
		now:              time.Now,
	}
}

// List devuelve el producto y sus lotes en orden FEFO, anotados con estado de vencimiento,
// margen y el próximo a consumir. days reemplaza el umbral configurado si no es nil.
func (uc *LotUseCase) List(ctx context.Context, productID string, days *int) (*dto.ProductLotsResponse, error) {
	threshold := uc.threshold(days)
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	lots, err := uc.lotRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	inventory.SortFEFO(lots)
	today := uc.now()
	views := inventory.AnnotateLots(lots, today, threshold)
	out := &dto.ProductLotsResponse{
		Product: dto.FromProduct(product, today, threshold),
		Lots:    make([]dto.LotResponse, 0, len(views)),
	}
	for _, v := range views {
		out.Lots = append(out.Lots, dto.FromLotView(v))
	}
	return out, nil
}

// Add registra un lote nuevo: suma stock, recalcula costo ponderado y vencimiento del
// producto y, si el actor puede editar precios, actualiza su precio de venta al del lote.
func (uc *LotUseCase) Add(ctx context.Context, actor dto.Actor, productID string, in dto.CreateLotRequest) (*dto.LotResponse, error) {
	if in.Quantity <= 0 || in.PurchasePrice.IsNegative() || !in.SalePrice.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	number := in.Number
	if number == "" {
		number = NewLotNumber(now)
	}
	lot := &entity.Lot{
		ID:              uuid.New().String(),
		ProductID:       productID,
		Number:          number,
		Quantity:        in.Quantity,
		InitialQuantity: in.Quantity,
		PurchasePrice:   in.PurchasePrice,
		SalePrice:       in.SalePrice,
		ExpiryDate:      in.ExpiryDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		p, err := repos.Products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if err := repos.Lots.Create(ctx, lot); err != nil {
			return err
		}
		before := *p
		if rbac.Can(actor.Role, rbac.ProductsEditPrice) {
			p.SalePrice = lot.SalePrice
		}
		if err := syncProduct(ctx, repos, p, now); err != nil {
			return err
		}
		if err := recordPriceChange(ctx, repos, &before, p, ReasonLot, actor.ID, now); err != nil {
			return err
		}
		return movement(ctx, repos, p.ID, lot.ID, entity.MovementEntry, lot.Quantity, p.Stock, lot.ID, actor.ID, now)
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, uc.cache, ports.CacheProducts)
	v := inventory.AnnotateLots([]*entity.Lot{lot}, now, uc.expiringSoonDays)[0]
	v.NextToConsume, v.NextToSell = false, false
	r := dto.FromLotView(v)
	return &r, nil
}

// Update edita un lote. Un cambio de cantidad queda como movimiento de ajuste.
func (uc *LotUseCase) Update(ctx context.Context, actor dto.Actor, productID, lotID string, in dto.UpdateLotRequest) (*dto.LotResponse, error) {
	now := uc.now()
	var lot *entity.Lot
	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		p, err := repos.Products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		lot, err = repos.Lots.GetByID(ctx, lotID)
		if err != nil {
			return err
		}
		if lot == nil || lot.ProductID != productID {
			return domain.ErrNotFound
		}
		before := *p
		delta := 0
		if in.Number != nil {
			lot.Number = *in.Number
		}
		if in.Quantity != nil {
			if *in.Quantity < 0 {
				return domain.ErrInvalidInput
			}
			delta = *in.Quantity - lot.Quantity
			lot.Quantity = *in.Quantity
			if lot.Quantity > lot.InitialQuantity {
				lot.InitialQuantity = lot.Quantity
			}
		}
		if in.PurchasePrice != nil {
			lot.PurchasePrice = *in.PurchasePrice
		}
		if in.SalePrice != nil {
			lot.SalePrice = *in.SalePrice
		}
		switch {
		case in.ClearExpiry:
			lot.ExpiryDate = nil
		case in.ExpiryDate != nil:
			lot.ExpiryDate = in.ExpiryDate
		}
		lot.UpdatedAt = now
		if err := repos.Lots.Update(ctx, lot); err != nil {
			return err
		}
		if err := syncProduct(ctx, repos, p, now); err != nil {
			return err
		}
		if err := recordPriceChange(ctx, repos, &before, p, ReasonLot, actor.ID, now); err != nil {
			return err
		}
		if delta == 0 {
			return nil
		}
		return movement(ctx, repos, p.ID, lot.ID, entity.MovementAdjust, delta, p.Stock, lot.ID, actor.ID, now)
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, uc.cache, ports.CacheProducts)
	v := inventory.AnnotateLots([]*entity.Lot{lot}, now, uc.expiringSoonDays)[0]
	v.NextToConsume, v.NextToSell = false, false
	r := dto.FromLotView(v)
	return &r, nil
}

// Expiring lotes con existencias que vencen dentro del umbral (incluye vencidos), con el
// nombre del producto.
func (uc *LotUseCase) Expiring(ctx context.Context, days *int) ([]dto.ExpiringLotResponse, error) {
	threshold := uc.threshold(days)
	today := uc.now()
	limit := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location()).AddDate(0, 0, threshold+1)
	lots, err := uc.lotRepo.ListExpiringBefore(ctx, limit)
	if err != nil {
		return nil, err
	}
	inventory.SortFEFO(lots)
	names := make(map[string]string)
	out := make([]dto.ExpiringLotResponse, 0, len(lots))
	for _, v := range inventory.AnnotateLots(lots, today, threshold) {
		v.NextToConsume, v.NextToSell = false, false
		name, ok := names[v.ProductID]
		if !ok {
			p, err := uc.productRepo.GetByID(ctx, v.ProductID)
			if err != nil {
				return nil, err
			}
			if p != nil {
				name = p.Name
			}
			names[v.ProductID] = name
		}
		out = append(out, dto.ExpiringLotResponse{LotResponse: dto.FromLotView(v), ProductName: name})
	}
	return out, nil
}

func (uc *LotUseCase) threshold(days *int) int {
	if days != nil && *days >= 0 {
		return *days
	}
	return uc.expiringSoonDays
}

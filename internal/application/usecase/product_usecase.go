package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ladespensa/despensa-api/internal/application/dto"
	appinv "github.com/ladespensa/despensa-api/internal/application/inventory"
	"github.com/ladespensa/despensa-api/internal/application/ports"
	"github.com/ladespensa/despensa-api/internal/domain"
	"github.com/ladespensa/despensa-api/internal/domain/entity"
	"github.com/ladespensa/despensa-api/internal/domain/listing"
	"github.com/ladespensa/despensa-api/internal/domain/rbac"
	"github.com/ladespensa/despensa-api/internal/domain/repository"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// ProductUseCase casos de uso de productos. Stock, costo ponderado y vencimiento se derivan
// de los lotes; aquí solo se editan datos maestros y precios.
type ProductUseCase struct {
	txRunner         ports.TxRunner
	repo             repository.ProductRepository
	priceRepo        repository.PriceChangeRepository
	movementRepo     repository.StockMovementRepository
	storage          ports.FileStorage
	cache            ports.Cache
	expiringSoonDays int
	maxUploadBytes   int64
	now              func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	txRunner ports.TxRunner,
	repo repository.ProductRepository,
	priceRepo repository.PriceChangeRepository,
	movementRepo repository.StockMovementRepository,
	storage ports.FileStorage,
	cache ports.Cache,
	expiringSoonDays int,
	maxUploadBytes int64,
) *ProductUseCase {
	if cache == nil {
		cache = ports.NoCache{}
	}
	return &ProductUseCase{
		txRunner:         txRunner,
		repo:             repo,
		priceRepo:        priceRepo,
		movementRepo:     movementRepo,
		storage:          storage,
		cache:            cache,
		expiringSoonDays: expiringSoonDays,
		maxUploadBytes:   maxUploadBytes,
		now:              time.Now,
	}
}

// Create da de alta un producto. Si trae cantidad crea también su primer lote.
func (uc *ProductUseCase) Create(ctx context.Context, actor dto.Actor, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if !rbac.Can(actor.Role, rbac.ProductsCreate) {
		return nil, domain.ErrForbidden
	}
	in.Barcode = strings.TrimSpace(in.Barcode)
	if in.Barcode == "" || strings.TrimSpace(in.Name) == "" || in.Quantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.PurchasePrice.IsNegative() || !in.SalePrice.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetByBarcode(ctx, in.Barcode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := uc.now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(in.Name),
		Brand:         strings.TrimSpace(in.Brand),
		Category:      strings.TrimSpace(in.Category),
		Barcode:       in.Barcode,
		PurchasePrice: in.PurchasePrice,
		SalePrice:     in.SalePrice,
		ImageURL:      in.ImageURL,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err = uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		if err := repos.Products.Create(ctx, product); err != nil {
			return err
		}
		if in.Quantity == 0 {
			return nil
		}
		number := in.LotNumber
		if number == "" {
			number = appinv.NewLotNumber(now)
		}
		lot := &entity.Lot{
			ID:              uuid.New().String(),
			ProductID:       product.ID,
			Number:          number,
			Quantity:        in.Quantity,
			InitialQuantity: in.Quantity,
			PurchasePrice:   in.PurchasePrice,
			SalePrice:       in.SalePrice,
			ExpiryDate:      in.ExpiryDate,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		return appinv.RegisterInitialLot(ctx, repos, product, lot, actor.ID, now)
	})
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	return uc.response(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return uc.response(p), nil
}

// GetByBarcode busca por código de barras (lector en caja).
func (uc *ProductUseCase) GetByBarcode(ctx context.Context, code string) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByBarcode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return uc.response(p), nil
}

// Update edita datos maestros y precios. Cambiar precios requiere productos:editar_precio
// y deja una entrada en el historial.
func (uc *ProductUseCase) Update(ctx context.Context, actor dto.Actor, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if (in.PurchasePrice != nil || in.SalePrice != nil) && !rbac.Can(actor.Role, rbac.ProductsEditPrice) {
		return nil, domain.ErrForbidden
	}
	if in.Barcode != nil {
		code := strings.TrimSpace(*in.Barcode)
		if code == "" {
			return nil, domain.ErrInvalidInput
		}
		other, err := uc.repo.GetByBarcode(ctx, code)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, domain.ErrDuplicate
		}
		in.Barcode = &code
	}

	now := uc.now()
	var product *entity.Product
	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		p, err := repos.Products.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		before := *p
		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.Brand != nil {
			p.Brand = strings.TrimSpace(*in.Brand)
		}
		if in.Category != nil {
			p.Category = strings.TrimSpace(*in.Category)
		}
		if in.Barcode != nil {
			p.Barcode = *in.Barcode
		}
		if in.ImageURL != nil {
			p.ImageURL = *in.ImageURL
		}
		if in.PurchasePrice != nil {
			if in.PurchasePrice.IsNegative() {
				return domain.ErrInvalidInput
			}
			p.PurchasePrice = *in.PurchasePrice
		}
		if in.SalePrice != nil {
			if !in.SalePrice.IsPositive() {
				return domain.ErrInvalidInput
			}
			p.SalePrice = *in.SalePrice
		}
		p.UpdatedAt = now
		if err := repos.Products.Update(ctx, p); err != nil {
			return err
		}
		product = p
		return appinv.RecordPriceChange(ctx, repos, &before, p, actor.ID, now)
	})
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	return uc.response(product), nil
}

// Deactivate desactiva un producto guardando motivo, comentario, usuario y fecha.
// Los productos desactivados no aparecen en los listados por defecto ni pueden venderse.
func (uc *ProductUseCase) Deactivate(ctx context.Context, actor dto.Actor, id string, in dto.DeactivateProductRequest) (*dto.ProductResponse, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.mutateLocked(ctx, id, func(p *entity.Product, now time.Time) error {
		if !p.Active {
			return domain.ErrConflict
		}
		p.Active = false
		p.Deactivation = &entity.Deactivation{
			Reason:   in.Reason,
			Comment:  in.Comment,
			UserID:   actor.ID,
			UserName: actor.Name,
			At:       now,
		}
		return nil
	})
}

// Activate reactiva un producto.
func (uc *ProductUseCase) Activate(ctx context.Context, id string) (*dto.ProductResponse, error) {
	return uc.mutateLocked(ctx, id, func(p *entity.Product, _ time.Time) error {
		p.Active = true
		p.Deactivation = nil
		return nil
	})
}

// mutateLocked relee el producto con la fila bloqueada, aplica fn y lo guarda en la misma
// transacción, de modo que una venta o un lote concurrente no pisa el stock.
func (uc *ProductUseCase) mutateLocked(ctx context.Context, id string, fn func(p *entity.Product, now time.Time) error) (*dto.ProductResponse, error) {
	var product *entity.Product
	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		p, err := repos.Products.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		now := uc.now()
		if err := fn(p, now); err != nil {
			return err
		}
		p.UpdatedAt = now
		if err := repos.Products.Update(ctx, p); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	return uc.response(product), nil
}

// Delete elimina un producto y sus lotes. Los tickets conservan la copia de nombre y código.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	if p.ImageURL != "" && uc.storage != nil {
		_ = uc.storage.Delete(ctx, p.ImageURL)
	}
	uc.invalidate(ctx)
	return nil
}

// Categories categorías distintas en uso.
func (uc *ProductUseCase) Categories(ctx context.Context) ([]string, error) {
	return uc.repo.Categories(ctx)
}

// Products carga (vía caché) el catálogo y aplica disponibilidad, filtros y orden sin paginar.
// Sin estado explícito se excluyen los desactivados.
func (uc *ProductUseCase) Products(ctx context.Context, q dto.ProductListQuery) ([]*entity.Product, error) {
	var all []*entity.Product
	err := uc.cache.FetchJSON(ctx, ports.CacheProducts, "catalogo", &all, func(ctx context.Context) (any, error) {
		return uc.repo.ListAll(ctx, true)
	})
	if err != nil {
		return nil, err
	}
	lq := q.ToListing()
	if lq.Status == "" {
		lq.Status = statusActive
	}
	threshold := uc.threshold(q.Dias)
	all = availabilityFilter(all, q.Disponibilidad, uc.now(), threshold)
	return listing.Apply(all, lq, ProductSpec), nil
}

// List listado paginado de productos.
func (uc *ProductUseCase) List(ctx context.Context, q dto.ProductListQuery) (*dto.ListResponse[dto.ProductResponse], error) {
	products, err := uc.Products(ctx, q)
	if err != nil {
		return nil, err
	}
	page := listing.Paginate(products, q.Page, q.Limit)
	today := uc.now()
	threshold := uc.threshold(q.Dias)
	items := make([]dto.ProductResponse, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, dto.FromProduct(p, today, threshold))
	}
	return &dto.ListResponse[dto.ProductResponse]{Items: items, Meta: dto.NewPageMeta(page)}, nil
}

// PriceHistory historial de precios, más reciente primero.
func (uc *ProductUseCase) PriceHistory(ctx context.Context, id string, limit int) ([]dto.PriceChangeResponse, error) {
	if err := uc.ensureExists(ctx, id); err != nil {
		return nil, err
	}
	changes, err := uc.priceRepo.ListByProduct(ctx, id, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	out := make([]dto.PriceChangeResponse, 0, len(changes))
	for _, c := range changes {
		out = append(out, dto.PriceChangeResponse{
			ID:                  c.ID,
			PurchasePriceBefore: c.PurchasePriceBefore,
			PurchasePriceAfter:  c.PurchasePriceAfter,
			SalePriceBefore:     c.SalePriceBefore,
			SalePriceAfter:      c.SalePriceAfter,
			Reason:              c.Reason,
			UserID:              c.UserID,
			CreatedAt:           c.CreatedAt,
		})
	}
	return out, nil
}

// StockHistory movimientos de stock, más reciente primero.
func (uc *ProductUseCase) StockHistory(ctx context.Context, id string, limit int) ([]dto.StockMovementResponse, error) {
	if err := uc.ensureExists(ctx, id); err != nil {
		return nil, err
	}
	movs, err := uc.movementRepo.ListByProduct(ctx, id, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockMovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, dto.StockMovementResponse{
			ID:         m.ID,
			LotID:      m.LotID,
			Type:       m.Type,
			Quantity:   m.Quantity,
			StockAfter: m.StockAfter,
			Reference:  m.Reference,
			UserID:     m.UserID,
			CreatedAt:  m.CreatedAt,
		})
	}
	return out, nil
}

func (uc *ProductUseCase) ensureExists(ctx context.Context, id string) error {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}

func (uc *ProductUseCase) threshold(days *int) int {
	if days != nil && *days >= 0 {
		return *days
	}
	return uc.expiringSoonDays
}

func (uc *ProductUseCase) response(p *entity.Product) *dto.ProductResponse {
	r := dto.FromProduct(p, uc.now(), uc.expiringSoonDays)
	return &r
}

func (uc *ProductUseCase) invalidate(ctx context.Context) {
	_ = uc.cache.Bump(ctx, ports.CacheProducts)
}

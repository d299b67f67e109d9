package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ladespensa/despensa-api/internal/application/dto"
	"github.com/ladespensa/despensa-api/internal/application/ports"
	"github.com/ladespensa/despensa-api/internal/domain"
	"github.com/ladespensa/despensa-api/internal/domain/entity"
	"github.com/ladespensa/despensa-api/internal/domain/listing"
	"github.com/ladespensa/despensa-api/internal/domain/repository"
)

// SupplierUseCase CRUD de proveedores.
type SupplierUseCase struct {
	repo        repository.SupplierRepository
	productRepo repository.ProductRepository
	cache       ports.Cache
	now         func() time.Time
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository, productRepo repository.ProductRepository, cache ports.Cache) *SupplierUseCase {
	if cache == nil {
		cache = ports.NoCache{}
	}
	return &SupplierUseCase{repo: repo, productRepo: productRepo, cache: cache, now: time.Now}
}

// Create registra un proveedor. Los productos asociados deben existir.
func (uc *SupplierUseCase) Create(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	productIDs, err := uc.checkProducts(ctx, in.ProductIDs)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	s := &entity.Supplier{
		ID:         uuid.New().String(),
		Name:       strings.TrimSpace(in.Name),
		Contact:    in.Contact,
		Phone:      in.Phone,
		Email:      in.Email,
		Address:    in.Address,
		Categories: cleanList(in.Categories),
		ProductIDs: productIDs,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	out := dto.FromSupplier(s)
	return &out, nil
}

// GetByID obtiene un proveedor.
func (uc *SupplierUseCase) GetByID(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	s, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromSupplier(s)
	return &out, nil
}

// Update edición parcial.
func (uc *SupplierUseCase) Update(ctx context.Context, id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	s, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		s.Name = name
	}
	if in.Contact != nil {
		s.Contact = *in.Contact
	}
	if in.Phone != nil {
		s.Phone = *in.Phone
	}
	if in.Email != nil {
		s.Email = *in.Email
	}
	if in.Address != nil {
		s.Address = *in.Address
	}
	if in.Categories != nil {
		s.Categories = cleanList(*in.Categories)
	}
	if in.ProductIDs != nil {
		ids, err := uc.checkProducts(ctx, *in.ProductIDs)
		if err != nil {
			return nil, err
		}
		s.ProductIDs = ids
	}
	return uc.save(ctx, s)
}

// SetActive activa o desactiva un proveedor (PATCH /:id/estado).
func (uc *SupplierUseCase) SetActive(ctx context.Context, id string, active bool) (*dto.SupplierResponse, error) {
	s, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Active = active
	return uc.save(ctx, s)
}

// Delete elimina un proveedor.
func (uc *SupplierUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.invalidate(ctx)
	return nil
}

// Suppliers catálogo filtrado y ordenado, sin paginar.
func (uc *SupplierUseCase) Suppliers(ctx context.Context, q listing.Query) ([]*entity.Supplier, error) {
	var all []*entity.Supplier
	err := uc.cache.FetchJSON(ctx, ports.CacheSuppliers, "todos", &all, func(ctx context.Context) (any, error) {
		return uc.repo.ListAll(ctx)
	})
	if err != nil {
		return nil, err
	}
	all = supplierCategoryFilter(all, q.Category)
	q.Category = ""
	return listing.Apply(all, q, SupplierSpec), nil
}

// List listado paginado.
func (uc *SupplierUseCase) List(ctx context.Context, q listing.Query) (*dto.ListResponse[dto.SupplierResponse], error) {
	suppliers, err := uc.Suppliers(ctx, q)
	if err != nil {
		return nil, err
	}
	page := listing.Paginate(suppliers, q.Page, q.PageSize)
	items := make([]dto.SupplierResponse, 0, len(page.Items))
	for _, s := range page.Items {
		items = append(items, dto.FromSupplier(s))
	}
	return &dto.ListResponse[dto.SupplierResponse]{Items: items, Meta: dto.NewPageMeta(page)}, nil
}

func (uc *SupplierUseCase) get(ctx context.Context, id string) (*entity.Supplier, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (uc *SupplierUseCase) save(ctx context.Context, s *entity.Supplier) (*dto.SupplierResponse, error) {
	s.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	out := dto.FromSupplier(s)
	return &out, nil
}

func (uc *SupplierUseCase) checkProducts(ctx context.Context, ids []string) ([]string, error) {
	ids = cleanList(ids)
	for _, id := range ids {
		p, err := uc.productRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.ErrInvalidInput
		}
	}
	return ids, nil
}

func (uc *SupplierUseCase) invalidate(ctx context.Context) {
	_ = uc.cache.Bump(ctx, ports.CacheSuppliers)
}

// cleanList recorta espacios, quita vacíos y duplicados conservando el orden.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

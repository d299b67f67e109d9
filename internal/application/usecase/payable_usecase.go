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

// PayableUseCase cuentas por pagar. Una cuenta activa es única por (proveedor, categoría, mes).
type PayableUseCase struct {
	repo  repository.PayableRepository
	cache ports.Cache
	now   func() time.Time
}

// NewPayableUseCase construye el caso de uso.
func NewPayableUseCase(repo repository.PayableRepository, cache ports.Cache) *PayableUseCase {
	if cache == nil {
		cache = ports.NoCache{}
	}
	return &PayableUseCase{repo: repo, cache: cache, now: time.Now}
}

// Create registra una cuenta pendiente.
func (uc *PayableUseCase) Create(ctx context.Context, in dto.CreatePayableRequest) (*dto.PayableResponse, error) {
	if !validMonth(in.Month) || !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	p := &entity.Payable{
		ID:                 uuid.New().String(),
		Provider:           strings.TrimSpace(in.Provider),
		VerificationNumber: strings.TrimSpace(in.VerificationNumber),
		Category:           strings.TrimSpace(in.Category),
		Month:              in.Month,
		Amount:             in.Amount,
		Status:             entity.PayablePending,
		Active:             true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if p.Provider == "" || p.Category == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	out := dto.FromPayable(p)
	return &out, nil
}

// GetByID obtiene una cuenta.
func (uc *PayableUseCase) GetByID(ctx context.Context, id string) (*dto.PayableResponse, error) {
	p, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.FromPayable(p)
	return &out, nil
}

// Update edición parcial.
func (uc *PayableUseCase) Update(ctx context.Context, id string, in dto.UpdatePayableRequest) (*dto.PayableResponse, error) {
	p, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Provider != nil {
		p.Provider = strings.TrimSpace(*in.Provider)
	}
	if in.VerificationNumber != nil {
		p.VerificationNumber = strings.TrimSpace(*in.VerificationNumber)
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.Month != nil {
		if !validMonth(*in.Month) {
			return nil, domain.ErrInvalidInput
		}
		p.Month = *in.Month
	}
	if in.Amount != nil {
		if !in.Amount.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
		p.Amount = *in.Amount
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	if p.Provider == "" || p.Category == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.save(ctx, p)
}

// MarkPaid marca la cuenta como pagada con la fecha actual.
func (uc *PayableUseCase) MarkPaid(ctx context.Context, id string) (*dto.PayableResponse, error) {
	p, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == entity.PayablePaid {
		return nil, domain.ErrConflict
	}
	now := uc.now()
	p.Status = entity.PayablePaid
	p.PaidAt = &now
	return uc.save(ctx, p)
}

// Delete baja lógica: la cuenta queda inactiva y libera su (proveedor, categoría, mes).
func (uc *PayableUseCase) Delete(ctx context.Context, id string) error {
	p, err := uc.get(ctx, id)
	if err != nil {
		return err
	}
	p.Active = false
	_, err = uc.save(ctx, p)
	return err
}

// Payables listado filtrado y ordenado, sin paginar. Sin estado explícito muestra las activas.
func (uc *PayableUseCase) Payables(ctx context.Context, q listing.Query) ([]*entity.Payable, error) {
	var all []*entity.Payable
	err := uc.cache.FetchJSON(ctx, ports.CachePayables, "todas", &all, func(ctx context.Context) (any, error) {
		return uc.repo.ListAll(ctx, true)
	})
	if err != nil {
		return nil, err
	}
	if q.Status == "" {
		q.Status = statusActive
	}
	return listing.Apply(all, q, PayableSpec), nil
}

// List listado paginado.
func (uc *PayableUseCase) List(ctx context.Context, q listing.Query) (*dto.ListResponse[dto.PayableResponse], error) {
	payables, err := uc.Payables(ctx, q)
	if err != nil {
		return nil, err
	}
	page := listing.Paginate(payables, q.Page, q.PageSize)
	items := make([]dto.PayableResponse, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, dto.FromPayable(p))
	}
	return &dto.ListResponse[dto.PayableResponse]{Items: items, Meta: dto.NewPageMeta(page)}, nil
}

func (uc *PayableUseCase) get(ctx context.Context, id string) (*entity.Payable, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (uc *PayableUseCase) save(ctx context.Context, p *entity.Payable) (*dto.PayableResponse, error) {
	p.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	out := dto.FromPayable(p)
	return &out, nil
}

func (uc *PayableUseCase) invalidate(ctx context.Context) {
	_ = uc.cache.Bump(ctx, ports.CachePayables)
}

func validMonth(m string) bool {
	_, err := time.Parse("2006-01", m)
	return err == nil
}

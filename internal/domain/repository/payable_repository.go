package repository

import (
	"context"

	"github.com/ladespensa/despensa-api/internal/domain/entity"
)

// PayableRepository persistencia de cuentas por pagar.
// Create y Update devuelven domain.ErrDuplicate si ya existe una cuenta activa
// con el mismo (proveedor, categoría, mes).
type PayableRepository interface {
	Create(ctx context.Context, payable *entity.Payable) error
	GetByID(ctx context.Context, id string) (*entity.Payable, error)
	Update(ctx context.Context, payable *entity.Payable) error
	ListAll(ctx context.Context, includeInactive bool) ([]*entity.Payable, error)
}

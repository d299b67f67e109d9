package repository

import (
	"context"

	"github.com/ladespensa/despensa-api/internal/domain/entity"
)

// SupplierRepository persistencia de proveedores.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	Update(ctx context.Context, supplier *entity.Supplier) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]*entity.Supplier, error)
}

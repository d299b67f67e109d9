package repository

import (
	"context"
	"time"

	"github.com/ladespensa/despensa-api/internal/domain/entity"
)

// LotRepository persistencia de lotes. Los listados vienen en orden FEFO:
// vencimiento ascendente (sin vencimiento al final) y luego fecha de creación.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	Update(ctx context.Context, lot *entity.Lot) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.Lot, error)
	// ListByProductForUpdate igual que ListByProduct pero bloquea las filas (SELECT FOR UPDATE).
	ListByProductForUpdate(ctx context.Context, productID string) ([]*entity.Lot, error)
	// ListExpiringBefore lotes con existencias que vencen antes de limit (incluye vencidos).
	ListExpiringBefore(ctx context.Context, limit time.Time) ([]*entity.Lot, error)
}

package repository

import (
	"context"

	"github.com/ladespensa/despensa-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetByBarcode devuelven (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto dentro de la transacción en curso.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
	// ListAll devuelve todos los productos; includeInactive=false excluye los desactivados.
	ListAll(ctx context.Context, includeInactive bool) ([]*entity.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// PriceChangeRepository historial append-only de precios.
type PriceChangeRepository interface {
	Create(ctx context.Context, change *entity.PriceChange) error
	ListByProduct(ctx context.Context, productID string, limit int) ([]*entity.PriceChange, error)
}

// StockMovementRepository historial de stock por producto.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByProduct(ctx context.Context, productID string, limit int) ([]*entity.StockMovement, error)
}

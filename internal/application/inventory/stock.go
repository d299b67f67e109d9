package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ladespensa/despensa-api/internal/application/ports"
	"github.com/ladespensa/despensa-api/internal/domain/entity"
	"github.com/ladespensa/despensa-api/internal/domain/inventory"
)

// Reglas de bloqueo: toda mutación de lotes bloquea primero la fila del producto
// (GetForUpdate) y luego sus lotes, siempre en orden de producto.

// syncProduct recalcula stock, costo ponderado y vencimiento más próximo a partir de los lotes.
// Las ventas también pasan por aquí pero no generan historial de precios.
func syncProduct(ctx context.Context, repos ports.TxRepos, p *entity.Product, now time.Time) error {
	lots, err := repos.Lots.ListByProduct(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("lotes de %s: %w", p.ID, err)
	}
	s := inventory.Summarize(lots, p.PurchasePrice)
	p.Stock = s.Stock
	p.PurchasePrice = s.PurchasePrice
	p.ExpiryDate = s.NextExpiry
	p.UpdatedAt = now
	return repos.Products.Update(ctx, p)
}

// Motivos del historial de precios.
const (
	ReasonManual = "manual"
	ReasonLot    = "lote"
)

// recordPriceChange agrega una entrada al historial si cambió algún precio.
func recordPriceChange(ctx context.Context, repos ports.TxRepos, before, after *entity.Product, reason, userID string, now time.Time) error {
	if before.PurchasePrice.Equal(after.PurchasePrice) && before.SalePrice.Equal(after.SalePrice) {
		return nil
	}
	return repos.PriceChanges.Create(ctx, &entity.PriceChange{
		ID:                  uuid.New().String(),
		ProductID:           after.ID,
		PurchasePriceBefore: before.PurchasePrice,
		PurchasePriceAfter:  after.PurchasePrice,
		SalePriceBefore:     before.SalePrice,
		SalePriceAfter:      after.SalePrice,
		Reason:              reason,
		UserID:              userID,
		CreatedAt:           now,
	})
}

// RecordPriceChange versión exportada para cambios manuales de precio.
func RecordPriceChange(ctx context.Context, repos ports.TxRepos, before, after *entity.Product, userID string, now time.Time) error {
	return recordPriceChange(ctx, repos, before, after, ReasonManual, userID, now)
}

// movement registra un movimiento de stock.
func movement(ctx context.Context, repos ports.TxRepos, productID, lotID, kind string, qty, stockAfter int, ref, userID string, now time.Time) error {
	return repos.Movements.Create(ctx, &entity.StockMovement{
		ID:         uuid.New().String(),
		ProductID:  productID,
		LotID:      lotID,
		Type:       kind,
		Quantity:   qty,
		StockAfter: stockAfter,
		Reference:  ref,
		UserID:     userID,
		CreatedAt:  now,
	})
}

// RegisterInitialLot crea el primer lote de un producto recién dado de alta (misma transacción).
func RegisterInitialLot(ctx context.Context, repos ports.TxRepos, p *entity.Product, lot *entity.Lot, userID string, now time.Time) error {
	if err := repos.Lots.Create(ctx, lot); err != nil {
		return err
	}
	if err := syncProduct(ctx, repos, p, now); err != nil {
		return err
	}
	return movement(ctx, repos, p.ID, lot.ID, entity.MovementEntry, lot.Quantity, p.Stock, lot.ID, userID, now)
}

// NewLotNumber genera un número de lote cuando el proveedor no trae uno.
func NewLotNumber(now time.Time) string {
	return fmt.Sprintf("L-%s-%s", now.Format("20060102"), uuid.New().String()[:6])
}

// invalidate incrementa la versión de los namespaces afectados. El adaptador de caché
// registra sus propios errores; una invalidación fallida no anula la operación.
func invalidate(ctx context.Context, cache ports.Cache, namespaces ...string) {
	for _, ns := range namespaces {
		_ = cache.Bump(ctx, ns)
	}
}

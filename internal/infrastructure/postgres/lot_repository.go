package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ladespensa/despensa-api/internal/domain"
	"github.com/ladespensa/despensa-api/internal/domain/entity"
	"github.com/ladespensa/despensa-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, product_id, number, quantity, initial_quantity, purchase_price, sale_price, expiry_date, created_at, updated_at`

// orden FEFO: vencimiento ascendente, sin vencimiento al final, luego antigüedad.
const fefoOrder = ` ORDER BY expiry_date ASC NULLS LAST, created_at ASC`

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// Create persiste un lote.
func (r *LotRepo) Create(ctx context.Context, l *entity.Lot) error {
	if l.Quantity < 0 {
		return domain.ErrInvalidInput
	}
	query := `INSERT INTO lots (` + lotColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.ProductID, l.Number, l.Quantity, l.InitialQuantity, l.PurchasePrice, l.SalePrice,
		l.ExpiryDate, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID.
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	l, err := scanLot(r.q.QueryRow(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return l, nil
}

// Update actualiza número, cantidades, precios y vencimiento.
func (r *LotRepo) Update(ctx context.Context, l *entity.Lot) error {
	if l.Quantity < 0 {
		return domain.ErrInvalidInput
	}
	query := `
		UPDATE lots SET number = $2, quantity = $3, initial_quantity = $4, purchase_price = $5, sale_price = $6,
			expiry_date = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		l.ID, l.Number, l.Quantity, l.InitialQuantity, l.PurchasePrice, l.SalePrice, l.ExpiryDate, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByProduct lotes del producto en orden FEFO.
func (r *LotRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Lot, error) {
	return r.list(ctx, `SELECT `+lotColumns+` FROM lots WHERE product_id = $1`+fefoOrder, productID)
}

// ListByProductForUpdate igual que ListByProduct bloqueando las filas. Requiere tx.
func (r *LotRepo) ListByProductForUpdate(ctx context.Context, productID string) ([]*entity.Lot, error) {
	return r.list(ctx, `SELECT `+lotColumns+` FROM lots WHERE product_id = $1`+fefoOrder+` FOR UPDATE`, productID)
}

// ListExpiringBefore lotes con existencias que vencen antes de limit.
func (r *LotRepo) ListExpiringBefore(ctx context.Context, limit time.Time) ([]*entity.Lot, error) {
	return r.list(ctx, `SELECT `+lotColumns+` FROM lots WHERE quantity > 0 AND expiry_date < $1`+fefoOrder, limit)
}

func (r *LotRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Lot, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Lot, 0)
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func scanLot(row scanner) (*entity.Lot, error) {
	var l entity.Lot
	err := row.Scan(&l.ID, &l.ProductID, &l.Number, &l.Quantity, &l.InitialQuantity, &l.PurchasePrice, &l.SalePrice,
		&l.ExpiryDate, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ladespensa/despensa-api/internal/domain"
	"github.com/ladespensa/despensa-api/internal/domain/entity"
	"github.com/ladespensa/despensa-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, name, brand, category, barcode, stock, purchase_price, sale_price, expiry_date, image_url, active,
	deactivation_reason, deactivation_comment, deactivated_by, deactivated_by_name, deactivated_at, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto. Código de barras repetido devuelve domain.ErrDuplicate.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query, productArgs(product)...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetByBarcode obtiene un producto por código de barras.
func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE barcode = $1`, barcode)
}

// GetForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE). Requiere tx.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProductRepo) getOne(ctx context.Context, query, arg string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update reemplaza todos los campos del producto.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, brand = $3, category = $4, barcode = $5, stock = $6, purchase_price = $7,
			sale_price = $8, expiry_date = $9, image_url = $10, active = $11, deactivation_reason = $12,
			deactivation_comment = $13, deactivated_by = $14, deactivated_by_name = $15, deactivated_at = $16,
			updated_at = $17
		WHERE id = $1`
	args := append(productArgs(product)[:16:16], product.UpdatedAt)
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un producto; lotes, movimientos e historial de precios caen en cascada.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListAll lista el catálogo completo ordenado por nombre.
func (r *ProductRepo) ListAll(ctx context.Context, includeInactive bool) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE active OR $1 ORDER BY name`
	rows, err := r.q.Query(ctx, query, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Categories categorías distintas no vacías, en orden alfabético.
func (r *ProductRepo) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func productArgs(p *entity.Product) []any {
	var reason, comment, by, byName *string
	var at any
	if d := p.Deactivation; d != nil {
		reason, comment, by, byName = &d.Reason, &d.Comment, &d.UserID, &d.UserName
		at = d.At
	}
	return []any{
		p.ID, p.Name, p.Brand, p.Category, p.Barcode, p.Stock, p.PurchasePrice, p.SalePrice, p.ExpiryDate,
		p.ImageURL, p.Active, reason, comment, by, byName, at, p.CreatedAt, p.UpdatedAt,
	}
}

func scanProduct(row scanner) (*entity.Product, error) {
	var p entity.Product
	var reason, comment, by, byName *string
	var at *time.Time
	err := row.Scan(
		&p.ID, &p.Name, &p.Brand, &p.Category, &p.Barcode, &p.Stock, &p.PurchasePrice, &p.SalePrice, &p.ExpiryDate,
		&p.ImageURL, &p.Active, &reason, &comment, &by, &byName, &at, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reason != nil && at != nil {
		p.Deactivation = &entity.Deactivation{
			Reason:   *reason,
			Comment:  nullString(comment),
			UserID:   nullString(by),
			UserName: nullString(byName),
			At:       *at,
		}
	}
	return &p, nil
}

var _ repository.PriceChangeRepository = (*PriceChangeRepo)(nil)

// PriceChangeRepo historial de precios (append-only).
type PriceChangeRepo struct {
	q Querier
}

// NewPriceChangeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPriceChangeRepository(q Querier) *PriceChangeRepo {
	return &PriceChangeRepo{q: q}
}

// Create persiste un cambio de precio.
func (r *PriceChangeRepo) Create(ctx context.Context, c *entity.PriceChange) error {
	query := `
		INSERT INTO price_changes (id, product_id, purchase_price_before, purchase_price_after, sale_price_before,
			sale_price_after, reason, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.ProductID, c.PurchasePriceBefore, c.PurchasePriceAfter, c.SalePriceBefore,
		c.SalePriceAfter, c.Reason, c.UserID, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert price change: %w", err)
	}
	return nil
}

// ListByProduct más reciente primero.
func (r *PriceChangeRepo) ListByProduct(ctx context.Context, productID string, limit int) ([]*entity.PriceChange, error) {
	query := `
		SELECT id, product_id, purchase_price_before, purchase_price_after, sale_price_before, sale_price_after,
			reason, user_id, created_at
		FROM price_changes WHERE product_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.q.Query(ctx, query, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("list price changes: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.PriceChange, 0)
	for rows.Next() {
		var c entity.PriceChange
		if err := rows.Scan(&c.ID, &c.ProductID, &c.PurchasePriceBefore, &c.PurchasePriceAfter, &c.SalePriceBefore,
			&c.SalePriceAfter, &c.Reason, &c.UserID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan price change: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

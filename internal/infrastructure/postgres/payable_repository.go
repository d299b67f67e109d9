package postgres

import (
	"context"
	"fmt"

	"github.com/ladespensa/despensa-api/internal/domain"
	"github.com/ladespensa/despensa-api/internal/domain/entity"
	"github.com/ladespensa/despensa-api/internal/domain/repository"
)

var _ repository.PayableRepository = (*PayableRepo)(nil)

const payableColumns = `id, provider, verification_number, category, month, amount, status, active, paid_at, created_at, updated_at`

// PayableRepo cuentas por pagar sobre PostgreSQL. El índice único parcial uq_payables_active
// impide dos cuentas activas con el mismo (proveedor, categoría, mes).
type PayableRepo struct {
	q Querier
}

// NewPayableRepository construye el adaptador.
func NewPayableRepository(q Querier) *PayableRepo {
	return &PayableRepo{q: q}
}

// Create persiste una cuenta.
func (r *PayableRepo) Create(ctx context.Context, p *entity.Payable) error {
	query := `INSERT INTO payables (` + payableColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Provider, p.VerificationNumber, p.Category, p.Month, p.Amount, p.Status, p.Active, p.PaidAt,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert payable: %w", err)
	}
	return nil
}

// GetByID obtiene una cuenta.
func (r *PayableRepo) GetByID(ctx context.Context, id string) (*entity.Payable, error) {
	p, err := scanPayable(r.q.QueryRow(ctx, `SELECT `+payableColumns+` FROM payables WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payable: %w", err)
	}
	return p, nil
}

// Update reemplaza los datos de la cuenta.
func (r *PayableRepo) Update(ctx context.Context, p *entity.Payable) error {
	query := `
		UPDATE payables SET provider = $2, verification_number = $3, category = $4, month = $5, amount = $6,
			status = $7, active = $8, paid_at = $9, updated_at = $10
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		p.ID, p.Provider, p.VerificationNumber, p.Category, p.Month, p.Amount, p.Status, p.Active, p.PaidAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update payable: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListAll cuentas ordenadas por mes descendente.
func (r *PayableRepo) ListAll(ctx context.Context, includeInactive bool) ([]*entity.Payable, error) {
	rows, err := r.q.Query(ctx, `SELECT `+payableColumns+` FROM payables WHERE active OR $1 ORDER BY month DESC, provider`, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list payables: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Payable, 0)
	for rows.Next() {
		p, err := scanPayable(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payable: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanPayable(row scanner) (*entity.Payable, error) {
	var p entity.Payable
	err := row.Scan(&p.ID, &p.Provider, &p.VerificationNumber, &p.Category, &p.Month, &p.Amount, &p.Status, &p.Active,
		&p.PaidAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

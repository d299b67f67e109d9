package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ladespensa/despensa-api/internal/domain"
	"github.com/ladespensa/despensa-api/internal/domain/entity"
	"github.com/ladespensa/despensa-api/internal/domain/repository"
)

var _ repository.TicketRepository = (*TicketRepo)(nil)

const ticketColumns = `id, number, total, payment_method, debtor, user_id, user_name, status, created_at, updated_at,
	voided_at, voided_by`

// TicketRepo ventas sobre PostgreSQL: cabecera en tickets, líneas en ticket_items.
type TicketRepo struct {
	q Querier
}

// NewTicketRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTicketRepository(q Querier) *TicketRepo {
	return &TicketRepo{q: q}
}

// Create persiste el ticket con sus líneas y asigna el correlativo (BIGSERIAL).
func (r *TicketRepo) Create(ctx context.Context, t *entity.Ticket) error {
	query := `
		INSERT INTO tickets (id, total, payment_method, debtor, user_id, user_name, status, created_at, updated_at,
			voided_at, voided_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING number`
	err := r.q.QueryRow(ctx, query,
		t.ID, t.Total, t.PaymentMethod, t.Debtor, t.UserID, t.UserName, t.Status, t.CreatedAt, t.UpdatedAt,
		t.VoidedAt, t.VoidedBy,
	).Scan(&t.Number)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return r.insertItems(ctx, t)
}

// GetByID obtiene un ticket con sus líneas.
func (r *TicketRepo) GetByID(ctx context.Context, id string) (*entity.Ticket, error) {
	return r.getOne(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id)
}

// GetForUpdate obtiene el ticket bloqueando la cabecera. Requiere tx.
func (r *TicketRepo) GetForUpdate(ctx context.Context, id string) (*entity.Ticket, error) {
	return r.getOne(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1 FOR UPDATE`, id)
}

func (r *TicketRepo) getOne(ctx context.Context, query, id string) (*entity.Ticket, error) {
	t, err := scanTicket(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Ticket{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// Update reemplaza cabecera y líneas.
func (r *TicketRepo) Update(ctx context.Context, t *entity.Ticket) error {
	query := `
		UPDATE tickets SET total = $2, payment_method = $3, debtor = $4, status = $5, updated_at = $6,
			voided_at = $7, voided_by = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, t.ID, t.Total, t.PaymentMethod, t.Debtor, t.Status, t.UpdatedAt, t.VoidedAt, t.VoidedBy)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM ticket_items WHERE ticket_id = $1`, t.ID); err != nil {
		return fmt.Errorf("delete ticket items: %w", err)
	}
	return r.insertItems(ctx, t)
}

// List tickets del rango (ambos extremos opcionales), más reciente primero.
func (r *TicketRepo) List(ctx context.Context, f repository.TicketFilter) ([]*entity.Ticket, error) {
	var (
		where []string
		args  []any
	)
	if f.From != nil {
		args = append(args, *f.From)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	query := `SELECT ` + ticketColumns + ` FROM tickets`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, number DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	list := make([]*entity.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		list = append(list, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *TicketRepo) insertItems(ctx context.Context, t *entity.Ticket) error {
	query := `
		INSERT INTO ticket_items (ticket_id, line, product_id, name, barcode, category, quantity, unit_price, subtotal,
			allocations)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for i, it := range t.Items {
		allocs, err := json.Marshal(nonNilAllocations(it.Allocations))
		if err != nil {
			return fmt.Errorf("encode allocations: %w", err)
		}
		_, err = r.q.Exec(ctx, query,
			t.ID, i+1, it.ProductID, it.Name, it.Barcode, it.Category, it.Quantity, it.UnitPrice, it.Subtotal, allocs,
		)
		if err != nil {
			return fmt.Errorf("insert ticket item: %w", err)
		}
	}
	return nil
}

// loadItems carga las líneas de todos los tickets con una sola consulta.
func (r *TicketRepo) loadItems(ctx context.Context, tickets []*entity.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Ticket, len(tickets))
	ids := make([]string, 0, len(tickets))
	for _, t := range tickets {
		t.Items = make([]entity.TicketItem, 0)
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}
	query := `
		SELECT ticket_id, product_id, name, barcode, category, quantity, unit_price, subtotal, allocations
		FROM ticket_items WHERE ticket_id = ANY($1::uuid[]) ORDER BY ticket_id, line`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("list ticket items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			ticketID string
			it       entity.TicketItem
			allocs   []byte
		)
		if err := rows.Scan(&ticketID, &it.ProductID, &it.Name, &it.Barcode, &it.Category, &it.Quantity,
			&it.UnitPrice, &it.Subtotal, &allocs); err != nil {
			return fmt.Errorf("scan ticket item: %w", err)
		}
		if err := json.Unmarshal(allocs, &it.Allocations); err != nil {
			return fmt.Errorf("decode allocations: %w", err)
		}
		if t, ok := byID[ticketID]; ok {
			t.Items = append(t.Items, it)
		}
	}
	return rows.Err()
}

func scanTicket(row scanner) (*entity.Ticket, error) {
	var t entity.Ticket
	err := row.Scan(&t.ID, &t.Number, &t.Total, &t.PaymentMethod, &t.Debtor, &t.UserID, &t.UserName, &t.Status,
		&t.CreatedAt, &t.UpdatedAt, &t.VoidedAt, &t.VoidedBy)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nonNilAllocations(in []entity.LotAllocation) []entity.LotAllocation {
	if in == nil {
		return []entity.LotAllocation{}
	}
	return in
}

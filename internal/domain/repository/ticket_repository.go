package repository

import (
	"context"
	"time"

	"github.com/ladespensa/despensa-api/internal/domain/entity"
)

// TicketFilter rango opcional de fechas para listar tickets.
type TicketFilter struct {
	From *time.Time
	To   *time.Time
}

// TicketRepository persistencia de ventas.
type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	GetByID(ctx context.Context, id string) (*entity.Ticket, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Ticket, error)
	// Update reemplaza cabecera e ítems del ticket.
	Update(ctx context.Context, ticket *entity.Ticket) error
	List(ctx context.Context, filter TicketFilter) ([]*entity.Ticket, error)
}

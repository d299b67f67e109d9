package ports

import (
	"context"

	"github.com/ladespensa/despensa-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Products     repository.ProductRepository
	Lots         repository.LotRepository
	Tickets      repository.TicketRepository
	Movements    repository.StockMovementRepository
	PriceChanges repository.PriceChangeRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD: Commit si fn devuelve nil,
// Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}

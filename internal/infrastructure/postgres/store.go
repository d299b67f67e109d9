package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store agrupa los repositorios sobre un mismo pool, con la misma forma que el almacén en memoria.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore construye el almacén.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Users() *UserRepo               { return NewUserRepository(s.pool) }
func (s *Store) Products() *ProductRepo         { return NewProductRepository(s.pool) }
func (s *Store) Lots() *LotRepo                 { return NewLotRepository(s.pool) }
func (s *Store) Tickets() *TicketRepo           { return NewTicketRepository(s.pool) }
func (s *Store) Suppliers() *SupplierRepo       { return NewSupplierRepository(s.pool) }
func (s *Store) Payables() *PayableRepo         { return NewPayableRepository(s.pool) }
func (s *Store) Movements() *MovementRepo       { return NewMovementRepository(s.pool) }
func (s *Store) PriceChanges() *PriceChangeRepo { return NewPriceChangeRepository(s.pool) }
func (s *Store) Analytics() *AnalyticsRepo      { return NewAnalyticsRepository(s.pool) }
func (s *Store) TxRunner() *TxRunner            { return NewTxRunner(s.pool) }

// Ping verifica la conexión (usado por /health).
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

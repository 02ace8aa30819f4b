package inventory

import (
	"context"

	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/audit"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/catalog"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/inventory"
	"github.com/usv008/pizza-inventory-system-sub002/internal/domain/trade"
)

// TransactionalRepositories bundles the repositories that take part in a
// single transaction. All of them observe the same database session.
type TransactionalRepositories struct {
	Batches   inventory.ProductionBatchRepository
	Products  catalog.ProductRepository
	Movements inventory.StockMovementRepository
	Writeoffs inventory.WriteoffRepository
	Orders    trade.OrderRepository
	Audit     audit.OperationLogRepository
}

// TransactionScope executes a function within a database transaction.
// If the function returns an error the transaction is rolled back,
// otherwise it is committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// NoOpTransactionScope runs the function against the given repositories
// without any transactional guarantees. Intended for tests.
type NoOpTransactionScope struct {
	Repos TransactionalRepositories
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)

func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.Repos)
}

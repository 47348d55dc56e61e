package repositories

import "context"

// UnitOfWork executes fn within one transaction scope. Repositories called
// with the ctx passed to fn join that transaction.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

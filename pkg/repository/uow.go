package repository

import (
	"context"
	"errors"
)

// ErrNoTransaction is returned when a repository that requires a transaction
// is requested outside UnitOfWork.Do.
var ErrNoTransaction = errors.New("operation requires an active unit of work")

// UnitOfWork defines the contract for transactional work and repository access.
// Repositories obtained from the UnitOfWork passed to fn share its transaction.
type UnitOfWork interface {
	// Do executes the given function within a transaction boundary.
	// If the function returns an error, the transaction is rolled back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	AccountRepository() (AccountRepository, error)
	TransactionRepository() (TransactionRepository, error)
	UserRepository() (UserRepository, error)
	// LedgerRepository returns ErrNoTransaction outside Do.
	LedgerRepository() (LedgerRepository, error)
}

package memory

import (
	"context"
	"slices"

	"github.com/amirasaad/iebank/pkg/domain"
	"github.com/amirasaad/iebank/pkg/domain/account"
	"github.com/google/uuid"
)

var errTransactionNotFound = domain.NewError(domain.ErrNotFound, "transaction not found")

type transactionRepository struct {
	uow *UoW
}

func (r *transactionRepository) Append(ctx context.Context, tx *account.Transaction) error {
	row := *tx
	return r.uow.write(func(t *txn) error {
		t.stage(op{
			apply: func(s *Store) { s.transactions = append(s.transactions, row) },
		})
		return nil
	})
}

func (r *transactionRepository) Get(ctx context.Context, id uuid.UUID) (*account.Transaction, error) {
	txs := r.filter(func(t *account.Transaction) bool { return t.ID == id })
	if len(txs) == 0 {
		return nil, errTransactionNotFound
	}
	return txs[0], nil
}

func (r *transactionRepository) List(ctx context.Context) ([]*account.Transaction, error) {
	return r.filter(func(*account.Transaction) bool { return true }), nil
}

func (r *transactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*account.Transaction, error) {
	return r.filter(func(t *account.Transaction) bool { return t.Involves(accountID) }), nil
}

func (r *transactionRepository) ListByAccounts(ctx context.Context, accountIDs []uuid.UUID) ([]*account.Transaction, error) {
	return r.filter(func(t *account.Transaction) bool {
		return slices.ContainsFunc(accountIDs, t.Involves)
	}), nil
}

// filter returns matches newest first.
func (r *transactionRepository) filter(keep func(*account.Transaction) bool) []*account.Transaction {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*account.Transaction, 0)
	for i := len(s.transactions) - 1; i >= 0; i-- {
		t := s.transactions[i]
		if keep(&t) {
			result = append(result, &t)
		}
	}
	slices.SortStableFunc(result, func(a, b *account.Transaction) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return result
}

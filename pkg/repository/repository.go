package repository

import (
	"context"

	"github.com/amirasaad/iebank/pkg/domain/account"
	"github.com/amirasaad/iebank/pkg/domain/user"
	"github.com/amirasaad/iebank/pkg/dto"
	"github.com/amirasaad/iebank/pkg/money"
	"github.com/google/uuid"
)

// AccountRepository defines account data access. It never changes balances.
type AccountRepository interface {
	Create(ctx context.Context, acc *account.Account) error
	Get(ctx context.Context, id uuid.UUID) (*account.Account, error)
	GetByNumber(ctx context.Context, number string) (*account.Account, error)
	List(ctx context.Context) ([]*account.Account, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error)
	Update(ctx context.Context, id uuid.UUID, update dto.AccountUpdate) error
	// Delete removes the account only while its balance is zero.
	Delete(ctx context.Context, id uuid.UUID) error
}

// LedgerRepository is the only write path for account balances.
// It is available inside UnitOfWork.Do only, so every adjustment commits or
// rolls back together with the rest of the unit.
type LedgerRepository interface {
	// AdjustBalances locks both rows, checks the debit side has at least
	// amount, then debits and credits it. Either both change or neither does.
	AdjustBalances(ctx context.Context, debitID, creditID uuid.UUID, amount money.Money) error
	// Credit adds amount to a single account.
	Credit(ctx context.Context, accountID uuid.UUID, amount money.Money) error
}

// TransactionRepository is the append-only audit log of money movements.
type TransactionRepository interface {
	Append(ctx context.Context, tx *account.Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*account.Transaction, error)
	List(ctx context.Context) ([]*account.Transaction, error)
	// ListByAccount returns transactions where accountID is the source or destination.
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*account.Transaction, error)
	ListByAccounts(ctx context.Context, accountIDs []uuid.UUID) ([]*account.Transaction, error)
}

// UserRepository defines user data access.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	List(ctx context.Context) ([]*user.User, error)
	// Update applies a partial update. update.Password, when set, is already hashed.
	Update(ctx context.Context, id uuid.UUID, update dto.UserUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Package fixtures provides test doubles and seed helpers shared by service
// and handler tests.
package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/amirasaad/iebank/infra/repository/memory"
	"github.com/amirasaad/iebank/pkg/domain/account"
	"github.com/amirasaad/iebank/pkg/domain/user"
	"github.com/amirasaad/iebank/pkg/money"
	"github.com/amirasaad/iebank/pkg/repository"
	"github.com/amirasaad/iebank/pkg/service/access"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// NewStore returns an empty in-memory unit of work.
func NewStore() *memory.UoW {
	return memory.NewUoW(memory.NewStore())
}

// SeedUser stores a user with the given password already hashed.
func SeedUser(t testing.TB, uow repository.UnitOfWork, username, password string, admin bool) *user.User {
	t.Helper()
	u, err := user.NewUser(username, username+"@example.com", password, admin)
	require.NoError(t, err)
	users, err := uow.UserRepository()
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

// SeedAccount stores an active account for owner and credits balance to it
// through the ledger, recording a deposit.
func SeedAccount(
	t testing.TB,
	uow repository.UnitOfWork,
	owner uuid.UUID,
	code money.Code,
	balance string,
) *account.Account {
	t.Helper()
	acc, err := account.New().
		WithUserID(owner).
		WithName("Main").
		WithCurrency(code).
		WithCreatedAt(time.Now().UTC()).
		Build()
	require.NoError(t, err)
	accounts, err := uow.AccountRepository()
	require.NoError(t, err)
	require.NoError(t, accounts.Create(context.Background(), acc))

	amount, err := money.Parse(balance, code)
	require.NoError(t, err)
	if amount.IsZero() {
		return acc
	}
	require.NoError(t, uow.Do(context.Background(), func(uow repository.UnitOfWork) error {
		ledger, err := uow.LedgerRepository()
		if err != nil {
			return err
		}
		if err := ledger.Credit(context.Background(), acc.ID, amount); err != nil {
			return err
		}
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		return txs.Append(context.Background(), account.NewDeposit(acc, amount))
	}))
	return acc
}

// Balance returns the committed balance of an account in smallest units.
func Balance(t testing.TB, uow repository.UnitOfWork, id uuid.UUID) int64 {
	t.Helper()
	accounts, err := uow.AccountRepository()
	require.NoError(t, err)
	acc, err := accounts.Get(context.Background(), id)
	require.NoError(t, err)
	return acc.Balance.Amount()
}

// TransactionCount returns the number of audit entries touching id.
func TransactionCount(t testing.TB, uow repository.UnitOfWork, id uuid.UUID) int {
	t.Helper()
	txs, err := uow.TransactionRepository()
	require.NoError(t, err)
	list, err := txs.ListByAccount(context.Background(), id)
	require.NoError(t, err)
	return len(list)
}

// PrincipalFor returns the principal of u.
func PrincipalFor(u *user.User) *access.Principal {
	return &access.Principal{UserID: u.ID, Admin: u.Admin}
}

package transfer_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/amirasaad/iebank/internal/fixtures"
	"github.com/amirasaad/iebank/pkg/domain"
	"github.com/amirasaad/iebank/pkg/domain/account"
	"github.com/amirasaad/iebank/pkg/money"
	"github.com/amirasaad/iebank/pkg/repository"
	"github.com/amirasaad/iebank/pkg/service/access"
	"github.com/amirasaad/iebank/pkg/service/transfer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

type env struct {
	uow      repository.UnitOfWork
	svc      *transfer.Service
	owner    *access.Principal
	other    *access.Principal
	admin    *access.Principal
	sender   *account.Account
	receiver *account.Account
}

func setup(t *testing.T, senderBalance, receiverBalance string) *env {
	t.Helper()
	uow := fixtures.NewStore()
	alice := fixtures.SeedUser(t, uow, "alice", "password1", false)
	bob := fixtures.SeedUser(t, uow, "bob", "password1", false)
	root := fixtures.SeedUser(t, uow, "root", "password1", true)
	return &env{
		uow:      uow,
		svc:      transfer.New(uow, access.New(slog.Default()), slog.Default()),
		owner:    fixtures.PrincipalFor(alice),
		other:    fixtures.PrincipalFor(bob),
		admin:    fixtures.PrincipalFor(root),
		sender:   fixtures.SeedAccount(t, uow, alice.ID, money.USD, senderBalance),
		receiver: fixtures.SeedAccount(t, uow, bob.ID, money.USD, receiverBalance),
	}
}

func TestTransfer_MovesFunds(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	e := setup(t, "100", "10")

	tx, err := e.svc.Transfer(context.Background(), e.owner, e.sender.ID, e.receiver.Number, decimal.NewFromInt(40))
	require.NoError(err)
	require.Equal(e.sender.ID, tx.AccountID)
	require.Equal(e.receiver.ID, tx.DestinationAccountID)
	require.Equal(int64(4000), tx.Amount.Amount())

	require.Equal(int64(6000), fixtures.Balance(t, e.uow, e.sender.ID))
	require.Equal(int64(5000), fixtures.Balance(t, e.uow, e.receiver.ID))
	// seed deposit plus the transfer
	require.Equal(2, fixtures.TransactionCount(t, e.uow, e.sender.ID))
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	e := setup(t, "10", "0")

	_, err := e.svc.Transfer(context.Background(), e.owner, e.sender.ID, e.receiver.Number, decimal.NewFromInt(40))
	require.ErrorIs(err, domain.ErrInsufficientFunds)
	require.Equal(int64(1000), fixtures.Balance(t, e.uow, e.sender.ID))
	require.Equal(int64(0), fixtures.Balance(t, e.uow, e.receiver.ID))
	require.Equal(0, fixtures.TransactionCount(t, e.uow, e.receiver.ID))
}

func TestTransfer_UnknownReceiver(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	e := setup(t, "100", "0")

	_, err := e.svc.Transfer(context.Background(), e.owner, e.sender.ID, "00000000000000000000", decimal.NewFromInt(1))
	require.ErrorIs(err, domain.ErrNotFound)
	require.Equal(int64(10000), fixtures.Balance(t, e.uow, e.sender.ID))
	require.Equal(1, fixtures.TransactionCount(t, e.uow, e.sender.ID))
}

func TestTransfer_ConcurrentOverdraft(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	e := setup(t, "100", "0")

	results := make([]error, 2)
	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			_, results[i] = e.svc.Transfer(context.Background(), e.owner, e.sender.ID, e.receiver.Number, decimal.NewFromInt(60))
			return nil
		})
	}
	require.NoError(g.Wait())

	var ok, insufficient int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, domain.ErrInsufficientFunds):
			insufficient++
		}
	}
	require.Equal(1, ok)
	require.Equal(1, insufficient)
	require.Equal(int64(4000), fixtures.Balance(t, e.uow, e.sender.ID))
	require.Equal(int64(6000), fixtures.Balance(t, e.uow, e.receiver.ID))
	require.Equal(1, fixtures.TransactionCount(t, e.uow, e.receiver.ID))
}

func TestTransfer_ConservesTotal(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	e := setup(t, "500", "500")

	var g errgroup.Group
	for i := range 100 {
		g.Go(func() error {
			from, to, p := e.sender, e.receiver, e.owner
			if i%2 == 1 {
				from, to, p = e.receiver, e.sender, e.other
			}
			_, err := e.svc.Transfer(context.Background(), p, from.ID, to.Number, decimal.RequireFromString("7.25"))
			if err != nil && !domain.IsKnown(err) {
				return err
			}
			return nil
		})
	}
	require.NoError(g.Wait())

	a := fixtures.Balance(t, e.uow, e.sender.ID)
	b := fixtures.Balance(t, e.uow, e.receiver.ID)
	require.GreaterOrEqual(a, int64(0))
	require.GreaterOrEqual(b, int64(0))
	require.Equal(int64(100000), a+b)
}

func TestTransfer_Rejections(t *testing.T) {
	t.Parallel()
	e := setup(t, "100", "0")
	eur := fixtures.SeedAccount(t, e.uow, e.owner.UserID, money.EUR, "0")

	tests := []struct {
		name      string
		principal *access.Principal
		sender    uuid.UUID
		receiver  string
		amount    decimal.Decimal
		want      error
	}{
		{"anonymous", nil, e.sender.ID, e.receiver.Number, decimal.NewFromInt(1), access.ErrUnauthenticated},
		{"not owner", e.other, e.sender.ID, e.receiver.Number, decimal.NewFromInt(1), access.ErrNotOwner},
		{"zero amount", e.owner, e.sender.ID, e.receiver.Number, decimal.Zero, account.ErrTransactionAmountMustBePositive},
		{"negative amount", e.owner, e.sender.ID, e.receiver.Number, decimal.NewFromInt(-5), account.ErrTransactionAmountMustBePositive},
		{"same account", e.owner, e.sender.ID, e.sender.Number, decimal.NewFromInt(1), account.ErrCannotTransferToSameAccount},
		{"currency mismatch", e.owner, e.sender.ID, eur.Number, decimal.NewFromInt(1), account.ErrCurrencyMismatch},
		{"too precise", e.owner, e.sender.ID, e.receiver.Number, decimal.RequireFromString("0.001"), domain.ErrValidation},
		{"huge exponent", e.owner, e.sender.ID, e.receiver.Number, decimal.RequireFromString("1e99999999"), domain.ErrValidation},
		{"unknown sender", e.owner, uuid.New(), e.receiver.Number, decimal.NewFromInt(1), domain.ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.svc.Transfer(context.Background(), tc.principal, tc.sender, tc.receiver, tc.amount)
			require.ErrorIs(t, err, tc.want)
		})
	}
	require.Equal(t, int64(10000), fixtures.Balance(t, e.uow, e.sender.ID))
	require.Equal(t, 1, fixtures.TransactionCount(t, e.uow, e.sender.ID))
}

func TestTransfer_AdminMayMoveAnyAccount(t *testing.T) {
	t.Parallel()
	e := setup(t, "100", "0")

	_, err := e.svc.Transfer(context.Background(), e.admin, e.sender.ID, e.receiver.Number, decimal.NewFromInt(100))
	require.NoError(t, err)
	require.Equal(t, int64(0), fixtures.Balance(t, e.uow, e.sender.ID))
}

func TestDeposit(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	e := setup(t, "0", "0")

	_, err := e.svc.Deposit(context.Background(), e.owner, e.sender.Number, decimal.NewFromInt(5))
	require.ErrorIs(err, access.ErrAdminRequired)

	tx, err := e.svc.Deposit(context.Background(), e.admin, e.sender.Number, decimal.RequireFromString("12.34"))
	require.NoError(err)
	require.True(tx.IsDeposit())
	require.Equal(int64(1234), fixtures.Balance(t, e.uow, e.sender.ID))

	_, err = e.svc.Deposit(context.Background(), e.admin, "missing", decimal.NewFromInt(1))
	require.ErrorIs(err, domain.ErrNotFound)
}

func TestListTransactions(t *testing.T) {
	t.Parallel()
	require := require.New(t)
	e := setup(t, "100", "0")
	_, err := e.svc.Transfer(context.Background(), e.owner, e.sender.ID, e.receiver.Number, decimal.NewFromInt(10))
	require.NoError(err)

	txs, err := e.svc.ListTransactions(context.Background(), e.owner, e.sender.ID)
	require.NoError(err)
	require.Len(txs, 2)

	_, err = e.svc.ListTransactions(context.Background(), e.other, e.sender.ID)
	require.ErrorIs(err, domain.ErrForbidden)

	mine, err := e.svc.ListForPrincipal(context.Background(), e.other)
	require.NoError(err)
	require.Len(mine, 1)

	all, err := e.svc.ListForPrincipal(context.Background(), e.admin)
	require.NoError(err)
	require.Len(all, 2)
}

func TestTransfer_PersistenceFailure(t *testing.T) {
	t.Parallel()
	uow := fixtures.NewMockUnitOfWork(t)
	storeErr := domain.Wrap(domain.ErrPersistence, context.DeadlineExceeded)
	uow.On("Do", mock.Anything, mock.Anything).Return(storeErr).Once()

	svc := transfer.New(uow, access.New(slog.Default()), slog.Default())
	p := &access.Principal{UserID: uuid.New()}
	_, err := svc.Transfer(context.Background(), p, uuid.New(), "1", decimal.NewFromInt(1))
	require.ErrorIs(t, err, domain.ErrPersistence)
}

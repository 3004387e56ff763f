package account

import (
	"testing"

	"github.com/amirasaad/iebank/pkg/domain"
	"github.com/amirasaad/iebank/pkg/money"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAccount(t *testing.T, balance int64, code money.Code) *Account {
	t.Helper()
	acc, err := New().
		WithUserID(uuid.New()).
		WithName("Checking").
		WithCurrency(code).
		WithBalance(balance).
		Build()
	require.NoError(t, err)
	return acc
}

func mustMoney(t *testing.T, amount string, code money.Code) money.Money {
	t.Helper()
	m, err := money.Parse(amount, code)
	require.NoError(t, err)
	return m
}

func TestBuilder(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	userID := uuid.New()
	acc, err := New().
		WithUserID(userID).
		WithName("  Savings ").
		WithCurrency(money.EUR).
		WithCountry("Spain").
		Build()
	require.NoError(err)
	require.Equal("Savings", acc.Name)
	require.Equal(money.EUR, acc.Currency())
	require.Equal(StatusActive, acc.Status)
	require.True(acc.Balance.IsZero())
	require.Len(acc.Number, NumberLength)
	require.Regexp(`^\d+$`, acc.Number)

	_, err = New().WithUserID(userID).Build()
	require.ErrorIs(err, ErrNameRequired)
	require.ErrorIs(err, domain.ErrValidation)

	_, err = New().WithName("x").Build()
	require.ErrorIs(err, ErrUserRequired)

	_, err = New().WithUserID(userID).WithName("x").WithCurrency("dollars").Build()
	require.ErrorIs(err, ErrInvalidCurrency)

	_, err = New().WithUserID(userID).WithName("x").WithStatus("frozen").Build()
	require.ErrorIs(err, ErrInvalidStatus)

	_, err = New().WithUserID(userID).WithName("x").WithBalance(-1).Build()
	require.ErrorIs(err, domain.ErrInsufficientFunds)
}

func TestNewNumber_Unique(t *testing.T) {
	t.Parallel()
	seen := make(map[string]struct{})
	for range 200 {
		n, err := NewNumber()
		require.NoError(t, err)
		require.Len(t, n, NumberLength)
		_, dup := seen[n]
		require.False(t, dup)
		seen[n] = struct{}{}
	}
}

func TestAccount_ValidateTransfer(t *testing.T) {
	t.Parallel()

	src := mustAccount(t, 10000, money.USD)
	dst := mustAccount(t, 0, money.USD)
	eur := mustAccount(t, 0, money.EUR)
	inactive := mustAccount(t, 0, money.USD)
	inactive.Status = StatusInactive

	testCases := []struct {
		name        string
		from, to    *Account
		amount      money.Money
		expectedErr error
	}{
		{"success", src, dst, mustMoney(t, "50", money.USD), nil},
		{"same account", src, src, mustMoney(t, "10", money.USD), ErrCannotTransferToSameAccount},
		{"zero amount", src, dst, money.Zero(money.USD), ErrTransactionAmountMustBePositive},
		{"negative amount", src, dst, mustMoney(t, "-1", money.USD), ErrTransactionAmountMustBePositive},
		{"destination currency differs", src, eur, mustMoney(t, "10", money.USD), ErrCurrencyMismatch},
		{"amount currency differs", src, dst, mustMoney(t, "10", money.EUR), ErrCurrencyMismatch},
		{"inactive destination", src, inactive, mustMoney(t, "10", money.USD), ErrAccountInactive},
		{"nil destination", src, nil, mustMoney(t, "10", money.USD), ErrNilAccount},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.from.ValidateTransfer(tc.to, tc.amount)
			if tc.expectedErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestAccount_ValidateDepositAndDelete(t *testing.T) {
	t.Parallel()
	acc := mustAccount(t, 0, money.JPY)

	assert.NoError(t, acc.ValidateDeposit(mustMoney(t, "500", money.JPY)))
	assert.ErrorIs(t, acc.ValidateDeposit(mustMoney(t, "5", money.USD)), ErrCurrencyMismatch)
	assert.ErrorIs(t, acc.ValidateDeposit(money.Zero(money.JPY)), ErrTransactionAmountMustBePositive)
	assert.NoError(t, acc.ValidateDelete())

	funded := mustAccount(t, 1, money.JPY)
	assert.ErrorIs(t, funded.ValidateDelete(), ErrNonZeroBalance)
}

func TestTransaction_Constructors(t *testing.T) {
	t.Parallel()
	src := mustAccount(t, 100, money.USD)
	dst := mustAccount(t, 0, money.USD)
	amt := mustMoney(t, "0.5", money.USD)

	tx := NewTransfer(src, dst, amt)
	assert.Equal(t, src.ID, tx.AccountID)
	assert.Equal(t, dst.ID, tx.DestinationAccountID)
	assert.False(t, tx.IsDeposit())
	assert.True(t, tx.Involves(src.ID))
	assert.True(t, tx.Involves(dst.ID))

	dep := NewDeposit(dst, amt)
	assert.True(t, dep.IsDeposit())
	assert.Equal(t, uuid.Nil, dep.AccountID)
	assert.False(t, dep.Involves(src.ID))
}

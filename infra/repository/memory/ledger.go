package memory

import (
	"context"

	"github.com/amirasaad/iebank/pkg/domain/account"
	"github.com/amirasaad/iebank/pkg/money"
	"github.com/google/uuid"
)

type ledgerRepository struct {
	tx *txn
}

func (l *ledgerRepository) AdjustBalances(
	ctx context.Context,
	debitID, creditID uuid.UUID,
	amount money.Money,
) error {
	if debitID == creditID {
		return account.ErrCannotTransferToSameAccount
	}
	if !amount.IsPositive() {
		return account.ErrTransactionAmountMustBePositive
	}
	if err := l.tx.lock(ctx, debitID, creditID); err != nil {
		return err
	}
	debit, err := l.tx.account(debitID)
	if err != nil {
		return err
	}
	credit, err := l.tx.account(creditID)
	if err != nil {
		return err
	}
	if !debit.IsActive() || !credit.IsActive() {
		return account.ErrAccountInactive
	}
	if !debit.Balance.IsSameCurrency(amount) || !credit.Balance.IsSameCurrency(amount) {
		return account.ErrCurrencyMismatch
	}
	if debit.Balance.Amount() < amount.Amount() {
		return account.ErrInsufficientFunds
	}
	if _, ok := money.AddInt64(credit.Balance.Amount(), amount.Amount()); !ok {
		return account.ErrBalanceOverflow
	}
	l.tx.deltas[debitID] -= amount.Amount()
	l.tx.deltas[creditID] += amount.Amount()
	l.requireActive(debitID, creditID)
	return nil
}

func (l *ledgerRepository) Credit(ctx context.Context, accountID uuid.UUID, amount money.Money) error {
	if !amount.IsPositive() {
		return account.ErrTransactionAmountMustBePositive
	}
	if err := l.tx.lock(ctx, accountID); err != nil {
		return err
	}
	acc, err := l.tx.account(accountID)
	if err != nil {
		return err
	}
	if !acc.IsActive() {
		return account.ErrAccountInactive
	}
	if !acc.Balance.IsSameCurrency(amount) {
		return account.ErrCurrencyMismatch
	}
	if _, ok := money.AddInt64(acc.Balance.Amount(), amount.Amount()); !ok {
		return account.ErrBalanceOverflow
	}
	l.tx.deltas[accountID] += amount.Amount()
	l.requireActive(accountID)
	return nil
}

// requireActive re-checks status at commit, since status updates do not take
// the row locks held here.
func (l *ledgerRepository) requireActive(ids ...uuid.UUID) {
	l.tx.stage(op{
		check: func(s *Store) error {
			for _, id := range ids {
				acc, ok := s.accounts[id]
				if !ok {
					return account.ErrAccountNotFound
				}
				if !acc.IsActive() {
					return account.ErrAccountInactive
				}
			}
			return nil
		},
		apply: func(*Store) {},
	})
}

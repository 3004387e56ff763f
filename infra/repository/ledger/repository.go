// Package ledger implements the balance write path on PostgreSQL.
//
// Rows are locked with SELECT ... FOR UPDATE in primary key order so that
// concurrent transfers touching the same pair of accounts serialize without
// deadlocking, whatever direction each one moves money.
package ledger

import (
	"context"

	"github.com/amirasaad/iebank/infra"
	"github.com/amirasaad/iebank/infra/repository/model"
	"github.com/amirasaad/iebank/pkg/domain/account"
	"github.com/amirasaad/iebank/pkg/money"
	"github.com/amirasaad/iebank/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerRepository struct {
	db *gorm.DB
}

// New creates a ledger bound to db, which must be an open transaction.
func New(db *gorm.DB) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

// AdjustBalances implements repository.LedgerRepository.
func (r *ledgerRepository) AdjustBalances(
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

	rows, err := r.lock(ctx, debitID, creditID)
	if err != nil {
		return err
	}
	debit, credit := rows[debitID], rows[creditID]
	if err := checkActive(debit, credit); err != nil {
		return err
	}
	if err := checkCurrency(amount, debit, credit); err != nil {
		return err
	}
	if debit.Balance < amount.Amount() {
		return account.ErrInsufficientFunds
	}
	if _, ok := money.AddInt64(credit.Balance, amount.Amount()); !ok {
		return account.ErrBalanceOverflow
	}

	if err := r.apply(ctx, debitID, "balance - ?", amount.Amount()); err != nil {
		return err
	}
	return r.apply(ctx, creditID, "balance + ?", amount.Amount())
}

// Credit implements repository.LedgerRepository.
func (r *ledgerRepository) Credit(ctx context.Context, accountID uuid.UUID, amount money.Money) error {
	if !amount.IsPositive() {
		return account.ErrTransactionAmountMustBePositive
	}
	rows, err := r.lock(ctx, accountID)
	if err != nil {
		return err
	}
	row := rows[accountID]
	if err := checkActive(row); err != nil {
		return err
	}
	if err := checkCurrency(amount, row); err != nil {
		return err
	}
	if _, ok := money.AddInt64(row.Balance, amount.Amount()); !ok {
		return account.ErrBalanceOverflow
	}
	return r.apply(ctx, accountID, "balance + ?", amount.Amount())
}

// lock selects the given accounts FOR UPDATE and fails if any is missing.
func (r *ledgerRepository) lock(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*model.Account, error) {
	var rows []model.Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, infra.MapGormErrorToDomain(err)
	}
	locked := make(map[uuid.UUID]*model.Account, len(rows))
	for i := range rows {
		locked[rows[i].ID] = &rows[i]
	}
	for _, id := range ids {
		if _, ok := locked[id]; !ok {
			return nil, account.ErrAccountNotFound
		}
	}
	return locked, nil
}

func (r *ledgerRepository) apply(ctx context.Context, id uuid.UUID, expr string, amount int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ?", id).
		Update("balance", gorm.Expr(expr, amount))
	if res.Error != nil {
		return infra.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected != 1 {
		return account.ErrAccountNotFound
	}
	return nil
}

func checkCurrency(amount money.Money, rows ...*model.Account) error {
	for _, row := range rows {
		if row.Currency != amount.Currency().String() {
			return account.ErrCurrencyMismatch
		}
	}
	return nil
}

func checkActive(rows ...*model.Account) error {
	for _, row := range rows {
		if row.Status != string(account.StatusActive) {
			return account.ErrAccountInactive
		}
	}
	return nil
}

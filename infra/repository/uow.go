package repository

import (
	"context"

	"github.com/amirasaad/iebank/infra"
	"github.com/amirasaad/iebank/infra/repository/account"
	"github.com/amirasaad/iebank/infra/repository/ledger"
	"github.com/amirasaad/iebank/infra/repository/transaction"
	"github.com/amirasaad/iebank/infra/repository/user"
	"github.com/amirasaad/iebank/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides transaction boundary and repository access in one abstraction.
// All repositories handed out inside Do share the same *gorm.DB transaction.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn inside a database transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
	return infra.MapGormErrorToDomain(err)
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	return account.New(u.session()), nil
}

func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	return transaction.New(u.session()), nil
}

func (u *UoW) UserRepository() (repository.UserRepository, error) {
	return user.New(u.session()), nil
}

func (u *UoW) LedgerRepository() (repository.LedgerRepository, error) {
	if u.tx == nil {
		return nil, repository.ErrNoTransaction
	}
	return ledger.New(u.tx), nil
}

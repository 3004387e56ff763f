// Package transfer moves money between accounts through the ledger and keeps
// the audit log of every movement.
package transfer

import (
	"context"
	"log/slog"

	"github.com/amirasaad/iebank/pkg/domain"
	"github.com/amirasaad/iebank/pkg/domain/account"
	"github.com/amirasaad/iebank/pkg/money"
	"github.com/amirasaad/iebank/pkg/repository"
	"github.com/amirasaad/iebank/pkg/service/access"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service is the only component that resolves the ledger repository.
type Service struct {
	uow    repository.UnitOfWork
	gate   *access.Gate
	logger *slog.Logger
}

// New creates a transfer Service.
func New(
	uow repository.UnitOfWork,
	gate *access.Gate,
	logger *slog.Logger,
) *Service {
	return &Service{
		uow:    uow,
		gate:   gate,
		logger: logger,
	}
}

// Transfer moves amount (in the sender's currency major units) from the
// sender account to the account with receiverNumber. Either both balances
// change and one transaction is recorded, or nothing changes.
func (s *Service) Transfer(
	ctx context.Context,
	principal *access.Principal,
	senderID uuid.UUID,
	receiverNumber string,
	amount decimal.Decimal,
) (tx *account.Transaction, err error) {
	log := s.logger.With(
		"op", "Transfer",
		"senderID", senderID,
		"receiverNumber", receiverNumber,
	)
	if err = s.gate.Authenticated(principal); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, account.ErrTransactionAmountMustBePositive
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		sender, err := accounts.Get(ctx, senderID)
		if err != nil {
			return err
		}
		if err := s.gate.CanAccessAccount(principal, sender); err != nil {
			return err
		}
		receiver, err := accounts.GetByNumber(ctx, receiverNumber)
		if err != nil {
			return err
		}
		amt, err := toMoney(amount, sender.Currency())
		if err != nil {
			return err
		}
		if err := sender.ValidateTransfer(receiver, amt); err != nil {
			return err
		}

		ledger, err := uow.LedgerRepository()
		if err != nil {
			return err
		}
		if err := ledger.AdjustBalances(ctx, sender.ID, receiver.ID, amt); err != nil {
			return err
		}

		txRepo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		tx = account.NewTransfer(sender, receiver, amt)
		return txRepo.Append(ctx, tx)
	})
	if err != nil {
		log.Error("Transfer failed", "error", err)
		return nil, err
	}
	log.Info("Transfer completed", "transactionID", tx.ID, "amount", tx.Amount.String())
	return tx, nil
}

// Deposit credits amount to the account with accountNumber. Admin only.
func (s *Service) Deposit(
	ctx context.Context,
	principal *access.Principal,
	accountNumber string,
	amount decimal.Decimal,
) (tx *account.Transaction, err error) {
	log := s.logger.With("op", "Deposit", "accountNumber", accountNumber)
	if err = s.gate.RequireAdmin(principal); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, account.ErrTransactionAmountMustBePositive
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		acc, err := accounts.GetByNumber(ctx, accountNumber)
		if err != nil {
			return err
		}
		amt, err := toMoney(amount, acc.Currency())
		if err != nil {
			return err
		}
		if err := acc.ValidateDeposit(amt); err != nil {
			return err
		}
		ledger, err := uow.LedgerRepository()
		if err != nil {
			return err
		}
		if err := ledger.Credit(ctx, acc.ID, amt); err != nil {
			return err
		}
		txRepo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		tx = account.NewDeposit(acc, amt)
		return txRepo.Append(ctx, tx)
	})
	if err != nil {
		log.Error("Deposit failed", "error", err)
		return nil, err
	}
	log.Info("Deposit completed", "transactionID", tx.ID, "amount", tx.Amount.String())
	return tx, nil
}

// ListTransactions returns the movements into or out of one account, newest first.
func (s *Service) ListTransactions(
	ctx context.Context,
	principal *access.Principal,
	accountID uuid.UUID,
) (txs []*account.Transaction, err error) {
	if err = s.gate.Authenticated(principal); err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		acc, err := accounts.Get(ctx, accountID)
		if err != nil {
			return err
		}
		if err := s.gate.CanAccessAccount(principal, acc); err != nil {
			return err
		}
		txRepo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		txs, err = txRepo.ListByAccount(ctx, accountID)
		return err
	})
	if err != nil {
		s.logger.Error("ListTransactions failed", "accountID", accountID, "error", err)
		return nil, err
	}
	return txs, nil
}

// ListForPrincipal returns every transaction an admin can see, or those touching
// the caller's own accounts.
func (s *Service) ListForPrincipal(
	ctx context.Context,
	principal *access.Principal,
) (txs []*account.Transaction, err error) {
	all, err := s.gate.SeesAllAccounts(principal)
	if err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		txRepo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		if all {
			txs, err = txRepo.List(ctx)
			return err
		}
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		owned, err := accounts.ListByUser(ctx, principal.UserID)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(owned))
		for _, acc := range owned {
			ids = append(ids, acc.ID)
		}
		txs, err = txRepo.ListByAccounts(ctx, ids)
		return err
	})
	if err != nil {
		s.logger.Error("ListForPrincipal failed", "userID", principal.UserID, "error", err)
		return nil, err
	}
	return txs, nil
}

// toMoney converts a request amount into the account currency. Precision and
// range problems are validation errors.
func toMoney(amount decimal.Decimal, code money.Code) (money.Money, error) {
	m, err := money.New(amount, code)
	if err != nil {
		return money.Money{}, domain.Wrap(domain.ErrValidation, err)
	}
	return m, nil
}

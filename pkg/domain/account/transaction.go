package account

import (
	"time"

	"github.com/amirasaad/iebank/pkg/money"
	"github.com/google/uuid"
)

// Transaction is the immutable record of a completed money movement.
// AccountID is uuid.Nil for deposits, which have no source account.
type Transaction struct {
	ID                   uuid.UUID
	AccountID            uuid.UUID
	DestinationAccountID uuid.UUID
	Amount               money.Money
	CreatedAt            time.Time
}

// NewTransfer records amount moving from one account to another.
func NewTransfer(from, to *Account, amount money.Money) *Transaction {
	return &Transaction{
		ID:                   uuid.New(),
		AccountID:            from.ID,
		DestinationAccountID: to.ID,
		Amount:               amount,
		CreatedAt:            time.Now().UTC(),
	}
}

// NewDeposit records amount credited to an account from outside the ledger.
func NewDeposit(to *Account, amount money.Money) *Transaction {
	return &Transaction{
		ID:                   uuid.New(),
		DestinationAccountID: to.ID,
		Amount:               amount,
		CreatedAt:            time.Now().UTC(),
	}
}

// NewTransactionFromData creates a Transaction from raw data (used for DB hydration or test fixtures).
func NewTransactionFromData(
	id, accountID, destinationAccountID uuid.UUID,
	amount money.Money,
	created time.Time,
) *Transaction {
	return &Transaction{
		ID:                   id,
		AccountID:            accountID,
		DestinationAccountID: destinationAccountID,
		Amount:               amount,
		CreatedAt:            created,
	}
}

// IsDeposit reports whether the transaction has no source account.
func (t *Transaction) IsDeposit() bool {
	return t.AccountID == uuid.Nil
}

// Involves reports whether accountID is the source or destination.
func (t *Transaction) Involves(accountID uuid.UUID) bool {
	return t.AccountID == accountID || t.DestinationAccountID == accountID
}

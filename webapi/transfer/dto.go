package transfer

import (
	"encoding/json"

	"github.com/amirasaad/iebank/pkg/domain/account"
	"github.com/amirasaad/iebank/webapi/common"
	"github.com/shopspring/decimal"
)

// TransferRequest represents the request body for moving money between accounts.
// Amount accepts a JSON number or a decimal string.
type TransferRequest struct {
	SenderAccountID       string          `json:"sender_account_id" validate:"required,uuid"`
	ReceiverAccountNumber string          `json:"receiver_account_number" validate:"required,numeric,max=34"`
	Amount                decimal.Decimal `json:"amount" swaggertype:"number"`
}

// AddMoneyRequest represents the request body for crediting an account.
type AddMoneyRequest struct {
	AccountNumber string          `json:"account_number" validate:"required,numeric,max=34"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"number"`
}

// TransactionDTO is the API response representation of a transaction.
// AccountID is null for deposits.
type TransactionDTO struct {
	ID                   string      `json:"id"`
	Amount               json.Number `json:"amount" swaggertype:"number"`
	Currency             string      `json:"currency"`
	CreatedAt            string      `json:"created_at"`
	AccountID            *string     `json:"account_id"`
	DestinationAccountID string      `json:"destination_account_id"`
}

// ToTransactionDTO maps a domain transaction to its response shape.
func ToTransactionDTO(tx *account.Transaction) TransactionDTO {
	out := TransactionDTO{
		ID:                   tx.ID.String(),
		Amount:               json.Number(tx.Amount.StringFixed()),
		Currency:             tx.Amount.Currency().String(),
		CreatedAt:            common.FormatTime(tx.CreatedAt),
		DestinationAccountID: tx.DestinationAccountID.String(),
	}
	if !tx.IsDeposit() {
		src := tx.AccountID.String()
		out.AccountID = &src
	}
	return out
}

// ToTransactionDTOs maps a slice of transactions.
func ToTransactionDTOs(txs []*account.Transaction) []TransactionDTO {
	out := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, ToTransactionDTO(tx))
	}
	return out
}

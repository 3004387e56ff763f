package account

import (
	"encoding/json"

	"github.com/amirasaad/iebank/pkg/domain/account"
	"github.com/amirasaad/iebank/webapi/common"
)

// CreateAccountRequest represents the request body for opening an account.
type CreateAccountRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Currency string `json:"currency" validate:"omitempty,len=3,alpha"`
	Country  string `json:"country" validate:"max=64"`
}

// UpdateAccountRequest represents the request body for a partial account update.
type UpdateAccountRequest struct {
	Name   *string `json:"name" validate:"omitempty,max=100"`
	Status *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// AccountDTO is the API response representation of an account.
type AccountDTO struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	AccountNumber string      `json:"account_number"`
	Balance       json.Number `json:"balance" swaggertype:"number"`
	Currency      string      `json:"currency"`
	Country       string      `json:"country"`
	Status        string      `json:"status"`
	CreatedAt     string      `json:"created_at"`
	UserID        string      `json:"user_id"`
}

// ToAccountDTO maps a domain account to its response shape.
func ToAccountDTO(acc *account.Account) AccountDTO {
	return AccountDTO{
		ID:            acc.ID.String(),
		Name:          acc.Name,
		AccountNumber: acc.Number,
		Balance:       json.Number(acc.Balance.StringFixed()),
		Currency:      acc.Currency().String(),
		Country:       acc.Country,
		Status:        string(acc.Status),
		CreatedAt:     common.FormatTime(acc.CreatedAt),
		UserID:        acc.UserID.String(),
	}
}

// ToAccountDTOs maps a slice of accounts.
func ToAccountDTOs(accounts []*account.Account) []AccountDTO {
	out := make([]AccountDTO, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, ToAccountDTO(acc))
	}
	return out
}

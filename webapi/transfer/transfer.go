package transfer

import (
	"github.com/amirasaad/iebank/pkg/config"
	"github.com/amirasaad/iebank/pkg/middleware"
	authsvc "github.com/amirasaad/iebank/pkg/service/auth"
	transfersvc "github.com/amirasaad/iebank/pkg/service/transfer"
	"github.com/amirasaad/iebank/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// Routes registers the money movement and audit log routes.
//
// Routes:
//   - POST /transfer                  : Move money from an owned account to an account number.
//   - POST /add_money                 : Credit an account (admin only).
//   - GET  /transactions              : List transactions touching the caller's accounts.
//   - GET  /accounts/:id/transactions : List transactions of one account.
func Routes(
	app *fiber.App,
	transferSvc *transfersvc.Service,
	authSvc *authsvc.Service,
	cfg *config.Auth,
) {
	app.Post("/transfer", middleware.JwtProtected(cfg.Jwt), Transfer(transferSvc, authSvc))
	app.Post("/add_money", middleware.JwtProtected(cfg.Jwt), AddMoney(transferSvc, authSvc))
	app.Get("/transactions", middleware.JwtProtected(cfg.Jwt), ListTransactions(transferSvc, authSvc))
	app.Get("/accounts/:id/transactions", middleware.JwtProtected(cfg.Jwt), GetAccountTransactions(transferSvc, authSvc))
}

// Transfer returns a Fiber handler moving money between two accounts.
// @Summary Transfer funds
// @Description Moves amount from the sender account to the account with the given number. Both accounts must share a currency.
// @Tags transfers
// @Accept json
// @Produce json
// @Param request body TransferRequest true "Transfer details"
// @Success 200 {object} common.Response "Transfer successful"
// @Failure 400 {object} common.ProblemDetails "Invalid request"
// @Failure 401 {object} common.ProblemDetails "Unauthorized"
// @Failure 403 {object} common.ProblemDetails "Sender account belongs to another user"
// @Failure 404 {object} common.ProblemDetails "Account not found"
// @Failure 422 {object} common.ProblemDetails "Insufficient funds"
// @Failure 429 {object} common.ProblemDetails "Too many requests"
// @Failure 500 {object} common.ProblemDetails "Internal server error"
// @Router /transfer [post]
// @Security Bearer
func Transfer(transferSvc *transfersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.CurrentPrincipal(c, authSvc)
		if p == nil {
			return err
		}
		input, err := common.BindAndValidate[TransferRequest](c)
		if input == nil {
			return err // error response already written
		}
		senderID, err := uuid.Parse(input.SenderAccountID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid sender account ID", err, "Sender account ID must be a valid UUID", fiber.StatusBadRequest)
		}
		tx, err := transferSvc.Transfer(c.UserContext(), p, senderID, input.ReceiverAccountNumber, input.Amount)
		if err != nil {
			log.Errorf("Failed to transfer: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to transfer", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transfer successful", ToTransactionDTO(tx))
	}
}

// AddMoney returns a Fiber handler crediting an account from outside the ledger.
// @Summary Add money
// @Description Credits an account by number. Admin only.
// @Tags transfers
// @Accept json
// @Produce json
// @Param request body AddMoneyRequest true "Deposit details"
// @Success 200 {object} common.Response "Money added"
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /add_money [post]
// @Security Bearer
func AddMoney(transferSvc *transfersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.CurrentPrincipal(c, authSvc)
		if p == nil {
			return err
		}
		input, err := common.BindAndValidate[AddMoneyRequest](c)
		if input == nil {
			return err
		}
		tx, err := transferSvc.Deposit(c.UserContext(), p, input.AccountNumber, input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to add money", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Money added", ToTransactionDTO(tx))
	}
}

// ListTransactions returns a Fiber handler listing the caller's transactions.
// @Summary List transactions
// @Description Lists transactions touching any account the caller owns. Admins see all transactions.
// @Tags transfers
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /transactions [get]
// @Security Bearer
func ListTransactions(transferSvc *transfersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.CurrentPrincipal(c, authSvc)
		if p == nil {
			return err
		}
		txs, err := transferSvc.ListForPrincipal(c.UserContext(), p)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list transactions", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions fetched", fiber.Map{
			"transactions": ToTransactionDTOs(txs),
		})
	}
}

// GetAccountTransactions returns a Fiber handler listing one account's transactions.
// @Summary Get account transactions
// @Tags transfers
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /accounts/{id}/transactions [get]
// @Security Bearer
func GetAccountTransactions(transferSvc *transfersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.CurrentPrincipal(c, authSvc)
		if p == nil {
			return err
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err, "Account ID must be a valid UUID", fiber.StatusBadRequest)
		}
		txs, err := transferSvc.ListTransactions(c.UserContext(), p, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list transactions", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions fetched", fiber.Map{
			"transactions": ToTransactionDTOs(txs),
		})
	}
}

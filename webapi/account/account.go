package account

import (
	"github.com/amirasaad/iebank/pkg/config"
	"github.com/amirasaad/iebank/pkg/dto"
	"github.com/amirasaad/iebank/pkg/middleware"
	accountsvc "github.com/amirasaad/iebank/pkg/service/account"
	authsvc "github.com/amirasaad/iebank/pkg/service/auth"
	"github.com/amirasaad/iebank/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// Routes registers HTTP routes for account management. All routes require a
// valid token; single-account routes are limited to the owner or an admin.
//
// Routes:
//   - GET    /accounts      : List the caller's accounts (all accounts for admins).
//   - POST   /accounts      : Open an account owned by the caller.
//   - GET    /accounts/:id  : Retrieve an account.
//   - PUT    /accounts/:id  : Rename or change the status of an account.
//   - DELETE /accounts/:id  : Close an account with a zero balance.
func Routes(
	app *fiber.App,
	accountSvc *accountsvc.Service,
	authSvc *authsvc.Service,
	cfg *config.Auth,
) {
	app.Get("/accounts", middleware.JwtProtected(cfg.Jwt), ListAccounts(accountSvc, authSvc))
	app.Post("/accounts", middleware.JwtProtected(cfg.Jwt), CreateAccount(accountSvc, authSvc))
	app.Get("/accounts/:id", middleware.JwtProtected(cfg.Jwt), GetAccount(accountSvc, authSvc))
	app.Put("/accounts/:id", middleware.JwtProtected(cfg.Jwt), UpdateAccount(accountSvc, authSvc))
	app.Delete("/accounts/:id", middleware.JwtProtected(cfg.Jwt), DeleteAccount(accountSvc, authSvc))
}

// ListAccounts returns a Fiber handler listing accounts visible to the caller.
// @Summary List accounts
// @Description Lists the caller's accounts. Admins see every account.
// @Tags accounts
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Failure 429 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /accounts [get]
// @Security Bearer
func ListAccounts(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.CurrentPrincipal(c, authSvc)
		if p == nil {
			return err
		}
		accounts, err := accountSvc.List(c.UserContext(), p)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list accounts", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Accounts fetched", fiber.Map{
			"accounts": ToAccountDTOs(accounts),
		})
	}
}

// CreateAccount returns a Fiber handler for opening an account for the current user.
// @Summary Create a new account
// @Description Creates an active, zero-balance account owned by the caller. Currency defaults to USD.
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body CreateAccountRequest true "Account details"
// @Success 201 {object} common.Response "Account created successfully"
// @Failure 400 {object} common.ProblemDetails "Invalid request"
// @Failure 401 {object} common.ProblemDetails "Unauthorized"
// @Failure 429 {object} common.ProblemDetails "Too many requests"
// @Failure 500 {object} common.ProblemDetails "Internal server error"
// @Router /accounts [post]
// @Security Bearer
func CreateAccount(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.CurrentPrincipal(c, authSvc)
		if p == nil {
			return err
		}
		input, err := common.BindAndValidate[CreateAccountRequest](c)
		if input == nil {
			return err // error response already written
		}
		acc, err := accountSvc.Create(c.UserContext(), p, input.Name, input.Currency, input.Country)
		if err != nil {
			log.Errorf("Failed to create account: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to create account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account created", ToAccountDTO(acc))
	}
}

// GetAccount returns a Fiber handler retrieving one account.
// @Summary Get account
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /accounts/{id} [get]
// @Security Bearer
func GetAccount(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.CurrentPrincipal(c, authSvc)
		if p == nil {
			return err
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err, "Account ID must be a valid UUID", fiber.StatusBadRequest)
		}
		acc, err := accountSvc.Get(c.UserContext(), p, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account fetched", ToAccountDTO(acc))
	}
}

// UpdateAccount returns a Fiber handler applying a partial account update.
// Balances cannot be changed here.
// @Summary Update account
// @Tags accounts
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body UpdateAccountRequest true "Fields to change"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /accounts/{id} [put]
// @Security Bearer
func UpdateAccount(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.CurrentPrincipal(c, authSvc)
		if p == nil {
			return err
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err, "Account ID must be a valid UUID", fiber.StatusBadRequest)
		}
		input, err := common.BindAndValidate[UpdateAccountRequest](c)
		if input == nil {
			return err
		}
		acc, err := accountSvc.Update(c.UserContext(), p, id, dto.AccountUpdate{
			Name:   input.Name,
			Status: input.Status,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account updated", ToAccountDTO(acc))
	}
}

// DeleteAccount returns a Fiber handler closing an account.
// @Summary Delete account
// @Description Closes an account. The balance must be zero.
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /accounts/{id} [delete]
// @Security Bearer
func DeleteAccount(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.CurrentPrincipal(c, authSvc)
		if p == nil {
			return err
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err, "Account ID must be a valid UUID", fiber.StatusBadRequest)
		}
		if err := accountSvc.Delete(c.UserContext(), p, id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account deleted", nil)
	}
}

package auth

import (
	"errors"

	"github.com/amirasaad/iebank/pkg/config"
	"github.com/amirasaad/iebank/pkg/domain"
	"github.com/amirasaad/iebank/pkg/middleware"
	authsvc "github.com/amirasaad/iebank/pkg/service/auth"
	"github.com/amirasaad/iebank/webapi/common"
	userweb "github.com/amirasaad/iebank/webapi/user"
	"github.com/gofiber/fiber/v2"
)

func Routes(app *fiber.App, authSvc *authsvc.Service, cfg *config.Auth) {
	app.Post("/login", Login(authSvc))
	app.Post("/logout", middleware.JwtProtected(cfg.Jwt), Logout(authSvc))
	app.Get("/get_current_user", middleware.JwtProtected(cfg.Jwt), GetCurrentUser(authSvc))
}

// Login handles user authentication and returns a JWT token.
// @Summary User login
// @Description Authenticate user with identity (username or email) and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginInput true "Login credentials"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 429 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /login [post]
func Login(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[LoginInput](c)
		if input == nil {
			return err // Error already written by BindAndValidate
		}
		user, err := authSvc.Login(c.UserContext(), input.identity(), input.Password)
		if errors.Is(err, domain.ErrUnauthorized) {
			return common.ProblemDetailsJSON(c, "Invalid identity or password", err, "Identity or password is incorrect")
		}
		if err != nil {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		}
		token, err := authSvc.GenerateToken(user)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Login successful", fiber.Map{
			"token":    token,
			"is_admin": user.Admin,
		})
	}
}

// Logout acknowledges a logout. Tokens are stateless and expire on their own.
// @Summary User logout
// @Tags auth
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /logout [post]
// @Security Bearer
func Logout(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.CurrentPrincipal(c, authSvc)
		if p == nil {
			return err
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Logout successful", nil)
	}
}

// GetCurrentUser returns the user behind the bearer token.
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /get_current_user [get]
// @Security Bearer
func GetCurrentUser(authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.CurrentPrincipal(c, authSvc)
		if p == nil {
			return err
		}
		u, err := authSvc.CurrentUser(c.UserContext(), p)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Current user", userweb.ToUserDTO(u))
	}
}

package user

import (
	"github.com/amirasaad/iebank/pkg/config"
	"github.com/amirasaad/iebank/pkg/dto"
	"github.com/amirasaad/iebank/pkg/middleware"
	authsvc "github.com/amirasaad/iebank/pkg/service/auth"
	usersvc "github.com/amirasaad/iebank/pkg/service/user"
	"github.com/amirasaad/iebank/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// Routes registers the admin-only user management routes.
func Routes(app *fiber.App, userSvc *usersvc.Service, authSvc *authsvc.Service, cfg *config.Auth) {
	app.Get("/users", middleware.JwtProtected(cfg.Jwt), ListUsers(userSvc, authSvc))
	app.Post("/users", middleware.JwtProtected(cfg.Jwt), CreateUser(userSvc, authSvc))
	app.Post("/user/register", middleware.JwtProtected(cfg.Jwt), CreateUser(userSvc, authSvc))
	app.Get("/users/:id", middleware.JwtProtected(cfg.Jwt), GetUser(userSvc, authSvc))
	app.Put("/users/:id", middleware.JwtProtected(cfg.Jwt), UpdateUser(userSvc, authSvc))
	app.Delete("/users/:id", middleware.JwtProtected(cfg.Jwt), DeleteUser(userSvc, authSvc))
}

// ListUsers returns a Fiber handler listing all users.
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /users [get]
// @Security Bearer
func ListUsers(userSvc *usersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.CurrentPrincipal(c, authSvc)
		if p == nil {
			return err
		}
		users, err := userSvc.ListUsers(c.UserContext(), p)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list users", err)
		}
		out := make([]UserDTO, 0, len(users))
		for _, u := range users {
			out = append(out, ToUserDTO(u))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Users fetched", fiber.Map{"users": out})
	}
}

// CreateUser creates a new user account.
// @Summary Create a new user
// @Description Create a user with username, email, password and admin flag
// @Tags users
// @Accept json
// @Produce json
// @Param request body NewUser true "User creation data"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Failure 429 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /users [post]
// @Security Bearer
func CreateUser(userSvc *usersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.CurrentPrincipal(c, authSvc)
		if p == nil {
			return err
		}
		input, err := common.BindAndValidate[NewUser](c)
		if input == nil {
			return err // error response already written
		}
		u, err := userSvc.CreateUser(c.UserContext(), p, dto.UserCreate{
			Username: input.Username,
			Email:    input.Email,
			Password: input.Password,
			Admin:    input.Admin,
		})
		if err != nil {
			log.Errorf("Failed to create user: %v", err)
			return common.ProblemDetailsJSON(c, "Couldn't create user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "User created successfully", ToUserDTO(u))
	}
}

// GetUser returns a Fiber handler for retrieving a user by ID.
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /users/{id} [get]
// @Security Bearer
func GetUser(userSvc *usersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.CurrentPrincipal(c, authSvc)
		if p == nil {
			return err
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err, "User ID must be a valid UUID", fiber.StatusBadRequest)
		}
		u, err := userSvc.GetUser(c.UserContext(), p, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User found", ToUserDTO(u))
	}
}

// UpdateUser returns a Fiber handler applying a partial user update.
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body UpdateUserInput true "Fields to change"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /users/{id} [put]
// @Security Bearer
func UpdateUser(userSvc *usersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.CurrentPrincipal(c, authSvc)
		if p == nil {
			return err
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err, "User ID must be a valid UUID", fiber.StatusBadRequest)
		}
		input, err := common.BindAndValidate[UpdateUserInput](c)
		if input == nil {
			return err
		}
		u, err := userSvc.UpdateUser(c.UserContext(), p, id, dto.UserUpdate{
			Username: input.Username,
			Email:    input.Email,
			Password: input.Password,
			Admin:    input.Admin,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User updated", ToUserDTO(u))
	}
}

// DeleteUser returns a Fiber handler deleting a user who owns no accounts.
// @Summary Delete user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /users/{id} [delete]
// @Security Bearer
func DeleteUser(userSvc *usersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.CurrentPrincipal(c, authSvc)
		if p == nil {
			return err
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err, "User ID must be a valid UUID", fiber.StatusBadRequest)
		}
		if err := userSvc.DeleteUser(c.UserContext(), p, id); err != nil {
			return common.ProblemDetailsJSON(c, "Error deleting user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User deleted", nil)
	}
}

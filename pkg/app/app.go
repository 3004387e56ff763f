// Package app assembles the services from their dependencies.
package app

import (
	"context"
	"log/slog"

	"github.com/amirasaad/iebank/pkg/config"
	"github.com/amirasaad/iebank/pkg/repository"
	"github.com/amirasaad/iebank/pkg/service/access"
	"github.com/amirasaad/iebank/pkg/service/account"
	"github.com/amirasaad/iebank/pkg/service/auth"
	"github.com/amirasaad/iebank/pkg/service/transfer"
	"github.com/amirasaad/iebank/pkg/service/user"
)

// Deps contains the infrastructure the services are built on.
type Deps struct {
	Uow    repository.UnitOfWork
	Logger *slog.Logger
}

type App struct {
	Deps            *Deps
	Config          *config.App
	Gate            *access.Gate
	AuthService     *auth.Service
	UserService     *user.Service
	AccountService  *account.Service
	TransferService *transfer.Service
}

func New(deps *Deps, cfg *config.App) *App {
	gate := access.New(deps.Logger)
	return &App{
		Deps:            deps,
		Config:          cfg,
		Gate:            gate,
		AuthService:     auth.New(deps.Uow, cfg.Auth.Jwt, deps.Logger),
		UserService:     user.New(deps.Uow, gate, deps.Logger),
		AccountService:  account.New(deps.Uow, gate, deps.Logger),
		TransferService: transfer.New(deps.Uow, gate, deps.Logger),
	}
}

// Bootstrap creates the configured admin user when it does not exist yet.
func (a *App) Bootstrap(ctx context.Context) error {
	b := a.Config.Bootstrap
	if !b.Enabled() {
		a.Deps.Logger.Debug("Admin bootstrap skipped, no credentials configured")
		return nil
	}
	u, created, err := a.UserService.EnsureAdmin(ctx, b.AdminUsername, b.AdminEmail, b.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		a.Deps.Logger.Info("Bootstrap admin created", "username", u.Username)
	}
	return nil
}

// Package user provides business logic for user management operations.
// Every operation except the bootstrap helpers is restricted to admins.
package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/amirasaad/iebank/pkg/domain"
	"github.com/amirasaad/iebank/pkg/domain/user"
	"github.com/amirasaad/iebank/pkg/dto"
	"github.com/amirasaad/iebank/pkg/repository"
	"github.com/amirasaad/iebank/pkg/service/access"
	"github.com/amirasaad/iebank/pkg/utils"
	"github.com/google/uuid"
)

// Service provides business logic for user operations including creation, updates, and deletion.
type Service struct {
	uow    repository.UnitOfWork
	gate   *access.Gate
	logger *slog.Logger
}

// New creates a new Service with a UnitOfWork, access gate and logger.
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

// CreateUser creates a new user.
func (s *Service) CreateUser(
	ctx context.Context,
	principal *access.Principal,
	in dto.UserCreate,
) (u *user.User, err error) {
	log := s.logger.With("op", "CreateUser", "username", in.Username)
	if err = s.gate.RequireAdmin(principal); err != nil {
		return nil, err
	}
	u, err = s.create(ctx, in)
	if err != nil {
		log.Error("CreateUser failed", "error", err)
		return nil, err
	}
	log.Info("User created", "userID", u.ID)
	return u, nil
}

// CreateAdmin creates an admin user without a calling principal. It backs
// the command line bootstrap and EnsureAdmin.
func (s *Service) CreateAdmin(
	ctx context.Context,
	username, email, password string,
) (u *user.User, err error) {
	u, err = s.create(ctx, dto.UserCreate{
		Username: username,
		Email:    email,
		Password: password,
		Admin:    true,
	})
	if err != nil {
		s.logger.Error("CreateAdmin failed", "username", username, "error", err)
		return nil, err
	}
	s.logger.Info("Admin created", "userID", u.ID, "username", u.Username)
	return u, nil
}

// EnsureAdmin returns the user matching username or email, creating it as an
// admin when neither exists. created reports whether a user was added.
func (s *Service) EnsureAdmin(
	ctx context.Context,
	username, email, password string,
) (u *user.User, created bool, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err = repo.GetByUsername(ctx, strings.TrimSpace(username))
		if errors.Is(err, domain.ErrNotFound) {
			u, err = repo.GetByEmail(ctx, utils.NormalizeEmail(email))
		}
		return err
	})
	switch {
	case err == nil:
		return u, false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, false, err
	}
	u, err = s.CreateAdmin(ctx, username, email, password)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

// ListUsers returns all users.
func (s *Service) ListUsers(
	ctx context.Context,
	principal *access.Principal,
) (users []*user.User, err error) {
	if err = s.gate.RequireAdmin(principal); err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		users, err = repo.List(ctx)
		return err
	})
	if err != nil {
		s.logger.Error("ListUsers failed", "error", err)
		return nil, err
	}
	return users, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(
	ctx context.Context,
	principal *access.Principal,
	id uuid.UUID,
) (u *user.User, err error) {
	if err = s.gate.RequireAdmin(principal); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

// UpdateUser applies a partial update. A new password is validated and hashed
// before it reaches the repository.
func (s *Service) UpdateUser(
	ctx context.Context,
	principal *access.Principal,
	id uuid.UUID,
	update dto.UserUpdate,
) (u *user.User, err error) {
	log := s.logger.With("op", "UpdateUser", "userID", id)
	if err = s.gate.RequireAdmin(principal); err != nil {
		return nil, err
	}
	if update, err = prepareUpdate(update); err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		return repo.Update(ctx, id, update)
	})
	if err != nil {
		log.Error("UpdateUser failed", "error", err)
		return nil, err
	}
	if u, err = s.get(ctx, id); err != nil {
		return nil, err
	}
	log.Info("User updated")
	return u, nil
}

// DeleteUser removes a user who owns no accounts.
func (s *Service) DeleteUser(
	ctx context.Context,
	principal *access.Principal,
	id uuid.UUID,
) error {
	log := s.logger.With("op", "DeleteUser", "userID", id)
	if err := s.gate.RequireAdmin(principal); err != nil {
		return err
	}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		if _, err := users.Get(ctx, id); err != nil {
			return err
		}
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		owned, err := accounts.ListByUser(ctx, id)
		if err != nil {
			return err
		}
		if len(owned) > 0 {
			return user.ErrUserHasAccounts
		}
		return users.Delete(ctx, id)
	})
	if err != nil {
		log.Error("DeleteUser failed", "error", err)
		return err
	}
	log.Info("User deleted")
	return nil
}

func (s *Service) create(ctx context.Context, in dto.UserCreate) (u *user.User, err error) {
	u, err = user.NewUser(in.Username, in.Email, in.Password, in.Admin)
	if err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (u *user.User, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err = repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func prepareUpdate(update dto.UserUpdate) (dto.UserUpdate, error) {
	if update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		if err := user.ValidateUsername(username); err != nil {
			return update, err
		}
		update.Username = &username
	}
	if update.Email != nil {
		email := utils.NormalizeEmail(*update.Email)
		if err := user.ValidateEmail(email); err != nil {
			return update, err
		}
		update.Email = &email
	}
	if update.Password != nil {
		if err := user.ValidatePassword(*update.Password); err != nil {
			return update, err
		}
		hash, err := utils.HashPassword(*update.Password)
		if err != nil {
			return update, err
		}
		update.Password = &hash
	}
	return update, nil
}

package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/amirasaad/iebank/pkg/domain"
	"github.com/amirasaad/iebank/pkg/domain/account"
	"github.com/amirasaad/iebank/pkg/dto"
	"github.com/amirasaad/iebank/pkg/money"
	"github.com/amirasaad/iebank/pkg/repository"
	"github.com/amirasaad/iebank/pkg/service/access"
	"github.com/google/uuid"
)

// maxNumberAttempts bounds retries when a generated account number collides.
const maxNumberAttempts = 3

// Service manages account lifecycle. It never changes balances.
type Service struct {
	uow    repository.UnitOfWork
	gate   *access.Gate
	logger *slog.Logger
}

// New creates a new account service.
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

// Create opens an active, zero-balance account owned by the caller.
// An empty currency selects money.DefaultCode.
func (s *Service) Create(
	ctx context.Context,
	principal *access.Principal,
	name string,
	currency string,
	country string,
) (acc *account.Account, err error) {
	log := s.logger.With("op", "CreateAccount", "name", name, "currency", currency)
	if err = s.gate.Authenticated(principal); err != nil {
		return nil, err
	}
	code := money.DefaultCode
	if currency = strings.TrimSpace(currency); currency != "" {
		code = money.Code(strings.ToUpper(currency))
	}
	if !code.IsValid() {
		return nil, account.ErrInvalidCurrency
	}

	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		acc, err = account.New().
			WithUserID(principal.UserID).
			WithName(name).
			WithCurrency(code).
			WithCountry(country).
			Build()
		if err != nil {
			return nil, err
		}
		err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
			repo, err := uow.AccountRepository()
			if err != nil {
				return err
			}
			return repo.Create(ctx, acc)
		})
		if !errors.Is(err, domain.ErrAlreadyExists) {
			break
		}
		log.Warn("Account number collision, retrying", "attempt", attempt)
	}
	if err != nil {
		log.Error("CreateAccount failed", "error", err)
		return nil, err
	}
	log.Info("Account created", "accountID", acc.ID)
	return acc, nil
}

// List returns every account for admins, otherwise the caller's own.
func (s *Service) List(
	ctx context.Context,
	principal *access.Principal,
) (accounts []*account.Account, err error) {
	all, err := s.gate.SeesAllAccounts(principal)
	if err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		if all {
			accounts, err = repo.List(ctx)
		} else {
			accounts, err = repo.ListByUser(ctx, principal.UserID)
		}
		return err
	})
	if err != nil {
		s.logger.Error("ListAccounts failed", "error", err)
		return nil, err
	}
	return accounts, nil
}

// Get returns one account the caller owns, or any account for admins.
func (s *Service) Get(
	ctx context.Context,
	principal *access.Principal,
	id uuid.UUID,
) (acc *account.Account, err error) {
	if err = s.gate.Authenticated(principal); err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		acc, err = s.load(ctx, uow, principal, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// Update changes the name and/or status of an account.
func (s *Service) Update(
	ctx context.Context,
	principal *access.Principal,
	id uuid.UUID,
	update dto.AccountUpdate,
) (acc *account.Account, err error) {
	log := s.logger.With("op", "UpdateAccount", "accountID", id)
	if err = s.gate.Authenticated(principal); err != nil {
		return nil, err
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, account.ErrNameRequired
		}
		update.Name = &name
	}
	if update.Status != nil && !account.Status(*update.Status).IsValid() {
		return nil, account.ErrInvalidStatus
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if _, err := s.load(ctx, uow, principal, id); err != nil {
			return err
		}
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		return repo.Update(ctx, id, update)
	})
	if err != nil {
		log.Error("UpdateAccount failed", "error", err)
		return nil, err
	}
	// Re-read after commit; writes are not visible inside the unit.
	if err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		acc, err = repo.Get(ctx, id)
		return err
	}); err != nil {
		return nil, err
	}
	log.Info("Account updated")
	return acc, nil
}

// Delete closes an account. It fails with account.ErrNonZeroBalance while
// the account still holds funds.
func (s *Service) Delete(
	ctx context.Context,
	principal *access.Principal,
	id uuid.UUID,
) error {
	log := s.logger.With("op", "DeleteAccount", "accountID", id)
	if err := s.gate.Authenticated(principal); err != nil {
		return err
	}
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if _, err := s.load(ctx, uow, principal, id); err != nil {
			return err
		}
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		log.Error("DeleteAccount failed", "error", err)
		return err
	}
	log.Info("Account deleted")
	return nil
}

func (s *Service) load(
	ctx context.Context,
	uow repository.UnitOfWork,
	principal *access.Principal,
	id uuid.UUID,
) (*account.Account, error) {
	repo, err := uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	acc, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanAccessAccount(principal, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

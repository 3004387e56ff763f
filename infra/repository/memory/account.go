package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/amirasaad/iebank/pkg/domain"
	"github.com/amirasaad/iebank/pkg/domain/account"
	"github.com/amirasaad/iebank/pkg/dto"
	"github.com/google/uuid"
)

var errAccountNumberTaken = domain.NewError(domain.ErrAlreadyExists, "account number already in use")

type accountRepository struct {
	uow *UoW
}

func (r *accountRepository) Create(ctx context.Context, acc *account.Account) error {
	row := *acc
	return r.uow.write(func(tx *txn) error {
		tx.stage(op{
			check: func(s *Store) error {
				if _, ok := s.accounts[row.ID]; ok {
					return domain.NewError(domain.ErrAlreadyExists, "account already exists")
				}
				for _, other := range s.accounts {
					if other.Number == row.Number {
						return errAccountNumberTaken
					}
				}
				if _, ok := s.users[row.UserID]; !ok {
					return domain.NewError(domain.ErrValidation, "account owner does not exist")
				}
				return nil
			},
			apply: func(s *Store) { s.accounts[row.ID] = row },
		})
		return nil
	})
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return &acc, nil
}

func (r *accountRepository) GetByNumber(ctx context.Context, number string) (*account.Account, error) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, acc := range s.accounts {
		if acc.Number == number {
			return &acc, nil
		}
	}
	return nil, account.ErrAccountNotFound
}

func (r *accountRepository) List(ctx context.Context) ([]*account.Account, error) {
	return r.filter(func(*account.Account) bool { return true }), nil
}

func (r *accountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	return r.filter(func(a *account.Account) bool { return a.UserID == userID }), nil
}

func (r *accountRepository) filter(keep func(*account.Account) bool) []*account.Account {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*account.Account, 0)
	for _, acc := range s.accounts {
		if keep(&acc) {
			result = append(result, &acc)
		}
	}
	slices.SortFunc(result, func(a, b *account.Account) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Number, b.Number)
	})
	return result
}

func (r *accountRepository) Update(ctx context.Context, id uuid.UUID, update dto.AccountUpdate) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	if update.IsEmpty() {
		return nil
	}
	return r.uow.write(func(tx *txn) error {
		tx.stage(op{
			check: func(s *Store) error {
				if _, ok := s.accounts[id]; !ok {
					return account.ErrAccountNotFound
				}
				return nil
			},
			apply: func(s *Store) {
				acc := s.accounts[id]
				if update.Name != nil {
					acc.Name = *update.Name
				}
				if update.Status != nil {
					acc.Status = account.Status(*update.Status)
				}
				acc.UpdatedAt = time.Now().UTC()
				s.accounts[id] = acc
			},
		})
		return nil
	})
}

// Delete holds the account's row lock until commit so no credit can land
// between the balance check and the removal.
func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.uow.write(func(tx *txn) error {
		if err := tx.lock(ctx, id); err != nil {
			return err
		}
		acc, err := tx.account(id)
		if err != nil {
			return err
		}
		if err := acc.ValidateDelete(); err != nil {
			return err
		}
		tx.stage(op{
			check: func(s *Store) error {
				if _, ok := s.accounts[id]; !ok {
					return account.ErrAccountNotFound
				}
				return nil
			},
			apply: func(s *Store) { delete(s.accounts, id) },
		})
		return nil
	})
}

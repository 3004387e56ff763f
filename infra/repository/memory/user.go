package memory

import (
	"context"
	"slices"
	"time"

	"github.com/amirasaad/iebank/pkg/domain/user"
	"github.com/amirasaad/iebank/pkg/dto"
	"github.com/amirasaad/iebank/pkg/utils"
	"github.com/google/uuid"
)

type userRepository struct {
	uow *UoW
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	row := *u
	return r.uow.write(func(tx *txn) error {
		tx.stage(op{
			check: func(s *Store) error {
				if _, ok := s.users[row.ID]; ok {
					return user.ErrUserExists
				}
				return checkUnique(s, row.ID, row.Username, row.Email)
			},
			apply: func(s *Store) { s.users[row.ID] = row },
		})
		return nil
	})
}

func checkUnique(s *Store, self uuid.UUID, username, email string) error {
	for id, other := range s.users {
		if id == self {
			continue
		}
		if other.Username == username || other.Email == email {
			return user.ErrUserExists
		}
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.first(func(u *user.User) bool { return u.ID == id })
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	email = utils.NormalizeEmail(email)
	return r.first(func(u *user.User) bool { return u.Email == email })
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.first(func(u *user.User) bool { return u.Username == username })
}

func (r *userRepository) first(match func(*user.User) bool) (*user.User, error) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(&u) {
			return &u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *userRepository) List(ctx context.Context) ([]*user.User, error) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*user.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, &u)
	}
	slices.SortFunc(result, func(a, b *user.User) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return result, nil
}

func (r *userRepository) Update(ctx context.Context, id uuid.UUID, update dto.UserUpdate) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	if update.IsEmpty() {
		return nil
	}
	return r.uow.write(func(tx *txn) error {
		tx.stage(op{
			check: func(s *Store) error {
				u, ok := s.users[id]
				if !ok {
					return user.ErrUserNotFound
				}
				applyUserUpdate(&u, update)
				return checkUnique(s, id, u.Username, u.Email)
			},
			apply: func(s *Store) {
				u := s.users[id]
				applyUserUpdate(&u, update)
				u.UpdatedAt = time.Now().UTC()
				s.users[id] = u
			},
		})
		return nil
	})
}

func applyUserUpdate(u *user.User, update dto.UserUpdate) {
	if update.Username != nil {
		u.Username = *update.Username
	}
	if update.Email != nil {
		u.Email = utils.NormalizeEmail(*update.Email)
	}
	if update.Password != nil {
		u.Password = *update.Password
	}
	if update.Admin != nil {
		u.Admin = *update.Admin
	}
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return r.uow.write(func(tx *txn) error {
		tx.stage(op{
			check: func(s *Store) error {
				if _, ok := s.users[id]; !ok {
					return user.ErrUserNotFound
				}
				for _, acc := range s.accounts {
					if acc.UserID == id {
						return user.ErrUserHasAccounts
					}
				}
				return nil
			},
			apply: func(s *Store) { delete(s.users, id) },
		})
		return nil
	})
}

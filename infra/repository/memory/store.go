// Package memory is an in-process implementation of the repository contracts.
//
// Writes made inside UoW.Do are staged and become visible together when fn
// returns nil. Balance changes take per-account locks, acquired in id order
// and held until the unit commits or rolls back, so concurrent transfers over
// the same accounts serialize the way SELECT ... FOR UPDATE does in PostgreSQL.
// Reads always see committed state.
package memory

import (
	"bytes"
	"context"
	"slices"
	"sync"

	"github.com/amirasaad/iebank/pkg/domain"
	"github.com/amirasaad/iebank/pkg/domain/account"
	"github.com/amirasaad/iebank/pkg/domain/user"
	"github.com/amirasaad/iebank/pkg/money"
	"github.com/amirasaad/iebank/pkg/repository"
	"github.com/google/uuid"
)

// Store holds committed state.
type Store struct {
	mu           sync.RWMutex
	accounts     map[uuid.UUID]account.Account
	users        map[uuid.UUID]user.User
	transactions []account.Transaction

	locksMu sync.Mutex
	locks   map[uuid.UUID]chan struct{}
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[uuid.UUID]account.Account),
		users:    make(map[uuid.UUID]user.User),
		locks:    make(map[uuid.UUID]chan struct{}),
	}
}

func (s *Store) rowLock(id uuid.UUID) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[id] = l
	}
	return l
}

// op is a staged write. check runs for every op before any apply, both under
// the store write lock.
type op struct {
	check func(s *Store) error
	apply func(s *Store)
}

type txn struct {
	store  *Store
	held   map[uuid.UUID]chan struct{}
	deltas map[uuid.UUID]int64
	ops    []op
}

func newTxn(s *Store) *txn {
	return &txn{
		store:  s,
		held:   make(map[uuid.UUID]chan struct{}),
		deltas: make(map[uuid.UUID]int64),
	}
}

// lock acquires the row locks for ids in a global order.
func (t *txn) lock(ctx context.Context, ids ...uuid.UUID) error {
	sorted := slices.Clone(ids)
	slices.SortFunc(sorted, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	for _, id := range slices.Compact(sorted) {
		if _, ok := t.held[id]; ok {
			continue
		}
		l := t.store.rowLock(id)
		select {
		case l <- struct{}{}:
			t.held[id] = l
		case <-ctx.Done():
			return domain.Wrap(domain.ErrPersistence, ctx.Err())
		}
	}
	return nil
}

func (t *txn) release() {
	for id, l := range t.held {
		<-l
		delete(t.held, id)
	}
}

func (t *txn) stage(o op) {
	t.ops = append(t.ops, o)
}

// account returns the committed account with this unit's pending balance change applied.
func (t *txn) account(id uuid.UUID) (account.Account, error) {
	t.store.mu.RLock()
	acc, ok := t.store.accounts[id]
	t.store.mu.RUnlock()
	if !ok {
		return account.Account{}, account.ErrAccountNotFound
	}
	if d := t.deltas[id]; d != 0 {
		bal, err := money.NewFromSmallestUnit(acc.Balance.Amount()+d, acc.Currency())
		if err != nil {
			return account.Account{}, err
		}
		acc.Balance = bal
	}
	return acc, nil
}

func (t *txn) commit() error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range t.ops {
		if o.check == nil {
			continue
		}
		if err := o.check(s); err != nil {
			return err
		}
	}
	balances, err := t.settle(s)
	if err != nil {
		return err
	}
	for _, o := range t.ops {
		o.apply(s)
	}
	for id, bal := range balances {
		acc, ok := s.accounts[id]
		if !ok {
			continue
		}
		acc.Balance = bal
		s.accounts[id] = acc
	}
	return nil
}

// settle computes the post-commit balance of every account with a pending
// delta. Rows with deltas are locked by this unit, so they still exist.
func (t *txn) settle(s *Store) (map[uuid.UUID]money.Money, error) {
	balances := make(map[uuid.UUID]money.Money, len(t.deltas))
	for id, d := range t.deltas {
		acc, ok := s.accounts[id]
		if !ok {
			return nil, account.ErrAccountNotFound
		}
		sum, ok := money.AddInt64(acc.Balance.Amount(), d)
		if !ok {
			return nil, account.ErrBalanceOverflow
		}
		if sum < 0 {
			return nil, account.ErrInsufficientFunds
		}
		bal, err := money.NewFromSmallestUnit(sum, acc.Currency())
		if err != nil {
			return nil, err
		}
		balances[id] = bal
	}
	return balances, nil
}

// UoW implements repository.UnitOfWork on a Store.
type UoW struct {
	store *Store
	tx    *txn
}

// NewUoW creates a new UoW over store.
func NewUoW(store *Store) *UoW {
	return &UoW{store: store}
}

// Do runs fn with staged writes that commit together when fn returns nil.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return domain.Wrap(domain.ErrPersistence, err)
	}
	tx := newTxn(u.store)
	defer tx.release()
	if err := fn(&UoW{store: u.store, tx: tx}); err != nil {
		return err
	}
	return tx.commit()
}

// write runs fn in the current unit, or in a single-statement unit outside Do.
func (u *UoW) write(fn func(tx *txn) error) error {
	if u.tx != nil {
		return fn(u.tx)
	}
	tx := newTxn(u.store)
	defer tx.release()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit()
}

func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	return &accountRepository{uow: u}, nil
}

func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	return &transactionRepository{uow: u}, nil
}

func (u *UoW) UserRepository() (repository.UserRepository, error) {
	return &userRepository{uow: u}, nil
}

func (u *UoW) LedgerRepository() (repository.LedgerRepository, error) {
	if u.tx == nil {
		return nil, repository.ErrNoTransaction
	}
	return &ledgerRepository{tx: u.tx}, nil
}

package fixtures

import (
	"context"

	"github.com/amirasaad/iebank/pkg/repository"
	"github.com/stretchr/testify/mock"
)

// MockUnitOfWork is a testify mock of repository.UnitOfWork.
type MockUnitOfWork struct {
	mock.Mock
}

// NewMockUnitOfWork creates a MockUnitOfWork whose expectations are asserted on cleanup.
func NewMockUnitOfWork(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUnitOfWork {
	m := &MockUnitOfWork{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUnitOfWork) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() (repository.AccountRepository, error) {
	args := m.Called()
	repo, _ := args.Get(0).(repository.AccountRepository)
	return repo, args.Error(1)
}

func (m *MockUnitOfWork) TransactionRepository() (repository.TransactionRepository, error) {
	args := m.Called()
	repo, _ := args.Get(0).(repository.TransactionRepository)
	return repo, args.Error(1)
}

func (m *MockUnitOfWork) UserRepository() (repository.UserRepository, error) {
	args := m.Called()
	repo, _ := args.Get(0).(repository.UserRepository)
	return repo, args.Error(1)
}

func (m *MockUnitOfWork) LedgerRepository() (repository.LedgerRepository, error) {
	args := m.Called()
	repo, _ := args.Get(0).(repository.LedgerRepository)
	return repo, args.Error(1)
}

package transaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amirasaad/iebank/pkg/domain"
	"github.com/amirasaad/iebank/pkg/domain/account"
	"github.com/amirasaad/iebank/pkg/money"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var columns = []string{"id", "account_id", "destination_account_id", "amount", "currency", "created_at"}

func newMockRepo(t *testing.T) (*transactionRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDb.Close() }) //nolint:errcheck
	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return &transactionRepository{db: db}, mock
}

func TestTransactionRepository_Append(t *testing.T) {
	assert := assert.New(t)
	repo, mock := newMockRepo(t)
	amount, err := money.NewFromSmallestUnit(100, money.USD)
	require.NoError(t, err)
	tx := account.NewTransactionFromData(uuid.New(), uuid.Nil, uuid.New(), amount, time.Now())

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "transactions" (.+) VALUES (.+)`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	assert.NoError(repo.Append(context.Background(), tx))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "transactions" (.+) VALUES (.+)`).
		WillReturnError(errors.New("create error"))
	mock.ExpectRollback()
	err = repo.Append(context.Background(), tx)
	assert.ErrorIs(err, domain.ErrPersistence)
	assert.NoError(mock.ExpectationsWereMet())
}

func TestTransactionRepository_ListByAccount(t *testing.T) {
	require := require.New(t)
	repo, mock := newMockRepo(t)
	accID, other := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE account_id = .* OR destination_account_id = .* ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(uuid.New().String(), accID.String(), other.String(), int64(250), "USD", now).
			AddRow(uuid.New().String(), nil, accID.String(), int64(1000), "USD", now.Add(-time.Hour)))

	txs, err := repo.ListByAccount(context.Background(), accID)
	require.NoError(err)
	require.Len(txs, 2)
	require.Equal(accID, txs[0].AccountID)
	require.Equal("2.50 USD", txs[0].Amount.String())
	require.True(txs[1].IsDeposit())
	require.NoError(mock.ExpectationsWereMet())
}

func TestTransactionRepository_ListByAccountsEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)
	txs, err := repo.ListByAccounts(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, txs)
	require.NoError(t, mock.ExpectationsWereMet())
}

package account

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amirasaad/iebank/pkg/domain"
	domainaccount "github.com/amirasaad/iebank/pkg/domain/account"
	"github.com/amirasaad/iebank/pkg/dto"
	"github.com/amirasaad/iebank/pkg/money"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var columns = []string{
	"id", "user_id", "name", "account_number", "balance", "currency",
	"country", "status", "created_at", "updated_at", "deleted_at",
}

func newMockRepo(t *testing.T) (*accountRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDb.Close() }) //nolint:errcheck
	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return &accountRepository{db: db}, mock
}

func newAccount(t *testing.T) *domainaccount.Account {
	t.Helper()
	acc, err := domainaccount.New().
		WithUserID(uuid.New()).
		WithName("Everyday").
		WithCurrency(money.EUR).
		WithCountry("Spain").
		Build()
	require.NoError(t, err)
	return acc
}

func TestAccountRepository_Create(t *testing.T) {
	assert := assert.New(t)
	repo, mock := newMockRepo(t)
	acc := newAccount(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "accounts" (.+) VALUES (.+)`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	assert.NoError(repo.Create(context.Background(), acc))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "accounts" (.+) VALUES (.+)`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_accounts_account_number"})
	mock.ExpectRollback()
	err := repo.Create(context.Background(), acc)
	assert.ErrorIs(err, domain.ErrAlreadyExists)

	assert.NoError(mock.ExpectationsWereMet())
}

func TestAccountRepository_Get(t *testing.T) {
	require := require.New(t)
	repo, mock := newMockRepo(t)

	id, userID := uuid.New(), uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE id = .*`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(id.String(), userID.String(), "Savings", "12345678901234567890", int64(1999), "GBP", "UK", "active", now, now, nil))

	acc, err := repo.Get(context.Background(), id)
	require.NoError(err)
	require.Equal(id, acc.ID)
	require.Equal(userID, acc.UserID)
	require.Equal("12345678901234567890", acc.Number)
	require.Equal("19.99 GBP", acc.Balance.String())

	mock.ExpectQuery(`SELECT \* FROM "accounts"`).WillReturnRows(sqlmock.NewRows(columns))
	_, err = repo.Get(context.Background(), uuid.New())
	require.ErrorIs(err, domainaccount.ErrAccountNotFound)

	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE account_number = .*`).
		WillReturnRows(sqlmock.NewRows(columns))
	_, err = repo.GetByNumber(context.Background(), "0")
	require.ErrorIs(err, domain.ErrNotFound)
	require.NoError(mock.ExpectationsWereMet())
}

func TestAccountRepository_Update(t *testing.T) {
	require := require.New(t)
	repo, mock := newMockRepo(t)
	name := "Renamed"

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "accounts" SET .*"name"=.*`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(repo.Update(context.Background(), uuid.New(), dto.AccountUpdate{Name: &name}))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "accounts"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	err := repo.Update(context.Background(), uuid.New(), dto.AccountUpdate{Name: &name})
	require.ErrorIs(err, domainaccount.ErrAccountNotFound)
	require.NoError(mock.ExpectationsWereMet())
}

func TestAccountRepository_Delete(t *testing.T) {
	require := require.New(t)
	repo, mock := newMockRepo(t)
	id := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "accounts" SET "deleted_at"=.* balance = 0`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(repo.Delete(context.Background(), id))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "accounts" SET "deleted_at"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM "accounts"`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(id.String(), uuid.New().String(), "Savings", "12345678901234567890", int64(5), "USD", "", "active", now, now, nil))
	err := repo.Delete(context.Background(), id)
	require.ErrorIs(err, domainaccount.ErrNonZeroBalance)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "accounts" SET "deleted_at"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM "accounts"`).WillReturnRows(sqlmock.NewRows(columns))
	err = repo.Delete(context.Background(), id)
	require.ErrorIs(err, domainaccount.ErrAccountNotFound)
	require.NoError(mock.ExpectationsWereMet())
}

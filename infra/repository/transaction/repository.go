package transaction

import (
	"context"
	"errors"

	"github.com/amirasaad/iebank/infra"
	"github.com/amirasaad/iebank/infra/repository/model"
	"github.com/amirasaad/iebank/pkg/domain"
	"github.com/amirasaad/iebank/pkg/domain/account"
	"github.com/amirasaad/iebank/pkg/money"
	"github.com/amirasaad/iebank/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTransactionNotFound is returned when a transaction id is unknown.
var ErrTransactionNotFound = domain.NewError(domain.ErrNotFound, "transaction not found")

type transactionRepository struct {
	db *gorm.DB
}

// New creates a transaction repository using the provided *gorm.DB.
func New(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

// Append implements repository.TransactionRepository.
func (r *transactionRepository) Append(ctx context.Context, tx *account.Transaction) error {
	row := model.Transaction{
		ID:                   tx.ID,
		DestinationAccountID: tx.DestinationAccountID,
		Amount:               tx.Amount.Amount(),
		Currency:             tx.Amount.Currency().String(),
		CreatedAt:            tx.CreatedAt,
	}
	if !tx.IsDeposit() {
		src := tx.AccountID
		row.AccountID = &src
	}
	return infra.MapGormErrorToDomain(r.db.WithContext(ctx).Create(&row).Error)
}

// Get implements repository.TransactionRepository.
func (r *transactionRepository) Get(ctx context.Context, id uuid.UUID) (*account.Transaction, error) {
	var row model.Transaction
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, infra.MapGormErrorToDomain(err)
	}
	return mapModelToDomain(&row)
}

// List implements repository.TransactionRepository.
func (r *transactionRepository) List(ctx context.Context) ([]*account.Transaction, error) {
	return r.find(r.db.WithContext(ctx))
}

// ListByAccount implements repository.TransactionRepository.
func (r *transactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*account.Transaction, error) {
	return r.find(r.db.WithContext(ctx).
		Where("account_id = ? OR destination_account_id = ?", accountID, accountID))
}

// ListByAccounts implements repository.TransactionRepository.
func (r *transactionRepository) ListByAccounts(ctx context.Context, accountIDs []uuid.UUID) ([]*account.Transaction, error) {
	if len(accountIDs) == 0 {
		return []*account.Transaction{}, nil
	}
	return r.find(r.db.WithContext(ctx).
		Where("account_id IN ? OR destination_account_id IN ?", accountIDs, accountIDs))
}

func (r *transactionRepository) find(q *gorm.DB) ([]*account.Transaction, error) {
	var rows []model.Transaction
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, infra.MapGormErrorToDomain(err)
	}
	result := make([]*account.Transaction, 0, len(rows))
	for i := range rows {
		tx, err := mapModelToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	return result, nil
}

func mapModelToDomain(row *model.Transaction) (*account.Transaction, error) {
	amount, err := money.NewFromSmallestUnit(row.Amount, money.Code(row.Currency))
	if err != nil {
		return nil, err
	}
	var src uuid.UUID
	if row.AccountID != nil {
		src = *row.AccountID
	}
	return account.NewTransactionFromData(row.ID, src, row.DestinationAccountID, amount, row.CreatedAt), nil
}

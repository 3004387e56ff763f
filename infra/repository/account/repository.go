package account

import (
	"context"
	"errors"

	"github.com/amirasaad/iebank/infra"
	"github.com/amirasaad/iebank/infra/repository/model"
	domainaccount "github.com/amirasaad/iebank/pkg/domain/account"
	"github.com/amirasaad/iebank/pkg/dto"
	"github.com/amirasaad/iebank/pkg/money"
	"github.com/amirasaad/iebank/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

// New creates an account repository using the provided *gorm.DB.
func New(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

// Create implements repository.AccountRepository.
func (r *accountRepository) Create(ctx context.Context, acc *domainaccount.Account) error {
	row := mapDomainToModel(acc)
	return infra.MapGormErrorToDomain(r.db.WithContext(ctx).Create(&row).Error)
}

// Get implements repository.AccountRepository.
func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*domainaccount.Account, error) {
	var row model.Account
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, mapLookupError(err)
	}
	return MapModelToDomain(&row)
}

// GetByNumber implements repository.AccountRepository.
func (r *accountRepository) GetByNumber(ctx context.Context, number string) (*domainaccount.Account, error) {
	var row model.Account
	if err := r.db.WithContext(ctx).Where("account_number = ?", number).First(&row).Error; err != nil {
		return nil, mapLookupError(err)
	}
	return MapModelToDomain(&row)
}

// List implements repository.AccountRepository.
func (r *accountRepository) List(ctx context.Context) ([]*domainaccount.Account, error) {
	var rows []model.Account
	if err := r.db.WithContext(ctx).Order("created_at").Find(&rows).Error; err != nil {
		return nil, infra.MapGormErrorToDomain(err)
	}
	return mapModelsToDomain(rows)
}

// ListByUser implements repository.AccountRepository.
func (r *accountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domainaccount.Account, error) {
	var rows []model.Account
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&rows).Error; err != nil {
		return nil, infra.MapGormErrorToDomain(err)
	}
	return mapModelsToDomain(rows)
}

// Update implements repository.AccountRepository.
func (r *accountRepository) Update(ctx context.Context, id uuid.UUID, update dto.AccountUpdate) error {
	updates := mapUpdateDTOToModel(update)
	if len(updates) == 0 {
		_, err := r.Get(ctx, id)
		return err
	}
	res := r.db.WithContext(ctx).Model(&model.Account{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return infra.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domainaccount.ErrAccountNotFound
	}
	return nil
}

// Delete implements repository.AccountRepository. The zero-balance condition is
// part of the statement so a concurrent credit cannot slip in between.
func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND balance = 0", id).Delete(&model.Account{})
	if res.Error != nil {
		return infra.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return domainaccount.ErrNonZeroBalance
}

func mapLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainaccount.ErrAccountNotFound
	}
	return infra.MapGormErrorToDomain(err)
}

// mapUpdateDTOToModel maps AccountUpdate DTO to a map for GORM Updates.
func mapUpdateDTOToModel(update dto.AccountUpdate) map[string]any {
	updates := make(map[string]any)
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.Status != nil {
		updates["status"] = *update.Status
	}
	return updates
}

func mapDomainToModel(acc *domainaccount.Account) model.Account {
	return model.Account{
		ID:            acc.ID,
		UserID:        acc.UserID,
		Name:          acc.Name,
		AccountNumber: acc.Number,
		Balance:       acc.Balance.Amount(),
		Currency:      acc.Currency().String(),
		Country:       acc.Country,
		Status:        string(acc.Status),
		CreatedAt:     acc.CreatedAt,
		UpdatedAt:     acc.UpdatedAt,
	}
}

// MapModelToDomain hydrates a domain account from its row.
func MapModelToDomain(row *model.Account) (*domainaccount.Account, error) {
	return domainaccount.New().
		WithID(row.ID).
		WithUserID(row.UserID).
		WithName(row.Name).
		WithNumber(row.AccountNumber).
		WithBalance(row.Balance).
		WithCurrency(money.Code(row.Currency)).
		WithCountry(row.Country).
		WithStatus(domainaccount.Status(row.Status)).
		WithCreatedAt(row.CreatedAt).
		WithUpdatedAt(row.UpdatedAt).
		Build()
}

func mapModelsToDomain(rows []model.Account) ([]*domainaccount.Account, error) {
	result := make([]*domainaccount.Account, 0, len(rows))
	for i := range rows {
		acc, err := MapModelToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, acc)
	}
	return result, nil
}

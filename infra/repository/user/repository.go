package user

import (
	"context"
	"errors"

	"github.com/amirasaad/iebank/infra"
	"github.com/amirasaad/iebank/infra/repository/model"
	"github.com/amirasaad/iebank/pkg/domain"
	domainuser "github.com/amirasaad/iebank/pkg/domain/user"
	"github.com/amirasaad/iebank/pkg/dto"
	"github.com/amirasaad/iebank/pkg/repository"
	"github.com/amirasaad/iebank/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// New creates a user repository using the provided *gorm.DB.
func New(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create implements repository.UserRepository.
func (r *userRepository) Create(ctx context.Context, u *domainuser.User) error {
	row := model.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.Password,
		Admin:     u.Admin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	return mapWriteError(r.db.WithContext(ctx).Create(&row).Error)
}

// Get implements repository.UserRepository.
func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*domainuser.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByEmail implements repository.UserRepository.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	return r.first(ctx, "email = ?", utils.NormalizeEmail(email))
}

// GetByUsername implements repository.UserRepository.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domainuser.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *userRepository) first(ctx context.Context, query string, args ...any) (*domainuser.User, error) {
	var row model.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainuser.ErrUserNotFound
		}
		return nil, infra.MapGormErrorToDomain(err)
	}
	return mapModelToDomain(&row), nil
}

// List implements repository.UserRepository.
func (r *userRepository) List(ctx context.Context) ([]*domainuser.User, error) {
	var rows []model.User
	if err := r.db.WithContext(ctx).Order("created_at").Find(&rows).Error; err != nil {
		return nil, infra.MapGormErrorToDomain(err)
	}
	users := make([]*domainuser.User, 0, len(rows))
	for i := range rows {
		users = append(users, mapModelToDomain(&rows[i]))
	}
	return users, nil
}

// Update implements repository.UserRepository.
func (r *userRepository) Update(ctx context.Context, id uuid.UUID, update dto.UserUpdate) error {
	updates := make(map[string]any)
	if update.Username != nil {
		updates["username"] = *update.Username
	}
	if update.Email != nil {
		updates["email"] = utils.NormalizeEmail(*update.Email)
	}
	if update.Password != nil {
		updates["password"] = *update.Password
	}
	if update.Admin != nil {
		updates["admin"] = *update.Admin
	}
	if len(updates) == 0 {
		_, err := r.Get(ctx, id)
		return err
	}
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return mapWriteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domainuser.ErrUserNotFound
	}
	return nil
}

// Delete implements repository.UserRepository.
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return infra.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domainuser.ErrUserNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	err = infra.MapGormErrorToDomain(err)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return domainuser.ErrUserExists
	}
	return err
}

func mapModelToDomain(row *model.User) *domainuser.User {
	return domainuser.NewUserFromData(
		row.ID,
		row.Username,
		row.Email,
		row.Password,
		row.Admin,
		row.CreatedAt,
		row.UpdatedAt,
	)
}

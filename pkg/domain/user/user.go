package user

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/amirasaad/iebank/pkg/domain"
	"github.com/amirasaad/iebank/pkg/utils"
	"github.com/google/uuid"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 6
)

var (
	// ErrUserNotFound is returned when a user cannot be found in the
	// repository.
	ErrUserNotFound = domain.NewError(domain.ErrNotFound, "user not found")
	// ErrUserUnauthorized is returned when credentials do not match.
	ErrUserUnauthorized = domain.NewError(domain.ErrUnauthorized, "invalid credentials")
	// ErrUserExists is returned when the username or email is taken.
	ErrUserExists = domain.NewError(domain.ErrAlreadyExists, "username or email already in use")
	// ErrUserHasAccounts is returned when deleting a user who still owns accounts.
	ErrUserHasAccounts = domain.NewError(domain.ErrValidation, "user still owns accounts")
	ErrInvalidUsername = domain.NewError(domain.ErrValidation, "username must be between 3 and 50 characters")
	ErrInvalidEmail    = domain.NewError(domain.ErrValidation, "invalid email address")
	ErrInvalidPassword = domain.NewError(domain.ErrValidation, "password must be at least 6 characters")
)

// User represents a user in the system. Password holds the bcrypt hash.
type User struct {
	ID        uuid.UUID
	Username  string
	Email     string
	Password  string
	Admin     bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser validates the fields and creates a User with a hashed password.
func NewUser(username, email, password string, admin bool) (*User, error) {
	username = strings.TrimSpace(username)
	email = utils.NormalizeEmail(email)
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Password:  hashedPassword,
		Admin:     admin,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewUserFromData creates a User from raw data (used for DB hydration).
func NewUserFromData(
	id uuid.UUID,
	username, email, password string,
	admin bool,
	created, updated time.Time,
) *User {
	return &User{
		ID:        id,
		Username:  username,
		Email:     email,
		Password:  password,
		Admin:     admin,
		CreatedAt: created,
		UpdatedAt: updated,
	}
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return utils.CheckPasswordHash(password, u.Password)
}

func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLength || n > MaxUsernameLength {
		return ErrInvalidUsername
	}
	return nil
}

func ValidateEmail(email string) error {
	if !utils.IsEmail(email) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}

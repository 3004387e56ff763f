package user

import (
	"github.com/amirasaad/iebank/pkg/domain/user"
	"github.com/amirasaad/iebank/webapi/common"
)

// NewUser represents the request body for creating a new user.
type NewUser struct {
	Username string `json:"username" validate:"required,max=50,min=3"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Admin    bool   `json:"admin"`
}

// UpdateUserInput represents the request body for a partial user update.
// Absent fields are left unchanged.
type UpdateUserInput struct {
	Username *string `json:"username" validate:"omitempty,max=50,min=3"`
	Email    *string `json:"email" validate:"omitempty,email,max=254"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
	Admin    *bool   `json:"admin"`
}

// UserDTO is the API response representation of a user. The password hash is
// never rendered.
type UserDTO struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Admin     bool   `json:"admin"`
	CreatedAt string `json:"created_at"`
}

// ToUserDTO maps a domain user to its response shape.
func ToUserDTO(u *user.User) UserDTO {
	return UserDTO{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		Admin:     u.Admin,
		CreatedAt: common.FormatTime(u.CreatedAt),
	}
}

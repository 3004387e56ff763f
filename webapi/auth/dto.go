package auth

// LoginInput represents the request body for user authentication.
// Identity may be a username or an email; Email is accepted for older clients.
type LoginInput struct {
	Identity string `json:"identity" validate:"required_without=Email"`
	Email    string `json:"email" validate:"required_without=Identity"`
	Password string `json:"password" validate:"required"`
}

func (in LoginInput) identity() string {
	if in.Identity != "" {
		return in.Identity
	}
	return in.Email
}

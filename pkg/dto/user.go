package dto

// UserCreate is a DTO for creating a new user. Password is plain text.
type UserCreate struct {
	Username string
	Email    string
	Password string
	Admin    bool
}

// UserUpdate is a DTO for updating one or more fields of a user.
// At the service boundary Password is plain text; repositories receive the hash.
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string
	Admin    *bool
}

// IsEmpty reports whether the update changes nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.Email == nil && u.Password == nil && u.Admin == nil
}

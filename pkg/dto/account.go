package dto

// AccountUpdate is a DTO for updating one or more fields of an account.
// Balances are deliberately absent: they change only through the ledger.
type AccountUpdate struct {
	Name   *string // Optional name update
	Status *string // Optional status update
}

// IsEmpty reports whether the update changes nothing.
func (u AccountUpdate) IsEmpty() bool {
	return u.Name == nil && u.Status == nil
}

// Package access decides who may read or change accounts and users.
package access

import (
	"log/slog"

	"github.com/amirasaad/iebank/pkg/domain"
	"github.com/amirasaad/iebank/pkg/domain/account"
	"github.com/google/uuid"
)

var (
	// ErrUnauthenticated is returned for gated operations without a principal.
	ErrUnauthenticated = domain.NewError(domain.ErrUnauthorized, "authentication required")
	// ErrNotOwner is returned when a non-admin touches an account they do not own.
	ErrNotOwner = domain.NewError(domain.ErrForbidden, "account belongs to another user")
	// ErrAdminRequired is returned when a non-admin attempts an admin-only operation.
	ErrAdminRequired = domain.NewError(domain.ErrForbidden, "admin privileges required")
)

// Principal is the authenticated caller.
type Principal struct {
	UserID uuid.UUID
	Admin  bool
}

// IsAuthenticated reports whether p identifies a user.
func (p *Principal) IsAuthenticated() bool {
	return p != nil && p.UserID != uuid.Nil
}

// Gate evaluates access rules and logs denials.
type Gate struct {
	logger *slog.Logger
}

// New creates a Gate.
func New(logger *slog.Logger) *Gate {
	return &Gate{logger: logger}
}

// Authenticated fails unless p identifies a user.
func (g *Gate) Authenticated(p *Principal) error {
	if !p.IsAuthenticated() {
		g.logger.Warn("Access denied", "reason", "unauthenticated")
		return ErrUnauthenticated
	}
	return nil
}

// RequireAdmin fails unless p is an authenticated admin.
func (g *Gate) RequireAdmin(p *Principal) error {
	if err := g.Authenticated(p); err != nil {
		return err
	}
	if !p.Admin {
		g.logger.Warn("Access denied", "reason", "admin required", "userID", p.UserID)
		return ErrAdminRequired
	}
	return nil
}

// CanAccessAccount fails unless p owns acc or is an admin.
func (g *Gate) CanAccessAccount(p *Principal, acc *account.Account) error {
	if err := g.Authenticated(p); err != nil {
		return err
	}
	if p.Admin || acc.UserID == p.UserID {
		return nil
	}
	g.logger.Warn("Access denied",
		"reason", "not owner",
		"userID", p.UserID,
		"accountID", acc.ID,
	)
	return ErrNotOwner
}

// SeesAllAccounts reports whether listings for p span every account.
func (g *Gate) SeesAllAccounts(p *Principal) (bool, error) {
	if err := g.Authenticated(p); err != nil {
		return false, err
	}
	return p.Admin, nil
}

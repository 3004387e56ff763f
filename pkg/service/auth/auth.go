package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/iebank/pkg/config"
	"github.com/amirasaad/iebank/pkg/domain"
	"github.com/amirasaad/iebank/pkg/domain/user"
	"github.com/amirasaad/iebank/pkg/repository"
	"github.com/amirasaad/iebank/pkg/service/access"
	"github.com/amirasaad/iebank/pkg/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// dummyHash is compared against when the identity is unknown so that a miss
// costs the same as a wrong password.
const dummyHash = "$2a$10$7zFqzDbD3RrlkMTczbXG9OWZ0FLOXjIxXzSZ.QZxkVXjXcx7QZQiC"

// Claim keys carried in issued tokens. Only ClaimUserID and ClaimExpiry are
// used for access decisions; the rest are informational for clients.
const (
	// ClaimUserID holds the user's id as a string.
	ClaimUserID = "user_id"
	// ClaimUsername holds the username at issue time.
	ClaimUsername = "username"
	// ClaimEmail holds the email at issue time.
	ClaimEmail = "email"
	// ClaimAdmin holds the admin flag at issue time.
	ClaimAdmin = "admin"
	// ClaimExpiry holds the expiry as a unix timestamp.
	ClaimExpiry = "exp"
)

// Service authenticates users and resolves the principal behind a token.
type Service struct {
	uow    repository.UnitOfWork
	cfg    *config.Jwt
	logger *slog.Logger
}

// New creates a Service signing tokens with cfg.
func New(
	uow repository.UnitOfWork,
	cfg *config.Jwt,
	logger *slog.Logger,
) *Service {
	return &Service{uow: uow, cfg: cfg, logger: logger}
}

// Login resolves identity as an email when it looks like one, otherwise as a
// username, and checks password against the stored hash.
func (s *Service) Login(
	ctx context.Context,
	identity, password string,
) (u *user.User, err error) {
	log := s.logger.With("context", "Login", "identity", identity)
	log.Debug("Login called")
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		if utils.IsEmail(identity) {
			u, err = repo.GetByEmail(ctx, utils.NormalizeEmail(identity))
		} else {
			u, err = repo.GetByUsername(ctx, identity)
		}
		if errors.Is(err, domain.ErrNotFound) {
			_ = utils.CheckPasswordHash(password, dummyHash)
			return user.ErrUserUnauthorized
		}
		if err != nil {
			return err
		}
		if !u.CheckPassword(password) {
			return user.ErrUserUnauthorized
		}
		return nil
	})
	if err != nil {
		log.Error("Login failed", "error", err)
		return nil, err
	}
	log.Info("Login successful", "userID", u.ID)
	return u, nil
}

// GenerateToken issues an HS256 token for u valid for the configured expiry.
func (s *Service) GenerateToken(u *user.User) (string, error) {
	log := s.logger.With("userID", u.ID)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		ClaimUserID:   u.ID.String(),
		ClaimUsername: u.Username,
		ClaimEmail:    u.Email,
		ClaimAdmin:    u.Admin,
		ClaimExpiry:   time.Now().Add(s.cfg.Expiry).Unix(),
	})
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		log.Error("GenerateToken failed", "error", err)
		return "", err
	}
	log.Debug("GenerateToken successful")
	return signed, nil
}

// PrincipalFromToken extracts the claimed caller from a verified token without
// consulting the store. Use Authenticate for access decisions.
func (s *Service) PrincipalFromToken(token *jwt.Token) (*access.Principal, error) {
	if token == nil || !token.Valid {
		return nil, access.ErrUnauthenticated
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, access.ErrUnauthenticated
	}
	raw, ok := claims[ClaimUserID].(string)
	if !ok {
		return nil, access.ErrUnauthenticated
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		s.logger.Warn("Token carries malformed user id", "error", err)
		return nil, access.ErrUnauthenticated
	}
	admin, _ := claims[ClaimAdmin].(bool)
	return &access.Principal{UserID: id, Admin: admin}, nil
}

// Authenticate resolves a verified token to the principal of the stored user.
// The role comes from the store, so demotions and deletions apply to tokens
// issued before them. A token whose user no longer exists is unauthenticated.
func (s *Service) Authenticate(ctx context.Context, token *jwt.Token) (*access.Principal, error) {
	claimed, err := s.PrincipalFromToken(token)
	if err != nil {
		return nil, err
	}
	u, err := s.CurrentUser(ctx, claimed)
	if err != nil {
		return nil, err
	}
	if u.Admin != claimed.Admin {
		s.logger.Info("Token role differs from stored role", "userID", u.ID, "admin", u.Admin)
	}
	return &access.Principal{UserID: u.ID, Admin: u.Admin}, nil
}

// CurrentUser returns the stored user behind p.
func (s *Service) CurrentUser(
	ctx context.Context,
	p *access.Principal,
) (u *user.User, err error) {
	if !p.IsAuthenticated() {
		return nil, access.ErrUnauthenticated
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err = repo.Get(ctx, p.UserID)
		return err
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, access.ErrUnauthenticated
	}
	if err != nil {
		s.logger.Error("CurrentUser failed", "userID", p.UserID, "error", err)
		return nil, err
	}
	return u, nil
}

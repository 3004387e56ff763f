package account

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/amirasaad/iebank/pkg/domain"
	"github.com/amirasaad/iebank/pkg/money"
	"github.com/google/uuid"
)

// NumberLength is the number of digits in a generated account number.
const NumberLength = 20

var (
	// ErrAccountNotFound is returned when an account cannot be found.
	ErrAccountNotFound = domain.NewError(domain.ErrNotFound, "account not found")

	// ErrInsufficientFunds is returned when the source balance is below the transfer amount.
	ErrInsufficientFunds = domain.ErrInsufficientFunds

	// ErrTransactionAmountMustBePositive is returned when a transaction amount is not positive.
	ErrTransactionAmountMustBePositive = domain.NewError(domain.ErrValidation, "transaction amount must be positive")

	// ErrCannotTransferToSameAccount is returned when a transfer is attempted from an account to itself.
	ErrCannotTransferToSameAccount = domain.NewError(domain.ErrValidation, "cannot transfer to same account")

	// ErrCurrencyMismatch is returned when source and destination currencies differ.
	ErrCurrencyMismatch = domain.NewError(domain.ErrValidation, "currency mismatch")

	// ErrAccountInactive is returned when money movement touches an inactive account.
	ErrAccountInactive = domain.NewError(domain.ErrValidation, "account is not active")

	// ErrNonZeroBalance is returned when closing an account that still holds funds.
	ErrNonZeroBalance = domain.NewError(domain.ErrValidation, "account balance must be zero to delete it")

	// ErrNameRequired is returned when an account has no name.
	ErrNameRequired = domain.NewError(domain.ErrValidation, "account name is required")

	// ErrInvalidStatus is returned for unknown account statuses.
	ErrInvalidStatus = domain.NewError(domain.ErrValidation, "invalid account status")

	// ErrInvalidCurrency is returned for malformed currency codes.
	ErrInvalidCurrency = domain.NewError(domain.ErrValidation, "invalid currency code")

	// ErrUserRequired is returned when an account has no owner.
	ErrUserRequired = domain.NewError(domain.ErrValidation, "account owner is required")

	// ErrBalanceOverflow is returned when a credit would overflow the destination balance.
	ErrBalanceOverflow = domain.Wrap(domain.ErrValidation, money.ErrAmountExceedsMaxSafeInt)

	// ErrNilAccount is returned when a nil account is provided to a transfer.
	ErrNilAccount = domain.NewError(domain.ErrValidation, "nil account")
)

// Status is the lifecycle state of an account.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// Account is a named, currency-denominated balance owned by a user.
//
// Invariants:
//   - Balance is never negative.
//   - Balance currency never changes after creation.
//   - Number is unique across all accounts.
type Account struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Number    string
	Balance   money.Money
	Country   string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Builder provides a fluent API for constructing Account instances.
type Builder struct {
	id        uuid.UUID
	userID    uuid.UUID
	name      string
	number    string
	balance   int64
	currency  money.Code
	country   string
	status    Status
	createdAt time.Time
	updatedAt time.Time
}

// New creates a new Builder with sensible defaults, such as a new UUID and the default currency.
func New() *Builder {
	now := time.Now().UTC()
	return &Builder{
		id:        uuid.New(),
		currency:  money.DefaultCode,
		status:    StatusActive,
		createdAt: now,
		updatedAt: now,
	}
}

// WithID sets the ID for the account being built.
func (b *Builder) WithID(id uuid.UUID) *Builder {
	b.id = id
	return b
}

// WithUserID sets the owner. This is a mandatory field.
func (b *Builder) WithUserID(userID uuid.UUID) *Builder {
	b.userID = userID
	return b
}

func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

// WithNumber sets the account number. When unset, Build generates one.
func (b *Builder) WithNumber(number string) *Builder {
	b.number = number
	return b
}

func (b *Builder) WithCurrency(code money.Code) *Builder {
	b.currency = code
	return b
}

func (b *Builder) WithCountry(country string) *Builder {
	b.country = country
	return b
}

func (b *Builder) WithStatus(status Status) *Builder {
	b.status = status
	return b
}

// WithBalance sets the balance in minor units. This should only be used
// for hydrating an existing account from a data store or for test setup.
func (b *Builder) WithBalance(balance int64) *Builder {
	b.balance = balance
	return b
}

func (b *Builder) WithCreatedAt(t time.Time) *Builder {
	b.createdAt = t
	return b
}

func (b *Builder) WithUpdatedAt(t time.Time) *Builder {
	b.updatedAt = t
	return b
}

// Build validates the account invariants and returns the Account.
func (b *Builder) Build() (*Account, error) {
	name := strings.TrimSpace(b.name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if b.userID == uuid.Nil {
		return nil, ErrUserRequired
	}
	if !b.status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if b.balance < 0 {
		return nil, ErrInsufficientFunds
	}
	bal, err := money.NewFromSmallestUnit(b.balance, b.currency)
	if err != nil {
		return nil, ErrInvalidCurrency
	}
	number := b.number
	if number == "" {
		if number, err = NewNumber(); err != nil {
			return nil, err
		}
	}
	return &Account{
		ID:        b.id,
		UserID:    b.userID,
		Name:      name,
		Number:    number,
		Balance:   bal,
		Country:   strings.TrimSpace(b.country),
		Status:    b.status,
		CreatedAt: b.createdAt,
		UpdatedAt: b.updatedAt,
	}, nil
}

// Currency returns the currency of the account balance.
func (a *Account) Currency() money.Code {
	return a.Balance.Currency()
}

func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// ValidateTransfer checks everything about a transfer from a to dest that can be
// decided without locking balances. Sufficient funds are decided by the ledger.
func (a *Account) ValidateTransfer(dest *Account, amount money.Money) error {
	if a == nil || dest == nil {
		return ErrNilAccount
	}
	if a.ID == dest.ID {
		return ErrCannotTransferToSameAccount
	}
	if !amount.IsPositive() {
		return ErrTransactionAmountMustBePositive
	}
	if !a.Balance.IsSameCurrency(amount) || !dest.Balance.IsSameCurrency(amount) {
		return ErrCurrencyMismatch
	}
	if !a.IsActive() || !dest.IsActive() {
		return ErrAccountInactive
	}
	return nil
}

// ValidateDeposit checks a credit of amount into a.
func (a *Account) ValidateDeposit(amount money.Money) error {
	if a == nil {
		return ErrNilAccount
	}
	if !amount.IsPositive() {
		return ErrTransactionAmountMustBePositive
	}
	if !a.Balance.IsSameCurrency(amount) {
		return ErrCurrencyMismatch
	}
	if !a.IsActive() {
		return ErrAccountInactive
	}
	return nil
}

// ValidateDelete checks that the account holds no funds.
func (a *Account) ValidateDelete() error {
	if !a.Balance.IsZero() {
		return ErrNonZeroBalance
	}
	return nil
}

// NewNumber returns a random account number of NumberLength digits.
func NewNumber() (string, error) {
	var sb strings.Builder
	sb.Grow(NumberLength)
	ten := big.NewInt(10)
	for range NumberLength {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + d.Int64()))
	}
	return sb.String(), nil
}

// Package money provides functionality for handling monetary values.
//
// It is a value object that represents a monetary value in a specific currency.
// Invariants:
//   - Amount is always stored in the smallest currency unit (e.g., cents for USD).
//   - Currency code must be valid ISO 4217 (3 uppercase letters).
//   - All arithmetic operations require matching currencies.
package money

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	maxAmount = decimal.NewFromInt(math.MaxInt64)
	minAmount = decimal.NewFromInt(math.MinInt64)
)

// Money represents a monetary value in a specific currency.
type Money struct {
	amount   int64
	currency Code
}

// New creates Money from an amount expressed in major units (e.g. dollars).
// Invariants enforced:
//   - Currency must be a valid code.
//   - Amount must not have more decimal places than the currency allows.
//   - Amount must fit in int64 minor units.
func New(amount decimal.Decimal, code Code) (Money, error) {
	if !code.IsValid() {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	if amount.IsZero() {
		return Zero(code), nil
	}
	if err := checkScale(amount, code); err != nil {
		return Money{}, err
	}
	minor := amount.Shift(int32(code.Decimals()))
	if !minor.IsInteger() {
		return Money{}, fmt.Errorf(
			"%w: %s allows at most %d decimal places",
			ErrInvalidAmount,
			code,
			code.Decimals(),
		)
	}
	if minor.GreaterThan(maxAmount) || minor.LessThan(minAmount) {
		return Money{}, ErrAmountExceedsMaxSafeInt
	}
	return Money{amount: minor.IntPart(), currency: code}, nil
}

// maxMinorDigits is the number of digits in math.MaxInt64.
const maxMinorDigits = 19

// checkScale bounds the exponent before any rescaling so that inputs such as
// "1e99999999" fail without allocating a big integer of that size.
func checkScale(amount decimal.Decimal, code Code) error {
	exp := int64(amount.Exponent()) + int64(code.Decimals())
	digits := int64(amount.NumDigits())
	if digits+exp > maxMinorDigits {
		return fmt.Errorf("%w: %w", ErrInvalidAmount, ErrAmountExceedsMaxSafeInt)
	}
	// every significant digit sits below the smallest unit
	if -exp > digits {
		return fmt.Errorf(
			"%w: %s allows at most %d decimal places",
			ErrInvalidAmount,
			code,
			code.Decimals(),
		)
	}
	return nil
}

// Parse creates Money from a decimal string such as "12.50".
func Parse(amount string, code Code) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	return New(d, code)
}

// NewFromSmallestUnit creates Money from an amount already in minor units.
func NewFromSmallestUnit(amount int64, code Code) (Money, error) {
	if !code.IsValid() {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return Money{amount: amount, currency: code}, nil
}

// Zero returns a zero amount in the given currency.
func Zero(code Code) Money {
	return Money{currency: code}
}

// Amount returns the amount in the smallest currency unit.
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the currency code.
func (m Money) Currency() Code {
	return m.currency
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.amount, -int32(m.currency.Decimals()))
}

// IsSameCurrency checks if both values share a currency.
func (m Money) IsSameCurrency(other Money) bool {
	return m.currency == other.currency
}

func (m Money) IsPositive() bool { return m.amount > 0 }
func (m Money) IsNegative() bool { return m.amount < 0 }
func (m Money) IsZero() bool     { return m.amount == 0 }

// Add returns the sum of two amounts.
// Invariants enforced:
//   - Currencies must match.
//   - Result must not overflow int64.
func (m Money) Add(other Money) (Money, error) {
	if !m.IsSameCurrency(other) {
		return Money{}, fmt.Errorf(
			"%w: %s and %s",
			ErrMismatchedCurrencies,
			m.currency,
			other.currency,
		)
	}
	sum, ok := AddInt64(m.amount, other.amount)
	if !ok {
		return Money{}, ErrAmountExceedsMaxSafeInt
	}
	return Money{amount: sum, currency: m.currency}, nil
}

// Subtract returns the difference of two amounts. The result may be negative.
func (m Money) Subtract(other Money) (Money, error) {
	if !m.IsSameCurrency(other) {
		return Money{}, fmt.Errorf(
			"%w: %s and %s",
			ErrMismatchedCurrencies,
			m.currency,
			other.currency,
		)
	}
	if other.amount == math.MinInt64 {
		return Money{}, ErrAmountExceedsMaxSafeInt
	}
	diff, ok := AddInt64(m.amount, -other.amount)
	if !ok {
		return Money{}, ErrAmountExceedsMaxSafeInt
	}
	return Money{amount: diff, currency: m.currency}, nil
}

// GreaterThanOrEqual compares two amounts of the same currency.
func (m Money) GreaterThanOrEqual(other Money) (bool, error) {
	if !m.IsSameCurrency(other) {
		return false, ErrMismatchedCurrencies
	}
	return m.amount >= other.amount, nil
}

// Equals checks currency and amount equality.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount == other.amount
}

// StringFixed renders the amount in major units with the currency's precision.
func (m Money) StringFixed() string {
	return m.Decimal().StringFixed(int32(m.currency.Decimals()))
}

// String returns a string representation of the Money object.
func (m Money) String() string {
	return m.StringFixed() + " " + m.currency.String()
}

// MarshalJSON implements json.Marshaler interface.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"amount":   json.Number(m.StringFixed()),
		"currency": m.currency,
	})
}

// AddInt64 adds two int64 values and reports whether the result did not overflow.
func AddInt64(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

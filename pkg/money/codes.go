package money

// Code represents a currency code (e.g., "USD", "EUR").
type Code string

// Common currency codes
const (
	USD Code = "USD" // US Dollar
	EUR Code = "EUR" // Euro
	GBP Code = "GBP" // British Pound
	JPY Code = "JPY" // Japanese Yen
	KWD Code = "KWD" // Kuwaiti Dinar
	BHD Code = "BHD" // Bahraini Dinar
)

// DefaultCode is the currency used when none is given.
const DefaultCode = USD

// IsValid reports whether c looks like an ISO 4217 code (3 uppercase letters).
func (c Code) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	return c[0] >= 'A' && c[0] <= 'Z' &&
		c[1] >= 'A' && c[1] <= 'Z' &&
		c[2] >= 'A' && c[2] <= 'Z'
}

// Decimals returns the number of minor-unit digits for the currency.
func (c Code) Decimals() int {
	switch c {
	case JPY:
		return 0
	case KWD, BHD:
		return 3
	default:
		return 2
	}
}

// String returns the string representation of the currency code.
func (c Code) String() string {
	return string(c)
}

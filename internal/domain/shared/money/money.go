package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrUnsupportedCurrency = errors.New("money: unsupported currency")
	ErrCurrencyMismatch    = errors.New("money: currency mismatch")
	ErrNegativeAmount      = errors.New("money: amount cannot be negative")
	ErrNegativeResult      = errors.New("money: operation would produce a negative amount")
	ErrNegativeFactor      = errors.New("money: factor cannot be negative")
	ErrNonPositiveDivisor  = errors.New("money: divisor must be positive")
	ErrInvalidPercent      = errors.New("money: percent must be between 0 and 100")
)

// Currency is a closed set of supported ISO codes. No conversion is performed
// anywhere in the domain.
type Currency string

const (
	EUR Currency = "EUR"
	USD Currency = "USD"
)

func ParseCurrency(code string) (Currency, error) {
	switch Currency(code) {
	case EUR, USD:
		return Currency(code), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}
}

// Money pairs an exact decimal amount with its currency. Values are immutable;
// every operation returns a new value.
type Money struct {
	Amount   decimal.Decimal
	Currency Currency
}

// New constructs a Money value, rejecting negative amounts and unknown currencies.
func New(amount decimal.Decimal, currency Currency) (Money, error) {
	if _, err := ParseCurrency(string(currency)); err != nil {
		return Money{}, err
	}
	if amount.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// NewFromFloat is a convenience constructor for DTO boundaries.
func NewFromFloat(amount float64, currency Currency) (Money, error) {
	return New(decimal.NewFromFloat(amount), currency)
}

// Must creates Money and panics if validation fails; useful in tests and fixtures.
func Must(amount float64, currency Currency) Money {
	m, err := NewFromFloat(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns the zero amount in the given currency.
func Zero(currency Currency) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// Add adds two money values ensuring currencies match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Subtract subtracts other from the receiver. A result below zero is rejected;
// this is the arithmetic backstop for the refunded-never-exceeds-charged rule.
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	result := m.Amount.Sub(other.Amount)
	if result.IsNegative() {
		return Money{}, ErrNegativeResult
	}
	return Money{Amount: result, Currency: m.Currency}, nil
}

// Multiply scales the amount by a non-negative whole factor (e.g. nights).
func (m Money) Multiply(factor int64) (Money, error) {
	if factor < 0 {
		return Money{}, ErrNegativeFactor
	}
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(factor)), Currency: m.Currency}, nil
}

// Divide splits the amount by a positive divisor.
func (m Money) Divide(divisor decimal.Decimal) (Money, error) {
	if !divisor.IsPositive() {
		return Money{}, ErrNonPositiveDivisor
	}
	return Money{Amount: m.Amount.Div(divisor), Currency: m.Currency}, nil
}

// Percentage returns percent% of the amount. Percent outside [0,100] is rejected.
func (m Money) Percentage(percent decimal.Decimal) (Money, error) {
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return Money{}, ErrInvalidPercent
	}
	return Money{Amount: m.Amount.Mul(percent).Div(decimal.NewFromInt(100)), Currency: m.Currency}, nil
}

// ApplyDiscount subtracts percent% from the amount. Percent outside [0,100] is rejected.
func (m Money) ApplyDiscount(percent decimal.Decimal) (Money, error) {
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return Money{}, ErrInvalidPercent
	}
	discount, err := m.Percentage(percent)
	if err != nil {
		return Money{}, err
	}
	return m.Subtract(discount)
}

// GreaterThan reports m > other; comparing across currencies fails.
func (m Money) GreaterThan(other Money) (bool, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return false, err
	}
	return m.Amount.GreaterThan(other.Amount), nil
}

// GreaterOrEqual reports m >= other.
func (m Money) GreaterOrEqual(other Money) (bool, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return false, err
	}
	return m.Amount.GreaterThanOrEqual(other.Amount), nil
}

// Equal reports value equality of amount and currency.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Currency, m.Amount.StringFixed(2))
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrUnsupportedCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}

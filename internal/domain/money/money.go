// Package money provides a currency-aware monetary value type backed by
// arbitrary-precision decimals. Arithmetic keeps full precision; callers
// round once at the end of a computation via Round, which applies
// round-half-to-even at the currency's minor-unit precision.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount of a single currency. The zero value is an invalid
// Money; construct values with New or Zero.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currencyCode"`
}

// minorUnits maps ISO 4217 currency codes to their minor-unit exponent.
// Currencies not listed here use the common default of 2.
var minorUnits = map[string]int32{
	"BHD": 3,
	"IQD": 3,
	"JOD": 3,
	"KWD": 3,
	"OMR": 3,
	"TND": 3,
	"JPY": 0,
	"KRW": 0,
	"VND": 0,
	"CLP": 0,
}

// CurrencyMismatchError indicates arithmetic between two different currencies.
type CurrencyMismatchError struct {
	Op    string
	Left  string
	Right string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("%s: currency mismatch: %s vs %s", e.Op, e.Left, e.Right)
}

// NegativeResultError indicates a subtraction that would produce a negative
// amount where the caller did not allow one.
type NegativeResultError struct {
	Op     string
	Result decimal.Decimal
}

func (e *NegativeResultError) Error() string {
	return fmt.Sprintf("%s: negative result %s", e.Op, e.Result)
}

// New constructs a Money from an amount and an ISO 4217 currency code.
func New(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// Zero returns a zero amount of the given currency.
func Zero(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// MustParse constructs a Money from a decimal string, panicking on a
// malformed amount. Intended for literals in tests and seed data.
func MustParse(amount, currency string) Money {
	return Money{Amount: decimal.RequireFromString(amount), Currency: currency}
}

func (m Money) sameCurrency(op string, o Money) error {
	if m.Currency != o.Currency {
		return &CurrencyMismatchError{Op: op, Left: m.Currency, Right: o.Currency}
	}
	return nil
}

// Add returns m + o. Fails when the currencies differ.
func (m Money) Add(o Money) (Money, error) {
	if err := m.sameCurrency("add", o); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Add(o.Amount), Currency: m.Currency}, nil
}

// Sub returns m - o and fails with NegativeResultError when the result is
// negative. Use SubFloor where a negative result should clamp to zero.
func (m Money) Sub(o Money) (Money, error) {
	if err := m.sameCurrency("subtract", o); err != nil {
		return Money{}, err
	}
	result := m.Amount.Sub(o.Amount)
	if result.IsNegative() {
		return Money{}, &NegativeResultError{Op: "subtract", Result: result}
	}
	return Money{Amount: result, Currency: m.Currency}, nil
}

// SubFloor returns m - o clamped at zero. The second return value reports
// whether clamping occurred, so the caller can surface a warning.
func (m Money) SubFloor(o Money) (Money, bool, error) {
	if err := m.sameCurrency("subtract", o); err != nil {
		return Money{}, false, err
	}
	result := m.Amount.Sub(o.Amount)
	if result.IsNegative() {
		return Zero(m.Currency), true, nil
	}
	return Money{Amount: result, Currency: m.Currency}, false, nil
}

// Mul returns m multiplied by an integer quantity.
func (m Money) Mul(qty int64) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(qty)), Currency: m.Currency}
}

// PercentOf returns rate percent of m, e.g. rate=18 yields 0.18*m.
// The result is unrounded.
func (m Money) PercentOf(rate decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(rate).Div(decimal.NewFromInt(100)), Currency: m.Currency}
}

// Round rounds the amount to the currency's minor-unit precision using
// round-half-to-even. Apply once at the end of a multi-step computation.
func (m Money) Round() Money {
	places, ok := minorUnits[m.Currency]
	if !ok {
		places = 2
	}
	return Money{Amount: m.Amount.RoundBank(places), Currency: m.Currency}
}

// Min returns the smaller of two same-currency amounts.
func Min(a, b Money) (Money, error) {
	if err := a.sameCurrency("min", b); err != nil {
		return Money{}, err
	}
	if b.Amount.LessThan(a.Amount) {
		return b, nil
	}
	return a, nil
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.Amount.IsZero() }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }

// Equal reports whether the two values have the same currency and amount.
func (m Money) Equal(o Money) bool {
	return m.Currency == o.Currency && m.Amount.Equal(o.Amount)
}

// String renders the amount and currency, e.g. "12.50 USD".
func (m Money) String() string {
	return m.Amount.String() + " " + m.Currency
}

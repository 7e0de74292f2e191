// Package core holds the domain types shared by every layer: ledger
// transactions, savings goals, forecasts, and the Money value type.
package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in integer cents. All persistence and arithmetic
// happens on cents; float conversion exists only at the API boundary.
type Money struct {
	Cents int64
}

// ParseMoney converts a decimal string to Money with half-up rounding
// on the third decimal place. Negative amounts are rejected.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return fromDecimal(d)
}

// MoneyFromFloat converts a float amount (in currency units) to Money
// with half-up rounding to cents.
func MoneyFromFloat(v float64) (Money, error) {
	return fromDecimal(decimal.NewFromFloat(v))
}

func fromDecimal(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.IsInteger() || !cents.BigInt().IsInt64() {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Units returns the amount in currency units as a float64. Display
// only; keep calculations in cents.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

func (m Money) String() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}

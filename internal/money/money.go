// Package money provides fixed-point amounts in minor currency units.
//
// All ledger arithmetic happens on Cents. Floating point values and decimal
// strings only appear at the edges (JSON, CLI, forms) and are converted with
// round-half-away-from-zero to two decimal places.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a string cannot be parsed as an amount.
var ErrInvalidAmount = errors.New("invalid amount")

// Cents is an amount in minor currency units (1 = 0.01).
type Cents int64

// FromFloat converts a display value (e.g. 12.345) into Cents, rounding half
// away from zero on the third decimal.
func FromFloat(f float64) Cents {
	return fromDecimal(decimal.NewFromFloat(f))
}

// Parse converts a decimal string into Cents. Both "12.34" and "12,34" are
// accepted. Negative values are allowed; callers that need a positive
// amount check it themselves.
func Parse(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return fromDecimal(d), nil
}

func fromDecimal(d decimal.Decimal) Cents {
	// decimal.Round rounds half away from zero.
	return Cents(d.Round(2).Shift(2).IntPart())
}

// Decimal returns the amount as a decimal with two fractional digits.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// Float returns the amount for display purposes. Never feed the result back
// into ledger arithmetic.
func (c Cents) Float() float64 {
	return c.Decimal().InexactFloat64()
}

// String formats the amount with exactly two decimals, e.g. "-12.50".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Abs returns the absolute value.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (c *Cents) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, string(data))
	}
	*c = fromDecimal(d)
	return nil
}

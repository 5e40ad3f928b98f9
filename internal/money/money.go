package money

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Amount is a non-negative monetary value with exactly 4 fractional
// digits, stored as an int64 tick count (1 tick = 0.0001). All balance
// arithmetic is saturating: Add clamps at Max, Sub clamps at Zero.
// Overflow and underflow are absorbed, never surfaced as errors.
type Amount int64

const (
	// Scale is the number of ticks per whole currency unit.
	Scale = 10_000

	Zero = Amount(0)
	Max  = Amount(math.MaxInt64)
)

// scaleDec is 10^4, used to convert decimals to ticks.
var scaleDec = decimal.New(1, 4)

// Add returns a + b, clamped at Max on overflow.
func (a Amount) Add(b Amount) Amount {
	sum := a + b
	if sum < a {
		return Max
	}
	return sum
}

// Sub returns a - b, clamped at Zero.
func (a Amount) Sub(b Amount) Amount {
	if b >= a {
		return Zero
	}
	return a - b
}

// Cmp compares a and b: -1 if a < b, 0 if equal, +1 if a > b.
func (a Amount) Cmp(b Amount) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether a is exactly zero.
func (a Amount) IsZero() bool {
	return a == Zero
}

// Decimal returns a as an exact decimal value.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -4)
}

// String formats a with exactly 4 decimal places.
func (a Amount) String() string {
	return a.Decimal().StringFixed(4)
}

// Parse converts a decimal string into an Amount. Negative values and
// values with more than 4 fractional digits are rejected; values beyond
// the representable maximum saturate at Max, consistent with the
// clamping arithmetic.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// FromDecimal converts d into an Amount under the same rules as Parse.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return Zero, fmt.Errorf("amount %s is negative", d)
	}

	ticks := d.Mul(scaleDec)
	if !ticks.IsInteger() {
		return Zero, fmt.Errorf("amount %s has more than 4 decimal places", d)
	}

	bi := ticks.BigInt()
	if !bi.IsInt64() {
		return Max, nil
	}
	return Amount(bi.Int64()), nil
}

// MustParse is Parse for trusted literals; it panics on error.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// MarshalJSON renders the amount as a fixed 4-decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts either a quoted decimal string or a bare number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

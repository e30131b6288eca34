package money

import "math"

// Round2 rounds a monetary amount to 2 decimal places using banker's
// rounding (half to even), matching the DECIMAL(15,2) columns.
func Round2(amount float64) float64 {
	return math.RoundToEven(amount*100) / 100
}

// Cents converts an amount to whole cents.
func Cents(amount float64) int64 {
	return int64(math.RoundToEven(amount * 100))
}

// FromCents converts whole cents back to an amount.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

// Equal reports whether two amounts are the same to the cent.
func Equal(a, b float64) bool {
	return Cents(a) == Cents(b)
}

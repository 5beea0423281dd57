package mellion

import "fmt"

// Cents represents money in the smallest unit (no floats).
type Cents int64

// Amount returns the value in whole currency units.
func (c Cents) Amount() float64 {
	return float64(c) / 100
}

// Format renders the value as a currency string with two decimals.
func (c Cents) Format() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// RateBPS is a rate in basis points. 10,000 bps = 100%.
type RateBPS int64

// BPSDenominator is the basis-point scale.
const BPSDenominator RateBPS = 10000

// MulBPS applies a basis-point rate: floor(c * bps / 10000).
// Every value reachable from a unit-aligned investment divides evenly,
// so the floor never discards anything.
func (c Cents) MulBPS(r RateBPS) Cents {
	return Cents(int64(c) * int64(r) / int64(BPSDenominator))
}

const (
	// UnitValue is the indivisible currency quantum (one MEC), in whole
	// currency units.
	UnitValue = 500

	// UnitCents is one MEC in cents.
	UnitCents Cents = UnitValue * 100
)

// UnitsCeil returns the smallest whole number of MEC units covering c.
// Both the tier-count estimator and the capital distributor round through
// this single helper so they can never disagree.
func UnitsCeil(c Cents) int64 {
	if c <= 0 {
		return 0
	}
	return (int64(c) + int64(UnitCents) - 1) / int64(UnitCents)
}

// CeilToUnit rounds c up to the nearest MEC multiple.
func CeilToUnit(c Cents) Cents {
	return Cents(UnitsCeil(c)) * UnitCents
}

// RoundHalfUpToUnit rounds c to the nearest MEC multiple, half up.
// Non-positive values round to zero.
func RoundHalfUpToUnit(c Cents) Cents {
	if c <= 0 {
		return 0
	}
	step := int64(UnitCents)
	return Cents((int64(c) + step/2) / step * step)
}

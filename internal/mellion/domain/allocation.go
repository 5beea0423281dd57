package mellion

import "fmt"

// Allocation is the result of distributing an investment across tiers.
// Tier 0 is the root; tiers 1..NOpt-1 are descendants at increasing
// distance. Immutable once computed for a given amount.
type Allocation struct {
	NOpt     int
	Units    []int64
	Capitals []Cents
}

// TotalUnits returns the number of MEC units across all tiers.
func (a Allocation) TotalUnits() int64 {
	var total int64
	for _, u := range a.Units {
		total += u
	}
	return total
}

// theoreticalShare is the raw decreasing schedule: the tier at the given
// slot out of n receives 100*(n-slot) currency units before rounding.
func theoreticalShare(n, slot int) Cents {
	return Cents(100*(n-slot)) * 100
}

// EstimateTierCount determines how many tiers (including the root) an
// investment supports.
//
// The quadratic bound 50*(n+1)*(n+2) <= X alone overcounts when early
// ceiling-to-unit rounding consumes capital faster than the ideal schedule,
// so a greedy simulation of the preliminary distribution corrects it.
func EstimateTierCount(x Cents) (int, error) {
	n := 0
	for Cents(50*(n+1)*(n+2))*100 <= x {
		n++
	}

	accepted := 0
	var cumulative Cents
	for i := 0; i < n; i++ {
		capital := Cents(UnitsCeil(theoreticalShare(n, i))) * UnitCents
		if cumulative+capital > x {
			break
		}
		cumulative += capital
		accepted++
	}

	if accepted == 0 {
		return 0, fmt.Errorf("%w: amount too small to produce at least one MEC", ErrAllocation)
	}
	if accepted > MaxTiers {
		accepted = MaxTiers
	}
	return accepted, nil
}

// Distribute allocates x across the estimated number of tiers. All tiers
// but the last are ceiled to a MEC multiple of their theoretical share;
// the last tier absorbs the exact remainder so the capitals always sum to
// x. The last tier may therefore fall below the decreasing schedule, which
// is accepted behavior.
func Distribute(x Cents) (Allocation, error) {
	nOpt, err := EstimateTierCount(x)
	if err != nil {
		return Allocation{}, err
	}

	units := make([]int64, 0, nOpt)
	capitals := make([]Cents, 0, nOpt)

	var base Cents
	for i := 0; i < nOpt-1; i++ {
		u := UnitsCeil(theoreticalShare(nOpt-1, i))
		capital := Cents(u) * UnitCents
		units = append(units, u)
		capitals = append(capitals, capital)
		base += capital
	}

	remainder := x - base
	if remainder < 0 {
		return Allocation{}, fmt.Errorf("%w: base tier sum %s exceeds amount %s", ErrAllocation, base.Format(), x.Format())
	}
	if remainder%UnitCents != 0 {
		return Allocation{}, fmt.Errorf("%w: remainder %s is not a multiple of %d", ErrAllocation, remainder.Format(), UnitValue)
	}

	lastUnits := int64(remainder) / int64(UnitCents)
	units = append(units, lastUnits)
	capitals = append(capitals, Cents(lastUnits)*UnitCents)

	var sum Cents
	for _, c := range capitals {
		sum += c
	}
	if sum != x {
		return Allocation{}, fmt.Errorf("%w: reconciliation failure, capitals sum to %s instead of %s", ErrAllocation, sum.Format(), x.Format())
	}

	return Allocation{NOpt: nOpt, Units: units, Capitals: capitals}, nil
}

package mellion

const (
	// MaxDescendants is the deepest descendant tier index; with the root
	// that bounds an allocation to 18 tiers.
	MaxDescendants = 17

	// MaxTiers is the tier-count cap including the root.
	MaxTiers = MaxDescendants + 1

	// DefaultCycleDays is the only cycle length exercised operationally.
	DefaultCycleDays = 28

	// ReinvestMinCents gates the reinvestment option: below 3000 the
	// option is never offered.
	ReinvestMinCents Cents = 3000 * 100

	// ReinvestBonusBPS is the fixed 124% yield applied to the rounded
	// commission pool during a reinvestment pass.
	ReinvestBonusBPS RateBPS = 12400
)

// ratesByCycleDays maps the cycle length in days to the simple-interest
// rate for one cycle.
var ratesByCycleDays = map[int]RateBPS{
	28: 2400,
	14: 950,
	7:  400,
	1:  40,
}

// RateForCycle returns the interest rate for a cycle length.
func RateForCycle(days int) (RateBPS, bool) {
	rate, ok := ratesByCycleDays[days]
	return rate, ok
}

// CommissionRate returns the commission rate earned by a sponsor tier on a
// descendant at the given tier distance. The breakpoints are fixed business
// constants; the boundary inclusivity (7 pays 5%, 8 pays 3%) matters.
func CommissionRate(distance int) RateBPS {
	switch {
	case distance == 1:
		return 2000
	case distance == 2:
		return 1000
	case distance >= 3 && distance <= 7:
		return 500
	case distance >= 8 && distance <= 10:
		return 300
	case distance >= 11 && distance <= 17:
		return 100
	default:
		return 0
	}
}

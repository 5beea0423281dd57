package mellion

// InterestOn returns the simple interest one tier earns on its capital
// over a single cycle.
func InterestOn(capital Cents, rate RateBPS) Cents {
	return capital.MulBPS(rate)
}

// Interests returns the per-tier interest for the given capitals.
func Interests(capitals []Cents, rate RateBPS) []Cents {
	out := make([]Cents, len(capitals))
	for i, c := range capitals {
		out[i] = InterestOn(c, rate)
	}
	return out
}

// Commissions returns the aggregate commission each tier earns as a
// sponsor of the tiers below it. For every ordered pair (u, v) with u < v
// the sponsor u takes a cut of descendant v's interest, scaled by the
// distance rate. The last tier has no descendants and always earns zero.
func Commissions(capitals []Cents, rate RateBPS) []Cents {
	n := len(capitals)
	out := make([]Cents, n)

	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			t := CommissionRate(v - u)
			if t == 0 {
				continue
			}
			gain := InterestOn(capitals[v], rate)
			out[u] += gain.MulBPS(t)
		}
	}
	return out
}

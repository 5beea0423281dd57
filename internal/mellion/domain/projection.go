package mellion

import "math"

// ProjectionRow is one cycle of a multi-cycle projection.
type ProjectionRow struct {
	Cycle          int     `json:"cycle"`
	Amount         Cents   `json:"amount_cents"`
	GlobalRevenue  Cents   `json:"global_revenue_cents"`
	CirculationRaw Cents   `json:"circulation_raw_cents"`
	Circulation    Cents   `json:"circulation_cents"`
	UnitsGlobal    int64   `json:"total_units_global"`
	YieldRatio     float64 `json:"yield_ratio"`
	Tiers          int     `json:"n_opt"`
}

// RequiredInitial is the outcome of the inverse search.
type RequiredInitial struct {
	RequiredX Cents `json:"required_x_cents"`
	Final     Cents `json:"final_cents"`
	Cycles    int   `json:"cycles"`
}

// Project runs the single-cycle computation repeatedly, feeding each
// cycle's rounded circulation back as the next cycle's investment.
// The current amount is rounded half-up to a MEC multiple before every
// cycle; reinvestment is always attempted, subject to the 3000 gate.
// Projection stops early once the amount rounds to zero.
func Project(startX Cents, cycles int, reinvest bool) ([]ProjectionRow, error) {
	if cycles <= 0 {
		return nil, ErrInvalidCycleCount
	}
	rate, _ := RateForCycle(DefaultCycleDays)

	rows := make([]ProjectionRow, 0, cycles)
	x := startX
	for k := 1; k <= cycles; k++ {
		if x <= 0 {
			break
		}
		adjusted := RoundHalfUpToUnit(x)
		if adjusted <= 0 {
			break
		}

		res, err := Simulate(adjusted, reinvest, rate)
		if err != nil {
			return nil, err
		}

		// Circulation equals adjusted + global revenue: the invested
		// total minus the reinvestment top-up is the amount itself.
		raw := res.Circulation
		rounded := RoundHalfUpToUnit(raw)

		rows = append(rows, ProjectionRow{
			Cycle:          k,
			Amount:         adjusted,
			GlobalRevenue:  res.GlobalRevenue,
			CirculationRaw: raw,
			Circulation:    rounded,
			UnitsGlobal:    res.TotalUnitsGlobal,
			YieldRatio:     res.YieldRatio,
			Tiers:          res.NOpt,
		})

		x = rounded
	}
	return rows, nil
}

// finalCirculation projects x forward and returns the last cycle's rounded
// circulation, or zero when no cycle could run.
func finalCirculation(x Cents, cycles int) Cents {
	rows, err := Project(x, cycles, true)
	if err != nil || len(rows) == 0 {
		return 0
	}
	return rows[len(rows)-1].Circulation
}

// RequiredInitialForTarget finds the minimal MEC-aligned starting amount
// whose projection over the given cycle count reaches at least target.
// It brackets by doubling, bisects inside the bracket, then rounds to a
// MEC multiple and bumps one unit at a time if rounding fell just short.
func RequiredInitialForTarget(target Cents, cycles int) (RequiredInitial, error) {
	if target <= 0 {
		return RequiredInitial{}, ErrInvalidTarget
	}
	if cycles <= 0 {
		return RequiredInitial{}, ErrInvalidCycleCount
	}

	low := Cents(0)
	high := target
	if high < UnitCents {
		high = UnitCents
	}
	for guard := 0; guard < 60 && finalCirculation(high, cycles) < target; guard++ {
		if high > math.MaxInt64/2 {
			break
		}
		high *= 2
	}

	for i := 0; i < 60 && high-low > 1; i++ {
		mid := low + (high-low)/2
		if finalCirculation(mid, cycles) >= target {
			high = mid
		} else {
			low = mid
		}
	}

	required := RoundHalfUpToUnit(high)
	if required <= 0 {
		required = UnitCents
	}
	for guard := 0; guard < 50 && finalCirculation(required, cycles) < target; guard++ {
		required += UnitCents
	}

	return RequiredInitial{
		RequiredX: required,
		Final:     finalCirculation(required, cycles),
		Cycles:    cycles,
	}, nil
}

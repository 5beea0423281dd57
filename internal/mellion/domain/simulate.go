package mellion

const (
	// RoleRoot marks tier 0.
	RoleRoot = "root"
	// RoleDescendant marks tiers below the root.
	RoleDescendant = "descendant"
)

// TierRow is one tier of a computed cycle.
type TierRow struct {
	Index      int    `json:"tier_index"`
	Role       string `json:"role"`
	Units      int64  `json:"units"`
	Capital    Cents  `json:"capital_cents"`
	Interest   Cents  `json:"interest_cents"`
	Commission Cents  `json:"commission_cents"`
	Revenue    Cents  `json:"tier_revenue_cents"`
}

// Reinvestment describes the commission-reinvestment step of a cycle.
// When not applied all monetary fields are zero.
type Reinvestment struct {
	Applied         bool  `json:"applied"`
	CommissionRound Cents `json:"c_tm_cents"`
	UnitsReinvested int64 `json:"units_reinvested"`
	ShortfallAdded  Cents `json:"shortfall_added_cents"`
	BonusCommission Cents `json:"bonus_commission_cents"`
}

// CycleResult is the immutable outcome of one simulation. Each call to
// Simulate produces a fresh snapshot; nothing here is mutated afterwards.
type CycleResult struct {
	Amount            Cents        `json:"amount_cents"`
	CycleDays         int          `json:"cycle_days"`
	Rate              RateBPS      `json:"rate_bps"`
	NOpt              int          `json:"n_opt"`
	Tiers             []TierRow    `json:"per_tier"`
	TotalInterest     Cents        `json:"total_interest_cents"`
	TotalCommission   Cents        `json:"total_commission_cents"`
	Reinvest          Reinvestment `json:"reinvestment"`
	GlobalRevenue     Cents        `json:"global_revenue_cents"`
	TotalUnitsInitial int64        `json:"total_units_initial"`
	TotalUnitsGlobal  int64        `json:"total_units_global"`
	InvestedTotal     Cents        `json:"invested_total_cents"`
	Circulation       Cents        `json:"circulation_cents"`
	YieldRatio        float64      `json:"yield_ratio"`
}

// ValidateAmount applies the two input checks every simulation starts with.
func ValidateAmount(x Cents) error {
	if x <= 0 {
		return ErrInvalidAmount
	}
	if x%UnitCents != 0 {
		return ErrNotUnitMultiple
	}
	return nil
}

// Simulate runs the full allocation/commission pipeline for one cycle.
//
// Reinvestment is only offered from 3000 upward; when applied, the total
// commission is rounded up to a MEC multiple (C_tm), the top-up needed to
// reach it (Sa) is added to the invested total, and the 124% bonus on C_tm
// REPLACES the commission in the global revenue. That replacement is the
// validated business rule, not an oversight.
func Simulate(x Cents, reinvestRequested bool, rate RateBPS) (*CycleResult, error) {
	if err := ValidateAmount(x); err != nil {
		return nil, err
	}

	alloc, err := Distribute(x)
	if err != nil {
		return nil, err
	}

	interests := Interests(alloc.Capitals, rate)
	commissions := Commissions(alloc.Capitals, rate)

	var totalInterest, totalCommission Cents
	tiers := make([]TierRow, alloc.NOpt)
	for i := range tiers {
		role := RoleDescendant
		if i == 0 {
			role = RoleRoot
		}
		tiers[i] = TierRow{
			Index:      i,
			Role:       role,
			Units:      alloc.Units[i],
			Capital:    alloc.Capitals[i],
			Interest:   interests[i],
			Commission: commissions[i],
			Revenue:    interests[i] + commissions[i],
		}
		totalInterest += interests[i]
		totalCommission += commissions[i]
	}

	totalUnits := alloc.TotalUnits()

	result := &CycleResult{
		Amount:            x,
		CycleDays:         DefaultCycleDays,
		Rate:              rate,
		NOpt:              alloc.NOpt,
		Tiers:             tiers,
		TotalInterest:     totalInterest,
		TotalCommission:   totalCommission,
		TotalUnitsInitial: totalUnits,
	}

	if x >= ReinvestMinCents && reinvestRequested {
		cTm := CeilToUnit(totalCommission)
		shortfall := cTm - totalCommission
		bonus := cTm.MulBPS(ReinvestBonusBPS)
		reinvestedUnits := int64(cTm) / int64(UnitCents)

		result.Reinvest = Reinvestment{
			Applied:         true,
			CommissionRound: cTm,
			UnitsReinvested: reinvestedUnits,
			ShortfallAdded:  shortfall,
			BonusCommission: bonus,
		}
		result.GlobalRevenue = bonus + totalInterest
		result.InvestedTotal = x + shortfall
		result.TotalUnitsGlobal = totalUnits + reinvestedUnits
	} else {
		result.GlobalRevenue = totalInterest + totalCommission
		result.InvestedTotal = x
		result.TotalUnitsGlobal = totalUnits
	}

	if result.InvestedTotal != 0 {
		result.YieldRatio = float64(result.GlobalRevenue) / float64(result.InvestedTotal)
	}
	result.Circulation = result.GlobalRevenue + result.InvestedTotal - result.Reinvest.ShortfallAdded

	return result, nil
}

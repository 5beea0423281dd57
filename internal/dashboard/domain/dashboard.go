package dashboard

import (
	"context"
	"time"

	mellion "mellioncoin-cloud/internal/mellion/domain"
)

// Row is one dashboard line, derived from a stored order.
type Row struct {
	Index           int64         `json:"order_index"`
	Date            time.Time     `json:"date"`
	CycleEnd        time.Time     `json:"cycle_end"`
	Invested        mellion.Cents `json:"invested_cents"`
	Interest        mellion.Cents `json:"interest_cents"`
	Commission      mellion.Cents `json:"commission_cents"`
	BonusCommission mellion.Cents `json:"bonus_commission_cents"`
	GlobalRevenue   mellion.Cents `json:"global_revenue_cents"`
	Units           int64         `json:"units"`
	Circulation     mellion.Cents `json:"circulation_cents"`
	YieldPct        float64       `json:"yield_pct"`
	Favorite        bool          `json:"favorite"`
}

// MonthlyRollup aggregates the orders of one calendar month.
type MonthlyRollup struct {
	Month        string        `json:"month"`
	Orders       int64         `json:"orders"`
	Invested     mellion.Cents `json:"invested_cents"`
	Revenue      mellion.Cents `json:"revenue_cents"`
	AverageYield float64       `json:"average_yield_pct"`
}

// AnalyticsSource produces monthly rollups for a user.
type AnalyticsSource interface {
	MonthlyRollups(ctx context.Context, username string, months int) ([]MonthlyRollup, error)
}

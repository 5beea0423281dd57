package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	dashboard "mellioncoin-cloud/internal/dashboard/domain"
	orders "mellioncoin-cloud/internal/orders/domain"
)

// AnalyticsRepository computes monthly rollups from an in-memory order
// repository. Used in tests and single-process setups.
type AnalyticsRepository struct {
	orders orders.Repository
	now    func() time.Time
}

// NewAnalyticsRepository constructs a repository. The now func may be nil.
func NewAnalyticsRepository(orderRepo orders.Repository, now func() time.Time) *AnalyticsRepository {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &AnalyticsRepository{orders: orderRepo, now: now}
}

// MonthlyRollups aggregates orders per calendar month, newest first.
func (r *AnalyticsRepository) MonthlyRollups(ctx context.Context, username string, months int) ([]dashboard.MonthlyRollup, error) {
	if r == nil || r.orders == nil {
		return nil, errors.New("analytics repo: nil order repository")
	}
	if months <= 0 {
		months = 12
	}

	now := r.now()
	cutoff := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	list, err := r.orders.List(ctx, username, orders.Filter{From: cutoff})
	if err != nil {
		return nil, err
	}

	type bucket struct {
		rollup   dashboard.MonthlyRollup
		yieldSum float64
	}
	buckets := make(map[string]*bucket)
	for _, order := range list {
		month := order.ComputedAt.UTC().Format("2006-01")
		entry, ok := buckets[month]
		if !ok {
			entry = &bucket{rollup: dashboard.MonthlyRollup{Month: month}}
			buckets[month] = entry
		}
		entry.rollup.Orders++
		entry.rollup.Invested += order.Result.InvestedTotal
		entry.rollup.Revenue += order.Result.GlobalRevenue
		entry.yieldSum += order.Result.YieldRatio * 100
	}

	out := make([]dashboard.MonthlyRollup, 0, len(buckets))
	for _, entry := range buckets {
		entry.rollup.AverageYield = entry.yieldSum / float64(entry.rollup.Orders)
		out = append(out, entry.rollup)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}

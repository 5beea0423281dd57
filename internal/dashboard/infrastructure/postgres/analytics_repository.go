package postgres

import (
	"context"
	"database/sql"
	"errors"

	dashboard "mellioncoin-cloud/internal/dashboard/domain"
	mellion "mellioncoin-cloud/internal/mellion/domain"
)

// AnalyticsRepository aggregates orders per month in SQL.
type AnalyticsRepository struct {
	db *sql.DB
}

// NewAnalyticsRepository constructs a repository.
func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// MonthlyRollups returns one aggregate per calendar month over the last
// months, newest first.
func (r *AnalyticsRepository) MonthlyRollups(ctx context.Context, username string, months int) ([]dashboard.MonthlyRollup, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("analytics repo: nil db")
	}
	if months <= 0 {
		months = 12
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT to_char(date_trunc('month', computed_at), 'YYYY-MM') AS month,
	COUNT(*),
	SUM(invested_total_cents),
	SUM(global_revenue_cents),
	AVG(yield_ratio) * 100
FROM orders
WHERE username = $1
	AND computed_at >= date_trunc('month', now()) - make_interval(months => $2 - 1)
GROUP BY 1
ORDER BY 1 DESC`, username, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dashboard.MonthlyRollup
	for rows.Next() {
		var rollup dashboard.MonthlyRollup
		var invested, revenue int64
		if err := rows.Scan(&rollup.Month, &rollup.Orders, &invested, &revenue, &rollup.AverageYield); err != nil {
			return nil, err
		}
		rollup.Invested = mellion.Cents(invested)
		rollup.Revenue = mellion.Cents(revenue)
		out = append(out, rollup)
	}
	return out, rows.Err()
}

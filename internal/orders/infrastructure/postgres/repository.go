package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	mellion "mellioncoin-cloud/internal/mellion/domain"
	orders "mellioncoin-cloud/internal/orders/domain"
)

// OrderRepository persists orders and their tier rows.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository constructs a repository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `
	id, username, order_index, computed_at, cycle_end_at, cycle_days, rate_bps,
	amount_cents, n_opt, reinvest_requested, reinvest_applied,
	c_tm_cents, shortfall_cents, bonus_commission_cents, reinvested_units,
	total_interest_cents, total_commission_cents, global_revenue_cents,
	total_units_initial, total_units_global, invested_total_cents,
	circulation_cents, yield_ratio, favorite`

// Append inserts the order and its tiers in one transaction, assigning
// the next per-user index. The simulation index is monotonically
// increasing per user; callers serialize writes for the same user.
func (r *OrderRepository) Append(ctx context.Context, order *orders.Order) error {
	if r == nil || r.db == nil {
		return errors.New("order repo: nil db")
	}
	if order == nil {
		return orders.ErrNilOrder
	}
	if order.Username == "" {
		return orders.ErrEmptyUsername
	}
	if order.Result == nil {
		return fmt.Errorf("order repo: order %s has no result", order.ID)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	var next sql.NullInt64
	if err := tx.QueryRowContext(ctx, `
SELECT MAX(order_index) FROM orders WHERE username = $1`, order.Username).Scan(&next); err != nil {
		_ = tx.Rollback()
		return err
	}
	order.Index = next.Int64 + 1

	res := order.Result
	_, err = tx.ExecContext(ctx, `
INSERT INTO orders (`+orderColumns+`
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24
)`,
		order.ID, order.Username, order.Index, order.ComputedAt, order.CycleEndAt, res.CycleDays, int64(res.Rate),
		int64(res.Amount), res.NOpt, order.Requested, res.Reinvest.Applied,
		int64(res.Reinvest.CommissionRound), int64(res.Reinvest.ShortfallAdded), int64(res.Reinvest.BonusCommission), res.Reinvest.UnitsReinvested,
		int64(res.TotalInterest), int64(res.TotalCommission), int64(res.GlobalRevenue),
		res.TotalUnitsInitial, res.TotalUnitsGlobal, int64(res.InvestedTotal),
		int64(res.Circulation), res.YieldRatio, order.Favorite,
	)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, tier := range res.Tiers {
		_, err := tx.ExecContext(ctx, `
INSERT INTO order_tiers (
	order_id, tier_index, role, units, capital_cents, interest_cents, commission_cents, revenue_cents
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			order.ID, tier.Index, tier.Role, tier.Units, int64(tier.Capital), int64(tier.Interest), int64(tier.Commission), int64(tier.Revenue))
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// List returns the user's orders sorted by index.
func (r *OrderRepository) List(ctx context.Context, username string, filter orders.Filter) ([]*orders.Order, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("order repo: nil db")
	}
	if username == "" {
		return nil, orders.ErrEmptyUsername
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE username = $1`
	args := []any{username}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND computed_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND computed_at < $%d", len(args))
	}
	if filter.FavoritesOnly {
		query += " AND favorite"
	}
	query += " ORDER BY order_index"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*orders.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range out {
		if err := r.loadTiers(ctx, order); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Get returns one order by its per-user index.
func (r *OrderRepository) Get(ctx context.Context, username string, index int64) (*orders.Order, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("order repo: nil db")
	}
	if username == "" {
		return nil, orders.ErrEmptyUsername
	}

	row := r.db.QueryRowContext(ctx, `
SELECT `+orderColumns+` FROM orders WHERE username = $1 AND order_index = $2`, username, index)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, orders.ErrOrderNotFound
		}
		return nil, err
	}
	if err := r.loadTiers(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// SetFavorite flips the favorite marker.
func (r *OrderRepository) SetFavorite(ctx context.Context, username string, index int64, favorite bool) error {
	if r == nil || r.db == nil {
		return errors.New("order repo: nil db")
	}
	if username == "" {
		return orders.ErrEmptyUsername
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE orders SET favorite = $3 WHERE username = $1 AND order_index = $2`, username, index, favorite)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return orders.ErrOrderNotFound
	}
	return nil
}

// DeleteAll removes every order of the user.
func (r *OrderRepository) DeleteAll(ctx context.Context, username string) error {
	if r == nil || r.db == nil {
		return errors.New("order repo: nil db")
	}
	if username == "" {
		return orders.ErrEmptyUsername
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
DELETE FROM order_tiers WHERE order_id IN (SELECT id FROM orders WHERE username = $1)`, username); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE username = $1`, username); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*orders.Order, error) {
	order := &orders.Order{Result: &mellion.CycleResult{}}
	res := order.Result

	var rate, amount, cTm, shortfall, bonus, interest, commission, revenue, invested, circulation int64
	err := row.Scan(
		&order.ID, &order.Username, &order.Index, &order.ComputedAt, &order.CycleEndAt, &res.CycleDays, &rate,
		&amount, &res.NOpt, &order.Requested, &res.Reinvest.Applied,
		&cTm, &shortfall, &bonus, &res.Reinvest.UnitsReinvested,
		&interest, &commission, &revenue,
		&res.TotalUnitsInitial, &res.TotalUnitsGlobal, &invested,
		&circulation, &res.YieldRatio, &order.Favorite,
	)
	if err != nil {
		return nil, err
	}
	res.Rate = mellion.RateBPS(rate)
	res.Amount = mellion.Cents(amount)
	res.Reinvest.CommissionRound = mellion.Cents(cTm)
	res.Reinvest.ShortfallAdded = mellion.Cents(shortfall)
	res.Reinvest.BonusCommission = mellion.Cents(bonus)
	res.TotalInterest = mellion.Cents(interest)
	res.TotalCommission = mellion.Cents(commission)
	res.GlobalRevenue = mellion.Cents(revenue)
	res.InvestedTotal = mellion.Cents(invested)
	res.Circulation = mellion.Cents(circulation)
	return order, nil
}

func (r *OrderRepository) loadTiers(ctx context.Context, order *orders.Order) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT tier_index, role, units, capital_cents, interest_cents, commission_cents, revenue_cents
FROM order_tiers WHERE order_id = $1 ORDER BY tier_index`, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	var tiers []mellion.TierRow
	for rows.Next() {
		var tier mellion.TierRow
		var capital, interest, commission, revenue int64
		if err := rows.Scan(&tier.Index, &tier.Role, &tier.Units, &capital, &interest, &commission, &revenue); err != nil {
			return err
		}
		tier.Capital = mellion.Cents(capital)
		tier.Interest = mellion.Cents(interest)
		tier.Commission = mellion.Cents(commission)
		tier.Revenue = mellion.Cents(revenue)
		tiers = append(tiers, tier)
	}
	order.Result.Tiers = tiers
	return rows.Err()
}

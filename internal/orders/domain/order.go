package orders

import (
	"time"

	mellion "mellioncoin-cloud/internal/mellion/domain"
)

// Order is the durable snapshot of one simulation. Orders are append-only:
// once recorded they are never mutated, except for the favorite marker.
type Order struct {
	ID         string               `json:"id"`
	Username   string               `json:"username"`
	Index      int64                `json:"order_index"`
	ComputedAt time.Time            `json:"computed_at"`
	CycleEndAt time.Time            `json:"cycle_end_at"`
	Requested  bool                 `json:"reinvest_requested"`
	Favorite   bool                 `json:"favorite"`
	Result     *mellion.CycleResult `json:"result"`
}

// Filter narrows order listings.
type Filter struct {
	From          time.Time
	To            time.Time
	FavoritesOnly bool
}

// Matches reports whether the order passes the filter.
func (f Filter) Matches(o *Order) bool {
	if o == nil {
		return false
	}
	if f.FavoritesOnly && !o.Favorite {
		return false
	}
	if !f.From.IsZero() && o.ComputedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !o.ComputedAt.Before(f.To) {
		return false
	}
	return true
}

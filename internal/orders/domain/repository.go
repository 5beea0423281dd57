package orders

import "context"

// Repository persists orders. Append assigns the per-user index
// atomically so that concurrent simulations for the same user never
// interleave index assignment; everything else is read-only apart from
// the favorite marker and the full reset.
type Repository interface {
	Append(ctx context.Context, order *Order) error
	List(ctx context.Context, username string, filter Filter) ([]*Order, error)
	Get(ctx context.Context, username string, index int64) (*Order, error)
	SetFavorite(ctx context.Context, username string, index int64, favorite bool) error
	DeleteAll(ctx context.Context, username string) error
}

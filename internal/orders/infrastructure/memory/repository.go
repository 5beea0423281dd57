package memory

import (
	"context"
	"sort"
	"sync"

	orders "mellioncoin-cloud/internal/orders/domain"
)

// OrderRepository is an in-memory repository for demo/testing.
type OrderRepository struct {
	mu     sync.RWMutex
	byUser map[string][]*orders.Order
}

// NewOrderRepository constructs a repository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{byUser: make(map[string][]*orders.Order)}
}

// Append stores the order and assigns the next per-user index.
func (r *OrderRepository) Append(ctx context.Context, order *orders.Order) error {
	_ = ctx
	if order == nil {
		return orders.ErrNilOrder
	}
	if order.Username == "" {
		return orders.ErrEmptyUsername
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byUser[order.Username]
	var max int64
	for _, existing := range list {
		if existing.Index > max {
			max = existing.Index
		}
	}
	order.Index = max + 1

	clone := *order
	r.byUser[order.Username] = append(list, &clone)
	return nil
}

// List returns matching orders sorted by index.
func (r *OrderRepository) List(ctx context.Context, username string, filter orders.Filter) ([]*orders.Order, error) {
	_ = ctx
	if username == "" {
		return nil, orders.ErrEmptyUsername
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*orders.Order
	for _, order := range r.byUser[username] {
		if filter.Matches(order) {
			clone := *order
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

// Get returns one order by index.
func (r *OrderRepository) Get(ctx context.Context, username string, index int64) (*orders.Order, error) {
	_ = ctx
	if username == "" {
		return nil, orders.ErrEmptyUsername
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.byUser[username] {
		if order.Index == index {
			clone := *order
			return &clone, nil
		}
	}
	return nil, orders.ErrOrderNotFound
}

// SetFavorite flips the favorite marker.
func (r *OrderRepository) SetFavorite(ctx context.Context, username string, index int64, favorite bool) error {
	_ = ctx
	if username == "" {
		return orders.ErrEmptyUsername
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, order := range r.byUser[username] {
		if order.Index == index {
			order.Favorite = favorite
			return nil
		}
	}
	return orders.ErrOrderNotFound
}

// DeleteAll removes every order of the user.
func (r *OrderRepository) DeleteAll(ctx context.Context, username string) error {
	_ = ctx
	if username == "" {
		return orders.ErrEmptyUsername
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byUser, username)
	return nil
}

package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mellioncoin-cloud/internal/audit"
	mellion "mellioncoin-cloud/internal/mellion/domain"
	"mellioncoin-cloud/internal/observability/metrics"
	orders "mellioncoin-cloud/internal/orders/domain"
)

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the current UTC time.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// SimulationService runs the allocation engine and records the result as
// an immutable order.
type SimulationService struct {
	repo    orders.Repository
	auditor audit.Logger
	clock   Clock
}

// NewSimulationService constructs the service. The auditor may be nil.
func NewSimulationService(repo orders.Repository, auditor audit.Logger, clock Clock) (*SimulationService, error) {
	if repo == nil {
		return nil, fmt.Errorf("simulation service: nil repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &SimulationService{repo: repo, auditor: auditor, clock: clock}, nil
}

// Run validates the amount, computes one cycle and appends the order.
// The engine's validation errors pass through unchanged so the transport
// layer can surface them verbatim.
func (s *SimulationService) Run(ctx context.Context, username string, amount mellion.Cents, reinvest bool) (*orders.Order, error) {
	if username == "" {
		return nil, orders.ErrEmptyUsername
	}

	rate, ok := mellion.RateForCycle(mellion.DefaultCycleDays)
	if !ok {
		return nil, fmt.Errorf("simulation service: no rate for %d-day cycle", mellion.DefaultCycleDays)
	}

	started := time.Now()
	result, err := mellion.Simulate(amount, reinvest, rate)
	if err != nil {
		metrics.ObserveSimulation("error", 0, time.Since(started))
		return nil, err
	}
	metrics.ObserveSimulation("success", amount.Amount(), time.Since(started))

	now := s.clock.Now()
	order := &orders.Order{
		ID:         uuid.NewString(),
		Username:   username,
		ComputedAt: now,
		CycleEndAt: now.AddDate(0, 0, result.CycleDays),
		Requested:  reinvest,
		Result:     result,
	}

	if err := s.repo.Append(ctx, order); err != nil {
		return nil, fmt.Errorf("append order: %w", err)
	}

	s.auditLog(ctx, username, "simulation_run", order.ID, map[string]any{
		"amount_cents":   int64(amount),
		"order_index":    order.Index,
		"reinvest":       reinvest,
		"global_revenue": int64(result.GlobalRevenue),
	})

	return order, nil
}

// List returns the user's orders.
func (s *SimulationService) List(ctx context.Context, username string, filter orders.Filter) ([]*orders.Order, error) {
	if username == "" {
		return nil, orders.ErrEmptyUsername
	}
	return s.repo.List(ctx, username, filter)
}

// Get returns one order by its per-user index.
func (s *SimulationService) Get(ctx context.Context, username string, index int64) (*orders.Order, error) {
	if username == "" {
		return nil, orders.ErrEmptyUsername
	}
	return s.repo.Get(ctx, username, index)
}

// SetFavorite flips the favorite marker of one order.
func (s *SimulationService) SetFavorite(ctx context.Context, username string, index int64, favorite bool) error {
	if username == "" {
		return orders.ErrEmptyUsername
	}
	return s.repo.SetFavorite(ctx, username, index, favorite)
}

// Reset deletes every order of the user.
func (s *SimulationService) Reset(ctx context.Context, username string) error {
	if username == "" {
		return orders.ErrEmptyUsername
	}
	if err := s.repo.DeleteAll(ctx, username); err != nil {
		return err
	}
	s.auditLog(ctx, username, "orders_reset", "", nil)
	return nil
}

// Import appends an externally produced order row, assigning a fresh index.
func (s *SimulationService) Import(ctx context.Context, order *orders.Order) error {
	if order == nil {
		return orders.ErrNilOrder
	}
	if order.Username == "" {
		return orders.ErrEmptyUsername
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	return s.repo.Append(ctx, order)
}

func (s *SimulationService) auditLog(ctx context.Context, actor, action, resourceID string, metadata map[string]any) {
	if s.auditor == nil {
		return
	}
	var raw json.RawMessage
	if metadata != nil {
		raw, _ = json.Marshal(metadata)
	}
	_ = s.auditor.Log(ctx, audit.Entry{
		Actor:        actor,
		Action:       action,
		ResourceType: "order",
		ResourceID:   resourceID,
		Metadata:     raw,
	})
}

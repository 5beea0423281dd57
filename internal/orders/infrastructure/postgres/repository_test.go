package postgres_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	mellion "mellioncoin-cloud/internal/mellion/domain"
	orders "mellioncoin-cloud/internal/orders/domain"
	ordersrepo "mellioncoin-cloud/internal/orders/infrastructure/postgres"
	storage "mellioncoin-cloud/internal/storage/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := storage.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return db
}

func simulated(t *testing.T, amount mellion.Cents, reinvest bool) *mellion.CycleResult {
	t.Helper()
	rate, ok := mellion.RateForCycle(mellion.DefaultCycleDays)
	if !ok {
		t.Fatal("no default rate")
	}
	result, err := mellion.Simulate(amount, reinvest, rate)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	return result
}

func TestOrderRepository_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := ordersrepo.NewOrderRepository(db)

	username := "it-roundtrip"
	if err := repo.DeleteAll(ctx, username); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	at := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	order := &orders.Order{
		ID:         "it-order-1",
		Username:   username,
		ComputedAt: at,
		CycleEndAt: at.AddDate(0, 0, 28),
		Requested:  true,
		Result:     simulated(t, 300000, true),
	}
	_, _ = db.ExecContext(ctx, "DELETE FROM order_tiers WHERE order_id = $1", order.ID)
	if err := repo.Append(ctx, order); err != nil {
		t.Fatalf("append: %v", err)
	}
	if order.Index != 1 {
		t.Fatalf("expected index 1, got %d", order.Index)
	}

	loaded, err := repo.Get(ctx, username, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Result.Amount != 300000 {
		t.Fatalf("expected amount 300000, got %d", loaded.Result.Amount)
	}
	if loaded.Result.NOpt != 5 || len(loaded.Result.Tiers) != 5 {
		t.Fatalf("expected 5 tiers, got n_opt=%d len=%d", loaded.Result.NOpt, len(loaded.Result.Tiers))
	}
	if !loaded.Result.Reinvest.Applied {
		t.Fatal("expected reinvestment applied")
	}
	if loaded.Result.Circulation != 434000 {
		t.Fatalf("expected circulation 434000, got %d", loaded.Result.Circulation)
	}
	if !loaded.ComputedAt.Equal(at) {
		t.Fatalf("expected computed at %v, got %v", at, loaded.ComputedAt)
	}

	if err := repo.DeleteAll(ctx, username); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}

func TestOrderRepository_IndexesFavoritesAndFilters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := ordersrepo.NewOrderRepository(db)

	username := "it-filters"
	if err := repo.DeleteAll(ctx, username); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		order := &orders.Order{
			ID:         "it-filter-" + string(rune('a'+i)),
			Username:   username,
			ComputedAt: base.AddDate(0, 0, i),
			CycleEndAt: base.AddDate(0, 0, i+28),
			Result:     simulated(t, 50000, false),
		}
		if err := repo.Append(ctx, order); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if order.Index != int64(i+1) {
			t.Fatalf("expected index %d, got %d", i+1, order.Index)
		}
	}

	if err := repo.SetFavorite(ctx, username, 2, true); err != nil {
		t.Fatalf("set favorite: %v", err)
	}
	if err := repo.SetFavorite(ctx, username, 42, true); err != orders.ErrOrderNotFound {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	favorites, err := repo.List(ctx, username, orders.Filter{FavoritesOnly: true})
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}
	if len(favorites) != 1 || favorites[0].Index != 2 {
		t.Fatalf("expected only order 2, got %+v", favorites)
	}

	window, err := repo.List(ctx, username, orders.Filter{
		From: base.AddDate(0, 0, 1),
		To:   base.AddDate(0, 0, 2),
	})
	if err != nil {
		t.Fatalf("list window: %v", err)
	}
	if len(window) != 1 || window[0].Index != 2 {
		t.Fatalf("expected only the middle order, got %+v", window)
	}

	if _, err := repo.Get(ctx, username, 99); err != orders.ErrOrderNotFound {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	if err := repo.DeleteAll(ctx, username); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	remaining, err := repo.List(ctx, username, orders.Filter{})
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no orders after delete, got %d", len(remaining))
	}
}

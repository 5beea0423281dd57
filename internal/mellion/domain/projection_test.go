package mellion

import (
	"errors"
	"testing"
)

func TestProject_ThreeCyclesFromFiveThousand(t *testing.T) {
	rows, err := Project(cents(5000), 3, true)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if row.Cycle != i+1 {
			t.Fatalf("row %d: cycle %d", i, row.Cycle)
		}
		if row.Amount%UnitCents != 0 {
			t.Fatalf("cycle %d: amount %s not a MEC multiple", row.Cycle, row.Amount.Format())
		}
		if row.Circulation%UnitCents != 0 {
			t.Fatalf("cycle %d: circulation %s not a MEC multiple", row.Cycle, row.Circulation.Format())
		}
		if i > 0 && rows[i-1].Circulation != row.Amount {
			t.Fatalf("cycle %d: amount does not chain from previous circulation", row.Cycle)
		}
	}
	if rows[2].Circulation <= rows[0].Amount {
		t.Fatal("projection with reinvestment should grow")
	}
}

func TestProject_RoundsStartToUnit(t *testing.T) {
	rows, err := Project(cents(5200), 1, false)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Amount != cents(5000) {
		t.Fatalf("expected start rounded to 5000, got %s", rows[0].Amount.Format())
	}
}

func TestProject_InvalidCycleCount(t *testing.T) {
	_, err := Project(cents(5000), 0, true)
	if !errors.Is(err, ErrInvalidCycleCount) {
		t.Fatalf("expected ErrInvalidCycleCount, got %v", err)
	}
}

func TestProject_NonPositiveStartProducesNothing(t *testing.T) {
	rows, err := Project(0, 5, true)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestRequiredInitialForTarget_Tightness(t *testing.T) {
	target := cents(100_000)
	result, err := RequiredInitialForTarget(target, 6)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.RequiredX%UnitCents != 0 {
		t.Fatalf("required amount %s not a MEC multiple", result.RequiredX.Format())
	}
	if result.Final < target {
		t.Fatalf("projection from %s reaches only %s", result.RequiredX.Format(), result.Final.Format())
	}

	rows, err := Project(result.RequiredX-UnitCents, 6, true)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if len(rows) > 0 && rows[len(rows)-1].Circulation >= target {
		t.Fatalf("one MEC less still reaches the target; search is not tight")
	}
}

func TestRequiredInitialForTarget_InvalidInputs(t *testing.T) {
	if _, err := RequiredInitialForTarget(0, 6); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
	if _, err := RequiredInitialForTarget(cents(1000), 0); !errors.Is(err, ErrInvalidCycleCount) {
		t.Fatalf("expected ErrInvalidCycleCount, got %v", err)
	}
}

package mellion

import (
	"errors"
	"testing"
)

func cents(amount int64) Cents {
	return Cents(amount * 100)
}

func TestEstimateTierCount_SingleUnit(t *testing.T) {
	n, err := EstimateTierCount(cents(500))
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 tier, got %d", n)
	}
}

func TestEstimateTierCount_TooSmall(t *testing.T) {
	_, err := EstimateTierCount(cents(100))
	if !errors.Is(err, ErrAllocation) {
		t.Fatalf("expected allocation error, got %v", err)
	}
}

func TestEstimateTierCount_CappedAtMaxTiers(t *testing.T) {
	n, err := EstimateTierCount(cents(100_000_000))
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if n > MaxTiers {
		t.Fatalf("tier count %d exceeds cap %d", n, MaxTiers)
	}
}

func TestDistribute_ThreeThousandCapital(t *testing.T) {
	alloc, err := Distribute(cents(3000))
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if alloc.NOpt != 5 {
		t.Fatalf("expected 5 tiers, got %d", alloc.NOpt)
	}
	wantUnits := []int64{1, 1, 1, 1, 2}
	for i, u := range alloc.Units {
		if u != wantUnits[i] {
			t.Fatalf("tier %d: expected %d units, got %d", i, wantUnits[i], u)
		}
	}
	if alloc.Capitals[4] != cents(1000) {
		t.Fatalf("last tier capital: expected 1000, got %s", alloc.Capitals[4].Format())
	}
}

func TestDistribute_SumInvariant(t *testing.T) {
	for x := int64(500); x <= 200_000; x += 500 {
		alloc, err := Distribute(cents(x))
		if err != nil {
			t.Fatalf("distribute %d: %v", x, err)
		}
		var sum Cents
		for _, c := range alloc.Capitals {
			sum += c
		}
		if sum != cents(x) {
			t.Fatalf("x=%d: capitals sum to %s", x, sum.Format())
		}
		if alloc.NOpt > MaxTiers {
			t.Fatalf("x=%d: %d tiers exceeds cap", x, alloc.NOpt)
		}
		if len(alloc.Units) != alloc.NOpt || len(alloc.Capitals) != alloc.NOpt {
			t.Fatalf("x=%d: slice lengths disagree with n_opt", x)
		}
	}
}

func TestDistribute_CeilingSchedule(t *testing.T) {
	for x := int64(500); x <= 50_000; x += 500 {
		alloc, err := Distribute(cents(x))
		if err != nil {
			t.Fatalf("distribute %d: %v", x, err)
		}
		for i := 0; i < alloc.NOpt-1; i++ {
			share := theoreticalShare(alloc.NOpt-1, i)
			if alloc.Units[i] != UnitsCeil(share) {
				t.Fatalf("x=%d tier %d: units %d not the ceiling of the raw share", x, i, alloc.Units[i])
			}
			if alloc.Capitals[i] < share {
				t.Fatalf("x=%d tier %d: capital below raw share", x, i)
			}
		}
	}
}

func TestUnitsCeil(t *testing.T) {
	cases := []struct {
		in   Cents
		want int64
	}{
		{0, 0},
		{-cents(100), 0},
		{1, 1},
		{UnitCents, 1},
		{UnitCents + 1, 2},
		{cents(1200), 3},
	}
	for _, tc := range cases {
		if got := UnitsCeil(tc.in); got != tc.want {
			t.Fatalf("UnitsCeil(%d): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestRoundHalfUpToUnit(t *testing.T) {
	cases := []struct {
		in   Cents
		want Cents
	}{
		{0, 0},
		{-UnitCents, 0},
		{cents(249), 0},
		{cents(250), cents(500)},
		{cents(749), cents(500)},
		{cents(750), cents(1000)},
		{cents(48_980), cents(49_000)},
	}
	for _, tc := range cases {
		if got := RoundHalfUpToUnit(tc.in); got != tc.want {
			t.Fatalf("RoundHalfUpToUnit(%s): expected %s, got %s", tc.in.Format(), tc.want.Format(), got.Format())
		}
	}
}

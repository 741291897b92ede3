package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCycleIDStable(t *testing.T) {
	entry := time.Date(2024, 8, 1, 12, 30, 0, 0, time.UTC)

	first := CycleID(1, entry, 61234.56)
	second := CycleID(1, entry, 61234.56)
	if first != second {
		t.Fatalf("same coordinates produced different IDs: %s vs %s", first, second)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("ID %q is not a valid UUID: %v", first, err)
	}

	tests := []struct {
		name  string
		slot  int
		time  time.Time
		price float64
	}{
		{"different slot", 2, entry, 61234.56},
		{"different time", 1, entry.Add(time.Minute), 61234.56},
		{"different price", 1, entry, 61234.57},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CycleID(tt.slot, tt.time, tt.price); got == first {
				t.Errorf("expected a distinct ID, got collision %s", got)
			}
		})
	}
}

func TestSideValid(t *testing.T) {
	if !SideLong.Valid() || !SideShort.Valid() {
		t.Error("defined sides must validate")
	}
	for _, s := range []Side{"", "long", "BOTH"} {
		if s.Valid() {
			t.Errorf("side %q must not validate", s)
		}
	}
}

func TestTierParams(t *testing.T) {
	tests := []struct {
		tier       SignalTier
		wantFrac   float64
		wantTarget float64
	}{
		{TierNone, 0, 0},
		{TierStandard, 0.30, 0.005},
		{TierStrong, 0.40, 0.010},
		{TierMax, 0.50, 0.015},
	}
	for _, tt := range tests {
		t.Run(tt.tier.String(), func(t *testing.T) {
			p := tt.tier.Params()
			if p.InvestFraction != tt.wantFrac {
				t.Errorf("invest fraction = %.2f, want %.2f", p.InvestFraction, tt.wantFrac)
			}
			if p.TargetProfit != tt.wantTarget {
				t.Errorf("target profit = %.4f, want %.4f", p.TargetProfit, tt.wantTarget)
			}
		})
	}
}

func TestClosedCycleDuration(t *testing.T) {
	entry := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	c := ClosedCycle{EntryTime: entry, ExitTime: entry.Add(45 * time.Minute)}
	if got := c.Duration(); got != 45*time.Minute {
		t.Errorf("duration = %s, want 45m", got)
	}
}

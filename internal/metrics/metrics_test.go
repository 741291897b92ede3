package metrics

import (
	"math"
	"reflect"
	"testing"
	"time"

	"CycleBench/internal/model"
)

func cycleAt(minute int, side model.Side, committed, pnl float64, reason model.ExitReason, holdMinutes int) model.ClosedCycle {
	entry := time.Date(2024, 8, 1, 0, minute, 0, 0, time.UTC)
	return model.ClosedCycle{
		ID:         model.CycleID(0, entry, 100),
		Tier:       model.TierStandard,
		Side:       side,
		EntryPrice: 100,
		EntryTime:  entry,
		ExitPrice:  100 + pnl/committed*100,
		ExitTime:   entry.Add(time.Duration(holdMinutes) * time.Minute),
		Committed:  committed,
		PnL:        pnl,
		Reason:     reason,
	}
}

func sampleCycles() []model.ClosedCycle {
	return []model.ClosedCycle{
		cycleAt(0, model.SideLong, 180, 9, model.ExitTakeProfit, 10),    // +5% of committed
		cycleAt(1, model.SideLong, 240, -24, model.ExitStopLoss, 30),    // -10%
		cycleAt(2, model.SideShort, 180, 3.6, model.ExitTakeProfit, 20), // +2%
		cycleAt(3, model.SideShort, 200, -200, model.ExitLiquidation, 60),
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleCycles(), 600, 388.6)

	if s.TotalCycles != 4 {
		t.Fatalf("total cycles = %d, want 4", s.TotalCycles)
	}
	if s.Wins != 2 || s.Losses != 2 {
		t.Fatalf("wins/losses = %d/%d, want 2/2", s.Wins, s.Losses)
	}
	if math.Abs(s.WinRate-50) > 1e-9 || math.Abs(s.LossRate-50) > 1e-9 {
		t.Errorf("win/loss rate = %.2f/%.2f, want 50/50", s.WinRate, s.LossRate)
	}
	if math.Abs(s.AvgProfitPct-3.5) > 1e-9 { // mean of +5% and +2%
		t.Errorf("avg profit pct = %.4f, want 3.5", s.AvgProfitPct)
	}
	if math.Abs(s.AvgLossPct-(-55)) > 1e-9 { // mean of -10% and -100%
		t.Errorf("avg loss pct = %.4f, want -55", s.AvgLossPct)
	}
	if math.Abs(s.NetProfit-12.6) > 1e-9 {
		t.Errorf("net profit = %.4f, want 12.6", s.NetProfit)
	}
	if math.Abs(s.NetLoss-(-224)) > 1e-9 {
		t.Errorf("net loss = %.4f, want -224", s.NetLoss)
	}
	wantROI := (388.6 - 600) / 600 * 100
	if math.Abs(s.ROI-wantROI) > 1e-9 {
		t.Errorf("roi = %.4f, want %.4f", s.ROI, wantROI)
	}
	if math.Abs(s.AvgCycleMinutes-30) > 1e-9 { // (10+30+20+60)/4
		t.Errorf("avg cycle minutes = %.2f, want 30", s.AvgCycleMinutes)
	}
	if s.LongWins != 1 || s.LongLosses != 1 || s.ShortWins != 1 || s.ShortLosses != 1 {
		t.Errorf("side split = %d/%d long, %d/%d short, want 1/1 each",
			s.LongWins, s.LongLosses, s.ShortWins, s.ShortLosses)
	}
	if s.ByReason[model.ExitTakeProfit] != 2 || s.ByReason[model.ExitStopLoss] != 1 || s.ByReason[model.ExitLiquidation] != 1 {
		t.Errorf("by-reason counts = %v, want 2/1/1", s.ByReason)
	}
	if len(s.WinningCycles) != 2 || len(s.LosingCycles) != 2 {
		t.Errorf("cycle lists = %d winners, %d losers, want 2/2",
			len(s.WinningCycles), len(s.LosingCycles))
	}
}

func TestSummarizeEmptyLog(t *testing.T) {
	s := Summarize(nil, 600, 600)
	if s.TotalCycles != 0 || s.Wins != 0 || s.Losses != 0 {
		t.Fatalf("empty log produced counts: %+v", s)
	}
	if s.ROI != 0 {
		t.Fatalf("roi = %.4f, want 0", s.ROI)
	}
	if s.AvgCycleMinutes != 0 {
		t.Fatalf("avg cycle minutes = %.4f, want 0", s.AvgCycleMinutes)
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	cycles := sampleCycles()
	before := make([]model.ClosedCycle, len(cycles))
	copy(before, cycles)

	first := Summarize(cycles, 600, 388.6)
	second := Summarize(cycles, 600, 388.6)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated summarize over the same log differs")
	}
	if !reflect.DeepEqual(cycles, before) {
		t.Fatal("summarize mutated the input log")
	}
}

func TestSummaryToMap(t *testing.T) {
	s := Summarize(sampleCycles(), 600, 388.6)
	m := s.ToMap()

	if m["total_cycles"] != 4 {
		t.Errorf("total_cycles = %v, want 4", m["total_cycles"])
	}
	if m["take_profit_exits"] != 2 {
		t.Errorf("take_profit_exits = %v, want 2", m["take_profit_exits"])
	}
	if m["liquidations"] != 1 {
		t.Errorf("liquidations = %v, want 1", m["liquidations"])
	}
	if _, ok := m["roi_pct"]; !ok {
		t.Error("roi_pct missing from map")
	}
}

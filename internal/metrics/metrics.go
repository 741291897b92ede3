// Package metrics reduces a closed-cycle log into performance statistics.
package metrics

import (
	"CycleBench/internal/model"
)

// Summary is the post-hoc rollup of one run. All fields are derived; the
// input log is never mutated.
type Summary struct {
	TotalCycles int
	Wins        int
	Losses      int
	WinRate     float64 // percent
	LossRate    float64 // percent

	AvgProfitPct float64 // mean P&L as % of committed capital, winners only
	AvgLossPct   float64 // mean P&L as % of committed capital, losers only
	NetProfit    float64
	NetLoss      float64

	InitialPool float64
	FinalPool   float64
	ROI         float64 // percent

	AvgCycleMinutes float64

	LongWins    int
	LongLosses  int
	ShortWins   int
	ShortLosses int

	ByReason map[model.ExitReason]int

	WinningCycles []model.ClosedCycle
	LosingCycles  []model.ClosedCycle
}

// Summarize computes the summary for a finished run. Calling it twice over
// the same log yields identical output.
func Summarize(cycles []model.ClosedCycle, initialPool, finalPool float64) Summary {
	s := Summary{
		TotalCycles: len(cycles),
		InitialPool: initialPool,
		FinalPool:   finalPool,
		ByReason:    make(map[model.ExitReason]int),
	}
	if initialPool != 0 {
		s.ROI = (finalPool - initialPool) / initialPool * 100
	}
	if len(cycles) == 0 {
		return s
	}

	var profitPctSum, lossPctSum float64
	var totalMinutes float64
	for _, c := range cycles {
		s.ByReason[c.Reason]++
		totalMinutes += c.Duration().Minutes()

		win := c.PnL > 0
		var pct float64
		if c.Committed != 0 {
			pct = c.PnL / c.Committed * 100
		}
		if win {
			s.Wins++
			s.NetProfit += c.PnL
			profitPctSum += pct
			s.WinningCycles = append(s.WinningCycles, c)
			if c.Side == model.SideShort {
				s.ShortWins++
			} else {
				s.LongWins++
			}
		} else {
			s.Losses++
			s.NetLoss += c.PnL
			lossPctSum += pct
			s.LosingCycles = append(s.LosingCycles, c)
			if c.Side == model.SideShort {
				s.ShortLosses++
			} else {
				s.LongLosses++
			}
		}
	}

	s.WinRate = float64(s.Wins) / float64(s.TotalCycles) * 100
	s.LossRate = float64(s.Losses) / float64(s.TotalCycles) * 100
	if s.Wins > 0 {
		s.AvgProfitPct = profitPctSum / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AvgLossPct = lossPctSum / float64(s.Losses)
	}
	s.AvgCycleMinutes = totalMinutes / float64(s.TotalCycles)
	return s
}

// ToMap exposes the summary as a string-keyed mapping for serialization.
func (s Summary) ToMap() map[string]any {
	return map[string]any{
		"total_cycles":      s.TotalCycles,
		"wins":              s.Wins,
		"losses":            s.Losses,
		"win_rate_pct":      s.WinRate,
		"loss_rate_pct":     s.LossRate,
		"avg_profit_pct":    s.AvgProfitPct,
		"avg_loss_pct":      s.AvgLossPct,
		"net_profit":        s.NetProfit,
		"net_loss":          s.NetLoss,
		"initial_pool":      s.InitialPool,
		"final_pool":        s.FinalPool,
		"roi_pct":           s.ROI,
		"avg_cycle_minutes": s.AvgCycleMinutes,
		"long_wins":         s.LongWins,
		"long_losses":       s.LongLosses,
		"short_wins":        s.ShortWins,
		"short_losses":      s.ShortLosses,
		"take_profit_exits": s.ByReason[model.ExitTakeProfit],
		"stop_loss_exits":   s.ByReason[model.ExitStopLoss],
		"liquidations":      s.ByReason[model.ExitLiquidation],
		"winning_cycles":    s.WinningCycles,
		"losing_cycles":     s.LosingCycles,
	}
}

package notifier

import (
	"fmt"
	"strings"

	"CycleBench/internal/metrics"
	"CycleBench/internal/model"
)

// FormatRunReport formats one backtest run's summary into a Telegram message.
func FormatRunReport(symbol, month string, s metrics.Summary, halted bool) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>CycleBench run</b> | %s %s\n\n", symbol, month))

	b.WriteString(fmt.Sprintf("Cycles: %d (W %d / L %d)\n", s.TotalCycles, s.Wins, s.Losses))
	b.WriteString(fmt.Sprintf("Win rate: %.1f%%\n", s.WinRate))
	b.WriteString(fmt.Sprintf("Pool: %.2f → %.2f (ROI %+.2f%%)\n", s.InitialPool, s.FinalPool, s.ROI))
	b.WriteString(fmt.Sprintf("Net profit: %+.2f | Net loss: %+.2f\n", s.NetProfit, s.NetLoss))
	b.WriteString(fmt.Sprintf("Avg cycle: %.1f min\n", s.AvgCycleMinutes))

	b.WriteString("\n<b>Exits:</b>\n")
	for _, r := range []model.ExitReason{model.ExitTakeProfit, model.ExitStopLoss, model.ExitLiquidation} {
		if n := s.ByReason[r]; n > 0 {
			b.WriteString(fmt.Sprintf("  %s: %d\n", r, n))
		}
	}

	if halted {
		b.WriteString("\n⚠️ run halted: capital pool depleted\n")
	}

	return b.String()
}

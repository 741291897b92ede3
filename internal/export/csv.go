// Package export serializes closed-cycle logs for external analysis.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"CycleBench/internal/model"
)

var cycleHeader = []string{
	"id", "slot", "tier", "side",
	"buy_time", "buy_price", "sell_time", "sell_price",
	"amount_invested", "realized_pnl", "exit_reason",
}

// WriteCyclesCSV writes the closed-cycle log to path.
func WriteCyclesCSV(path string, cycles []model.ClosedCycle) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(cycleHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, c := range cycles {
		row := []string{
			c.ID,
			strconv.Itoa(c.Slot),
			c.Tier.String(),
			string(c.Side),
			c.EntryTime.UTC().Format("2006-01-02 15:04:05"),
			formatPrice(c.EntryPrice),
			c.ExitTime.UTC().Format("2006-01-02 15:04:05"),
			formatPrice(c.ExitPrice),
			formatPrice(c.Committed),
			formatPrice(c.PnL),
			string(c.Reason),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write cycle %s: %w", c.ID, err)
		}
	}
	w.Flush()
	return w.Error()
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package calculator

import (
	"errors"
	"math"

	"CycleBench/internal/model"
)

// ATRSeries computes the Wilder-smoothed average true range for every bar.
// Entries before period+1 bars are zero.
func ATRSeries(bars []model.Bar, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]float64, len(bars))
	if len(bars) < period+1 {
		return out, nil
	}

	trs := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		trs[i] = trueRange(bars[i], bars[i-1].Close)
	}

	// Seed with the simple average of the first `period` true ranges.
	var sum float64
	for i := 1; i <= period; i++ {
		sum += trs[i]
	}
	out[period] = sum / float64(period)

	for i := period + 1; i < len(bars); i++ {
		out[i] = (out[i-1]*float64(period-1) + trs[i]) / float64(period)
	}
	return out, nil
}

func trueRange(bar model.Bar, prevClose float64) float64 {
	hl := bar.High - bar.Low
	hc := math.Abs(bar.High - prevClose)
	lc := math.Abs(bar.Low - prevClose)
	return math.Max(hl, math.Max(hc, lc))
}

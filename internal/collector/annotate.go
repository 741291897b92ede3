package collector

import (
	"fmt"

	"CycleBench/internal/calculator"
	"CycleBench/internal/model"
)

// IndicatorParams holds the indicator windows used for annotation.
type IndicatorParams struct {
	EMAPeriod  int
	RSIPeriod  int
	MACDFast   int
	MACDSlow   int
	MACDSignal int
	ATRPeriod  int
}

// DefaultIndicatorParams mirrors the strategy's standard windows.
func DefaultIndicatorParams() IndicatorParams {
	return IndicatorParams{
		EMAPeriod:  50,
		RSIPeriod:  14,
		MACDFast:   6,
		MACDSlow:   12,
		MACDSignal: 5,
		ATRPeriod:  14,
	}
}

// Annotate computes all indicators over the bar series and returns a new
// slice with each bar's Ind populated. Bars before the slowest window has
// filled are marked not ready so the classifier skips them.
func Annotate(bars []model.Bar, p IndicatorParams) ([]model.Bar, error) {
	closes := calculator.ExtractCloses(bars)

	ema, err := calculator.EMASeries(closes, p.EMAPeriod)
	if err != nil {
		return nil, fmt.Errorf("EMA%d: %w", p.EMAPeriod, err)
	}
	rsi, err := calculator.RSISeries(closes, p.RSIPeriod)
	if err != nil {
		return nil, fmt.Errorf("RSI%d: %w", p.RSIPeriod, err)
	}
	macd, signal, err := calculator.MACDSeries(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	if err != nil {
		return nil, fmt.Errorf("MACD(%d,%d,%d): %w", p.MACDFast, p.MACDSlow, p.MACDSignal, err)
	}
	atr, err := calculator.ATRSeries(bars, p.ATRPeriod)
	if err != nil {
		return nil, fmt.Errorf("ATR%d: %w", p.ATRPeriod, err)
	}

	warm := p.EMAPeriod - 1
	if w := p.RSIPeriod; w > warm {
		warm = w
	}
	if w := p.MACDSlow + p.MACDSignal - 2; w > warm {
		warm = w
	}
	if w := p.ATRPeriod; w > warm {
		warm = w
	}

	out := make([]model.Bar, len(bars))
	copy(out, bars)
	for i := range out {
		out[i].Ind = model.Indicators{
			EMA50:      ema[i],
			RSI:        rsi[i],
			MACD:       macd[i],
			MACDSignal: signal[i],
			ATR:        atr[i],
			Ready:      i >= warm,
		}
	}
	return out, nil
}

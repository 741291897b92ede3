package strategy

import (
	"testing"

	"CycleBench/internal/model"
)

func annotatedBar(close, ema, rsi, macd, macdSignal float64, ready bool) model.Bar {
	return model.Bar{
		Close: close,
		Ind: model.Indicators{
			EMA50:      ema,
			RSI:        rsi,
			MACD:       macd,
			MACDSignal: macdSignal,
			Ready:      ready,
		},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		bar  model.Bar
		want model.SignalTier
	}{
		{"not warmed up", annotatedBar(101, 100, 80, 1, 0, false), model.TierNone},
		{"close below ema", annotatedBar(99, 100, 80, 1, 0, true), model.TierNone},
		{"close equal to ema", annotatedBar(100, 100, 80, 1, 0, true), model.TierNone},
		{"macd below signal", annotatedBar(101, 100, 80, -1, 0, true), model.TierNone},
		{"macd equal to signal", annotatedBar(101, 100, 80, 0.5, 0.5, true), model.TierNone},
		{"rsi below all bands", annotatedBar(101, 100, 51.9, 1, 0, true), model.TierNone},
		{"standard band lower edge", annotatedBar(101, 100, 52, 1, 0, true), model.TierStandard},
		{"standard band interior", annotatedBar(101, 100, 61.9, 1, 0, true), model.TierStandard},
		{"strong band lower edge", annotatedBar(101, 100, 62, 1, 0, true), model.TierStrong},
		{"strong band interior", annotatedBar(101, 100, 71.9, 1, 0, true), model.TierStrong},
		{"max band lower edge", annotatedBar(101, 100, 72, 1, 0, true), model.TierMax},
		{"max band extreme", annotatedBar(101, 100, 99, 1, 0, true), model.TierMax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.bar); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	bar := annotatedBar(101, 100, 65, 1, 0, true)
	first := Classify(bar)
	for i := 0; i < 5; i++ {
		if got := Classify(bar); got != first {
			t.Fatalf("repeated call %d changed result: %s vs %s", i, got, first)
		}
	}
}

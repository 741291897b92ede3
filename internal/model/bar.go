package model

import "time"

// Bar represents a single candlestick plus the indicators derived from it.
// Bars are immutable once annotated; the engine assumes a feed ordered by
// non-decreasing OpenTime.
type Bar struct {
	OpenTime  time.Time
	CloseTime time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Ind       Indicators
}

// Indicators holds the technical indicators computed for one bar.
// Ready is false while any indicator window is still warming up;
// the classifier never emits a tier for a non-ready bar.
type Indicators struct {
	EMA50      float64
	RSI        float64
	MACD       float64
	MACDSignal float64
	ATR        float64
	Ready      bool
}

package strategy

import "CycleBench/internal/model"

// Bands defines the RSI band for each tier, strongest first. Bands are
// half-open [Min, ∞) and non-overlapping because classification stops at the
// first match, which breaks ties toward the stronger tier.
var Bands = []struct {
	MinRSI float64
	Tier   model.SignalTier
}{
	{72, model.TierMax},
	{62, model.TierStrong},
	{52, model.TierStandard},
}

// Classify maps one annotated bar to a signal tier. Both gates must hold for
// any tier: close above EMA50 (price above short-term support) and the MACD
// line above its signal line. Returns TierNone when no band matches or the
// bar's indicators are still warming up. Pure, no side effects.
func Classify(bar model.Bar) model.SignalTier {
	if !bar.Ind.Ready {
		return model.TierNone
	}
	if bar.Close <= bar.Ind.EMA50 {
		return model.TierNone
	}
	if bar.Ind.MACD <= bar.Ind.MACDSignal {
		return model.TierNone
	}
	for _, b := range Bands {
		if bar.Ind.RSI >= b.MinRSI {
			return b.Tier
		}
	}
	return model.TierNone
}

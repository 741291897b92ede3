package model

import "fmt"

// SignalTier classifies the strength of an entry signal. Tiers form a total
// order from TierNone (no entry) to TierMax (strongest).
type SignalTier int

const (
	TierNone SignalTier = iota
	TierStandard
	TierStrong
	TierMax
)

// TierParams maps a tier to its capital-allocation behavior.
type TierParams struct {
	InvestFraction float64 // fraction of the pool committed at open
	TargetProfit   float64 // take-profit gain, e.g. 0.005 = 0.5%
}

// tierParams is the fixed tier table. Fractions are non-decreasing with tier
// strength; the table is never mutated at runtime.
var tierParams = map[SignalTier]TierParams{
	TierStandard: {InvestFraction: 0.30, TargetProfit: 0.005},
	TierStrong:   {InvestFraction: 0.40, TargetProfit: 0.010},
	TierMax:      {InvestFraction: 0.50, TargetProfit: 0.015},
}

// Params returns the allocation parameters for the tier.
// TierNone has no parameters and returns the zero value.
func (t SignalTier) Params() TierParams {
	return tierParams[t]
}

func (t SignalTier) String() string {
	switch t {
	case TierNone:
		return "NONE"
	case TierStandard:
		return "STANDARD"
	case TierStrong:
		return "STRONG"
	case TierMax:
		return "MAX"
	default:
		return fmt.Sprintf("SignalTier(%d)", int(t))
	}
}

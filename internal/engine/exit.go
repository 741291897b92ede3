package engine

import (
	"CycleBench/internal/model"
)

// Verdict is the exit evaluator's decision for one position on one bar.
type Verdict int

const (
	VerdictHold Verdict = iota
	VerdictTakeProfit
	VerdictStopLoss
	VerdictLiquidation
)

func (v Verdict) String() string {
	switch v {
	case VerdictHold:
		return "HOLD"
	case VerdictTakeProfit:
		return "TAKE_PROFIT"
	case VerdictStopLoss:
		return "STOP_LOSS"
	case VerdictLiquidation:
		return "LIQUIDATION"
	default:
		return "UNKNOWN"
	}
}

// Reason converts a closing verdict to its exit reason.
func (v Verdict) Reason() model.ExitReason {
	switch v {
	case VerdictTakeProfit:
		return model.ExitTakeProfit
	case VerdictStopLoss:
		return model.ExitStopLoss
	default:
		return model.ExitLiquidation
	}
}

// TargetMode selects how the take-profit price is derived.
type TargetMode string

const (
	TargetPercentage TargetMode = "percentage" // entry × (1 + target profit)
	TargetATR        TargetMode = "atr"        // entry + ATR × multiplier
)

const (
	// atrStopWeight widens the stop by half an ATR to avoid noise-triggered exits.
	atrStopWeight = 0.5
	// maintenanceMargin is the Binance USD-M default used for the liquidation threshold.
	maintenanceMargin = 0.004
)

// ExitParams parameterizes the evaluator. One evaluator serves both target
// modes and both sides.
type ExitParams struct {
	StopLoss      float64 // fraction, e.g. 0.30
	FeeRate       float64 // fraction, e.g. 0.001
	Leverage      int     // liquidation applies only when > 1
	Mode          TargetMode
	ATRMultiplier float64 // only in TargetATR mode
}

// EvaluateExit decides whether the position must close on the current bar.
// Liquidation dominates stop-loss, which dominates take-profit. Pure function
// of position, bar and parameters.
func EvaluateExit(pos *model.Position, bar model.Bar, p ExitParams) Verdict {
	price := bar.Close
	atr := bar.Ind.ATR

	if p.Leverage > 1 {
		liq := LiquidationPrice(pos.EntryPrice, pos.Side, p.Leverage)
		if (pos.Side == model.SideLong && price <= liq) ||
			(pos.Side == model.SideShort && price >= liq) {
			return VerdictLiquidation
		}
	}

	stop := StopPrice(pos.EntryPrice, pos.Side, p.StopLoss, atr)
	if (pos.Side == model.SideLong && price <= stop) ||
		(pos.Side == model.SideShort && price >= stop) {
		return VerdictStopLoss
	}

	target := TargetPrice(pos, atr, p)
	if (pos.Side == model.SideLong && price >= target) ||
		(pos.Side == model.SideShort && price <= target) {
		return VerdictTakeProfit
	}

	return VerdictHold
}

// StopPrice returns the ATR-widened stop-loss price.
func StopPrice(entry float64, side model.Side, stopLoss, atr float64) float64 {
	if side == model.SideShort {
		return entry*(1+stopLoss) + atrStopWeight*atr
	}
	return entry*(1-stopLoss) - atrStopWeight*atr
}

// TargetPrice returns the fee-inclusive take-profit price, so a fill at the
// target realizes a net-positive profit after both fees.
func TargetPrice(pos *model.Position, atr float64, p ExitParams) float64 {
	var raw float64
	switch p.Mode {
	case TargetATR:
		if pos.Side == model.SideShort {
			raw = pos.EntryPrice - atr*p.ATRMultiplier
		} else {
			raw = pos.EntryPrice + atr*p.ATRMultiplier
		}
	default:
		if pos.Side == model.SideShort {
			raw = pos.EntryPrice * (1 - pos.TargetProfit)
		} else {
			raw = pos.EntryPrice * (1 + pos.TargetProfit)
		}
	}
	if pos.Side == model.SideShort {
		return raw * (1 - p.FeeRate)
	}
	return raw * (1 + p.FeeRate)
}

// LiquidationPrice returns the maintenance-margin-derived forced-close price.
func LiquidationPrice(entry float64, side model.Side, leverage int) float64 {
	if side == model.SideShort {
		return entry * (1 + 1/float64(leverage) - maintenanceMargin)
	}
	return entry * (1 - 1/float64(leverage) + maintenanceMargin)
}

// RealizedPnL computes the net profit of closing the position at exitPrice:
// price change on the purchased units minus entry and exit fees.
func RealizedPnL(pos *model.Position, exitPrice, feeRate float64) float64 {
	units := pos.Committed / pos.EntryPrice
	var gross float64
	if pos.Side == model.SideShort {
		gross = (pos.EntryPrice - exitPrice) * units
	} else {
		gross = (exitPrice - pos.EntryPrice) * units
	}
	fee := (pos.EntryPrice + exitPrice) * units * feeRate
	return gross - fee
}

// Package engine implements the position-lifecycle and capital-allocation
// core: it opens tiered positions against a shared capital pool, evaluates
// them for exit on every bar, and settles realized P&L back into the pool.
package engine

import (
	"errors"
	"fmt"
	"log"
	"math"

	"CycleBench/internal/model"
	"CycleBench/internal/strategy"
)

const (
	// SlotCount caps how many positions may be open at once and how many
	// slots one reset window admits.
	SlotCount = 3
	// AllocPrecision is the decimal precision of the third-slot remainder
	// fraction.
	AllocPrecision = 2
)

var (
	// ErrInvalidConfig marks construction-time configuration failures.
	ErrInvalidConfig = errors.New("invalid engine configuration")
	// ErrNoData is returned when the feed yields zero bars for the window.
	ErrNoData = errors.New("no bars in requested window")
)

// Config holds the run parameters. Validation failures abort before any bar
// is processed.
type Config struct {
	InitialPool   float64
	Side          model.Side
	StopLoss      float64 // fraction, e.g. 0.30
	FeeRate       float64 // fraction, e.g. 0.001
	Leverage      int
	Mode          TargetMode
	ATRMultiplier float64
}

// Validate checks every parameter against the configuration taxonomy.
func (c Config) Validate() error {
	if c.InitialPool <= 0 {
		return fmt.Errorf("%w: initial pool must be positive, got %.2f", ErrInvalidConfig, c.InitialPool)
	}
	if !c.Side.Valid() {
		return fmt.Errorf("%w: unrecognized side %q", ErrInvalidConfig, c.Side)
	}
	if c.StopLoss <= 0 || c.StopLoss >= 1 {
		return fmt.Errorf("%w: stop-loss fraction must be in (0, 1), got %.4f", ErrInvalidConfig, c.StopLoss)
	}
	if c.FeeRate < 0 || c.FeeRate >= 1 {
		return fmt.Errorf("%w: fee rate must be in [0, 1), got %.4f", ErrInvalidConfig, c.FeeRate)
	}
	if c.Leverage <= 0 {
		return fmt.Errorf("%w: leverage must be positive, got %d", ErrInvalidConfig, c.Leverage)
	}
	switch c.Mode {
	case TargetPercentage:
	case TargetATR:
		if c.ATRMultiplier <= 0 {
			return fmt.Errorf("%w: ATR multiplier must be positive in atr mode, got %.2f", ErrInvalidConfig, c.ATRMultiplier)
		}
	default:
		return fmt.Errorf("%w: unknown target mode %q", ErrInvalidConfig, c.Mode)
	}
	return nil
}

// Classifier maps one bar to a signal tier.
type Classifier func(model.Bar) model.SignalTier

// Engine drives one run over a chronological bar feed. All state is owned by
// the engine instance; there are no package-level singletons.
type Engine struct {
	cfg      Config
	classify Classifier

	pool          float64
	slots         [SlotCount]*model.Position
	usedInWindow  int
	fracInWindow  float64
	cycles        []model.ClosedCycle
	halted        bool
	barsProcessed int
}

// New builds an engine, validating the configuration first. A nil classifier
// defaults to strategy.Classify.
func New(cfg Config, classify Classifier) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if classify == nil {
		classify = strategy.Classify
	}
	return &Engine{cfg: cfg, classify: classify, pool: cfg.InitialPool}, nil
}

// Result is the outcome of a completed (or halted) run.
type Result struct {
	Cycles        []model.ClosedCycle
	InitialPool   float64
	FinalPool     float64
	BarsProcessed int
	Halted        bool
}

// Run processes the whole feed in order and returns the closed-cycle log.
// An empty feed is a data gap, reported as ErrNoData without any cycles.
func (e *Engine) Run(bars []model.Bar) (*Result, error) {
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	for i := range bars {
		e.Step(bars[i])
		if e.halted {
			break
		}
	}
	return &Result{
		Cycles:        e.cycles,
		InitialPool:   e.cfg.InitialPool,
		FinalPool:     e.pool,
		BarsProcessed: e.barsProcessed,
		Halted:        e.halted,
	}, nil
}

// Step applies the full per-bar transition: open, evaluate all open slots in
// order, then reset the window when it has cycled through. A halted engine
// ignores further bars.
func (e *Engine) Step(bar model.Bar) {
	if e.halted {
		return
	}
	e.barsProcessed++
	e.openStep(bar)
	e.evaluateStep(bar)
	e.resetStep()
}

// Pool returns the current capital pool balance.
func (e *Engine) Pool() float64 { return e.pool }

// Halted reports whether the pool was depleted and the run stopped.
func (e *Engine) Halted() bool { return e.halted }

// Cycles returns the closed-cycle log accumulated so far.
func (e *Engine) Cycles() []model.ClosedCycle { return e.cycles }

// OpenPositions returns copies of the currently open positions in slot
// order. The engine owns the live records until close; callers cannot reach
// them through this accessor.
func (e *Engine) OpenPositions() []model.Position {
	var open []model.Position
	for _, p := range e.slots {
		if p != nil {
			open = append(open, *p)
		}
	}
	return open
}

func (e *Engine) openStep(bar model.Bar) {
	tier := e.classify(bar)
	if tier == model.TierNone {
		return
	}
	if e.openCount() >= SlotCount || e.usedInWindow >= SlotCount {
		return
	}

	frac := tier.Params().InvestFraction
	if e.usedInWindow == SlotCount-1 {
		// The last slot of the window commits exactly the unallocated
		// remainder so the window never over-commits the pool.
		frac = remainderFraction(e.fracInWindow)
	}
	committed := e.pool * frac

	if bar.Close <= 0 || committed <= 0 {
		log.Printf("[WARN] rejecting open at %s: entry=%.4f committed=%.4f",
			bar.OpenTime.Format("2006-01-02 15:04"), bar.Close, committed)
		return
	}

	slot := e.freeSlot()
	pos := &model.Position{
		ID:             model.CycleID(slot, bar.OpenTime, bar.Close),
		Slot:           slot,
		Tier:           tier,
		Side:           e.cfg.Side,
		EntryPrice:     bar.Close,
		EntryTime:      bar.OpenTime,
		Committed:      committed,
		InvestFraction: frac,
		TargetProfit:   tier.Params().TargetProfit,
	}
	e.slots[slot] = pos
	e.usedInWindow++
	e.fracInWindow += frac

	log.Printf("[INFO] open slot=%d tier=%s %s @ %.4f committed=%.2f (%.0f%% of pool)",
		slot, tier, pos.Side, pos.EntryPrice, committed, frac*100)
}

func (e *Engine) evaluateStep(bar model.Bar) {
	params := ExitParams{
		StopLoss:      e.cfg.StopLoss,
		FeeRate:       e.cfg.FeeRate,
		Leverage:      e.cfg.Leverage,
		Mode:          e.cfg.Mode,
		ATRMultiplier: e.cfg.ATRMultiplier,
	}
	for slot := 0; slot < SlotCount; slot++ {
		pos := e.slots[slot]
		if pos == nil {
			continue
		}
		verdict := EvaluateExit(pos, bar, params)
		if verdict == VerdictHold {
			continue
		}
		e.settle(pos, bar, verdict)
		if e.pool <= 0 {
			e.halted = true
			log.Printf("[ERROR] capital pool depleted (%.2f) at %s, halting run",
				e.pool, bar.OpenTime.Format("2006-01-02 15:04"))
			return
		}
	}
}

// settle closes the position, appends the cycle record, and adds the realized
// P&L back to the pool exactly once.
func (e *Engine) settle(pos *model.Position, bar model.Bar, verdict Verdict) {
	var pnl float64
	if verdict == VerdictLiquidation {
		// Forced close at zero residual equity: the committed margin is gone.
		pnl = -pos.Committed
	} else {
		pnl = RealizedPnL(pos, bar.Close, e.cfg.FeeRate)
	}

	e.cycles = append(e.cycles, model.ClosedCycle{
		ID:         pos.ID,
		Slot:       pos.Slot,
		Tier:       pos.Tier,
		Side:       pos.Side,
		EntryPrice: pos.EntryPrice,
		EntryTime:  pos.EntryTime,
		ExitPrice:  bar.Close,
		ExitTime:   bar.OpenTime,
		Committed:  pos.Committed,
		PnL:        pnl,
		Reason:     verdict.Reason(),
	})
	e.pool += pnl
	e.slots[pos.Slot] = nil

	log.Printf("[INFO] close slot=%d %s @ %.4f pnl=%.2f pool=%.2f",
		pos.Slot, verdict, bar.Close, pnl, e.pool)
}

// resetStep clears the window counters once the window is spent and every
// admitted slot has closed, allowing a fresh batch of up to three signals.
// A window is spent when all three slots were used, or when fewer slots
// already committed the whole pool fraction (two Max signals reach 1.0 with
// only two slots used, leaving nothing for a third).
func (e *Engine) resetStep() {
	if e.usedInWindow == 0 || e.openCount() > 0 {
		return
	}
	if e.usedInWindow == SlotCount || remainderFraction(e.fracInWindow) <= 0 {
		e.usedInWindow = 0
		e.fracInWindow = 0
	}
}

func (e *Engine) openCount() int {
	n := 0
	for _, p := range e.slots {
		if p != nil {
			n++
		}
	}
	return n
}

func (e *Engine) freeSlot() int {
	for i, p := range e.slots {
		if p == nil {
			return i
		}
	}
	return -1
}

// remainderFraction computes the third slot's fraction: the unallocated rest
// of the window, rounded to AllocPrecision decimals and floored at zero.
func remainderFraction(allocated float64) float64 {
	factor := math.Pow(10, AllocPrecision)
	r := math.Round((1-allocated)*factor) / factor
	if r < 0 {
		r = 0
	}
	return r
}

package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Side is the direction of a position.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Valid returns true if the side is one of the defined constants.
func (s Side) Valid() bool {
	return s == SideLong || s == SideShort
}

// ExitReason records why a cycle was closed.
type ExitReason string

const (
	ExitTakeProfit  ExitReason = "TAKE_PROFIT"
	ExitStopLoss    ExitReason = "STOP_LOSS"
	ExitLiquidation ExitReason = "LIQUIDATION"
)

// Position is one open sub-cycle. It is owned exclusively by the engine
// between open and close and never mutated by anything else.
type Position struct {
	ID             string
	Slot           int
	Tier           SignalTier
	Side           Side
	EntryPrice     float64
	EntryTime      time.Time
	Committed      float64 // capital committed at open
	InvestFraction float64 // fraction of the pool the commitment represents
	TargetProfit   float64
}

// ClosedCycle is the immutable record of a finished position.
type ClosedCycle struct {
	ID         string
	Slot       int
	Tier       SignalTier
	Side       Side
	EntryPrice float64
	EntryTime  time.Time
	ExitPrice  float64
	ExitTime   time.Time
	Committed  float64
	PnL        float64
	Reason     ExitReason
}

// Duration returns the cycle lifetime in the feed's time unit.
func (c ClosedCycle) Duration() time.Duration {
	return c.ExitTime.Sub(c.EntryTime)
}

// cycleNamespace scopes the deterministic cycle IDs.
var cycleNamespace = uuid.MustParse("7d8f1c42-9b3a-4e6d-8f5a-2c1b0e9d7a63")

// CycleID derives a stable UUID from the entry coordinates, so replaying an
// identical feed produces an identical cycle log.
func CycleID(slot int, entryTime time.Time, entryPrice float64) string {
	name := fmt.Sprintf("%d|%d|%.8f", slot, entryTime.UnixMilli(), entryPrice)
	return uuid.NewSHA1(cycleNamespace, []byte(name)).String()
}

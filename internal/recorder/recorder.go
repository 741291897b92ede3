package recorder

import (
	"time"

	"CycleBench/internal/metrics"
	"CycleBench/internal/model"
)

// RunRecord holds everything persisted for one backtest run.
type RunRecord struct {
	ID         string
	Symbol     string
	Month      string
	Side       model.Side
	StartedAt  time.Time
	FinishedAt time.Time
	Halted     bool
	Summary    metrics.Summary
	Cycles     []model.ClosedCycle
}

// Recorder persists backtest results for later analysis.
type Recorder interface {
	RecordRun(rec *RunRecord) error
	Close() error
}

package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run results to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] run recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id                TEXT PRIMARY KEY,
			symbol            TEXT NOT NULL,
			month             TEXT NOT NULL,
			side              TEXT NOT NULL,
			started_at        INTEGER NOT NULL,
			finished_at       INTEGER NOT NULL,
			halted            INTEGER NOT NULL,
			total_cycles      INTEGER,
			wins              INTEGER,
			losses            INTEGER,
			win_rate_pct      REAL,
			net_profit        REAL,
			net_loss          REAL,
			initial_pool      REAL,
			final_pool        REAL,
			roi_pct           REAL,
			avg_cycle_minutes REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_month ON runs(symbol, month)`,

		`CREATE TABLE IF NOT EXISTS cycles (
			id          TEXT PRIMARY KEY,
			run_id      TEXT NOT NULL,
			slot        INTEGER NOT NULL,
			tier        TEXT NOT NULL,
			side        TEXT NOT NULL,
			entry_time  INTEGER NOT NULL,
			entry_price REAL NOT NULL,
			exit_time   INTEGER NOT NULL,
			exit_price  REAL NOT NULL,
			committed   REAL NOT NULL,
			pnl         REAL NOT NULL,
			reason      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_run ON cycles(run_id)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// RecordRun writes the run row and every cycle in one transaction.
func (r *SQLiteRecorder) RecordRun(rec *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	s := rec.Summary
	if _, err := tx.Exec(`INSERT INTO runs
		(id, symbol, month, side, started_at, finished_at, halted,
		 total_cycles, wins, losses, win_rate_pct, net_profit, net_loss,
		 initial_pool, final_pool, roi_pct, avg_cycle_minutes)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.Symbol, rec.Month, string(rec.Side),
		rec.StartedAt.Unix(), rec.FinishedAt.Unix(), boolToInt(rec.Halted),
		s.TotalCycles, s.Wins, s.Losses, s.WinRate, s.NetProfit, s.NetLoss,
		s.InitialPool, s.FinalPool, s.ROI, s.AvgCycleMinutes,
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("insert run: %w", err)
	}

	for _, c := range rec.Cycles {
		if _, err := tx.Exec(`INSERT INTO cycles
			(id, run_id, slot, tier, side, entry_time, entry_price,
			 exit_time, exit_price, committed, pnl, reason)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
			c.ID, rec.ID, c.Slot, c.Tier.String(), string(c.Side),
			c.EntryTime.UnixMilli(), c.EntryPrice,
			c.ExitTime.UnixMilli(), c.ExitPrice,
			c.Committed, c.PnL, string(c.Reason),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert cycle %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing run recorder")
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

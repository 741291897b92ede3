// Package store persists klines to SQLite and serves them back as ordered
// bar ranges for backtest runs.
package store

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"CycleBench/internal/model"

	_ "modernc.org/sqlite"
)

// KlineStore persists candlestick data to a SQLite database.
type KlineStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewKlineStore opens (or creates) the SQLite database and runs migrations.
func NewKlineStore(dbPath string) (*KlineStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the collector can write while a backtest reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &KlineStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] kline store opened: %s", dbPath)
	return s, nil
}

func (s *KlineStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS klines (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol     TEXT    NOT NULL,
			open_time  INTEGER NOT NULL,
			close_time INTEGER NOT NULL,
			open       REAL NOT NULL,
			high       REAL NOT NULL,
			low        REAL NOT NULL,
			close      REAL NOT NULL,
			volume     REAL NOT NULL,
			UNIQUE(symbol, open_time)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_klines_symbol_time ON klines(symbol, open_time)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// SaveBars upserts a batch of bars for the symbol in one transaction.
func (s *KlineStore) SaveBars(symbol string, bars []model.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO klines
		(symbol, open_time, close_time, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(symbol, open_time) DO UPDATE SET
			close_time=excluded.close_time, open=excluded.open, high=excluded.high,
			low=excluded.low, close=excluded.close, volume=excluded.volume`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.Exec(symbol,
			b.OpenTime.UnixMilli(), b.CloseTime.UnixMilli(),
			b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert bar %s: %w", b.OpenTime, err)
		}
	}
	return tx.Commit()
}

// LoadRange returns the bars for [from, to] ordered by open_time ascending.
func (s *KlineStore) LoadRange(symbol string, from, to time.Time) ([]model.Bar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT open_time, close_time, open, high, low, close, volume
		FROM klines
		WHERE symbol = ? AND open_time >= ? AND close_time <= ?
		ORDER BY open_time ASC`,
		symbol, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query klines: %w", err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var b model.Bar
		var openMs, closeMs int64
		if err := rows.Scan(&openMs, &closeMs, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan kline: %w", err)
		}
		b.OpenTime = time.UnixMilli(openMs).UTC()
		b.CloseTime = time.UnixMilli(closeMs).UTC()
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// LatestOpenTime returns the newest stored open_time for the symbol, or the
// zero time when nothing is stored yet.
func (s *KlineStore) LatestOpenTime(symbol string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ms sql.NullInt64
	err := s.db.QueryRow(`SELECT MAX(open_time) FROM klines WHERE symbol = ?`, symbol).Scan(&ms)
	if err != nil {
		return time.Time{}, fmt.Errorf("query latest open_time: %w", err)
	}
	if !ms.Valid {
		return time.Time{}, nil
	}
	return time.UnixMilli(ms.Int64).UTC(), nil
}

// Close closes the underlying database.
func (s *KlineStore) Close() error {
	log.Println("[INFO] closing kline store")
	return s.db.Close()
}

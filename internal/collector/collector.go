package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"CycleBench/internal/model"
	"CycleBench/internal/store"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Bars []model.Bar
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchKlines(_ context.Context, _, _ string, start, end time.Time) ([]model.Bar, error) {
	if m.Bars != nil {
		return m.Bars, nil
	}
	return GenerateMockBars(100, 64, start, time.Minute), nil
}

// GenerateMockBars produces a deterministic gently drifting series.
func GenerateMockBars(basePrice float64, count int, start time.Time, step time.Duration) []model.Bar {
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		open := start.Add(time.Duration(i) * step)
		bars[i] = model.Bar{
			OpenTime:  open,
			CloseTime: open.Add(step - time.Millisecond),
			Open:      p * 0.999,
			High:      p * 1.005,
			Low:       p * 0.995,
			Close:     p,
			Volume:    1000000,
		}
	}
	return bars
}

// Collector pulls klines from the fetcher and persists them to the store.
type Collector struct {
	Fetcher  Fetcher
	Store    *store.KlineStore
	Symbol   string
	Interval string
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, st *store.KlineStore, symbol, interval string) *Collector {
	return &Collector{Fetcher: fetcher, Store: st, Symbol: symbol, Interval: interval}
}

// Backfill fetches and stores the full [from, to) window.
func (c *Collector) Backfill(ctx context.Context, from, to time.Time) error {
	bars, err := c.Fetcher.FetchKlines(ctx, c.Symbol, c.Interval, from, to)
	if err != nil {
		return fmt.Errorf("fetch %s klines: %w", c.Symbol, err)
	}
	if len(bars) == 0 {
		log.Printf("[WARN] no %s klines in %s..%s", c.Symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))
		return nil
	}
	if err := c.Store.SaveBars(c.Symbol, bars); err != nil {
		return fmt.Errorf("save %s klines: %w", c.Symbol, err)
	}
	log.Printf("[INFO] stored %d %s klines (%s..%s)", len(bars), c.Symbol,
		bars[0].OpenTime.Format("2006-01-02 15:04"),
		bars[len(bars)-1].OpenTime.Format("2006-01-02 15:04"))
	return nil
}

// CollectLatest resumes from the newest stored bar, or from `fallback` when
// the store is empty, and fills up to now.
func (c *Collector) CollectLatest(ctx context.Context, fallback time.Time) error {
	latest, err := c.Store.LatestOpenTime(c.Symbol)
	if err != nil {
		return fmt.Errorf("latest open_time: %w", err)
	}
	from := fallback
	if !latest.IsZero() {
		from = latest.Add(time.Millisecond)
	}
	return c.Backfill(ctx, from, time.Now().UTC())
}

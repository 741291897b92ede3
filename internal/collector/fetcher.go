package collector

import (
	"context"
	"time"

	"CycleBench/internal/model"
)

// Fetcher defines the interface for fetching historical klines.
type Fetcher interface {
	FetchKlines(ctx context.Context, symbol, interval string, start, end time.Time) ([]model.Bar, error)
	Name() string
}

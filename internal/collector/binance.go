package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"CycleBench/internal/model"
)

const (
	binanceBaseURL = "https://api.binance.com/api/v3/klines"
	// Binance caps klines at 1000 per request.
	binanceChunkLimit = 1000
	// Pause between chunk requests to stay under the API rate limits.
	binanceChunkPause = time.Second
)

// BinanceFetcher implements Fetcher using the Binance spot klines API.
type BinanceFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewBinanceFetcher creates a fetcher with optional proxy support.
func NewBinanceFetcher(proxyURL string) *BinanceFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &BinanceFetcher{
		BaseURL: binanceBaseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *BinanceFetcher) Name() string { return "binance" }

// FetchKlines pulls the full [start, end) window in chunks of up to 1000
// bars, resuming each chunk from the close time of the last bar received.
func (f *BinanceFetcher) FetchKlines(ctx context.Context, symbol, interval string, start, end time.Time) ([]model.Bar, error) {
	var all []model.Bar
	cursor := start

	for cursor.Before(end) {
		chunk, err := f.fetchChunk(ctx, symbol, interval, cursor)
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			log.Printf("[WARN] binance returned no klines from %s, stopping", cursor.Format(time.RFC3339))
			break
		}
		for _, b := range chunk {
			if !b.OpenTime.Before(end) {
				return all, nil
			}
			all = append(all, b)
		}
		cursor = chunk[len(chunk)-1].CloseTime.Add(time.Millisecond)

		if len(chunk) < binanceChunkLimit {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(binanceChunkPause):
		}
	}
	return all, nil
}

func (f *BinanceFetcher) fetchChunk(ctx context.Context, symbol, interval string, start time.Time) ([]model.Bar, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("startTime", strconv.FormatInt(start.UnixMilli(), 10))
	q.Set("limit", strconv.Itoa(binanceChunkLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch klines: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("binance API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	// Each kline is a 12-element array mixing numbers and numeric strings:
	// [openTime, open, high, low, close, volume, closeTime, ...].
	var raw [][]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}

	bars := make([]model.Bar, 0, len(raw))
	for _, k := range raw {
		if len(k) < 7 {
			continue
		}
		bars = append(bars, model.Bar{
			OpenTime:  time.UnixMilli(int64(toFloat(k[0]))).UTC(),
			Open:      toFloat(k[1]),
			High:      toFloat(k[2]),
			Low:       toFloat(k[3]),
			Close:     toFloat(k[4]),
			Volume:    toFloat(k[5]),
			CloseTime: time.UnixMilli(int64(toFloat(k[6]))).UTC(),
		})
	}
	return bars, nil
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	case json.Number:
		f, _ := n.Float64()
		return f
	default:
		return 0
	}
}

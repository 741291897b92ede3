package store

import (
	"path/filepath"
	"testing"
	"time"

	"CycleBench/internal/model"
)

func newTestStore(t *testing.T) *KlineStore {
	t.Helper()
	s, err := NewKlineStore(filepath.Join(t.TempDir(), "klines.db"))
	if err != nil {
		t.Fatalf("NewKlineStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func minuteBar(minute int, close float64) model.Bar {
	open := time.Date(2024, 8, 1, 0, minute, 0, 0, time.UTC)
	return model.Bar{
		OpenTime:  open,
		CloseTime: open.Add(59*time.Second + 999*time.Millisecond),
		Open:      close,
		High:      close + 1,
		Low:       close - 1,
		Close:     close,
		Volume:    10,
	}
}

func TestKlineStoreRoundTrip(t *testing.T) {
	s := newTestStore(t)

	in := []model.Bar{minuteBar(0, 100), minuteBar(1, 101), minuteBar(2, 102)}
	if err := s.SaveBars("BTCUSDT", in); err != nil {
		t.Fatalf("SaveBars: %v", err)
	}

	from := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)
	out, err := s.LoadRange("BTCUSDT", from, to)
	if err != nil {
		t.Fatalf("LoadRange: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("loaded %d bars, want 3", len(out))
	}
	for i, b := range out {
		if !b.OpenTime.Equal(in[i].OpenTime) {
			t.Errorf("bar %d open time = %s, want %s", i, b.OpenTime, in[i].OpenTime)
		}
		if b.Close != in[i].Close {
			t.Errorf("bar %d close = %.2f, want %.2f", i, b.Close, in[i].Close)
		}
	}
}

func TestKlineStoreUpsert(t *testing.T) {
	s := newTestStore(t)

	first := minuteBar(0, 100)
	if err := s.SaveBars("BTCUSDT", []model.Bar{first}); err != nil {
		t.Fatalf("SaveBars: %v", err)
	}

	// Same open_time with a revised close must overwrite, not duplicate.
	revised := first
	revised.Close = 105
	if err := s.SaveBars("BTCUSDT", []model.Bar{revised}); err != nil {
		t.Fatalf("SaveBars revised: %v", err)
	}

	from := first.OpenTime.Add(-time.Minute)
	out, err := s.LoadRange("BTCUSDT", from, first.OpenTime.Add(time.Minute))
	if err != nil {
		t.Fatalf("LoadRange: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("loaded %d bars, want 1 after upsert", len(out))
	}
	if out[0].Close != 105 {
		t.Fatalf("close = %.2f, want revised 105", out[0].Close)
	}
}

func TestKlineStoreSymbolIsolation(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveBars("BTCUSDT", []model.Bar{minuteBar(0, 100)}); err != nil {
		t.Fatalf("SaveBars BTCUSDT: %v", err)
	}
	if err := s.SaveBars("ETHUSDT", []model.Bar{minuteBar(0, 3000), minuteBar(1, 3001)}); err != nil {
		t.Fatalf("SaveBars ETHUSDT: %v", err)
	}

	from := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	out, err := s.LoadRange("ETHUSDT", from, from.Add(time.Hour))
	if err != nil {
		t.Fatalf("LoadRange: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("loaded %d ETHUSDT bars, want 2", len(out))
	}
}

func TestKlineStoreLatestOpenTime(t *testing.T) {
	s := newTestStore(t)

	latest, err := s.LatestOpenTime("BTCUSDT")
	if err != nil {
		t.Fatalf("LatestOpenTime empty: %v", err)
	}
	if !latest.IsZero() {
		t.Fatalf("latest = %s, want zero time for empty store", latest)
	}

	bars := []model.Bar{minuteBar(0, 100), minuteBar(5, 101), minuteBar(3, 99)}
	if err := s.SaveBars("BTCUSDT", bars); err != nil {
		t.Fatalf("SaveBars: %v", err)
	}
	latest, err = s.LatestOpenTime("BTCUSDT")
	if err != nil {
		t.Fatalf("LatestOpenTime: %v", err)
	}
	want := time.Date(2024, 8, 1, 0, 5, 0, 0, time.UTC)
	if !latest.Equal(want) {
		t.Fatalf("latest = %s, want %s", latest, want)
	}
}

func TestMonthRange(t *testing.T) {
	tests := []struct {
		month    string
		wantFrom time.Time
		wantTo   time.Time
		wantErr  bool
	}{
		{
			month:    "2024-08",
			wantFrom: time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2024, 8, 31, 23, 59, 59, 0, time.UTC),
		},
		{
			month:    "2024-02", // leap year
			wantFrom: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC),
		},
		{
			month:    "2024-12", // year rollover
			wantFrom: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
		},
		{month: "2024-13", wantErr: true},
		{month: "August 2024", wantErr: true},
		{month: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			from, to, err := MonthRange(tt.month)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !from.Equal(tt.wantFrom) {
				t.Errorf("from = %s, want %s", from, tt.wantFrom)
			}
			if !to.Equal(tt.wantTo) {
				t.Errorf("to = %s, want %s", to, tt.wantTo)
			}
		})
	}
}

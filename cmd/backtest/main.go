package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"CycleBench/internal/collector"
	"CycleBench/internal/config"
	"CycleBench/internal/engine"
	"CycleBench/internal/export"
	"CycleBench/internal/metrics"
	"CycleBench/internal/model"
	"CycleBench/internal/notifier"
	"CycleBench/internal/recorder"
	"CycleBench/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] CycleBench backtest starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	if cfg.Backtest.Month == "" {
		log.Fatal("[FATAL] backtest.month is required (YYYY-MM)")
	}

	from, to, err := store.MonthRange(cfg.Backtest.Month)
	if err != nil {
		log.Fatalf("[FATAL] parse month: %v", err)
	}

	// Load the month of bars
	ks, err := store.NewKlineStore(cfg.Database.KlinePath)
	if err != nil {
		log.Fatalf("[FATAL] open kline store: %v", err)
	}
	defer ks.Close()

	symbol := cfg.DataSource.Symbol
	bars, err := ks.LoadRange(symbol, from, to)
	if err != nil {
		log.Fatalf("[FATAL] load klines: %v", err)
	}
	log.Printf("[INFO] loaded %d bars for %s %s", len(bars), symbol, cfg.Backtest.Month)

	annotated, err := collector.Annotate(bars, cfg.IndicatorParams())
	if err != nil {
		log.Fatalf("[FATAL] annotate indicators: %v", err)
	}

	// Run the cycle engine
	eng, err := engine.New(cfg.EngineConfig(), nil)
	if err != nil {
		log.Fatalf("[FATAL] init engine: %v", err)
	}

	startedAt := time.Now().UTC()
	result, err := eng.Run(annotated)
	if errors.Is(err, engine.ErrNoData) {
		log.Printf("[ERROR] no data for %s %s, nothing to simulate", symbol, cfg.Backtest.Month)
		return
	}
	if err != nil {
		log.Fatalf("[FATAL] run engine: %v", err)
	}
	finishedAt := time.Now().UTC()

	summary := metrics.Summarize(result.Cycles, result.InitialPool, result.FinalPool)
	printSummary(summary, result.Halted)

	// Persist the run
	var rec recorder.Recorder
	if cfg.Database.ResultsPath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.ResultsPath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	runRec := &recorder.RunRecord{
		ID:         uuid.NewString(),
		Symbol:     symbol,
		Month:      cfg.Backtest.Month,
		Side:       model.Side(cfg.Backtest.Side),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Halted:     result.Halted,
		Summary:    summary,
		Cycles:     result.Cycles,
	}
	if err := rec.RecordRun(runRec); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}

	// Optional CSV export
	if cfg.Export.CSVDir != "" {
		if err := os.MkdirAll(cfg.Export.CSVDir, 0o755); err != nil {
			log.Printf("[ERROR] create export dir: %v", err)
		} else {
			path := filepath.Join(cfg.Export.CSVDir,
				fmt.Sprintf("cycles_%s_%s.csv", symbol, cfg.Backtest.Month))
			if err := export.WriteCyclesCSV(path, result.Cycles); err != nil {
				log.Printf("[ERROR] export cycles: %v", err)
			} else {
				log.Printf("[INFO] cycles exported to %s", path)
			}
		}
	}

	// Optional Telegram report
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	if tn.Enabled() {
		report := notifier.FormatRunReport(symbol, cfg.Backtest.Month, summary, result.Halted)
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := tn.SendWithRetry(ctx, report, 3); err != nil {
			log.Printf("[ERROR] telegram report: %v", err)
		}
	}

	log.Println("[INFO] backtest finished")
}

func printSummary(s metrics.Summary, halted bool) {
	log.Printf("[INFO] cycles=%d wins=%d losses=%d winRate=%.1f%%",
		s.TotalCycles, s.Wins, s.Losses, s.WinRate)
	log.Printf("[INFO] pool %.2f -> %.2f roi=%+.2f%% netProfit=%+.2f netLoss=%+.2f",
		s.InitialPool, s.FinalPool, s.ROI, s.NetProfit, s.NetLoss)
	log.Printf("[INFO] avgCycle=%.1fmin avgProfit=%+.2f%% avgLoss=%+.2f%%",
		s.AvgCycleMinutes, s.AvgProfitPct, s.AvgLossPct)
	log.Printf("[INFO] exits: takeProfit=%d stopLoss=%d liquidation=%d",
		s.ByReason[model.ExitTakeProfit], s.ByReason[model.ExitStopLoss], s.ByReason[model.ExitLiquidation])
	if halted {
		log.Println("[WARN] run halted early: capital pool depleted")
	}
}

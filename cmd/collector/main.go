package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"CycleBench/internal/collector"
	"CycleBench/internal/config"
	"CycleBench/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] CycleBench collector starting...")

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

	backfillStart, err := time.Parse("2006-01-02", cfg.DataSource.BackfillStart)
	if err != nil {
		log.Fatalf("[FATAL] parse data_source.backfill_start: %v", err)
	}

	ks, err := store.NewKlineStore(cfg.Database.KlinePath)
	if err != nil {
		log.Fatalf("[FATAL] open kline store: %v", err)
	}
	defer ks.Close()

	fetcher := collector.NewBinanceFetcher(cfg.Proxy)
	log.Printf("[INFO] data source: %s", fetcher.Name())

	col := collector.NewCollector(fetcher, ks, cfg.DataSource.Symbol, cfg.DataSource.Interval)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Schedule periodic collection
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(cfg.Collect.Cron, func() {
		if err := col.CollectLatest(ctx, backfillStart); err != nil {
			log.Printf("[ERROR] collect: %v", err)
		}
	}); err != nil {
		log.Fatalf("[FATAL] register collect task: %v", err)
	}
	c.Start()
	defer c.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, collecting now")
		go func() {
			if err := col.CollectLatest(ctx, backfillStart); err != nil {
				log.Printf("[ERROR] initial collect: %v", err)
			}
		}()
	}

	log.Println("[INFO] collector is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] collector stopped")
}

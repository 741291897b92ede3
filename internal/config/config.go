package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"CycleBench/internal/collector"
	"CycleBench/internal/engine"
	"CycleBench/internal/model"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Symbol        string `yaml:"symbol"`
		Interval      string `yaml:"interval"`
		BackfillStart string `yaml:"backfill_start"` // YYYY-MM-DD
	} `yaml:"data_source"`
	Collect struct {
		Cron string `yaml:"cron"`
	} `yaml:"collect"`
	Backtest struct {
		Month         string  `yaml:"month"` // YYYY-MM
		Side          string  `yaml:"side"`
		InitialPool float64 `yaml:"initial_pool"`
		StopLossPct float64 `yaml:"stop_loss_pct"` // percent, e.g. 30
		// Pointer so an explicit fee_pct: 0 (fee-free simulation) is
		// distinguishable from an unset field.
		FeePct        *float64 `yaml:"fee_pct"` // percent, e.g. 0.1
		Leverage      int     `yaml:"leverage"`
		TargetMode    string  `yaml:"target_mode"` // percentage | atr
		ATRMultiplier float64 `yaml:"atr_multiplier"`
	} `yaml:"backtest"`
	Indicators struct {
		EMAPeriod  int `yaml:"ema_period"`
		RSIPeriod  int `yaml:"rsi_period"`
		MACDFast   int `yaml:"macd_fast"`
		MACDSlow   int `yaml:"macd_slow"`
		MACDSignal int `yaml:"macd_signal"`
		ATRPeriod  int `yaml:"atr_period"`
	} `yaml:"indicators"`
	Database struct {
		KlinePath   string `yaml:"kline_path"`
		ResultsPath string `yaml:"results_path"`
	} `yaml:"database"`
	Export struct {
		CSVDir string `yaml:"csv_dir"`
	} `yaml:"export"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v := os.Getenv("BACKTEST_MONTH"); v != "" {
		cfg.Backtest.Month = v
	}
	if v := os.Getenv("KLINE_PATH"); v != "" {
		cfg.Database.KlinePath = v
	}
	if v := os.Getenv("RESULTS_PATH"); v != "" {
		cfg.Database.ResultsPath = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.DataSource.Symbol == "" {
		cfg.DataSource.Symbol = "BTCUSDT"
	}
	if cfg.DataSource.Interval == "" {
		cfg.DataSource.Interval = "1m"
	}
	if cfg.DataSource.BackfillStart == "" {
		cfg.DataSource.BackfillStart = "2024-01-01"
	}
	if cfg.Collect.Cron == "" {
		cfg.Collect.Cron = "0 5 * * * *" // hourly, 5 minutes past
	}
	if cfg.Backtest.Side == "" {
		cfg.Backtest.Side = string(model.SideLong)
	}
	if cfg.Backtest.InitialPool == 0 {
		cfg.Backtest.InitialPool = 600
	}
	if cfg.Backtest.StopLossPct == 0 {
		cfg.Backtest.StopLossPct = 30
	}
	if cfg.Backtest.FeePct == nil {
		fee := 0.1
		cfg.Backtest.FeePct = &fee
	}
	if cfg.Backtest.Leverage == 0 {
		cfg.Backtest.Leverage = 1
	}
	if cfg.Backtest.TargetMode == "" {
		cfg.Backtest.TargetMode = string(engine.TargetPercentage)
	}
	if cfg.Backtest.ATRMultiplier == 0 {
		cfg.Backtest.ATRMultiplier = 1.5
	}
	if cfg.Indicators.EMAPeriod == 0 {
		cfg.Indicators.EMAPeriod = 50
	}
	if cfg.Indicators.RSIPeriod == 0 {
		cfg.Indicators.RSIPeriod = 14
	}
	if cfg.Indicators.MACDFast == 0 {
		cfg.Indicators.MACDFast = 6
	}
	if cfg.Indicators.MACDSlow == 0 {
		cfg.Indicators.MACDSlow = 12
	}
	if cfg.Indicators.MACDSignal == 0 {
		cfg.Indicators.MACDSignal = 5
	}
	if cfg.Indicators.ATRPeriod == 0 {
		cfg.Indicators.ATRPeriod = 14
	}
	if cfg.Database.KlinePath == "" {
		cfg.Database.KlinePath = "data/klines.db"
	}
	if cfg.Database.ResultsPath == "" {
		cfg.Database.ResultsPath = "data/results.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and well formed. The
// engine re-validates its own parameters at construction; this catches
// malformed input before anything is opened.
func (c *Config) Validate() error {
	if c.DataSource.Symbol == "" {
		return fmt.Errorf("data_source.symbol is required")
	}
	if !model.Side(c.Backtest.Side).Valid() {
		return fmt.Errorf("backtest.side must be LONG or SHORT, got %q", c.Backtest.Side)
	}
	if c.Backtest.InitialPool <= 0 {
		return fmt.Errorf("backtest.initial_pool must be positive")
	}
	if c.Backtest.StopLossPct <= 0 || c.Backtest.StopLossPct >= 100 {
		return fmt.Errorf("backtest.stop_loss_pct must be in (0, 100)")
	}
	if c.Backtest.FeePct == nil || *c.Backtest.FeePct < 0 || *c.Backtest.FeePct >= 100 {
		return fmt.Errorf("backtest.fee_pct must be in [0, 100)")
	}
	if c.Backtest.Leverage <= 0 {
		return fmt.Errorf("backtest.leverage must be positive")
	}
	mode := engine.TargetMode(c.Backtest.TargetMode)
	if mode != engine.TargetPercentage && mode != engine.TargetATR {
		return fmt.Errorf("backtest.target_mode must be percentage or atr, got %q", c.Backtest.TargetMode)
	}
	if mode == engine.TargetATR && c.Backtest.ATRMultiplier <= 0 {
		return fmt.Errorf("backtest.atr_multiplier must be positive in atr mode")
	}
	return nil
}

// EngineConfig maps the percent-based YAML fields to the engine's fractions.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		InitialPool:   c.Backtest.InitialPool,
		Side:          model.Side(c.Backtest.Side),
		StopLoss:      c.Backtest.StopLossPct / 100,
		FeeRate:       *c.Backtest.FeePct / 100,
		Leverage:      c.Backtest.Leverage,
		Mode:          engine.TargetMode(c.Backtest.TargetMode),
		ATRMultiplier: c.Backtest.ATRMultiplier,
	}
}

// IndicatorParams returns the configured indicator windows.
func (c *Config) IndicatorParams() collector.IndicatorParams {
	return collector.IndicatorParams{
		EMAPeriod:  c.Indicators.EMAPeriod,
		RSIPeriod:  c.Indicators.RSIPeriod,
		MACDFast:   c.Indicators.MACDFast,
		MACDSlow:   c.Indicators.MACDSlow,
		MACDSignal: c.Indicators.MACDSignal,
		ATRPeriod:  c.Indicators.ATRPeriod,
	}
}

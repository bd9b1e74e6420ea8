// Package config loads the operator configuration from YAML and fills
// in defaults before anything else starts.
package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/suvanzhou/futu-algo/market"
)

var validate = validator.New()

type Config struct {
	Log      Log      `yaml:"log"`
	Database Database `yaml:"database"`
	Broker   Broker   `yaml:"broker"`
	Trade    Trade    `yaml:"trade"`
	Email    Email    `yaml:"email"`
	Backtest Backtest `yaml:"backtest"`
}

type Log struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
}

type Database struct {
	Data    string `yaml:"data" default:"futu-algo.db"`
	Journal string `yaml:"journal" default:"journal.db"`
}

type Broker struct {
	// Mode selects the session implementation. Only the deterministic
	// in-process session ships here; a FutuOpenD-backed session plugs
	// into the same surface.
	Mode string `yaml:"mode" default:"sim" validate:"oneof=sim futu"`
	Host string `yaml:"host" default:"127.0.0.1"`
	Port int    `yaml:"port" default:"11111" validate:"gt=0,lte=65535"`
}

// Trade mirrors the operator's trading preferences.
type Trade struct {
	// StockList is the instrument universe for sync and live trading.
	StockList []string `yaml:"stock_list"`

	// StockStrategyMap overrides the default strategy per instrument.
	StockStrategyMap map[string]string `yaml:"stock_strategy_map"`

	LotSizeMultiplier int     `yaml:"lot_size_multiplier" default:"1" validate:"gte=1"`
	MaxPercPerAsset   float64 `yaml:"max_perc_per_asset" default:"10" validate:"gt=0,lte=100"`

	// IsolateFailures keeps the live loop running when one
	// instrument's strategy fails.
	IsolateFailures bool `yaml:"isolate_failures"`
}

// Email configures report fan-out. Delivery transport is pluggable
// behind notify.Sender; the list here is who receives each report.
type Email struct {
	SubscriptionList []string `yaml:"subscription_list" validate:"dive,email"`
}

type Backtest struct {
	InitialCapital float64 `yaml:"initial_capital" default:"100000" validate:"gt=0"`
	Observation    int     `yaml:"observation" default:"100" validate:"gt=0"`

	// Commission per fill: fixed fee plus a rate on traded value,
	// floored at minimum.
	FixedCharge float64 `yaml:"fixed_charge" default:"15.0" validate:"gte=0"`
	PercCharge  float64 `yaml:"perc_charge" default:"0.0003" validate:"gte=0,lt=1"`
	MinCharge   float64 `yaml:"min_charge" default:"0" validate:"gte=0"`
}

// Default returns the configuration an empty file would produce.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	return cfg, nil
}

// Load reads, defaults and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate runs the tag rules plus the cross-field checks tags cannot
// express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	for _, code := range c.StockCodes() {
		if !code.Valid() {
			return fmt.Errorf("trade.stock_list: bad instrument code %q", code)
		}
	}
	for raw := range c.Trade.StockStrategyMap {
		if !market.Code(raw).Valid() {
			return fmt.Errorf("trade.stock_strategy_map: bad instrument code %q", raw)
		}
	}
	return nil
}

// StockCodes returns the configured universe as typed codes.
func (c *Config) StockCodes() []market.Code {
	out := make([]market.Code, len(c.Trade.StockList))
	for i, raw := range c.Trade.StockList {
		out[i] = market.Code(raw)
	}
	return out
}

// StrategyOverrides returns the per-instrument strategy map as typed
// codes.
func (c *Config) StrategyOverrides() map[market.Code]string {
	if len(c.Trade.StockStrategyMap) == 0 {
		return nil
	}
	out := make(map[market.Code]string, len(c.Trade.StockStrategyMap))
	for raw, name := range c.Trade.StockStrategyMap {
		out[market.Code(raw)] = name
	}
	return out
}

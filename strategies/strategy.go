// Package strategies holds the trading-strategy plugin namespace. Each
// strategy lives in its own source file and registers itself from init(),
// keyed by its historical name (e.g. "MACD_Cross"). A strategy instance is
// bound to exactly one instrument: it is seeded once with that instrument's
// recent bars and then fed each new bar through Evaluate.
package strategies

import (
	"fmt"

	"github.com/suvanzhou/futu-algo/market"
	"github.com/suvanzhou/futu-algo/plugin"
)

// Strategy consumes bar data for one instrument and produces trading
// signals. Implementations own their indicator state and are not safe for
// concurrent use.
type Strategy interface {
	Name() string
	Evaluate(c market.Candle) Signal
}

type Signal int

const (
	Hold Signal = iota
	Buy
	Sell
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

var registry = plugin.NewRegistry[Strategy]("strategy")

// Builder constructs a strategy seeded with an instrument's historical
// window (oldest first). A nil seed starts the strategy cold.
type Builder func(seed []market.Candle) (Strategy, error)

// Register adds a strategy under name; called from init() in each
// strategy source file.
func Register(name string, build Builder) {
	registry.Register(name, func(payload any) (Strategy, error) {
		seed, err := seedCandles(payload)
		if err != nil {
			return nil, err
		}
		return build(seed)
	})
}

func seedCandles(payload any) ([]market.Candle, error) {
	if payload == nil {
		return nil, nil
	}
	seed, ok := payload.([]market.Candle)
	if !ok {
		return nil, fmt.Errorf("strategy seed must be []market.Candle, got %T", payload)
	}
	return seed, nil
}

// Resolve builds a new instance of the named strategy, seeded with the
// given historical window.
func Resolve(name string, seed []market.Candle) (Strategy, error) {
	return registry.Resolve(name, seed)
}

// Names lists every registered strategy.
func Names() []string {
	return registry.Names()
}

// seed replays historical candles through a freshly built strategy so its
// indicators are warm before live evaluation starts.
func seed(s Strategy, candles []market.Candle) {
	for _, c := range candles {
		s.Evaluate(c)
	}
}

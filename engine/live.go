package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/suvanzhou/futu-algo/broker"
	"github.com/suvanzhou/futu-algo/market"
	"github.com/suvanzhou/futu-algo/strategies"
)

// Executor receives the signals the live loop produces. Order placement,
// risk checks and accounting live behind this interface; the loop only
// guarantees that each new bar is evaluated exactly once per instrument.
type Executor interface {
	OnSignal(ctx context.Context, code market.Code, c market.Candle, sig strategies.Signal) error
}

// LiveEngine is the real-time evaluation loop: subscribe, seed one
// strategy per instrument, then evaluate every new bar until the context
// is cancelled.
type LiveEngine struct {
	Session broker.Session

	// DefaultStrategy names the strategy bound to instruments without
	// an override.
	DefaultStrategy string

	// Overrides maps instrument code to a strategy name, taking
	// precedence over DefaultStrategy.
	Overrides map[market.Code]string

	// SeedBars bounds the historical window fetched per instrument to
	// warm indicator state. Zero means 1000.
	SeedBars int

	// IsolateFailures keeps the loop alive when one instrument's
	// strategy fails, instead of aborting the whole run.
	IsolateFailures bool

	// Executor, when set, receives Buy/Sell signals. Executor errors
	// are logged, not fatal: order placement is opaque to the loop.
	Executor Executor

	Log zerolog.Logger
}

// Run subscribes to live bars for the instruments and evaluates each new
// bar against its instrument's strategy, forever. It returns the context
// error on cancellation, ErrSubscription when the feed cannot be
// established or is lost, and ErrEvaluation when a strategy fails with
// IsolateFailures off.
func (e *LiveEngine) Run(ctx context.Context, codes []market.Code, g market.Granularity) error {
	log := e.Log.With().Str("component", "live").Stringer("ktype", g).Logger()

	if len(codes) == 0 {
		return fmt.Errorf("live run: no instruments")
	}
	if err := e.Session.Subscribe(ctx, codes, g); err != nil {
		return fmt.Errorf("%w: subscribe: %v", ErrSubscription, err)
	}

	seedBars := e.SeedBars
	if seedBars <= 0 {
		seedBars = 1000
	}
	seed, err := e.Session.FetchRealtime(ctx, codes, g, seedBars)
	if err != nil {
		return fmt.Errorf("%w: seed fetch: %v", ErrSubscription, err)
	}

	// Bind exactly one strategy instance per subscribed instrument
	// before the first evaluation. Resolution failure is fatal: no
	// silent fallback to the default.
	strategyMap := make(map[market.Code]strategies.Strategy, len(codes))
	lastSeen := make(map[market.Code]time.Time, len(codes))
	for _, code := range codes {
		name := e.DefaultStrategy
		if o, ok := e.Overrides[code]; ok {
			name = o
		}
		window := seed[code]
		strat, err := strategies.Resolve(name, window)
		if err != nil {
			return fmt.Errorf("bind strategy for %s: %w", code, err)
		}
		strategyMap[code] = strat
		lastSeen[code] = market.LastTime(window)
		log.Info().Str("code", string(code)).Str("strategy", strat.Name()).
			Int("seed_bars", len(window)).Msg("strategy bound")
	}

	log.Info().Int("instruments", len(codes)).Msg("entering evaluation loop")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		latest, err := e.Session.FetchLatest(ctx, codes, g)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: fetch latest: %v", ErrSubscription, err)
		}

		for _, code := range codes {
			bars := latest[code]
			market.SortCandles(bars)
			for _, c := range bars {
				// Evaluate each bar once: skip anything at or before
				// the newest bar already seen for this instrument.
				if !c.Time.After(lastSeen[code]) {
					continue
				}
				lastSeen[code] = c.Time

				sig, err := evaluate(strategyMap[code], c)
				if err != nil {
					if e.IsolateFailures {
						log.Error().Err(err).Str("code", string(code)).
							Msg("evaluation failed, isolating instrument")
						continue
					}
					return fmt.Errorf("%w: %s: %v", ErrEvaluation, code, err)
				}
				if sig == strategies.Hold {
					continue
				}

				log.Info().Str("code", string(code)).
					Stringer("signal", sig).
					Float64("close", c.Close).
					Time("bar", c.Time).
					Msg("signal")
				if e.Executor != nil {
					if err := e.Executor.OnSignal(ctx, code, c, sig); err != nil {
						log.Error().Err(err).Str("code", string(code)).
							Msg("executor rejected signal")
					}
				}
			}
		}
	}
}

// evaluate shields the loop from a panicking strategy so the failure is
// attributable to its instrument.
func evaluate(s strategies.Strategy, c market.Candle) (sig strategies.Signal, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("strategy %s panicked: %v", s.Name(), p)
		}
	}()
	return s.Evaluate(c), nil
}

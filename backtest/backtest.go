// Package backtest replays stored minute bars through a strategy and
// simulates a long-only, one-position board-lot account.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/suvanzhou/futu-algo/journal"
	"github.com/suvanzhou/futu-algo/market"
	"github.com/suvanzhou/futu-algo/risk"
	"github.com/suvanzhou/futu-algo/store"
	"github.com/suvanzhou/futu-algo/strategies"
)

// Commission is the per-fill cost model: a flat fee plus a rate on
// traded value, floored at Minimum when one is set.
type Commission struct {
	Fixed   float64
	Rate    float64
	Minimum float64
}

func (c Commission) Of(value float64) float64 {
	fee := c.Fixed + value*c.Rate
	if fee < c.Minimum {
		fee = c.Minimum
	}
	return fee
}

// Config describes one backtest run.
type Config struct {
	Code     market.Code
	Strategy string

	// Interval is the bar size the stored minutes are rolled up to.
	// Zero means one hour.
	Interval time.Duration

	// Observation bars warm the strategy before trading starts. Zero
	// means 100.
	Observation int

	// Start/End bound the replay window; zero means unbounded.
	Start time.Time
	End   time.Time

	InitialCapital float64

	// LotSize is the instrument's board lot; Lots is how many lots each
	// entry buys. Zero values mean 1.
	LotSize int
	Lots    int

	// MaxPercPerAsset caps a position at this percent of capital.
	// Zero means uncapped.
	MaxPercPerAsset float64

	Commission Commission
}

func (c Config) normalized() Config {
	if c.Interval <= 0 {
		c.Interval = time.Hour
	}
	if c.Observation <= 0 {
		c.Observation = 100
	}
	if c.LotSize <= 0 {
		c.LotSize = 1
	}
	if c.Lots <= 0 {
		c.Lots = 1
	}
	return c
}

// Result carries the persisted run plus its detail rows.
type Result struct {
	Run    journal.Run
	Trades []journal.Trade
	Curve  []journal.EquityPoint
}

// Runner replays store data through a registered strategy. Journal is
// optional; when set, every run is recorded.
type Runner struct {
	Store   *store.Store
	Journal *journal.Journal
	Log     zerolog.Logger
}

// Run executes one backtest. Buy signals open a board-lot position when
// flat and affordable; Sell signals close it. An open position at the
// end of the data is marked to market, not counted as a closed trade.
func (r *Runner) Run(ctx context.Context, cfg Config) (Result, error) {
	cfg = cfg.normalized()
	log := r.Log.With().Str("component", "backtest").Str("code", string(cfg.Code)).Logger()

	if cfg.InitialCapital <= 0 {
		return Result{}, fmt.Errorf("backtest %s: initial capital must be positive", cfg.Code)
	}

	minutes, err := r.Store.Bars(ctx, cfg.Code, market.K1M, cfg.Start, cfg.End)
	if err != nil {
		return Result{}, fmt.Errorf("backtest %s: %w", cfg.Code, err)
	}
	bars := market.Aggregate(minutes, cfg.Interval)
	if len(bars) <= cfg.Observation {
		return Result{}, fmt.Errorf("backtest %s: %d bars after aggregation, need more than %d",
			cfg.Code, len(bars), cfg.Observation)
	}

	seed := bars[:cfg.Observation]
	replay := bars[cfg.Observation:]

	strat, err := strategies.Resolve(cfg.Strategy, seed)
	if err != nil {
		return Result{}, fmt.Errorf("backtest %s: %w", cfg.Code, err)
	}

	runID := journal.NewRunID()
	sizing := risk.Sizing{
		LotSize:         cfg.LotSize,
		Lots:            cfg.Lots,
		MaxPercPerAsset: cfg.MaxPercPerAsset,
	}

	var (
		cash      = cfg.InitialCapital
		held      = 0.0
		entryCost = 0.0

		trades []journal.Trade
		curve  []journal.EquityPoint

		wins, losses int
		totalFees    float64
		peak         = cfg.InitialCapital
		maxDD        = 0.0
	)

	for _, c := range replay {
		switch strat.Evaluate(c) {
		case strategies.Buy:
			if held > 0 {
				break
			}
			qty := sizing.Shares(cash, c.Close)
			if qty == 0 {
				log.Debug().Time("bar", c.Time).Float64("close", c.Close).Msg("entry unaffordable, skipped")
				break
			}
			value := qty * c.Close
			fee := cfg.Commission.Of(value)
			if value+fee > cash {
				log.Debug().Time("bar", c.Time).Float64("value", value).Msg("entry unaffordable, skipped")
				break
			}
			cash -= value + fee
			held = qty
			entryCost = value + fee
			totalFees += fee
			trades = append(trades, journal.Trade{
				RunID: runID, Seq: len(trades) + 1, Side: "BUY",
				Quantity: qty, Price: c.Close, Time: c.Time, Commission: fee,
			})

		case strategies.Sell:
			if held == 0 {
				break
			}
			value := held * c.Close
			fee := cfg.Commission.Of(value)
			realized := value - fee - entryCost
			cash += value - fee
			totalFees += fee
			if realized >= 0 {
				wins++
			} else {
				losses++
			}
			trades = append(trades, journal.Trade{
				RunID: runID, Seq: len(trades) + 1, Side: "SELL",
				Quantity: held, Price: c.Close, Time: c.Time,
				Commission: fee, Realized: realized,
			})
			held = 0
			entryCost = 0
		}

		equity := cash + held*c.Close
		curve = append(curve, journal.EquityPoint{RunID: runID, Time: c.Time, Value: equity})
		if equity > peak {
			peak = equity
		}
		if dd := (peak - equity) / peak * 100; dd > maxDD {
			maxDD = dd
		}
	}

	final := cash + held*replay[len(replay)-1].Close
	run := journal.Run{
		ID:             runID,
		Code:           cfg.Code,
		Strategy:       strat.Name(),
		Granularity:    granularityFor(cfg.Interval),
		Start:          replay[0].Time,
		End:            replay[len(replay)-1].Time,
		InitialCapital: cfg.InitialCapital,
		FinalCapital:   final,
		ReturnPct:      (final - cfg.InitialCapital) / cfg.InitialCapital * 100,
		MaxDrawdownPct: maxDD,
		Trades:         wins + losses,
		Wins:           wins,
		Losses:         losses,
		Commission:     totalFees,
		Created:        time.Now().UTC(),
	}

	res := Result{Run: run, Trades: trades, Curve: curve}
	if r.Journal != nil {
		if err := r.Journal.Record(ctx, run, trades, curve); err != nil {
			return res, fmt.Errorf("backtest %s: %w", cfg.Code, err)
		}
	}
	log.Info().Str("run", runID).Int("trades", run.Trades).
		Float64("return_pct", run.ReturnPct).Msg("backtest complete")
	return res, nil
}

// granularityFor maps the replay interval back to the closest bar type
// for the journal row.
func granularityFor(interval time.Duration) market.Granularity {
	for _, g := range []market.Granularity{
		market.K1M, market.K3M, market.K5M, market.K15M, market.K30M, market.K60M,
	} {
		if g.Duration() == interval {
			return g
		}
	}
	if interval >= 24*time.Hour {
		return market.KDay
	}
	return market.K60M
}

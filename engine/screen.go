package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/suvanzhou/futu-algo/broker"
	"github.com/suvanzhou/futu-algo/filters"
	"github.com/suvanzhou/futu-algo/market"
	"github.com/suvanzhou/futu-algo/notify"
	"github.com/suvanzhou/futu-algo/refdata"
	"github.com/suvanzhou/futu-algo/store"
)

// DefaultScreenLabel is used when the caller gives no report label.
const DefaultScreenLabel = "Default Stock Filter"

// Screener retrieves each market's instrument universe, keeps the
// instruments that pass every requested filter, enriches the survivors
// and hands the result to the notification dispatcher. An empty surviving
// set for a market sends nothing and is not an error.
type Screener struct {
	Session broker.Session
	Store   *store.Store
	Quoter  refdata.Quoter

	// Backfiller, when set, freshens local history for markets whose
	// bars do not come through the brokerage session (SH/SZ).
	Backfiller refdata.HistoryBackfiller

	Dispatcher *notify.Dispatcher

	// SnapshotDays is the daily-bar window filters see per instrument.
	// Zero means 60.
	SnapshotDays int

	Log zerolog.Logger
}

// Run screens each requested market with the named filters (the sentinel
// "all" expands to every registered filter) and dispatches one report per
// market with survivors. Markets are independent: a failure in one is
// reported but does not stop the others.
func (s *Screener) Run(ctx context.Context, filterNames []string, markets []market.Market, label string) error {
	log := s.Log.With().Str("component", "screen").Logger()
	if label == "" {
		label = DefaultScreenLabel
	}

	// Resolve up front: a missing filter would silently weaken the
	// intersection, so it fails the whole run.
	fs, err := filters.ResolveAll(filterNames)
	if err != nil {
		return fmt.Errorf("resolve filters: %w", err)
	}
	if len(fs) == 0 {
		return fmt.Errorf("no filters resolved from %v", filterNames)
	}

	var errs []error
	for _, m := range markets {
		if err := s.screenMarket(ctx, fs, m, label, log); err != nil {
			log.Error().Err(err).Str("market", string(m)).Msg("market screen failed")
			errs = append(errs, fmt.Errorf("market %s: %w", m, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Screener) screenMarket(ctx context.Context, fs []filters.Filter, m market.Market, label string, log zerolog.Logger) error {
	universe, err := s.universe(ctx, m)
	if err != nil {
		return err
	}
	log.Info().Str("market", string(m)).Int("universe", len(universe)).Msg("screening universe")

	survivors := s.apply(ctx, fs, universe, log)
	if len(survivors) == 0 {
		log.Info().Str("market", string(m)).Msg("no instruments passed, skipping notification")
		return nil
	}

	details, err := s.Quoter.Quote(ctx, survivors)
	if err != nil {
		return fmt.Errorf("enrich: %w", err)
	}

	report := notify.NewReport(label, m, details)
	if err := s.Dispatcher.Dispatch(ctx, report); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	return nil
}

// universe lists the market's tradable instruments. Equity-market
// universes come from brokerage metadata; mainland history is freshened
// through the backfiller first when one is configured.
func (s *Screener) universe(ctx context.Context, m market.Market) ([]market.Code, error) {
	var codes []market.Code
	for _, sub := range m.Expand() {
		list, err := s.Session.InstrumentMetadata(ctx, sub, market.Stock)
		if err != nil {
			return nil, fmt.Errorf("%w: metadata %s: %v", ErrSourceUnavailable, sub, err)
		}
		for _, in := range list {
			codes = append(codes, in.Code)
		}
	}

	if s.Backfiller != nil && needsBackfill(m) {
		if err := s.Backfiller.BackfillHistory(ctx, codes); err != nil {
			return nil, fmt.Errorf("%w: backfill %s: %v", ErrSourceUnavailable, m, err)
		}
	}
	return codes, nil
}

func needsBackfill(m market.Market) bool {
	for _, sub := range m.Expand() {
		if sub == market.SH || sub == market.SZ {
			return true
		}
	}
	return false
}

// apply keeps the instruments that pass every filter: composition is a
// strict intersection over one shared universe.
func (s *Screener) apply(ctx context.Context, fs []filters.Filter, universe []market.Code, log zerolog.Logger) []market.Code {
	days := s.SnapshotDays
	if days <= 0 {
		days = 60
	}

	var out []market.Code
	for _, code := range universe {
		snap, err := s.snapshot(ctx, code, days)
		if err != nil {
			log.Warn().Err(err).Str("code", string(code)).Msg("snapshot failed, skipping instrument")
			continue
		}

		keep := true
		for _, f := range fs {
			if !f.Keep(snap) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, code)
		}
	}
	return out
}

func (s *Screener) snapshot(ctx context.Context, code market.Code, days int) (filters.Snapshot, error) {
	in, ok, err := s.Store.Instrument(ctx, code)
	if err != nil {
		return filters.Snapshot{}, err
	}
	if !ok {
		in = market.Instrument{Code: code, Market: code.Market(), Type: market.Stock}
	}

	bars, err := s.Store.LastBars(ctx, code, market.KDay, days)
	if err != nil {
		return filters.Snapshot{}, err
	}
	return filters.Snapshot{Instrument: in, Bars: bars}, nil
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/suvanzhou/futu-algo/broker"
	"github.com/suvanzhou/futu-algo/market"
	"github.com/suvanzhou/futu-algo/refdata"
	"github.com/suvanzhou/futu-algo/store"
)

// SyncPipeline brings the local store up to date: reference data first,
// then historical bars per instrument. Steps run in a fixed order because
// later steps read what earlier ones wrote; a failing step or instrument
// is reported and skipped, never globally fatal.
type SyncPipeline struct {
	Session  broker.Session
	Universe refdata.UniverseSource
	Store    *store.Store

	// Markets bounds the reference-data refresh (steps 2-3).
	Markets []market.Market

	// Workers caps the parallel per-instrument bar refresh in step 6.
	// Zero or one keeps it sequential.
	Workers int

	Log zerolog.Logger

	// now is a test seam; nil means time.Now.
	now func() time.Time
}

func (p *SyncPipeline) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now().UTC()
}

// Run executes the full sync for the given instruments. With force set,
// every instrument/granularity is re-fetched for its whole computed span
// even when the store already looks current. The returned error joins
// everything that went wrong along the way; a non-nil error still means
// every step and instrument was attempted.
func (p *SyncPipeline) Run(ctx context.Context, codes []market.Code, force bool) error {
	log := p.Log.With().Str("component", "sync").Bool("force", force).Logger()
	var errs []error

	// Step 1: full tradable-instrument reference list.
	full, err := p.refreshUniverse(ctx)
	if err != nil {
		log.Error().Err(err).Msg("security list refresh failed")
		errs = append(errs, fmt.Errorf("security list: %w", err))
	}

	// Step 2: plate / sector groupings.
	if err := p.refreshPlates(ctx); err != nil {
		log.Error().Err(err).Msg("plate list refresh failed")
		errs = append(errs, fmt.Errorf("plate list: %w", err))
	}

	// Step 3: basic metadata for all supported markets.
	if err := p.refreshBasicInfo(ctx); err != nil {
		log.Error().Err(err).Msg("basic info refresh failed")
		errs = append(errs, fmt.Errorf("basic info: %w", err))
	}

	// Step 4: owner plate per instrument, over the step-1 list.
	if err := p.refreshOwnerPlates(ctx, full); err != nil {
		log.Error().Err(err).Msg("owner plate refresh failed")
		errs = append(errs, fmt.Errorf("owner plates: %w", err))
	}

	// Step 5: one global staleness bound. The most stale instrument
	// decides how far back everyone is re-synced.
	days, err := p.daysToUpdate(ctx, codes)
	if err != nil {
		return errors.Join(append(errs, fmt.Errorf("staleness: %w", err))...)
	}
	log.Info().Int("instruments", len(codes)).Int("days_to_update", days).Msg("starting bar refresh")

	// Step 6: daily, weekly, then intraday bars per instrument.
	if err := p.refreshBars(ctx, codes, days, force, log); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (p *SyncPipeline) refreshUniverse(ctx context.Context) ([]market.Instrument, error) {
	if p.Universe == nil {
		return nil, nil
	}
	full, err := p.Universe.FullEquityList(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if err := p.Store.ReplaceInstruments(ctx, full); err != nil {
		return nil, err
	}
	return full, nil
}

func (p *SyncPipeline) refreshPlates(ctx context.Context) error {
	var errs []error
	for _, m := range p.Markets {
		plates, err := p.Session.Plates(ctx, m)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: plates %s: %v", ErrSourceUnavailable, m, err))
			continue
		}
		if err := p.Store.ReplacePlates(ctx, plates); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *SyncPipeline) refreshBasicInfo(ctx context.Context) error {
	var errs []error
	for _, m := range p.Markets {
		list, err := p.Session.InstrumentMetadata(ctx, m, market.Stock)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: metadata %s: %v", ErrSourceUnavailable, m, err))
			continue
		}
		if err := p.Store.ReplaceInstruments(ctx, list); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *SyncPipeline) refreshOwnerPlates(ctx context.Context, full []market.Instrument) error {
	var errs []error
	for _, in := range full {
		plates, err := p.Session.OwnerPlates(ctx, in.Code)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: owner plate %s: %v", ErrSourceUnavailable, in.Code, err))
			continue
		}
		if err := p.Store.SetOwnerPlates(ctx, in.Code, plates); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// daysToUpdate is the maximum staleness across the instrument set: one
// stale instrument deepens the refetch for all of them.
func (p *SyncPipeline) daysToUpdate(ctx context.Context, codes []market.Code) (int, error) {
	now := p.clock()
	max := 1
	for _, code := range codes {
		days, err := p.Store.StalenessDays(ctx, code, now)
		if err != nil {
			return 0, err
		}
		if days > max {
			max = days
		}
	}
	return max, nil
}

func (p *SyncPipeline) refreshBars(ctx context.Context, codes []market.Code, days int, force bool, log zerolog.Logger) error {
	years := (days + 364) / 365

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for _, code := range codes {
		code := code
		g.Go(func() error {
			// Daily, weekly, then intraday; the order is part of the
			// contract, so the three fetches stay sequential per
			// instrument even when instruments run in parallel.
			steps := []struct {
				g    market.Granularity
				span time.Duration
			}{
				{market.KDay, time.Duration(years) * 365 * 24 * time.Hour},
				{market.KWeek, time.Duration(years) * 365 * 24 * time.Hour},
				{market.K1M, time.Duration(days) * 24 * time.Hour},
			}
			for _, st := range steps {
				if err := p.syncBars(gctx, code, st.g, st.span, force); err != nil {
					log.Warn().Err(err).
						Str("code", string(code)).
						Stringer("ktype", st.g).
						Msg("bar refresh failed, skipping")
					mu.Lock()
					errs = append(errs, fmt.Errorf("%s %s: %w", code, st.g, err))
					mu.Unlock()
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// syncBars refreshes one instrument/granularity. Without force it
// short-circuits when the newest local bar is within one bar interval of
// now, so an immediate re-run is a no-op.
func (p *SyncPipeline) syncBars(ctx context.Context, code market.Code, g market.Granularity, span time.Duration, force bool) error {
	now := p.clock()

	if !force {
		last, err := p.Store.LastBarTime(ctx, code, g)
		if err != nil {
			return err
		}
		if !last.IsZero() && now.Sub(last) < g.Duration() {
			return nil
		}
	}

	bars, err := p.Session.HistoricalBars(ctx, code, g, now.Add(-span), now)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return p.Store.UpsertBars(ctx, code, g, bars)
}

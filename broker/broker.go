// Package broker defines the brokerage-session surface the engines
// consume. The concrete transport (FutuOpenD or otherwise) lives outside
// this repository; broker/sim provides a deterministic in-process session
// for tests and dry runs.
package broker

import (
	"context"
	"time"

	"github.com/suvanzhou/futu-algo/market"
)

// Session is an authenticated brokerage connection providing quote data
// and reference metadata.
type Session interface {
	// Subscribe registers the instruments for live bars at the given
	// granularity. It must succeed before FetchRealtime or FetchLatest
	// are used for those instruments.
	Subscribe(ctx context.Context, codes []market.Code, g market.Granularity) error

	// FetchRealtime returns up to barCount recent bars per subscribed
	// instrument, oldest first. Used once to seed indicator state.
	FetchRealtime(ctx context.Context, codes []market.Code, g market.Granularity, barCount int) (map[market.Code][]market.Candle, error)

	// FetchLatest returns the newest bar(s) per subscribed instrument.
	// It may block until the feed produces new data.
	FetchLatest(ctx context.Context, codes []market.Code, g market.Granularity) (map[market.Code][]market.Candle, error)

	// HistoricalBars backfills closed bars for one instrument in
	// [from, to], oldest first.
	HistoricalBars(ctx context.Context, code market.Code, g market.Granularity, from, to time.Time) ([]market.Candle, error)

	// InstrumentMetadata lists basic reference data for one market and
	// security type.
	InstrumentMetadata(ctx context.Context, m market.Market, st market.SecurityType) ([]market.Instrument, error)

	// Plates lists the sector groupings for one market.
	Plates(ctx context.Context, m market.Market) ([]market.Plate, error)

	// OwnerPlates returns the plate codes one instrument belongs to.
	OwnerPlates(ctx context.Context, code market.Code) ([]string, error)

	// IsNormalTradingTime reports whether the instruments' markets are
	// currently in a regular trading session.
	IsNormalTradingTime(ctx context.Context, codes []market.Code) (bool, error)
}

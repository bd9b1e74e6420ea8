// Package refdata covers the reference-data collaborators that sit
// outside the brokerage session: the exchange's full security list and
// the per-market quote enrichment used in screening reports.
package refdata

import (
	"context"

	"github.com/suvanzhou/futu-algo/market"
)

// UniverseSource lists the full tradable-instrument universe published by
// an exchange, independent of brokerage entitlements.
type UniverseSource interface {
	FullEquityList(ctx context.Context) ([]market.Instrument, error)
}

// Quoter builds the enriched detail records for a screening report.
type Quoter interface {
	Quote(ctx context.Context, codes []market.Code) ([]market.Detail, error)
}

// HistoryBackfiller refreshes local history for markets whose bars do not
// come through the brokerage session (the mainland markets in the
// original deployment).
type HistoryBackfiller interface {
	BackfillHistory(ctx context.Context, codes []market.Code) error
}

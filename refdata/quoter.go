package refdata

import (
	"context"
	"fmt"

	"github.com/suvanzhou/futu-algo/market"
	"github.com/suvanzhou/futu-algo/store"
)

// StoreQuoter builds screening detail records from the local store:
// latest daily close, day-over-day change and volume, joined with the
// instrument's reference name. Instruments with no local daily data get
// a record with just the code, so a report never silently shrinks.
type StoreQuoter struct {
	Store *store.Store
}

func NewStoreQuoter(s *store.Store) *StoreQuoter {
	return &StoreQuoter{Store: s}
}

func (q *StoreQuoter) Quote(ctx context.Context, codes []market.Code) ([]market.Detail, error) {
	out := make([]market.Detail, 0, len(codes))
	for _, code := range codes {
		d := market.Detail{Code: code}

		if in, ok, err := q.Store.Instrument(ctx, code); err != nil {
			return nil, fmt.Errorf("quote %s: %w", code, err)
		} else if ok {
			d.Name = in.Name
		}

		bars, err := q.Store.LastBars(ctx, code, market.KDay, 2)
		if err != nil {
			return nil, fmt.Errorf("quote %s: %w", code, err)
		}
		if n := len(bars); n > 0 {
			last := bars[n-1]
			d.Price = last.Close
			d.Volume = last.Volume
			if n > 1 && bars[0].Close != 0 {
				d.ChangeRate = (last.Close - bars[0].Close) / bars[0].Close * 100
			}
		}
		out = append(out, d)
	}
	return out, nil
}

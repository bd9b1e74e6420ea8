package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/suvanzhou/futu-algo/market"
	"github.com/suvanzhou/futu-algo/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func dailyBars(start time.Time, closes ...float64) []market.Candle {
	out := make([]market.Candle, len(closes))
	for i, c := range closes {
		out[i] = market.Candle{
			Open: c, High: c + 1, Low: c - 1, Close: c,
			Time:   start.AddDate(0, 0, i),
			Volume: 2_000_000,
		}
	}
	return out
}

type fetchSpan struct {
	code     market.Code
	g        market.Granularity
	from, to time.Time
}

// fakeSession is a scripted broker.Session. Unconfigured calls return
// empty results so each test sets up only what it exercises.
type fakeSession struct {
	mu sync.Mutex

	subscribeErr error
	subscribed   []market.Code

	seed    map[market.Code][]market.Candle
	seedErr error

	// latestScript is consumed one entry per FetchLatest call; when it
	// runs out, exhausted fires once and the call blocks on ctx.
	latestScript []map[market.Code][]market.Candle
	latestIdx    int
	exhausted    func()

	history    map[market.Code]map[market.Granularity][]market.Candle
	historyErr map[market.Code]error
	spans      []fetchSpan

	instruments map[market.Market][]market.Instrument
	plates      map[market.Market][]market.Plate
	owners      map[market.Code][]string
	metadataErr error

	trading bool
}

func (f *fakeSession) Subscribe(_ context.Context, codes []market.Code, _ market.Granularity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return f.subscribeErr
	}
	f.subscribed = append(f.subscribed, codes...)
	return nil
}

func (f *fakeSession) FetchRealtime(_ context.Context, codes []market.Code, _ market.Granularity, _ int) (map[market.Code][]market.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seedErr != nil {
		return nil, f.seedErr
	}
	out := make(map[market.Code][]market.Candle, len(codes))
	for _, c := range codes {
		out[c] = f.seed[c]
	}
	return out, nil
}

func (f *fakeSession) FetchLatest(ctx context.Context, _ []market.Code, _ market.Granularity) (map[market.Code][]market.Candle, error) {
	f.mu.Lock()
	if f.latestIdx < len(f.latestScript) {
		out := f.latestScript[f.latestIdx]
		f.latestIdx++
		f.mu.Unlock()
		return out, nil
	}
	done := f.exhausted
	f.exhausted = nil
	f.mu.Unlock()

	if done != nil {
		done()
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *fakeSession) HistoricalBars(_ context.Context, code market.Code, g market.Granularity, from, to time.Time) ([]market.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spans = append(f.spans, fetchSpan{code: code, g: g, from: from, to: to})
	if err := f.historyErr[code]; err != nil {
		return nil, err
	}
	return f.history[code][g], nil
}

func (f *fakeSession) InstrumentMetadata(_ context.Context, m market.Market, _ market.SecurityType) ([]market.Instrument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.metadataErr != nil {
		return nil, f.metadataErr
	}
	return f.instruments[m], nil
}

func (f *fakeSession) Plates(_ context.Context, m market.Market) ([]market.Plate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.plates[m], nil
}

func (f *fakeSession) OwnerPlates(_ context.Context, code market.Code) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.owners[code], nil
}

func (f *fakeSession) IsNormalTradingTime(_ context.Context, _ []market.Code) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.trading, nil
}

func (f *fakeSession) spanCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.spans)
}

func (f *fakeSession) spanFor(code market.Code, g market.Granularity) (fetchSpan, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sp := range f.spans {
		if sp.code == code && sp.g == g {
			return sp, true
		}
	}
	return fetchSpan{}, false
}

// fakeUniverse backs the sync pipeline's exchange-published list.
type fakeUniverse struct {
	list []market.Instrument
	err  error
}

func (u *fakeUniverse) FullEquityList(context.Context) ([]market.Instrument, error) {
	if u.err != nil {
		return nil, u.err
	}
	return u.list, nil
}

func instrument(code string, name string) market.Instrument {
	c := market.Code(code)
	return market.Instrument{
		Code:    c,
		Name:    name,
		LotSize: 100,
		Market:  c.Market(),
		Type:    market.Stock,
	}
}

var errBoom = fmt.Errorf("boom")

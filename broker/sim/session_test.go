package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suvanzhou/futu-algo/market"
)

func TestSubscribeThenFetch(t *testing.T) {
	s := NewSession(1)
	ctx := context.Background()
	codes := []market.Code{"HK.00700", "HK.00001"}

	require.NoError(t, s.Subscribe(ctx, codes, market.K1M))

	seed, err := s.FetchRealtime(ctx, codes, market.K1M, 100)
	require.NoError(t, err)
	require.Len(t, seed, 2)
	assert.Len(t, seed["HK.00700"], 100)

	// Bars come oldest first.
	bars := seed["HK.00700"]
	assert.True(t, bars[0].Time.Before(bars[len(bars)-1].Time))
}

func TestFetchWithoutSubscribe(t *testing.T) {
	s := NewSession(1)
	ctx := context.Background()

	_, err := s.FetchLatest(ctx, []market.Code{"HK.00700"}, market.K1M)
	assert.ErrorIs(t, err, ErrNotSubscribed)
}

func TestFetchLatestAdvancesClock(t *testing.T) {
	s := NewSession(1)
	ctx := context.Background()
	codes := []market.Code{"HK.00700"}

	require.NoError(t, s.Subscribe(ctx, codes, market.K1M))

	first, err := s.FetchLatest(ctx, codes, market.K1M)
	require.NoError(t, err)
	second, err := s.FetchLatest(ctx, codes, market.K1M)
	require.NoError(t, err)

	t1 := first["HK.00700"][0].Time
	t2 := second["HK.00700"][0].Time
	assert.Equal(t, time.Minute, t2.Sub(t1))

	// Walk continuity: next bar opens at the previous close.
	assert.Equal(t, first["HK.00700"][0].Close, second["HK.00700"][0].Open)
}

func TestHistoricalBarsSpan(t *testing.T) {
	s := NewSession(1)
	ctx := context.Background()

	to := time.Date(2024, 3, 19, 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -9)
	bars, err := s.HistoricalBars(ctx, "HK.00700", market.KDay, from, to)
	require.NoError(t, err)
	assert.Len(t, bars, 10)
	assert.True(t, bars[0].Time.Equal(from))
}

func TestSubscribeFailureInjection(t *testing.T) {
	s := NewSession(1)
	s.SubscribeErr = assert.AnError

	err := s.Subscribe(context.Background(), []market.Code{"HK.00700"}, market.K1M)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestReferenceData(t *testing.T) {
	s := NewSession(1)
	ctx := context.Background()

	s.SetReferenceData(
		[]market.Instrument{
			{Code: "HK.00700", Name: "TENCENT", Market: market.HK, Type: market.Stock},
			{Code: "US.AAPL", Name: "Apple", Market: market.US, Type: market.Stock},
		},
		[]market.Plate{{Code: "HK.BK1005", Name: "Software", Market: market.HK}},
		map[market.Code][]string{"HK.00700": {"HK.BK1005"}},
	)

	hk, err := s.InstrumentMetadata(ctx, market.HK, market.Stock)
	require.NoError(t, err)
	require.Len(t, hk, 1)
	assert.Equal(t, market.Code("HK.00700"), hk[0].Code)

	plates, err := s.Plates(ctx, market.HK)
	require.NoError(t, err)
	assert.Len(t, plates, 1)

	owners, err := s.OwnerPlates(ctx, "HK.00700")
	require.NoError(t, err)
	assert.Equal(t, []string{"HK.BK1005"}, owners)
}

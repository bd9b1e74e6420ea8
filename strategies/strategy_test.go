package strategies

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suvanzhou/futu-algo/market"
	"github.com/suvanzhou/futu-algo/plugin"
)

func candlesFromCloses(closes ...float64) []market.Candle {
	baseTime := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	out := make([]market.Candle, len(closes))
	for i, cl := range closes {
		out[i] = market.Candle{
			Open: cl, High: cl + 0.5, Low: cl - 0.5, Close: cl,
			Time:   baseTime.Add(time.Duration(i) * time.Minute),
			Volume: 1000,
		}
	}
	return out
}

func TestSignalString(t *testing.T) {
	assert.Equal(t, "HOLD", Hold.String())
	assert.Equal(t, "BUY", Buy.String())
	assert.Equal(t, "SELL", Sell.String())
}

func TestBuiltinStrategiesRegistered(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "EMA_Cross")
	assert.Contains(t, names, "MACD_Cross")
	assert.Contains(t, names, "KDJ_Cross")
	assert.Contains(t, names, "RSI_Threshold")
}

func TestResolveUnderscoreInsensitive(t *testing.T) {
	for _, name := range []string{"MACD_Cross", "MACDCross", "macd_cross"} {
		t.Run(name, func(t *testing.T) {
			s, err := Resolve(name, nil)
			require.NoError(t, err)
			assert.IsType(t, &MACDCross{}, s)
		})
	}
}

func TestResolveNotFound(t *testing.T) {
	_, err := Resolve("No_Such_Strategy", nil)
	assert.ErrorIs(t, err, plugin.ErrNotFound)
}

func TestResolveSeedsInstance(t *testing.T) {
	seedBars := candlesFromCloses(10, 11, 12, 13, 14, 15, 16, 17, 18, 19,
		20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30)

	seeded, err := Resolve("EMA_Cross", seedBars)
	require.NoError(t, err)
	cold, err := Resolve("EMA_Cross", nil)
	require.NoError(t, err)

	// Seeded instances are independent: the cold one is still warming up
	// while the seeded one already tracks the trend.
	next := market.Candle{Close: 31, Open: 31, High: 31.5, Low: 30.5,
		Time: seedBars[len(seedBars)-1].Time.Add(time.Minute)}
	assert.Equal(t, Hold, cold.Evaluate(next))

	se := seeded.(*EMACross)
	assert.NotEqual(t, 0, se.prevRel, "seeded strategy should have a baseline")
}

func TestEMACrossSignalsOnCrossOnly(t *testing.T) {
	x := NewEMACross(2, 4)

	var signals []Signal
	// Rise, then fall, then rise again.
	closes := []float64{10, 10, 10, 10, 11, 12, 13, 14, 13, 11, 9, 7, 6, 8, 10, 12, 14, 15}
	for _, c := range candlesFromCloses(closes...) {
		signals = append(signals, x.Evaluate(c))
	}

	var buys, sells int
	for _, s := range signals {
		switch s {
		case Buy:
			buys++
		case Sell:
			sells++
		}
	}
	assert.GreaterOrEqual(t, buys, 1, "expected at least one buy on the upturns")
	assert.Equal(t, 1, sells, "expected exactly one sell on the downturn")
}

func TestMACDCrossRoundTrip(t *testing.T) {
	x := NewMACDCross(3, 6, 3)

	var buys, sells int
	closes := []float64{10, 10, 10, 10, 10, 10, 10, 10, 11, 12, 13, 14, 15, 16,
		15, 13, 11, 9, 8, 7, 8, 10, 12, 14}
	for _, c := range candlesFromCloses(closes...) {
		switch x.Evaluate(c) {
		case Buy:
			buys++
		case Sell:
			sells++
		}
	}
	assert.GreaterOrEqual(t, buys, 1)
	assert.GreaterOrEqual(t, sells, 1)
}

func TestRSIThresholdRecrossing(t *testing.T) {
	x := NewRSIThreshold(3, 30, 70)

	// Sharp fall pushes RSI under 30, then recovery crosses back up.
	closes := []float64{50, 49, 48, 46, 43, 40, 36, 32, 30, 33, 37, 42}
	var buys int
	for _, c := range candlesFromCloses(closes...) {
		if x.Evaluate(c) == Buy {
			buys++
		}
	}
	assert.Equal(t, 1, buys, "one recovery, one buy")
}

func TestStrategyInstancesIsolated(t *testing.T) {
	a, err := Resolve("EMA_Cross", nil)
	require.NoError(t, err)
	b, err := Resolve("EMA_Cross", nil)
	require.NoError(t, err)
	require.NotSame(t, a, b)

	// Drive only a; b's indicator state must stay untouched.
	for _, c := range candlesFromCloses(10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21,
		22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32) {
		a.Evaluate(c)
	}
	ae := a.(*EMACross)
	be := b.(*EMACross)
	assert.NotEqual(t, 0, ae.prevRel)
	assert.Equal(t, 0, be.prevRel)
}

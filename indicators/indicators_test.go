package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/suvanzhou/futu-algo/market"
)

func candlesFromCloses(closes ...float64) []market.Candle {
	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Candle, len(closes))
	for i, cl := range closes {
		out[i] = market.Candle{
			Open: cl, High: cl + 1, Low: cl - 1, Close: cl,
			Time:   baseTime.Add(time.Duration(i) * time.Minute),
			Volume: 1000,
		}
	}
	return out
}

func TestSimpleMAStreaming(t *testing.T) {
	candles := candlesFromCloses(102, 105, 106, 108, 110)

	ma := NewMA(3)
	assert.Equal(t, "MA(3)", ma.Name())
	assert.Equal(t, 3, ma.Warmup())
	assert.False(t, ma.Ready())
	assert.Equal(t, 0.0, ma.Value())

	ma.Update(candles[0])
	ma.Update(candles[1])
	assert.False(t, ma.Ready())

	ma.Update(candles[2])
	assert.True(t, ma.Ready())
	assert.InDelta(t, (102.0+105.0+106.0)/3.0, ma.Value(), 0.001)

	// Window slides: should use last 3 closes
	ma.Update(candles[3])
	assert.InDelta(t, (105.0+106.0+108.0)/3.0, ma.Value(), 0.001)

	ma.Reset()
	assert.False(t, ma.Ready())
}

func TestExponentialMAStreaming(t *testing.T) {
	candles := candlesFromCloses(10, 11, 12, 13, 14)

	ema := NewEMA(3)
	assert.False(t, ema.Ready())

	ema.Update(candles[0])
	ema.Update(candles[1])
	assert.False(t, ema.Ready())

	ema.Update(candles[2])
	assert.True(t, ema.Ready())
	// Seeded with SMA of the warmup window
	assert.InDelta(t, 11.0, ema.Value(), 0.001)

	ema.Update(candles[3])
	// multiplier = 2/(3+1) = 0.5
	assert.InDelta(t, (13.0-11.0)*0.5+11.0, ema.Value(), 0.001)
}

func TestMACDStreaming(t *testing.T) {
	m := NewMACD(3, 6, 3)
	assert.Equal(t, "MACD(3,6,3)", m.Name())
	assert.False(t, m.Ready())

	// Strictly rising closes: MACD line must end positive
	for _, c := range candlesFromCloses(10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21) {
		m.Update(c)
	}
	assert.True(t, m.Ready())
	assert.Greater(t, m.Value(), 0.0)
	assert.InDelta(t, m.Value()-m.Signal(), m.Hist(), 1e-9)

	m.Reset()
	assert.False(t, m.Ready())

	assert.Panics(t, func() { NewMACD(26, 12, 9) })
}

func TestRSIStreaming(t *testing.T) {
	r := NewRSI(5)
	assert.Equal(t, "RSI(5)", r.Name())

	// All gains: RSI pins at 100
	for _, c := range candlesFromCloses(10, 11, 12, 13, 14, 15, 16) {
		r.Update(c)
	}
	assert.True(t, r.Ready())
	assert.InDelta(t, 100.0, r.Value(), 0.001)

	r.Reset()
	// All losses: RSI at 0
	for _, c := range candlesFromCloses(16, 15, 14, 13, 12, 11, 10) {
		r.Update(c)
	}
	assert.True(t, r.Ready())
	assert.InDelta(t, 0.0, r.Value(), 0.001)

	r.Reset()
	assert.False(t, r.Ready())
}

func TestKDJStreaming(t *testing.T) {
	s := NewKDJ(4)
	assert.Equal(t, "KDJ(4)", s.Name())
	assert.False(t, s.Ready())

	// Closes at the top of the range push K above D
	for _, c := range candlesFromCloses(10, 11, 12, 13, 14, 15) {
		s.Update(c)
	}
	assert.True(t, s.Ready())
	assert.Greater(t, s.K(), 50.0)
	assert.GreaterOrEqual(t, s.K(), s.D())
	assert.InDelta(t, 3*s.K()-2*s.D(), s.J(), 1e-9)

	s.Reset()
	assert.False(t, s.Ready())
}

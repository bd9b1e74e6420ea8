package strategies

import (
	"fmt"

	"github.com/suvanzhou/futu-algo/indicators"
	"github.com/suvanzhou/futu-algo/market"
)

func init() {
	Register("RSI_Threshold", func(seedBars []market.Candle) (Strategy, error) {
		s := NewRSIThreshold(14, 30, 70)
		seed(s, seedBars)
		return s, nil
	})
}

// RSIThreshold buys when RSI recovers up through the lower threshold and
// sells when it falls back through the upper one. Signalling on the
// re-cross rather than on the level itself avoids firing every bar while
// the oscillator sits in an extreme zone.
type RSIThreshold struct {
	rsi   *indicators.RSI
	lower float64
	upper float64

	prevVal float64
	hasPrev bool
	name    string
}

func NewRSIThreshold(period int, lower, upper float64) *RSIThreshold {
	if lower >= upper {
		panic("RSIThreshold requires lower < upper")
	}
	return &RSIThreshold{
		rsi:   indicators.NewRSI(period),
		lower: lower,
		upper: upper,
		name:  fmt.Sprintf("RSI_THRESHOLD(%d,%.0f,%.0f)", period, lower, upper),
	}
}

func (x *RSIThreshold) Name() string { return x.name }

func (x *RSIThreshold) Evaluate(c market.Candle) Signal {
	x.rsi.Update(c)

	if !x.rsi.Ready() {
		return Hold
	}

	v := x.rsi.Value()
	defer func() {
		x.prevVal = v
		x.hasPrev = true
	}()

	if !x.hasPrev {
		return Hold
	}

	switch {
	case x.prevVal < x.lower && v >= x.lower:
		return Buy
	case x.prevVal > x.upper && v <= x.upper:
		return Sell
	}
	return Hold
}

package strategies

import (
	"fmt"

	"github.com/suvanzhou/futu-algo/indicators"
	"github.com/suvanzhou/futu-algo/market"
)

func init() {
	Register("EMA_Cross", func(seedBars []market.Candle) (Strategy, error) {
		s := NewEMACross(9, 21)
		seed(s, seedBars)
		return s, nil
	})
}

// EMACross generates signals when a fast EMA crosses a slow EMA.
type EMACross struct {
	fast *indicators.ExponentialMA
	slow *indicators.ExponentialMA

	// state: previous relationship between fast and slow
	prevRel int
	name    string
}

func NewEMACross(fastPeriod, slowPeriod int) *EMACross {
	if fastPeriod <= 0 || slowPeriod <= 0 {
		panic("EMACross periods must be > 0")
	}
	if fastPeriod >= slowPeriod {
		panic("EMACross requires fastPeriod < slowPeriod")
	}
	return &EMACross{
		fast: indicators.NewEMA(fastPeriod),
		slow: indicators.NewEMA(slowPeriod),
		name: fmt.Sprintf("EMA_CROSS(%d,%d)", fastPeriod, slowPeriod),
	}
}

func (x *EMACross) Name() string { return x.name }

// Evaluate consumes the next closed candle. A signal is emitted only on
// the cross event (state transition), not every candle while the EMAs
// remain crossed.
func (x *EMACross) Evaluate(c market.Candle) Signal {
	x.fast.Update(c)
	x.slow.Update(c)

	if !x.fast.Ready() || !x.slow.Ready() {
		return Hold
	}

	diff := x.fast.Value() - x.slow.Value()
	rel := 0
	if diff > 0 {
		rel = +1
	} else if diff < 0 {
		rel = -1
	}

	if x.prevRel == 0 {
		x.prevRel = rel
		return Hold
	}

	switch {
	case x.prevRel == -1 && rel == +1:
		x.prevRel = rel
		return Buy
	case x.prevRel == +1 && rel == -1:
		x.prevRel = rel
		return Sell
	}

	if rel != 0 {
		x.prevRel = rel
	}
	return Hold
}

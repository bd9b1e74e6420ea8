package strategies

import (
	"fmt"

	"github.com/suvanzhou/futu-algo/indicators"
	"github.com/suvanzhou/futu-algo/market"
)

func init() {
	Register("KDJ_Cross", func(seedBars []market.Candle) (Strategy, error) {
		s := NewKDJCross(9, 20, 80)
		seed(s, seedBars)
		return s, nil
	})
}

// KDJCross signals on K/D line crosses, gated by the oscillator zone:
// a golden cross only counts in the oversold zone and a death cross only
// in the overbought zone, which filters out mid-range chop.
type KDJCross struct {
	kdj        *indicators.KDJ
	oversold   float64
	overbought float64

	prevRel int
	name    string
}

func NewKDJCross(period int, oversold, overbought float64) *KDJCross {
	if oversold >= overbought {
		panic("KDJCross requires oversold < overbought")
	}
	return &KDJCross{
		kdj:        indicators.NewKDJ(period),
		oversold:   oversold,
		overbought: overbought,
		name:       fmt.Sprintf("KDJ_CROSS(%d)", period),
	}
}

func (x *KDJCross) Name() string { return x.name }

func (x *KDJCross) Evaluate(c market.Candle) Signal {
	x.kdj.Update(c)

	if !x.kdj.Ready() {
		return Hold
	}

	k, d := x.kdj.K(), x.kdj.D()
	rel := 0
	if k > d {
		rel = +1
	} else if k < d {
		rel = -1
	}

	if x.prevRel == 0 {
		x.prevRel = rel
		return Hold
	}

	switch {
	case x.prevRel == -1 && rel == +1 && d < x.oversold:
		x.prevRel = rel
		return Buy
	case x.prevRel == +1 && rel == -1 && d > x.overbought:
		x.prevRel = rel
		return Sell
	}

	if rel != 0 {
		x.prevRel = rel
	}
	return Hold
}

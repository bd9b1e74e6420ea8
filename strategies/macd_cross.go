package strategies

import (
	"fmt"

	"github.com/suvanzhou/futu-algo/indicators"
	"github.com/suvanzhou/futu-algo/market"
)

func init() {
	Register("MACD_Cross", func(seedBars []market.Candle) (Strategy, error) {
		s := NewMACDCross(12, 26, 9)
		seed(s, seedBars)
		return s, nil
	})
}

// MACDCross signals when the MACD line crosses its signal line. A small
// state machine tracks the previous relationship so a signal fires only on
// the cross event, not on every bar while the lines stay crossed.
type MACDCross struct {
	macd *indicators.MACD

	// -1 => MACD below signal, 0 => unknown/not-ready, +1 => above
	prevRel int
	name    string
}

func NewMACDCross(fast, slow, signal int) *MACDCross {
	return &MACDCross{
		macd: indicators.NewMACD(fast, slow, signal),
		name: fmt.Sprintf("MACD_CROSS(%d,%d,%d)", fast, slow, signal),
	}
}

func (x *MACDCross) Name() string { return x.name }

func (x *MACDCross) Evaluate(c market.Candle) Signal {
	x.macd.Update(c)

	if !x.macd.Ready() {
		return Hold
	}

	rel := 0
	if h := x.macd.Hist(); h > 0 {
		rel = +1
	} else if h < 0 {
		rel = -1
	}

	// First time ready: establish baseline, don't fire.
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

package filters

import (
	"fmt"

	"github.com/suvanzhou/futu-algo/indicators"
)

func init() {
	Register("MA_Trend", func(payload any) (Filter, error) {
		f := &MATrend{Fast: 10, Slow: 30}
		if payload != nil {
			cfg, ok := payload.(MATrend)
			if !ok {
				return nil, fmt.Errorf("payload must be filters.MATrend, got %T", payload)
			}
			f = &cfg
		}
		if f.Fast <= 0 || f.Fast >= f.Slow {
			return nil, fmt.Errorf("MA_Trend requires 0 < fast < slow")
		}
		return f, nil
	})
}

// MATrend keeps instruments in a confirmed uptrend: the fast moving
// average sits above the slow one and the latest close sits above both.
type MATrend struct {
	Fast int
	Slow int
}

func (f *MATrend) Name() string {
	return fmt.Sprintf("MA_TREND(%d,%d)", f.Fast, f.Slow)
}

func (f *MATrend) Keep(snap Snapshot) bool {
	if len(snap.Bars) < f.Slow {
		return false
	}

	fast := indicators.NewMA(f.Fast)
	slow := indicators.NewMA(f.Slow)
	for _, b := range snap.Bars {
		fast.Update(b)
		slow.Update(b)
	}
	if !fast.Ready() || !slow.Ready() {
		return false
	}

	close := snap.LastClose()
	return fast.Value() > slow.Value() && close > fast.Value() && close > slow.Value()
}

package indicators

import (
	"fmt"

	"github.com/suvanzhou/futu-algo/market"
)

// KDJ is a streaming stochastic oscillator with the J extension used on
// the HK and mainland markets. K and D are smoothed with the usual
// (2*prev + rsv)/3 recurrence; J = 3K - 2D.
type KDJ struct {
	period int
	highs  []float64
	lows   []float64
	k      float64
	d      float64
	count  int
}

// NewKDJ creates a KDJ with the given lookback period (9 is conventional).
func NewKDJ(period int) *KDJ {
	if period <= 0 {
		panic("KDJ period must be > 0")
	}
	return &KDJ{
		period: period,
		highs:  make([]float64, 0, period),
		lows:   make([]float64, 0, period),
		k:      50,
		d:      50,
	}
}

func (s *KDJ) Name() string {
	return fmt.Sprintf("KDJ(%d)", s.period)
}

func (s *KDJ) Warmup() int {
	return s.period
}

func (s *KDJ) Reset() {
	s.highs = s.highs[:0]
	s.lows = s.lows[:0]
	s.k, s.d = 50, 50
	s.count = 0
}

func (s *KDJ) Update(c market.Candle) {
	s.highs = append(s.highs, c.High)
	s.lows = append(s.lows, c.Low)
	if len(s.highs) > s.period {
		s.highs = s.highs[1:]
		s.lows = s.lows[1:]
	}
	s.count++

	hi, lo := s.highs[0], s.lows[0]
	for i := 1; i < len(s.highs); i++ {
		if s.highs[i] > hi {
			hi = s.highs[i]
		}
		if s.lows[i] < lo {
			lo = s.lows[i]
		}
	}

	rsv := 50.0
	if hi > lo {
		rsv = (c.Close - lo) / (hi - lo) * 100
	}
	s.k = (2*s.k + rsv) / 3
	s.d = (2*s.d + s.k) / 3
}

func (s *KDJ) Ready() bool {
	return s.count >= s.period
}

func (s *KDJ) K() float64 { return s.k }
func (s *KDJ) D() float64 { return s.d }
func (s *KDJ) J() float64 { return 3*s.k - 2*s.d }

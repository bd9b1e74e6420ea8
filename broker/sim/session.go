// Package sim provides an in-process broker.Session producing a
// deterministic random-walk price feed. It backs the engine tests and the
// CLI dry-run modes; nothing here talks to a real brokerage.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/suvanzhou/futu-algo/market"
)

var ErrNotSubscribed = errors.New("instrument not subscribed")

type Session struct {
	mu         sync.Mutex
	rng        *rand.Rand
	subscribed map[market.Code]bool
	granular   market.Granularity
	prices     map[market.Code]float64
	clock      time.Time

	// SubscribeErr, when set, makes Subscribe fail. Tests use it to
	// exercise the live loop's fatal path.
	SubscribeErr error

	// TradingTime is what IsNormalTradingTime reports.
	TradingTime bool

	instruments []market.Instrument
	plates      []market.Plate
	ownerPlates map[market.Code][]string
}

// NewSession creates a session with a fixed seed so test runs are
// reproducible. The clock starts at a fixed instant and advances one bar
// per FetchLatest call.
func NewSession(seed int64) *Session {
	return &Session{
		rng:         rand.New(rand.NewSource(seed)),
		subscribed:  make(map[market.Code]bool),
		prices:      make(map[market.Code]float64),
		clock:       time.Date(2024, 3, 20, 9, 30, 0, 0, time.UTC),
		TradingTime: true,
		ownerPlates: make(map[market.Code][]string),
	}
}

// SetReferenceData seeds the metadata the session serves.
func (s *Session) SetReferenceData(instruments []market.Instrument, plates []market.Plate, owners map[market.Code][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instruments = instruments
	s.plates = plates
	if owners != nil {
		s.ownerPlates = owners
	}
}

func (s *Session) Subscribe(ctx context.Context, codes []market.Code, g market.Granularity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SubscribeErr != nil {
		return s.SubscribeErr
	}
	for _, c := range codes {
		if !c.Valid() {
			return fmt.Errorf("subscribe: invalid code %q", c)
		}
		s.subscribed[c] = true
		if _, ok := s.prices[c]; !ok {
			s.prices[c] = 50 + s.rng.Float64()*100
		}
	}
	s.granular = g
	return nil
}

func (s *Session) FetchRealtime(ctx context.Context, codes []market.Code, g market.Granularity, barCount int) (map[market.Code][]market.Candle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[market.Code][]market.Candle, len(codes))
	for _, c := range codes {
		if !s.subscribed[c] {
			return nil, fmt.Errorf("%w: %s", ErrNotSubscribed, c)
		}
		start := s.clock.Add(-time.Duration(barCount) * g.Duration())
		out[c] = s.walk(c, start, g, barCount)
	}
	return out, nil
}

func (s *Session) FetchLatest(ctx context.Context, codes []market.Code, g market.Granularity) (map[market.Code][]market.Candle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[market.Code][]market.Candle, len(codes))
	for _, c := range codes {
		if !s.subscribed[c] {
			return nil, fmt.Errorf("%w: %s", ErrNotSubscribed, c)
		}
		out[c] = s.walk(c, s.clock, g, 1)
	}
	s.clock = s.clock.Add(g.Duration())
	return out, nil
}

func (s *Session) HistoricalBars(ctx context.Context, code market.Code, g market.Granularity, from, to time.Time) ([]market.Candle, error) {
	if !code.Valid() {
		return nil, fmt.Errorf("historical bars: invalid code %q", code)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int(to.Sub(from)/g.Duration()) + 1
	if n <= 0 {
		return nil, nil
	}
	return s.walkFrom(code, from, g, n, 100), nil
}

// walk generates candles advancing the instrument's live price state.
func (s *Session) walk(code market.Code, start time.Time, g market.Granularity, n int) []market.Candle {
	px := s.prices[code]
	out, last := s.generate(px, start, g, n)
	s.prices[code] = last
	return out
}

// walkFrom generates a historical series without touching live state.
func (s *Session) walkFrom(code market.Code, start time.Time, g market.Granularity, n int, base float64) []market.Candle {
	out, _ := s.generate(base, start, g, n)
	return out
}

func (s *Session) generate(px float64, start time.Time, g market.Granularity, n int) ([]market.Candle, float64) {
	out := make([]market.Candle, 0, n)
	for i := 0; i < n; i++ {
		drift := (s.rng.Float64() - 0.5) * px * 0.01
		open := px
		close := math.Max(0.01, px+drift)
		hi := math.Max(open, close) * (1 + s.rng.Float64()*0.002)
		lo := math.Min(open, close) * (1 - s.rng.Float64()*0.002)
		out = append(out, market.Candle{
			Open: open, High: hi, Low: lo, Close: close,
			Time:   start.Add(time.Duration(i) * g.Duration()),
			Volume: 1000 + s.rng.Float64()*9000,
		})
		px = close
	}
	return out, px
}

func (s *Session) InstrumentMetadata(ctx context.Context, m market.Market, st market.SecurityType) ([]market.Instrument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []market.Instrument
	for _, in := range s.instruments {
		if in.Market == m && in.Type == st {
			out = append(out, in)
		}
	}
	return out, nil
}

func (s *Session) Plates(ctx context.Context, m market.Market) ([]market.Plate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []market.Plate
	for _, p := range s.plates {
		if p.Market == m {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Session) OwnerPlates(ctx context.Context, code market.Code) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownerPlates[code], nil
}

func (s *Session) IsNormalTradingTime(ctx context.Context, codes []market.Code) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.TradingTime, nil
}

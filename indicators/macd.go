package indicators

import (
	"fmt"

	"github.com/suvanzhou/futu-algo/market"
)

// MACD is a streaming Moving Average Convergence Divergence indicator.
// The MACD line is fastEMA - slowEMA, the signal line is an EMA of the
// MACD line, and the histogram is their difference.
type MACD struct {
	fast   *ExponentialMA
	slow   *ExponentialMA
	signal *ExponentialMA
}

// NewMACD creates a MACD with the given fast, slow and signal periods.
// The conventional setup is (12, 26, 9).
func NewMACD(fast, slow, signal int) *MACD {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		panic("MACD periods must be > 0")
	}
	if fast >= slow {
		panic("MACD requires fast < slow")
	}
	return &MACD{
		fast:   NewEMA(fast),
		slow:   NewEMA(slow),
		signal: NewEMA(signal),
	}
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", m.fast.period, m.slow.period, m.signal.period)
}

func (m *MACD) Warmup() int {
	return m.slow.period + m.signal.period
}

func (m *MACD) Reset() {
	m.fast.Reset()
	m.slow.Reset()
	m.signal.Reset()
}

func (m *MACD) Update(c market.Candle) {
	m.fast.Update(c)
	m.slow.Update(c)
	if m.fast.Ready() && m.slow.Ready() {
		m.signal.UpdateValue(m.fast.Value() - m.slow.Value())
	}
}

func (m *MACD) Ready() bool {
	return m.signal.Ready()
}

// Value returns the MACD line (fast EMA - slow EMA).
func (m *MACD) Value() float64 {
	if !m.Ready() {
		return 0
	}
	return m.fast.Value() - m.slow.Value()
}

// Signal returns the signal line.
func (m *MACD) Signal() float64 {
	return m.signal.Value()
}

// Hist returns the MACD histogram (MACD line - signal line).
func (m *MACD) Hist() float64 {
	if !m.Ready() {
		return 0
	}
	return m.Value() - m.Signal()
}

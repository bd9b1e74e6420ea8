package market

import (
	"sort"
	"time"
)

// Candle represents OHLC (Open, High, Low, Close) candlestick data
// for one instrument over one bar interval.
type Candle struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
	time.Time
	Volume float64
}

// SortCandles orders candles by bar open time, oldest first.
func SortCandles(cs []Candle) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Time.Before(cs[j].Time) })
}

// LastTime returns the newest bar time in cs, or the zero time when empty.
func LastTime(cs []Candle) time.Time {
	var last time.Time
	for _, c := range cs {
		if c.Time.After(last) {
			last = c.Time
		}
	}
	return last
}

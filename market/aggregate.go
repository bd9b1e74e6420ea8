package market

import "time"

// Aggregate rolls 1-minute candles up to a coarser intraday interval.
// Input order is preserved; each output bucket opens on an interval
// boundary and carries the first open, last close, extreme high/low and
// summed volume of the minutes that fell inside it. Buckets with no
// source minutes are simply absent, matching how the store keeps sparse
// trading-day data.
func Aggregate(minutes []Candle, interval time.Duration) []Candle {
	if interval <= time.Minute || len(minutes) == 0 {
		out := make([]Candle, len(minutes))
		copy(out, minutes)
		return out
	}

	var out []Candle
	var cur *Candle
	var bucket time.Time

	for _, m := range minutes {
		b := m.Time.Truncate(interval)
		if cur == nil || !b.Equal(bucket) {
			if cur != nil {
				out = append(out, *cur)
			}
			bucket = b
			c := m
			c.Time = b
			cur = &c
			continue
		}
		if m.High > cur.High {
			cur.High = m.High
		}
		if m.Low < cur.Low {
			cur.Low = m.Low
		}
		cur.Close = m.Close
		cur.Volume += m.Volume
	}
	if cur != nil {
		out = append(out, *cur)
	}
	return out
}

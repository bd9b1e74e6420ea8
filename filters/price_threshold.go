package filters

import "fmt"

func init() {
	Register("Price_Threshold", func(payload any) (Filter, error) {
		f := &PriceThreshold{Min: 1, Max: 1000}
		if payload != nil {
			cfg, ok := payload.(PriceThreshold)
			if !ok {
				return nil, fmt.Errorf("payload must be filters.PriceThreshold, got %T", payload)
			}
			f = &cfg
		}
		if f.Min < 0 || f.Max <= f.Min {
			return nil, fmt.Errorf("Price_Threshold requires 0 <= min < max")
		}
		return f, nil
	})
}

// PriceThreshold keeps instruments whose latest close falls inside
// [Min, Max]. It screens out penny stocks below the band and
// lot-size-unaffordable names above it.
type PriceThreshold struct {
	Min float64
	Max float64
}

func (f *PriceThreshold) Name() string {
	return fmt.Sprintf("PRICE_THRESHOLD(%.2f,%.2f)", f.Min, f.Max)
}

func (f *PriceThreshold) Keep(snap Snapshot) bool {
	if len(snap.Bars) == 0 {
		return false
	}
	close := snap.LastClose()
	return close >= f.Min && close <= f.Max
}

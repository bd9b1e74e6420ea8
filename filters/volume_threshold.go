package filters

import "fmt"

func init() {
	Register("Volume_Threshold", func(payload any) (Filter, error) {
		f := &VolumeThreshold{Days: 7, MinAvgVolume: 1_000_000}
		if payload != nil {
			cfg, ok := payload.(VolumeThreshold)
			if !ok {
				return nil, fmt.Errorf("payload must be filters.VolumeThreshold, got %T", payload)
			}
			f = &cfg
		}
		if f.Days <= 0 || f.MinAvgVolume <= 0 {
			return nil, fmt.Errorf("Volume_Threshold requires positive days and volume")
		}
		return f, nil
	})
}

// VolumeThreshold keeps instruments whose average daily volume over the
// last Days bars meets MinAvgVolume. Thinly traded stocks fail the
// screen even if their price action looks attractive.
type VolumeThreshold struct {
	Days         int
	MinAvgVolume float64
}

func (f *VolumeThreshold) Name() string {
	return fmt.Sprintf("VOLUME_THRESHOLD(%d,%.0f)", f.Days, f.MinAvgVolume)
}

func (f *VolumeThreshold) Keep(snap Snapshot) bool {
	bars := snap.Bars
	if len(bars) < f.Days {
		return false
	}
	bars = bars[len(bars)-f.Days:]

	sum := 0.0
	for _, b := range bars {
		sum += b.Volume
	}
	return sum/float64(f.Days) >= f.MinAvgVolume
}

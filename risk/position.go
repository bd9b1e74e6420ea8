// Package risk sizes orders. Exchange-listed stocks trade in board
// lots, so sizing rounds down to whole lots and caps the position at a
// share of account capital.
package risk

import "math"

// Sizing converts available capital into an order quantity.
type Sizing struct {
	// LotSize is the instrument's board lot. Zero means 1.
	LotSize int

	// Lots is the preferred number of lots per entry. Zero means 1.
	Lots int

	// MaxPercPerAsset caps one instrument's position at this percent
	// of capital. Zero means uncapped.
	MaxPercPerAsset float64
}

// Shares returns the quantity to buy at price given total capital. The
// preferred size is LotSize*Lots; it shrinks in whole lots until it fits
// under the capital cap, and returns 0 when not even one lot fits.
func (s Sizing) Shares(capital, price float64) float64 {
	if price <= 0 || capital <= 0 {
		return 0
	}

	lot := s.LotSize
	if lot <= 0 {
		lot = 1
	}
	lots := s.Lots
	if lots <= 0 {
		lots = 1
	}

	budget := capital
	if s.MaxPercPerAsset > 0 {
		budget = capital * s.MaxPercPerAsset / 100
	}

	affordable := int(math.Floor(budget / (float64(lot) * price)))
	if affordable < lots {
		lots = affordable
	}
	if lots <= 0 {
		return 0
	}
	return float64(lot * lots)
}

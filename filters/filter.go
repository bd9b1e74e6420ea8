// Package filters holds the stock-screening plugin namespace. Each filter
// lives in its own source file and registers itself from init(). Filters
// are stateless predicates over one instrument's recent daily history;
// the screening pipeline keeps an instrument only when every resolved
// filter keeps it, so a list of filters composes by intersection.
package filters

import (
	"github.com/suvanzhou/futu-algo/market"
	"github.com/suvanzhou/futu-algo/plugin"
)

// Snapshot is what a filter sees for one instrument: its reference record
// and a window of recent daily bars, oldest first.
type Snapshot struct {
	Instrument market.Instrument
	Bars       []market.Candle
}

// LastClose returns the newest close, or 0 when the snapshot has no bars.
func (s Snapshot) LastClose() float64 {
	if len(s.Bars) == 0 {
		return 0
	}
	return s.Bars[len(s.Bars)-1].Close
}

// Filter reduces an instrument universe to the subset satisfying one
// screening criterion.
type Filter interface {
	Name() string
	Keep(snap Snapshot) bool
}

var registry = plugin.NewRegistry[Filter]("filter")

// Register adds a filter under name; called from init() in each filter
// source file. The factory receives the resolution payload, which is nil
// for bulk ("all") resolution.
func Register(name string, factory plugin.Factory[Filter]) {
	registry.Register(name, factory)
}

// Resolve builds a new instance of the named filter.
func Resolve(name string, payload any) (Filter, error) {
	return registry.Resolve(name, payload)
}

// ResolveAll resolves the named filters with no payload; the sentinel
// "all" expands to every registered filter.
func ResolveAll(names []string) ([]Filter, error) {
	return registry.ResolveAll(names)
}

// Names lists every registered filter.
func Names() []string {
	return registry.Names()
}

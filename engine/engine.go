// Package engine contains the orchestration pipelines: the daily data
// sync, the live evaluation loop and the screen-and-notify run. Each
// pipeline composes the store, the brokerage session and the plugin
// namespaces; none of them owns a transport.
package engine

import "errors"

var (
	// ErrSubscription reports that the live feed could not be
	// established or was lost. Fatal to a live run.
	ErrSubscription = errors.New("subscription failure")

	// ErrEvaluation reports that a strategy failed while evaluating a
	// bar. Fatal to the run unless failure isolation is enabled.
	ErrEvaluation = errors.New("strategy evaluation failure")

	// ErrSourceUnavailable reports that an upstream data source failed
	// for one sync step or instrument. The pipelines log it and move on.
	ErrSourceUnavailable = errors.New("data source unavailable")
)

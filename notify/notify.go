// Package notify composes screening reports and fans them out to the
// configured subscribers. The actual delivery transport (SMTP or
// otherwise) is behind the Sender interface and out of scope here.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/suvanzhou/futu-algo/market"
)

// Sender delivers one composed message to one recipient.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// Report is one market's screening result.
type Report struct {
	ID        string
	Label     string
	Market    market.Market
	Details   []market.Detail
	Generated time.Time
}

// NewReport stamps a screening result with a unique id and timestamp.
func NewReport(label string, m market.Market, details []market.Detail) Report {
	return Report{
		ID:        ulid.Make().String(),
		Label:     label,
		Market:    m,
		Details:   details,
		Generated: time.Now().UTC(),
	}
}

// Subject is the message subject line for the report.
func (r Report) Subject() string {
	return fmt.Sprintf("[%s] %s - %d selected (%s)",
		r.Market, r.Label, len(r.Details), r.Generated.Format("2006-01-02"))
}

// Body renders the report as a plain-text table.
func (r Report) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - market %s, generated %s\n", r.Label, r.Market, r.Generated.Format(time.RFC3339))
	fmt.Fprintf(&b, "report id: %s\n\n", r.ID)
	fmt.Fprintf(&b, "%-12s %-24s %12s %9s %14s\n", "CODE", "NAME", "PRICE", "CHG%", "VOLUME")
	for _, d := range r.Details {
		fmt.Fprintf(&b, "%-12s %-24s %12.3f %8.2f%% %14.0f\n",
			d.Code, d.Name, d.Price, d.ChangeRate, d.Volume)
	}
	return b.String()
}

// Dispatcher sends a report to every configured subscriber. A failure
// for one subscriber is logged and does not block the others.
type Dispatcher struct {
	sender      Sender
	subscribers []string
	log         zerolog.Logger
}

func NewDispatcher(sender Sender, subscribers []string, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		sender:      sender,
		subscribers: subscribers,
		log:         log.With().Str("component", "notify").Logger(),
	}
}

// Dispatch fans the report out. The returned error joins the individual
// per-subscriber failures; a partial success is still a success for the
// subscribers that received it.
func (d *Dispatcher) Dispatch(ctx context.Context, r Report) error {
	subject := r.Subject()
	body := r.Body()

	var errs []error
	for _, sub := range d.subscribers {
		if err := d.sender.Send(ctx, sub, subject, body); err != nil {
			d.log.Error().Err(err).
				Str("subscriber", sub).
				Str("report", r.ID).
				Msg("dispatch failed")
			errs = append(errs, fmt.Errorf("send to %s: %w", sub, err))
			continue
		}
		d.log.Info().
			Str("subscriber", sub).
			Str("report", r.ID).
			Str("market", string(r.Market)).
			Int("rows", len(r.Details)).
			Msg("report dispatched")
	}
	return errors.Join(errs...)
}

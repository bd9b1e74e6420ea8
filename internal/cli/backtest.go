package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/suvanzhou/futu-algo/backtest"
	"github.com/suvanzhou/futu-algo/market"
)

func newBacktestCmd(app *App) *cobra.Command {
	var (
		interval time.Duration
		fromStr  string
		toStr    string
		lotSize  int
	)

	cmd := &cobra.Command{
		Use:   "backtest <code> <strategy>",
		Short: "Replay stored minute bars through a strategy and journal the result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := market.Code(args[0])
			if !code.Valid() {
				return fmt.Errorf("bad instrument code %q", args[0])
			}

			from, to, err := parseWindow(fromStr, toStr)
			if err != nil {
				return err
			}

			s, err := app.OpenStore()
			if err != nil {
				return err
			}
			defer s.Close()
			j, err := app.OpenJournal()
			if err != nil {
				return err
			}
			defer j.Close()

			if lotSize <= 0 {
				if in, ok, err := s.Instrument(cmd.Context(), code); err == nil && ok {
					lotSize = in.LotSize
				}
			}

			bcfg := app.Config.Backtest
			r := &backtest.Runner{Store: s, Journal: j, Log: app.Log}
			res, err := r.Run(cmd.Context(), backtest.Config{
				Code:            code,
				Strategy:        args[1],
				Interval:        interval,
				Observation:     bcfg.Observation,
				Start:           from,
				End:             to,
				InitialCapital:  bcfg.InitialCapital,
				LotSize:         lotSize,
				Lots:            app.Config.Trade.LotSizeMultiplier,
				MaxPercPerAsset: app.Config.Trade.MaxPercPerAsset,
				Commission: backtest.Commission{
					Fixed:   bcfg.FixedCharge,
					Rate:    bcfg.PercCharge,
					Minimum: bcfg.MinCharge,
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), res.Run.Summary())
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", time.Hour, "bar size the stored minutes are rolled up to")
	cmd.Flags().StringVar(&fromStr, "from", "", "replay window start (RFC3339 or 2006-01-02)")
	cmd.Flags().StringVar(&toStr, "to", "", "replay window end (RFC3339 or 2006-01-02)")
	cmd.Flags().IntVar(&lotSize, "lot-size", 0, "board lot override (default: instrument reference data)")
	return cmd
}

func parseWindow(fromStr, toStr string) (time.Time, time.Time, error) {
	parse := func(s string) (time.Time, error) {
		if s == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			t, err = time.Parse("2006-01-02", s)
		}
		return t, err
	}

	from, err := parse(fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad --from: %w", err)
	}
	to, err := parse(toStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad --to: %w", err)
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("--from must be before --to")
	}
	return from, to, nil
}

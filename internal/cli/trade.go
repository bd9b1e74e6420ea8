package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suvanzhou/futu-algo/engine"
	"github.com/suvanzhou/futu-algo/market"
	"github.com/suvanzhou/futu-algo/strategies"
)

func newTradeCmd(app *App) *cobra.Command {
	var (
		interval      string
		skipTimeCheck bool
	)

	cmd := &cobra.Command{
		Use:   "trade <strategy>",
		Short: "Run the live evaluation loop with one strategy per instrument",
		Long: `Subscribes to live bars for the configured stock list and evaluates
each new bar. The named strategy is the default; trade.stock_strategy_map
in the config overrides it per instrument.

Known strategies: ` + fmt.Sprint(strategies.Names()),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := market.ParseGranularity(interval)
			if err != nil {
				return err
			}
			if !g.Intraday() {
				return fmt.Errorf("live trading needs an intraday interval, got %s", g)
			}

			session, err := app.Session()
			if err != nil {
				return err
			}
			codes := app.Config.StockCodes()
			if len(codes) == 0 {
				return fmt.Errorf("trade.stock_list is empty")
			}

			if !skipTimeCheck {
				ok, err := session.IsNormalTradingTime(cmd.Context(), codes)
				if err != nil {
					return err
				}
				if !ok {
					app.Log.Info().Msg("outside regular trading hours, exiting")
					return nil
				}
			}

			e := &engine.LiveEngine{
				Session:         session,
				DefaultStrategy: args[0],
				Overrides:       app.Config.StrategyOverrides(),
				IsolateFailures: app.Config.Trade.IsolateFailures,
				Log:             app.Log,
			}
			return e.Run(cmd.Context(), codes, g)
		},
	}

	cmd.Flags().StringVar(&interval, "time-interval", "K_1M", "bar granularity, e.g. K_1M, K_5M, K_15M")
	cmd.Flags().BoolVar(&skipTimeCheck, "skip-time-check", false, "run even outside regular trading hours")
	return cmd
}

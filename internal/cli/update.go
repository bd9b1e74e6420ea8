package cli

import (
	"github.com/spf13/cobra"

	"github.com/suvanzhou/futu-algo/engine"
	"github.com/suvanzhou/futu-algo/market"
	"github.com/suvanzhou/futu-algo/refdata"
)

func newUpdateCmd(app *App) *cobra.Command {
	var (
		force      bool
		workers    int
		marketsF   []string
		equityList string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Refresh reference data and historical bars in the local store",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.Session()
			if err != nil {
				return err
			}
			s, err := app.OpenStore()
			if err != nil {
				return err
			}
			defer s.Close()

			markets, err := parseMarkets(marketsF)
			if err != nil {
				return err
			}
			codes, err := app.StockList(cmd, s)
			if err != nil {
				return err
			}

			p := &engine.SyncPipeline{
				Session: session,
				Store:   s,
				Markets: markets,
				Workers: workers,
				Log:     app.Log,
			}
			if equityList != "" {
				p.Universe = refdata.NewHKEXFile(equityList)
			}
			return p.Run(cmd.Context(), codes, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "re-fetch the full span even when the store looks current")
	cmd.Flags().IntVar(&workers, "workers", 4, "parallel instruments during bar refresh")
	cmd.Flags().StringSliceVar(&marketsF, "markets", []string{"HK"}, "markets for reference-data refresh")
	cmd.Flags().StringVar(&equityList, "equity-list", "", "exchange-published equity list CSV for the full-universe refresh")
	return cmd
}

func parseMarkets(names []string) ([]market.Market, error) {
	out := make([]market.Market, 0, len(names))
	for _, n := range names {
		m, err := market.ParseMarket(n)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

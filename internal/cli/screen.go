package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suvanzhou/futu-algo/engine"
	"github.com/suvanzhou/futu-algo/filters"
	"github.com/suvanzhou/futu-algo/plugin"
	"github.com/suvanzhou/futu-algo/refdata"
)

func newScreenCmd(app *App) *cobra.Command {
	var (
		marketsF []string
		label    string
	)

	cmd := &cobra.Command{
		Use:   "screen <filter>...",
		Short: "Screen market universes through filters and report the survivors",
		Long: `Runs each requested market's instrument universe through the named
filters and sends the instruments that pass all of them to the configured
email subscribers (or stdout when none are configured). Use "` + plugin.All + `"
to apply every registered filter.

Known filters: ` + fmt.Sprint(filters.Names()),
		Args: cobra.MinimumNArgs(1),
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

			sc := &engine.Screener{
				Session:    session,
				Store:      s,
				Quoter:     refdata.NewStoreQuoter(s),
				Dispatcher: app.Dispatcher(),
				Log:        app.Log,
			}
			return sc.Run(cmd.Context(), args, markets, label)
		},
	}

	cmd.Flags().StringSliceVar(&marketsF, "markets", []string{"HK"}, "markets to screen")
	cmd.Flags().StringVar(&label, "label", "", "report label (defaults to "+engine.DefaultScreenLabel+")")
	return cmd
}

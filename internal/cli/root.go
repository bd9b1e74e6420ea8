// Package cli wires the operator commands: data sync, live trading,
// stock screening and backtesting.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "futu-algo",
		Short:         "Algorithmic trading operator: data sync, live signals, screening, backtests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "path to YAML config (optional)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "override configured log level")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.Init()
	}

	cmd.AddCommand(
		newUpdateCmd(app),
		newTradeCmd(app),
		newScreenCmd(app),
		newBacktestCmd(app),
		newVersionCmd(),
	)
	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/liquidvex/market-core/internal/exchanges/hyperliquid"
)

// Module provides the CLI commands
var Module = fx.Module("cli",
	fx.Provide(
		NewRootCmd,
	),
	fx.Invoke(RunCLI),
)

// NewRootCmd assembles the inspection commands around the REST provider.
func NewRootCmd(provider *hyperliquid.Provider) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vexctl",
		Short: "liquidVex market inspection CLI",
	}

	rootCmd.AddCommand(newBookCmd(provider))
	rootCmd.AddCommand(newPriceCmd(provider))
	rootCmd.AddCommand(newCheckCmd(provider))

	return rootCmd
}

// RunCLI executes the cobra CLI with fx dependencies
func RunCLI(rootCmd *cobra.Command, shutdowner fx.Shutdowner) {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	_ = shutdowner.Shutdown()
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/liquidvex/market-core/internal/exchanges/hyperliquid"
)

func newPriceCmd(provider *hyperliquid.Provider) *cobra.Command {
	return &cobra.Command{
		Use:   "price [coin...]",
		Short: "Show the current mark price of one or more coins",
		RunE: func(cmd *cobra.Command, args []string) error {
			prices, err := provider.FetchMarkPrices()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if len(args) == 0 {
				for coin, price := range prices {
					fmt.Fprintf(out, "%-10s %s\n", coin, price.String())
				}
				return nil
			}

			for _, arg := range args {
				coin := strings.ToUpper(arg)
				price, exists := prices[coin]
				if !exists {
					return fmt.Errorf("price not found for coin: %s", coin)
				}
				fmt.Fprintf(out, "%-10s %s\n", coin, price.String())
			}
			return nil
		},
	}
}

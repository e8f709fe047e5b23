package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/liquidvex/market-core/internal/book"
	"github.com/liquidvex/market-core/internal/exchanges/hyperliquid"
	"github.com/liquidvex/market-core/internal/services"
)

func newBookCmd(provider *hyperliquid.Provider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book <coin>",
		Short: "Show the aggregated order book ladder for a coin",
		Args:  cobra.ExactArgs(1),
	}

	cmd.Flags().StringP("bucket", "b", "1", "Price bucket size")
	cmd.Flags().IntP("depth", "d", 10, "Rows per side")
	cmd.Flags().IntP("top", "t", 5, "Levels per side for the imbalance gauge")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		coin := strings.ToUpper(args[0])

		rawBucket, _ := cmd.Flags().GetString("bucket")
		depth, _ := cmd.Flags().GetInt("depth")
		top, _ := cmd.Flags().GetInt("top")

		bucketSize, err := decimal.NewFromString(rawBucket)
		if err != nil {
			return fmt.Errorf("invalid bucket size %q: %w", rawBucket, err)
		}

		snapshot, err := provider.FetchBook(coin)
		if err != nil {
			return err
		}

		view, err := services.BuildDepthView(snapshot, bucketSize, top, depth)
		if err != nil {
			return err
		}

		printDepthView(cmd, view)
		return nil
	}

	return cmd
}

func printDepthView(cmd *cobra.Command, view *services.DepthView) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s order book\n\n", view.Coin)
	fmt.Fprintf(out, "%-14s %-14s %-14s %s\n", "PRICE", "SIZE", "CUMULATIVE", "DEPTH")

	for i := len(view.Asks) - 1; i >= 0; i-- {
		printLevel(out, view.Asks[i], view.MaxCumulative)
	}
	fmt.Fprintln(out, strings.Repeat("-", 58))
	for _, level := range view.Bids {
		printLevel(out, level, view.MaxCumulative)
	}

	if view.Spread != nil {
		fmt.Fprintf(out, "\nspread: %s (%s%%)\n",
			view.Spread.Absolute.String(),
			view.Spread.Percent.StringFixed(4))
	}
	fmt.Fprintf(out, "imbalance: %s%% buy (%s)\n",
		view.Imbalance.Percent.StringFixed(1),
		view.Imbalance.Direction)
}

func printLevel(out io.Writer, level book.AggregatedLevel, maxCumulative decimal.Decimal) {
	width := book.DepthBarWidth(level.CumulativeSize, maxCumulative)
	bar := strings.Repeat("#", int(width.IntPart())/5)

	fmt.Fprintf(out, "%-14s %-14s %-14s %s\n",
		level.Price.String(),
		level.Size.String(),
		level.CumulativeSize.String(),
		bar)
}

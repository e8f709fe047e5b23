package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/liquidvex/market-core/internal/exchanges/hyperliquid"
	"github.com/liquidvex/market-core/internal/order"
	"github.com/liquidvex/market-core/internal/risk"
)

func newCheckCmd(provider *hyperliquid.Provider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <coin>",
		Short: "Dry-run the pre-submission checks for an order draft",
		Args:  cobra.ExactArgs(1),
	}

	cmd.Flags().String("side", "buy", "Order side (buy or sell)")
	cmd.Flags().String("size", "", "Order size in coin units")
	cmd.Flags().String("price", "", "Limit price (omit for a market order)")
	cmd.Flags().Int("leverage", 1, "Leverage multiplier")
	cmd.Flags().String("balance", "0", "Available balance to check margin against")
	cmd.Flags().Bool("reduce-only", false, "Mark the draft reduce-only")
	cmd.Flags().Bool("post-only", false, "Mark the draft post-only")
	cmd.MarkFlagRequired("size")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		draft, account, err := draftFromFlags(cmd, strings.ToUpper(args[0]))
		if err != nil {
			return err
		}

		markPrice, err := provider.FetchMarkPrice(draft.Coin)
		if err != nil {
			return err
		}

		check := order.ValidateOrder(draft, markPrice, account, nil)

		out := cmd.OutOrStdout()
		if check.IsValid {
			fmt.Fprintf(out, "OK: draft passes all checks at mark %s\n", markPrice.String())
			return nil
		}
		fmt.Fprintf(out, "REJECTED: %s\n", check.Error)
		return nil
	}

	return cmd
}

func draftFromFlags(cmd *cobra.Command, coin string) (order.Draft, risk.AccountState, error) {
	rawSide, _ := cmd.Flags().GetString("side")
	rawSize, _ := cmd.Flags().GetString("size")
	rawPrice, _ := cmd.Flags().GetString("price")
	leverage, _ := cmd.Flags().GetInt("leverage")
	rawBalance, _ := cmd.Flags().GetString("balance")
	reduceOnly, _ := cmd.Flags().GetBool("reduce-only")
	postOnly, _ := cmd.Flags().GetBool("post-only")

	size, err := decimal.NewFromString(rawSize)
	if err != nil {
		return order.Draft{}, risk.AccountState{}, fmt.Errorf("invalid size %q: %w", rawSize, err)
	}
	balance, err := decimal.NewFromString(rawBalance)
	if err != nil {
		return order.Draft{}, risk.AccountState{}, fmt.Errorf("invalid balance %q: %w", rawBalance, err)
	}

	var kind order.Kind = order.Market{}
	if rawPrice != "" {
		price, err := decimal.NewFromString(rawPrice)
		if err != nil {
			return order.Draft{}, risk.AccountState{}, fmt.Errorf("invalid price %q: %w", rawPrice, err)
		}
		kind = order.Limit{Price: price, PostOnly: postOnly, TIF: order.TIFGoodTilCancel}
	}

	draft := order.Draft{
		Coin:       coin,
		Side:       order.Side(rawSide),
		Size:       size,
		Leverage:   leverage,
		ReduceOnly: reduceOnly,
		Kind:       kind,
	}
	account := risk.AccountState{
		Equity:           balance,
		AvailableBalance: balance,
	}
	return draft, account, nil
}

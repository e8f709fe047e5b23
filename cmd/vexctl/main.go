package main

import (
	"go.uber.org/fx"

	exchange "github.com/liquidvex/market-core/config/exchanges"
	"github.com/liquidvex/market-core/internal/cli"
	"github.com/liquidvex/market-core/internal/config"
	"github.com/liquidvex/market-core/internal/exchanges/hyperliquid"
	"github.com/liquidvex/market-core/internal/infrastructure"
)

func main() {
	fx.New(
		fx.Provide(
			config.LoadConfig,
			infrastructure.NewLogger,
		),

		exchange.Module,
		hyperliquid.Module,
		cli.Module,

		fx.NopLogger,
	).Run()
}

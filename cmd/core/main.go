package main

import (
	"go.uber.org/fx"

	exchange "github.com/liquidvex/market-core/config/exchanges"
	"github.com/liquidvex/market-core/internal/config"
	"github.com/liquidvex/market-core/internal/database"
	"github.com/liquidvex/market-core/internal/exchanges/hyperliquid"
	"github.com/liquidvex/market-core/internal/infrastructure"
	"github.com/liquidvex/market-core/internal/services"
	"github.com/liquidvex/market-core/internal/wallet"
)

func main() {
	fx.New(
		fx.Provide(config.LoadConfig),

		infrastructure.Module,
		exchange.Module,
		hyperliquid.Module,
		database.Module,
		services.Module,
		wallet.Module,
	).Run()
}

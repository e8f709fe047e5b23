package hyperliquid

import (
	"go.uber.org/fx"

	"github.com/liquidvex/market-core/internal/services"
)

// Module provides the REST market data path
var Module = fx.Module("hyperliquid",
	fx.Provide(
		NewInfoClient,
		NewProvider,
		func(p *Provider) services.AccountSource { return p },
	),
)

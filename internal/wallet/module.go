package wallet

import (
	"go.uber.org/fx"
)

// Module provides the wallet service
var Module = fx.Module("wallet",
	fx.Provide(NewService),
)

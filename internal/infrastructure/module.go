package infrastructure

import (
	"go.uber.org/fx"
)

// Module provides infrastructure components (logging, transport, lifecycle)
var Module = fx.Module("infrastructure",
	fx.Provide(
		NewLogger,
		NewFeedSource,
	),
	fx.Invoke(RegisterLifecycle),
)

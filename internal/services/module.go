package services

import (
	"go.uber.org/fx"
)

// Module provides the service layer
var Module = fx.Module("services",
	fx.Provide(
		NewEventBus,
		NewMarketFeed,
		NewRiskMonitor,
		NewOrderGateway,
		NewAccountPoller,
	),
)

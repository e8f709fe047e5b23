package exchange

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides exchange configurations
var Module = fx.Module("exchange-configs",
	fx.Provide(
		NewHyperliquidConfig,
	),
)

// NewHyperliquidConfig loads Hyperliquid configuration
func NewHyperliquidConfig(logger *zap.Logger) (*HyperliquidConfig, error) {
	logger.Info("Loading Hyperliquid configuration...")
	cfg := &HyperliquidConfig{}

	// Don't fail startup on incomplete credentials; account views stay
	// disabled until they are provided
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Hyperliquid configuration incomplete - account views will be disabled until credentials are provided",
				zap.Any("error", r))
		}
	}()

	cfg.LoadHyperliquidConfig()
	return cfg, nil
}

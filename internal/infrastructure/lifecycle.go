package infrastructure

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	appconfig "github.com/liquidvex/market-core/internal/config"
	"github.com/liquidvex/market-core/internal/database"
	"github.com/liquidvex/market-core/internal/services"
	"github.com/liquidvex/market-core/internal/wallet"
	"github.com/liquidvex/market-core/pkg/feed"
)

// NewFeedSource builds the websocket transport from configuration.
func NewFeedSource(cfg *appconfig.Config, logger *zap.Logger) (feed.MessageSource, error) {
	feedCfg := feed.DefaultConfig()
	feedCfg.URL = cfg.Feed.URL
	if cfg.Feed.ConnectTimeout > 0 {
		feedCfg.ConnectTimeout = time.Duration(cfg.Feed.ConnectTimeout) * time.Second
	}
	if cfg.Feed.ReadTimeout > 0 {
		feedCfg.ReadTimeout = time.Duration(cfg.Feed.ReadTimeout) * time.Second
	}
	if cfg.Feed.ReconnectInitial > 0 {
		feedCfg.ReconnectInitialDelay = time.Duration(cfg.Feed.ReconnectInitial) * time.Millisecond
	}
	if cfg.Feed.ReconnectMax > 0 {
		feedCfg.ReconnectMaxDelay = time.Duration(cfg.Feed.ReconnectMax) * time.Millisecond
	}
	if cfg.Feed.MaxReconnects > 0 {
		feedCfg.MaxReconnects = cfg.Feed.MaxReconnects
	}

	return feed.NewClient(feedCfg, feed.NewGorillaDialer(feedCfg), logger)
}

// RegisterLifecycle sets up application startup and shutdown hooks. The
// order gateway and wallet service are dependencies so the daemon's object
// graph always builds them alongside the feed pipeline.
func RegisterLifecycle(
	lc fx.Lifecycle,
	marketFeed *services.MarketFeed,
	riskMonitor *services.RiskMonitor,
	accountPoller *services.AccountPoller,
	gateway *services.OrderGateway,
	wallets *wallet.Service,
	repo *database.Repository,
	eventBus *services.EventBus,
	logger *zap.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Services outlive the startup context
			runCtx := context.Background()

			if err := riskMonitor.Start(runCtx); err != nil {
				return err
			}
			if err := accountPoller.Start(runCtx); err != nil {
				return err
			}
			if err := marketFeed.Start(runCtx); err != nil {
				return err
			}

			logger.Info("Market core started",
				zap.String("version", "1.0.0"),
				zap.Int("session_keys", len(wallets.ListSessionKeys())))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down...")

			marketFeed.Stop()
			accountPoller.Stop()
			riskMonitor.Stop()
			eventBus.Close()

			if err := repo.Close(); err != nil {
				logger.Error("Failed to close database connection", zap.Error(err))
			}

			logger.Info("Market core stopped")
			return nil
		},
	})
}

package infrastructure_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/fx"
	"go.uber.org/zap"

	exchange "github.com/liquidvex/market-core/config/exchanges"
	"github.com/liquidvex/market-core/internal/config"
	"github.com/liquidvex/market-core/internal/database"
	"github.com/liquidvex/market-core/internal/infrastructure"
	"github.com/liquidvex/market-core/internal/risk"
	"github.com/liquidvex/market-core/internal/services"
	"github.com/liquidvex/market-core/internal/wallet"
	"github.com/liquidvex/market-core/pkg/feed"
)

type nullSource struct {
	frames chan []byte
}

func (n *nullSource) Start(ctx context.Context) error { return nil }

func (n *nullSource) Stop() error { return nil }

func (n *nullSource) Subscribe(payload interface{}) {}

func (n *nullSource) Messages() <-chan []byte { return n.frames }

func (n *nullSource) Send(v interface{}) error { return nil }

func (n *nullSource) IsConnected() bool { return false }

type nullAccounts struct{}

func (nullAccounts) FetchAccount(string) (risk.AccountState, []risk.Position, error) {
	return risk.AccountState{}, nil, nil
}

func daemonConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Market.Coins = []string{"BTC"}
	cfg.Market.BucketSize = "1"
	cfg.Market.ImbalanceDepth = 5
	cfg.Market.DisplayDepth = 10
	return cfg
}

var _ = Describe("RegisterLifecycle", func() {
	It("builds the order gateway and wallet service as part of the daemon graph", func() {
		var gatewayBuilt, walletBuilt bool

		app := fx.New(
			fx.Supply(daemonConfig()),
			fx.Supply(&exchange.HyperliquidConfig{}),
			fx.Provide(
				func() *zap.Logger { return zap.NewNop() },
				func() feed.MessageSource { return &nullSource{frames: make(chan []byte)} },
				func() services.AccountSource { return nullAccounts{} },
				func() *database.Repository { return nil },
				services.NewEventBus,
				services.NewMarketFeed,
				services.NewRiskMonitor,
				services.NewAccountPoller,
				func(f *services.MarketFeed, b *services.EventBus, r *database.Repository, l *zap.Logger) *services.OrderGateway {
					gatewayBuilt = true
					return services.NewOrderGateway(f, b, r, l)
				},
				func(l *zap.Logger) *wallet.Service {
					walletBuilt = true
					return wallet.NewService(l)
				},
			),
			fx.Invoke(infrastructure.RegisterLifecycle),
			fx.NopLogger,
		)

		Expect(app.Err()).NotTo(HaveOccurred())
		Expect(gatewayBuilt).To(BeTrue())
		Expect(walletBuilt).To(BeTrue())
	})
})

var _ = Describe("NewFeedSource", func() {
	It("builds a client from the configured feed settings", func() {
		cfg := daemonConfig()
		cfg.Feed.URL = "wss://api.hyperliquid.xyz/ws"
		cfg.Feed.MaxReconnects = 3

		source, err := infrastructure.NewFeedSource(cfg, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		Expect(source.IsConnected()).To(BeFalse())
	})

	It("rejects a configuration without a feed URL", func() {
		_, err := infrastructure.NewFeedSource(daemonConfig(), zap.NewNop())
		Expect(err).To(HaveOccurred())
	})
})

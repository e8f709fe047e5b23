package services_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/liquidvex/market-core/internal/order"
	"github.com/liquidvex/market-core/internal/risk"
	"github.com/liquidvex/market-core/internal/services"
)

var _ = Describe("OrderGateway", func() {
	var (
		source  *stubSource
		bus     *services.EventBus
		feed    *services.MarketFeed
		gateway *services.OrderGateway
		ctx     context.Context
		cancel  context.CancelFunc
	)

	richAccount := risk.AccountState{
		Equity:           decimal.NewFromInt(100000),
		AvailableBalance: decimal.NewFromInt(100000),
	}

	limitDraft := func(price string) order.Draft {
		return order.Draft{
			Coin:     "BTC",
			Side:     order.SideBuy,
			Size:     decimal.NewFromInt(1),
			Leverage: 10,
			Kind:     order.Limit{Price: decimal.RequireFromString(price), TIF: order.TIFGoodTilCancel},
		}
	}

	BeforeEach(func() {
		source = newStubSource()
		bus = services.NewEventBus()

		var err error
		feed, err = services.NewMarketFeed(feedConfig("BTC"), source, bus, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel = context.WithCancel(context.Background())
		Expect(feed.Start(ctx)).To(Succeed())

		source.push(`{"channel":"allMids","data":{"mids":{"BTC":"50000"}}}`)
		Eventually(func() bool {
			_, ok := feed.MarkPrice("BTC")
			return ok
		}).Should(BeTrue())

		gateway = services.NewOrderGateway(feed, bus, nil, zap.NewNop())
		gateway.SetAccount(richAccount)
	})

	AfterEach(func() {
		cancel()
		feed.Stop()
	})

	It("accepts a well-formed draft and publishes an accepted event", func() {
		accepted := bus.Subscribe(services.EventOrderAccepted, 4)

		decision, err := gateway.CheckDraft(ctx, limitDraft("49000"), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(decision.Check.IsValid).To(BeTrue())
		Expect(decision.MarkPrice.Equal(decimal.NewFromInt(50000))).To(BeTrue())

		Eventually(accepted).Should(Receive())
	})

	It("rejects an invalid draft and publishes a rejected event", func() {
		rejected := bus.Subscribe(services.EventOrderRejected, 4)

		poor := risk.AccountState{AvailableBalance: decimal.NewFromInt(10)}
		gateway.SetAccount(poor)

		decision, err := gateway.CheckDraft(ctx, limitDraft("49000"), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(decision.Check.IsValid).To(BeFalse())
		Expect(decision.Check.Error).To(Equal("Insufficient margin for this order"))

		Eventually(rejected).Should(Receive())
	})

	It("judges the draft against the latest mark price", func() {
		postOnly := order.Draft{
			Coin:     "BTC",
			Side:     order.SideBuy,
			Size:     decimal.NewFromInt(1),
			Leverage: 10,
			Kind:     order.Limit{Price: decimal.NewFromInt(51000), PostOnly: true, TIF: order.TIFGoodTilCancel},
		}

		decision, err := gateway.CheckDraft(ctx, postOnly, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(decision.Check.IsValid).To(BeFalse())
		Expect(decision.Check.Error).To(Equal("Post-only order would cross the spread"))
	})

	It("errors when no mark price exists for the coin", func() {
		draft := limitDraft("49000")
		draft.Coin = "SOL"

		_, err := gateway.CheckDraft(ctx, draft, nil)
		Expect(err).To(HaveOccurred())
	})
})

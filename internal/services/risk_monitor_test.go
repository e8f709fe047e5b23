package services_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/liquidvex/market-core/internal/risk"
	"github.com/liquidvex/market-core/internal/services"
)

var _ = Describe("RiskMonitor", func() {
	var (
		bus     *services.EventBus
		monitor *services.RiskMonitor
		alerts  <-chan services.Event
		cancel  context.CancelFunc
	)

	longPosition := func(coin string, entry, liquidation int64) risk.Position {
		return risk.Position{
			Coin:             coin,
			Side:             risk.SideLong,
			EntryPrice:       decimal.NewFromInt(entry),
			Size:             decimal.NewFromInt(1),
			Leverage:         10,
			LiquidationPrice: decimal.NewFromInt(liquidation),
			MarginType:       risk.MarginCross,
		}
	}

	publishMark := func(coin string, price int64) {
		bus.Publish(services.Event{
			Type: services.EventMarkPrice,
			Coin: coin,
			Data: decimal.NewFromInt(price),
		})
	}

	BeforeEach(func() {
		bus = services.NewEventBus()
		monitor = services.NewRiskMonitor(bus, nil, zap.NewNop())
		alerts = bus.Subscribe(services.EventRiskAlert, 16)

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		Expect(monitor.Start(ctx)).To(Succeed())
	})

	AfterEach(func() {
		cancel()
		monitor.Stop()
	})

	It("alerts on the first assessment of a tracked position", func() {
		monitor.SetPositions([]risk.Position{longPosition("BTC", 50000, 45000)})

		publishMark("BTC", 50000)

		var event services.Event
		Eventually(alerts).Should(Receive(&event))
		alert := event.Data.(services.RiskAlert)
		Expect(alert.Coin).To(Equal("BTC"))
		// liquidation is 10 percent below the mark
		Expect(alert.Assessment.Tier).To(Equal(risk.TierLow))
	})

	It("stays silent while the tier is unchanged", func() {
		monitor.SetPositions([]risk.Position{longPosition("BTC", 50000, 45000)})

		publishMark("BTC", 50000)
		Eventually(alerts).Should(Receive())

		publishMark("BTC", 50100)
		Consistently(alerts).ShouldNot(Receive())
	})

	It("alerts again when the mark drifts into a worse tier", func() {
		monitor.SetPositions([]risk.Position{longPosition("BTC", 50000, 45000)})

		publishMark("BTC", 50000)
		Eventually(alerts).Should(Receive())

		// 45900 is 1.96 percent above liquidation
		publishMark("BTC", 45900)

		var event services.Event
		Eventually(alerts).Should(Receive(&event))
		alert := event.Data.(services.RiskAlert)
		Expect(alert.Assessment.Tier).To(Equal(risk.TierCritical))
		Expect(alert.Previous).To(Equal(risk.TierLow))
	})

	It("ignores marks for coins with no tracked position", func() {
		monitor.SetPositions([]risk.Position{longPosition("BTC", 50000, 45000)})

		publishMark("ETH", 3000)

		Consistently(alerts).ShouldNot(Receive())
	})

	It("forgets the tier when a position is closed so a reopen alerts fresh", func() {
		monitor.SetPositions([]risk.Position{longPosition("BTC", 50000, 45000)})
		publishMark("BTC", 50000)
		Eventually(alerts).Should(Receive())

		monitor.SetPositions(nil)
		monitor.SetPositions([]risk.Position{longPosition("BTC", 50000, 45000)})
		publishMark("BTC", 50000)

		Eventually(alerts).Should(Receive())
	})

	It("replaces positions from account update events", func() {
		bus.Publish(services.Event{
			Type: services.EventAccountUpdate,
			Data: []risk.Position{longPosition("ETH", 3000, 2700)},
		})

		Eventually(func() bool {
			_, ok := monitor.Position("ETH")
			return ok
		}).Should(BeTrue())
	})
})

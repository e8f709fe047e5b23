package risk_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/liquidvex/market-core/internal/risk"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var _ = Describe("ComputeRisk", func() {
	longPosition := risk.Position{
		Coin:             "BTC",
		Side:             risk.SideLong,
		EntryPrice:       dec("100"),
		Size:             dec("2"),
		Leverage:         10,
		LiquidationPrice: dec("90"),
		MarginType:       risk.MarginCross,
	}

	It("is critical when the mark sits on the liquidation price", func() {
		assessment := risk.ComputeRisk(longPosition, dec("90"))
		Expect(assessment.DistancePercent.IsZero()).To(BeTrue())
		Expect(assessment.Tier).To(Equal(risk.TierCritical))
	})

	It("maps exactly 10 percent distance to low because 10 is not below 10", func() {
		// mark == entry: distance 10 on entry 100
		assessment := risk.ComputeRisk(longPosition, dec("100"))
		Expect(assessment.DistancePercent.Equal(dec("10"))).To(BeTrue())
		Expect(assessment.Tier).To(Equal(risk.TierLow))
	})

	It("walks the tier ladder with the mark", func() {
		Expect(risk.ComputeRisk(longPosition, dec("91")).Tier).To(Equal(risk.TierCritical))
		Expect(risk.ComputeRisk(longPosition, dec("93")).Tier).To(Equal(risk.TierHigh))
		Expect(risk.ComputeRisk(longPosition, dec("97")).Tier).To(Equal(risk.TierMedium))
		Expect(risk.ComputeRisk(longPosition, dec("105")).Tier).To(Equal(risk.TierLow))
	})

	It("clamps a mark beyond liquidation to zero distance", func() {
		assessment := risk.ComputeRisk(longPosition, dec("85"))
		Expect(assessment.DistancePercent.IsZero()).To(BeTrue())
		Expect(assessment.Tier).To(Equal(risk.TierCritical))
	})

	It("mirrors the distance arithmetic for shorts", func() {
		short := longPosition
		short.Side = risk.SideShort
		short.LiquidationPrice = dec("110")

		assessment := risk.ComputeRisk(short, dec("105"))
		Expect(assessment.DistancePercent.Equal(dec("5"))).To(BeTrue())
		Expect(assessment.Tier).To(Equal(risk.TierMedium))
	})

	It("estimates loss from the adverse move times size", func() {
		assessment := risk.ComputeRisk(longPosition, dec("95"))
		Expect(assessment.EstimatedLoss.Equal(dec("10"))).To(BeTrue())

		short := longPosition
		short.Side = risk.SideShort
		short.LiquidationPrice = dec("110")
		assessment = risk.ComputeRisk(short, dec("104"))
		Expect(assessment.EstimatedLoss.Equal(dec("8"))).To(BeTrue())
	})

	It("treats a zero entry price as critical rather than dividing by zero", func() {
		degenerate := longPosition
		degenerate.EntryPrice = decimal.Zero
		assessment := risk.ComputeRisk(degenerate, dec("90"))
		Expect(assessment.Tier).To(Equal(risk.TierCritical))
	})
})

var _ = Describe("ValidateMargin", func() {
	account := risk.AccountState{
		Equity:           dec("10000"),
		MarginUsed:       dec("2500"),
		AvailableBalance: dec("1000"),
	}

	It("rejects an order whose required margin exceeds the available balance", func() {
		// 100 * 200 = 20000 notional at 10x needs 2000 against 1000 available
		check := risk.ValidateMargin(dec("20000"), 10, account)
		Expect(check.IsValid).To(BeFalse())
		Expect(check.RequiredMargin.Equal(dec("2000"))).To(BeTrue())
		Expect(check.AvailableMargin.Equal(dec("1000"))).To(BeTrue())
		Expect(check.Error).To(Equal(risk.ErrInsufficientMargin))
	})

	It("accepts an order that fits the available balance", func() {
		check := risk.ValidateMargin(dec("5000"), 10, account)
		Expect(check.IsValid).To(BeTrue())
		Expect(check.RequiredMargin.Equal(dec("500"))).To(BeTrue())
		Expect(check.Error).To(BeEmpty())
	})

	It("accepts required margin exactly equal to the balance", func() {
		check := risk.ValidateMargin(dec("10000"), 10, account)
		Expect(check.IsValid).To(BeTrue())
	})

	It("rejects leverage below 1", func() {
		check := risk.ValidateMargin(dec("100"), 0, account)
		Expect(check.IsValid).To(BeFalse())
		Expect(check.Error).To(Equal(risk.ErrInvalidLeverage))
	})
})

var _ = Describe("ValidateReduceOnly", func() {
	short := &risk.Position{Coin: "ETH", Side: risk.SideShort, Size: dec("1")}
	long := &risk.Position{Coin: "ETH", Side: risk.SideLong, Size: dec("1")}

	It("requires an open position", func() {
		check := risk.ValidateReduceOnly(true, nil)
		Expect(check.IsValid).To(BeFalse())
		Expect(check.Error).To(Equal(risk.ErrNoPositionToReduce))
	})

	It("allows a buy only against a short", func() {
		Expect(risk.ValidateReduceOnly(true, short).IsValid).To(BeTrue())
		Expect(risk.ValidateReduceOnly(true, long).Error).To(Equal(risk.ErrWrongSideToReduce))
	})

	It("allows a sell only against a long", func() {
		Expect(risk.ValidateReduceOnly(false, long).IsValid).To(BeTrue())
		Expect(risk.ValidateReduceOnly(false, short).Error).To(Equal(risk.ErrWrongSideToReduce))
	})
})

var _ = Describe("ValidatePostOnly", func() {
	It("rejects a buy limit at or above the current price", func() {
		Expect(risk.ValidatePostOnly(true, dec("101"), dec("100")).Error).To(Equal(risk.ErrPostOnlyWouldCross))
		Expect(risk.ValidatePostOnly(true, dec("100"), dec("100")).Error).To(Equal(risk.ErrPostOnlyWouldCross))
		Expect(risk.ValidatePostOnly(true, dec("99"), dec("100")).IsValid).To(BeTrue())
	})

	It("rejects a sell limit at or below the current price", func() {
		Expect(risk.ValidatePostOnly(false, dec("99"), dec("100")).Error).To(Equal(risk.ErrPostOnlyWouldCross))
		Expect(risk.ValidatePostOnly(false, dec("100"), dec("100")).Error).To(Equal(risk.ErrPostOnlyWouldCross))
		Expect(risk.ValidatePostOnly(false, dec("101"), dec("100")).IsValid).To(BeTrue())
	})
})

var _ = Describe("MarginUtilization", func() {
	It("computes the margin-used-over-equity ratio", func() {
		u := risk.MarginUtilization(risk.AccountState{Equity: dec("10000"), MarginUsed: dec("2500")})
		Expect(u.Ratio.Equal(dec("0.25"))).To(BeTrue())
		Expect(u.Level).To(Equal(risk.UtilizationLow))
	})

	It("escalates at the 0.7 and 0.9 boundaries", func() {
		medium := risk.MarginUtilization(risk.AccountState{Equity: dec("100"), MarginUsed: dec("70")})
		Expect(medium.Level).To(Equal(risk.UtilizationMedium))

		high := risk.MarginUtilization(risk.AccountState{Equity: dec("100"), MarginUsed: dec("90")})
		Expect(high.Level).To(Equal(risk.UtilizationHigh))
	})

	It("reads zero equity as zero utilization", func() {
		u := risk.MarginUtilization(risk.AccountState{MarginUsed: dec("100")})
		Expect(u.Ratio.IsZero()).To(BeTrue())
		Expect(u.Level).To(Equal(risk.UtilizationLow))
	})
})

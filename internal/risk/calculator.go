package risk

import "github.com/shopspring/decimal"

// Rejection messages surfaced inline by the order form.
const (
	ErrInsufficientMargin = "Insufficient margin for this order"
	ErrNoPositionToReduce = "Reduce-only order requires an open position"
	ErrWrongSideToReduce  = "Reduce-only order must offset the existing position"
	ErrPostOnlyWouldCross = "Post-only order would cross the spread"
	ErrInvalidLeverage    = "Leverage must be at least 1"
)

// Tier boundaries as distance-to-liquidation percentages.
var (
	tierCriticalBelow = decimal.NewFromInt(2)
	tierHighBelow     = decimal.NewFromInt(5)
	tierMediumBelow   = decimal.NewFromInt(10)

	hundred = decimal.NewFromInt(100)

	utilizationMediumAt = decimal.NewFromFloat(0.7)
	utilizationHighAt   = decimal.NewFromFloat(0.9)
)

// ComputeRisk classifies a position's proximity to forced liquidation at the
// given mark price. Pure; callers re-run it on every mark-price tick.
func ComputeRisk(position Position, markPrice decimal.Decimal) Assessment {
	var distance, adverseMove decimal.Decimal
	if position.Side == SideLong {
		distance = markPrice.Sub(position.LiquidationPrice)
		adverseMove = position.EntryPrice.Sub(markPrice)
	} else {
		distance = position.LiquidationPrice.Sub(markPrice)
		adverseMove = markPrice.Sub(position.EntryPrice)
	}

	distancePercent := decimal.Zero
	if position.EntryPrice.Sign() != 0 {
		distancePercent = distance.Div(position.EntryPrice).Mul(hundred)
	}
	if distancePercent.Sign() < 0 {
		distancePercent = decimal.Zero
	}

	return Assessment{
		Tier:            classifyTier(distancePercent),
		DistancePercent: distancePercent,
		EstimatedLoss:   adverseMove.Mul(position.Size).Abs(),
	}
}

// classifyTier evaluates the threshold ladder in order. The <= 0 and < 2
// branches both map to critical; the duplication mirrors the platform's
// reference behaviour and must not be collapsed.
func classifyTier(distancePercent decimal.Decimal) Tier {
	switch {
	case distancePercent.Sign() <= 0:
		return TierCritical
	case distancePercent.LessThan(tierCriticalBelow):
		return TierCritical
	case distancePercent.LessThan(tierHighBelow):
		return TierHigh
	case distancePercent.LessThan(tierMediumBelow):
		return TierMedium
	default:
		return TierLow
	}
}

// ValidateMargin checks whether an order of the given notional value fits
// the account's available balance at the requested leverage. For market
// orders the caller computes the notional from the current mark price.
func ValidateMargin(orderValue decimal.Decimal, leverage int, account AccountState) MarginCheck {
	available := account.AvailableBalance
	if leverage < 1 {
		return MarginCheck{AvailableMargin: available, Error: ErrInvalidLeverage}
	}

	required := orderValue.Div(decimal.NewFromInt(int64(leverage)))
	if required.GreaterThan(available) {
		return MarginCheck{
			RequiredMargin:  required,
			AvailableMargin: available,
			Error:           ErrInsufficientMargin,
		}
	}
	return MarginCheck{IsValid: true, RequiredMargin: required, AvailableMargin: available}
}

// ValidateReduceOnly verifies a reduce-only order shrinks an existing
// position: a buy only offsets a short, a sell only offsets a long.
func ValidateReduceOnly(isBuy bool, existing *Position) Check {
	if existing == nil {
		return Check{Error: ErrNoPositionToReduce}
	}
	if (isBuy && existing.Side != SideShort) || (!isBuy && existing.Side != SideLong) {
		return Check{Error: ErrWrongSideToReduce}
	}
	return Check{IsValid: true}
}

// ValidatePostOnly rejects a limit price that would execute immediately as
// taker: a buy at or above the current price, or a sell at or below it.
func ValidatePostOnly(isBuy bool, limitPrice, currentPrice decimal.Decimal) Check {
	if isBuy && limitPrice.GreaterThanOrEqual(currentPrice) {
		return Check{Error: ErrPostOnlyWouldCross}
	}
	if !isBuy && limitPrice.LessThanOrEqual(currentPrice) {
		return Check{Error: ErrPostOnlyWouldCross}
	}
	return Check{IsValid: true}
}

// MarginUtilization derives the margin-used-over-equity ratio shown on the
// account balance panel. Zero equity reads as zero utilization.
func MarginUtilization(account AccountState) Utilization {
	ratio := decimal.Zero
	if account.Equity.Sign() != 0 {
		ratio = account.MarginUsed.Div(account.Equity)
	}

	level := UtilizationLow
	switch {
	case ratio.GreaterThanOrEqual(utilizationHighAt):
		level = UtilizationHigh
	case ratio.GreaterThanOrEqual(utilizationMediumAt):
		level = UtilizationMedium
	}
	return Utilization{Ratio: ratio, Level: level}
}

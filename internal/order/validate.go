package order

import (
	"github.com/shopspring/decimal"

	"github.com/liquidvex/market-core/internal/risk"
)

// Rejection messages for the field-level checks.
const (
	ErrInvalidCoin      = "Invalid coin symbol"
	ErrInvalidSize      = "Order size must be positive"
	ErrSizeTooLarge     = "Order size exceeds the maximum allowed"
	ErrInvalidPrice     = "Limit price must be positive"
	ErrInvalidStopPrice = "Stop price must be positive"
	ErrPostOnlyTIF      = "Post-only cannot be combined with IOC or FOK"
	ErrMissingOrderType = "Order type is required"
	ErrInvalidOrderSide = "Order side must be buy or sell"
)

// ValidateOrder is the single gate the order form calls before submission.
// Checks run in sequence and short-circuit on the first failure: field
// presence and ranges, post-only crossing, reduce-only legality, then margin
// sufficiency. It never panics; every failure comes back as a structured
// result the form renders inline.
func ValidateOrder(draft Draft, currentPrice decimal.Decimal, account risk.AccountState, position *risk.Position) risk.Check {
	if check := validateFields(draft); !check.IsValid {
		return check
	}

	if limitPrice, postOnly := postOnlyPrice(draft.Kind); postOnly {
		if check := risk.ValidatePostOnly(draft.IsBuy(), limitPrice, currentPrice); !check.IsValid {
			return check
		}
	}

	if draft.ReduceOnly {
		if check := risk.ValidateReduceOnly(draft.IsBuy(), position); !check.IsValid {
			return check
		}
	}

	margin := risk.ValidateMargin(notionalValue(draft, currentPrice), draft.Leverage, account)
	if !margin.IsValid {
		return risk.Check{Error: margin.Error}
	}

	return risk.Check{IsValid: true}
}

// validateFields covers presence and range rules that need no market or
// account context.
func validateFields(draft Draft) risk.Check {
	if draft.Side != SideBuy && draft.Side != SideSell {
		return risk.Check{Error: ErrInvalidOrderSide}
	}
	if !coinSymbolPattern.MatchString(draft.Coin) {
		return risk.Check{Error: ErrInvalidCoin}
	}
	if draft.Size.Sign() <= 0 {
		return risk.Check{Error: ErrInvalidSize}
	}
	if draft.Size.GreaterThan(maxOrderSize) {
		return risk.Check{Error: ErrSizeTooLarge}
	}

	switch kind := draft.Kind.(type) {
	case Limit:
		if kind.Price.Sign() <= 0 {
			return risk.Check{Error: ErrInvalidPrice}
		}
		if kind.PostOnly && kind.TIF != TIFGoodTilCancel {
			return risk.Check{Error: ErrPostOnlyTIF}
		}
	case Market:
	case StopLimit:
		if kind.StopPrice.Sign() <= 0 {
			return risk.Check{Error: ErrInvalidStopPrice}
		}
		if kind.Price.Sign() <= 0 {
			return risk.Check{Error: ErrInvalidPrice}
		}
		if kind.PostOnly && kind.TIF != TIFGoodTilCancel {
			return risk.Check{Error: ErrPostOnlyTIF}
		}
	case StopMarket:
		if kind.StopPrice.Sign() <= 0 {
			return risk.Check{Error: ErrInvalidStopPrice}
		}
	default:
		return risk.Check{Error: ErrMissingOrderType}
	}

	return risk.Check{IsValid: true}
}

// postOnlyPrice extracts the resting limit price when the kind carries a
// post-only flag that is set.
func postOnlyPrice(kind Kind) (decimal.Decimal, bool) {
	switch k := kind.(type) {
	case Limit:
		return k.Price, k.PostOnly
	case StopLimit:
		return k.Price, k.PostOnly
	default:
		return decimal.Zero, false
	}
}

// notionalValue prices the draft for the margin check: limit-family orders
// use their limit price, market-family orders stand in the current mark.
func notionalValue(draft Draft, currentPrice decimal.Decimal) decimal.Decimal {
	switch kind := draft.Kind.(type) {
	case Limit:
		return kind.Price.Mul(draft.Size)
	case StopLimit:
		return kind.Price.Mul(draft.Size)
	default:
		return currentPrice.Mul(draft.Size)
	}
}

package risk

import "github.com/shopspring/decimal"

// PositionSide is the direction of an open position.
type PositionSide string

const (
	SideLong  PositionSide = "long"
	SideShort PositionSide = "short"
)

// MarginType selects cross or isolated collateral for a position.
type MarginType string

const (
	MarginCross    MarginType = "cross"
	MarginIsolated MarginType = "isolated"
)

// Position is an open perpetual position as supplied by the account store.
type Position struct {
	Coin             string          `json:"coin"`
	Side             PositionSide    `json:"side"`
	EntryPrice       decimal.Decimal `json:"entry_px"`
	Size             decimal.Decimal `json:"sz"`
	Leverage         int             `json:"leverage"`
	MarginUsed       decimal.Decimal `json:"margin_used"`
	LiquidationPrice decimal.Decimal `json:"liquidation_px"`
	MarginType       MarginType      `json:"margin_type"`
}

// AccountState carries the balances the margin checks read.
type AccountState struct {
	Equity           decimal.Decimal `json:"equity"`
	MarginUsed       decimal.Decimal `json:"margin_used"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	Withdrawable     decimal.Decimal `json:"withdrawable"`
}

// Tier is the discrete liquidation-risk classification for a position.
type Tier string

const (
	TierLow      Tier = "low"
	TierMedium   Tier = "medium"
	TierHigh     Tier = "high"
	TierCritical Tier = "critical"
)

// Assessment is the derived liquidation-risk view of a position at a given
// mark price. Recomputed from scratch on every tick; it carries no state.
type Assessment struct {
	Tier            Tier            `json:"tier"`
	DistancePercent decimal.Decimal `json:"distance_percent"`
	EstimatedLoss   decimal.Decimal `json:"estimated_loss"`
}

// Check is the structured outcome of a single order-legality rule.
type Check struct {
	IsValid bool   `json:"is_valid"`
	Error   string `json:"error,omitempty"`
}

// MarginCheck extends Check with the margin figures the UI displays
// alongside a rejection.
type MarginCheck struct {
	IsValid         bool            `json:"is_valid"`
	RequiredMargin  decimal.Decimal `json:"required_margin"`
	AvailableMargin decimal.Decimal `json:"available_margin"`
	Error           string          `json:"error,omitempty"`
}

// UtilizationLevel buckets margin usage for the account balance display.
type UtilizationLevel string

const (
	UtilizationLow    UtilizationLevel = "low"
	UtilizationMedium UtilizationLevel = "medium"
	UtilizationHigh   UtilizationLevel = "high"
)

// Utilization is the margin-used-over-equity view of an account.
type Utilization struct {
	Ratio decimal.Decimal  `json:"ratio"`
	Level UtilizationLevel `json:"level"`
}

package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderAudit records the outcome of one pre-submission validation pass.
type OrderAudit struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	Coin       string          `db:"coin" json:"coin"`
	Side       string          `db:"side" json:"side"`
	OrderType  string          `db:"order_type" json:"order_type"`
	Size       decimal.Decimal `db:"size" json:"size"`
	Price      decimal.Decimal `db:"price" json:"price"` // zero for market-family orders
	ReduceOnly bool            `db:"reduce_only" json:"reduce_only"`
	IsValid    bool            `db:"is_valid" json:"is_valid"`
	Reason     *string         `db:"reason" json:"reason,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// RiskSnapshot records one liquidation-risk assessment of an open position.
type RiskSnapshot struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	Coin            string          `db:"coin" json:"coin"`
	Side            string          `db:"side" json:"side"`
	Tier            string          `db:"tier" json:"tier"`
	DistancePercent decimal.Decimal `db:"distance_percent" json:"distance_percent"`
	EstimatedLoss   decimal.Decimal `db:"estimated_loss" json:"estimated_loss"`
	MarkPrice       decimal.Decimal `db:"mark_price" json:"mark_price"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// Tier constants mirrored for query filters
const (
	TierLow      = "low"
	TierMedium   = "medium"
	TierHigh     = "high"
	TierCritical = "critical"
)

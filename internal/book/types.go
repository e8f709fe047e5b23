package book

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceLevel is a single resting price point on one side of the book.
type PriceLevel struct {
	Price      decimal.Decimal `json:"price"`
	Size       decimal.Decimal `json:"size"`
	OrderCount int             `json:"order_count"`
}

// AggregatedLevel is a display-ready bucket of one or more raw levels.
// CumulativeSize is populated by CumulativeDepth, not by GroupLevels.
type AggregatedLevel struct {
	Price          decimal.Decimal `json:"price"`
	Size           decimal.Decimal `json:"size"`
	OrderCount     int             `json:"order_count"`
	CumulativeSize decimal.Decimal `json:"cumulative_size"`
}

// Snapshot is one full replacement of both book sides for a coin.
// Bids are sorted best-first (descending), asks best-first (ascending).
type Snapshot struct {
	Coin      string       `json:"coin"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	Timestamp time.Time    `json:"timestamp"`
}

// Spread summarises the gap between best bid and best ask.
type Spread struct {
	Absolute decimal.Decimal `json:"absolute"`
	Percent  decimal.Decimal `json:"percent"`
}

// Direction classifies book imbalance.
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)

// Imbalance summarises bid/ask volume skew over the top of the book.
type Imbalance struct {
	Ratio     decimal.Decimal `json:"ratio"`
	Percent   decimal.Decimal `json:"percent"`
	Direction Direction       `json:"direction"`
}

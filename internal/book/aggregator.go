package book

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Imbalance direction thresholds are fixed platform constants.
var (
	bullishRatio = decimal.NewFromFloat(1.2)
	bearishRatio = decimal.NewFromFloat(0.8)

	hundred = decimal.NewFromInt(100)
	fifty   = decimal.NewFromInt(50)
	two     = decimal.NewFromInt(2)
)

// GroupLevels folds raw price levels into buckets of bucketSize and returns
// the bucketed ladder sorted ascending for asks, descending for bids.
// Bucket boundary is round-half-up(price / bucketSize) * bucketSize, matching
// the platform's display rounding. Levels landing in the same bucket are
// summed, never dropped. An empty input returns an empty ladder.
//
// bucketSize must be positive and every level must carry a non-negative
// price and size; violations are rejected rather than propagated through
// the arithmetic.
func GroupLevels(levels []PriceLevel, bucketSize decimal.Decimal, isAsk bool) ([]AggregatedLevel, error) {
	if bucketSize.Sign() <= 0 {
		return nil, fmt.Errorf("%w: bucket size %s must be positive", ErrInvalidInput, bucketSize)
	}

	buckets := make(map[string]*AggregatedLevel, len(levels))
	for _, level := range levels {
		if level.Price.Sign() < 0 || level.Size.Sign() < 0 || level.OrderCount < 0 {
			return nil, fmt.Errorf("%w: negative price, size or order count at level %s", ErrInvalidInput, level.Price)
		}

		bucketPrice := level.Price.Div(bucketSize).Round(0).Mul(bucketSize)
		key := bucketPrice.String()
		if existing, ok := buckets[key]; ok {
			existing.Size = existing.Size.Add(level.Size)
			existing.OrderCount += level.OrderCount
			continue
		}
		buckets[key] = &AggregatedLevel{
			Price:      bucketPrice,
			Size:       level.Size,
			OrderCount: level.OrderCount,
		}
	}

	out := make([]AggregatedLevel, 0, len(buckets))
	for _, bucket := range buckets {
		out = append(out, *bucket)
	}
	sort.Slice(out, func(i, j int) bool {
		if isAsk {
			return out[i].Price.LessThan(out[j].Price)
		}
		return out[i].Price.GreaterThan(out[j].Price)
	})
	return out, nil
}

// CumulativeDepth returns the ladder with CumulativeSize set to the running
// sum of Size from the best price outward.
func CumulativeDepth(levels []AggregatedLevel) []AggregatedLevel {
	out := make([]AggregatedLevel, len(levels))
	running := decimal.Zero
	for i, level := range levels {
		running = running.Add(level.Size)
		level.CumulativeSize = running
		out[i] = level
	}
	return out
}

// DepthBarWidth converts a cumulative size into a bar width percentage,
// normalised against the maximum cumulative size across both sides and
// capped at 100. A zero denominator yields a zero-width bar.
func DepthBarWidth(cumulative, maxCumulative decimal.Decimal) decimal.Decimal {
	if maxCumulative.Sign() == 0 {
		return decimal.Zero
	}
	width := cumulative.Div(maxCumulative).Mul(hundred)
	if width.GreaterThan(hundred) {
		return hundred
	}
	return width
}

// ComputeSpread returns the absolute and percentage spread between the best
// bid and best ask, or nil when either side is empty. Percent is relative to
// the midpoint and defined as zero when the midpoint is zero.
func ComputeSpread(bestBid, bestAsk *PriceLevel) *Spread {
	if bestBid == nil || bestAsk == nil {
		return nil
	}
	absolute := bestAsk.Price.Sub(bestBid.Price)
	midpoint := bestAsk.Price.Add(bestBid.Price).Div(two)
	percent := decimal.Zero
	if midpoint.Sign() != 0 {
		percent = absolute.Div(midpoint).Mul(hundred)
	}
	return &Spread{Absolute: absolute, Percent: percent}
}

// ComputeImbalance sums size over the topN levels closest to the spread on
// each side and classifies the skew. Degenerate volumes never error: a zero
// ask volume pins the ratio to zero and a zero total volume reads as a
// 50/50 book.
func ComputeImbalance(bids, asks []AggregatedLevel, topN int) Imbalance {
	bidVolume := sumTop(bids, topN)
	askVolume := sumTop(asks, topN)
	total := bidVolume.Add(askVolume)

	ratio := decimal.Zero
	if askVolume.Sign() != 0 {
		ratio = bidVolume.Div(askVolume)
	}

	percent := fifty
	if total.Sign() != 0 {
		percent = bidVolume.Div(total).Mul(hundred)
	}

	direction := DirectionNeutral
	switch {
	case ratio.GreaterThan(bullishRatio):
		direction = DirectionBullish
	case ratio.LessThan(bearishRatio):
		direction = DirectionBearish
	}

	return Imbalance{Ratio: ratio, Percent: percent, Direction: direction}
}

func sumTop(levels []AggregatedLevel, topN int) decimal.Decimal {
	if topN < 0 {
		topN = 0
	}
	if topN > len(levels) {
		topN = len(levels)
	}
	total := decimal.Zero
	for _, level := range levels[:topN] {
		total = total.Add(level.Size)
	}
	return total
}

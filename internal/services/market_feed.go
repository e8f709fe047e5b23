package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/liquidvex/market-core/internal/book"
	"github.com/liquidvex/market-core/internal/config"
	"github.com/liquidvex/market-core/pkg/feed"
)

// DepthView is the display-ready derivation of one coin's book: the bucketed
// ladders with cumulative depth plus the spread and imbalance summaries.
type DepthView struct {
	Coin          string                 `json:"coin"`
	Bids          []book.AggregatedLevel `json:"bids"`
	Asks          []book.AggregatedLevel `json:"asks"`
	MaxCumulative decimal.Decimal        `json:"max_cumulative"`
	Spread        *book.Spread           `json:"spread,omitempty"`
	Imbalance     book.Imbalance         `json:"imbalance"`
	Timestamp     time.Time              `json:"timestamp"`
}

// wire shapes of the venue's l2Book and allMids channels
type wsEnvelope struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

type wsLevel struct {
	Px string `json:"px"`
	Sz string `json:"sz"`
	N  int    `json:"n"`
}

type wsBookData struct {
	Coin   string       `json:"coin"`
	Time   int64        `json:"time"`
	Levels [][]wsLevel  `json:"levels"` // [0] bids, [1] asks, best price first
}

type wsMidsData struct {
	Mids map[string]string `json:"mids"`
}

// MarketFeed consumes raw feed frames, keeps the latest book snapshot and
// mark price per coin, and publishes update events. Derivations (grouping,
// depth, spread, imbalance) are recomputed from the latest snapshot on each
// Ladder call; nothing incremental is maintained.
type MarketFeed struct {
	source     feed.MessageSource
	bus        *EventBus
	logger     *zap.Logger
	coins      []string
	bucketSize decimal.Decimal
	topN       int
	depth      int

	mu    sync.RWMutex
	books map[string]book.Snapshot
	marks map[string]decimal.Decimal

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMarketFeed creates the market feed service
func NewMarketFeed(cfg *config.Config, source feed.MessageSource, bus *EventBus, logger *zap.Logger) (*MarketFeed, error) {
	bucketSize, err := decimal.NewFromString(cfg.Market.BucketSize)
	if err != nil || bucketSize.Sign() <= 0 {
		return nil, fmt.Errorf("invalid bucket size %q", cfg.Market.BucketSize)
	}

	return &MarketFeed{
		source:     source,
		bus:        bus,
		logger:     logger,
		coins:      cfg.Market.Coins,
		bucketSize: bucketSize,
		topN:       cfg.Market.ImbalanceDepth,
		depth:      cfg.Market.DisplayDepth,
		books:      make(map[string]book.Snapshot),
		marks:      make(map[string]decimal.Decimal),
	}, nil
}

// Start subscribes to the configured coins and begins consuming frames.
func (mf *MarketFeed) Start(ctx context.Context) error {
	mf.logger.Info("Starting market feed", zap.Strings("coins", mf.coins))

	for _, coin := range mf.coins {
		mf.source.Subscribe(map[string]interface{}{
			"method":       "subscribe",
			"subscription": map[string]string{"type": "l2Book", "coin": coin},
		})
	}
	mf.source.Subscribe(map[string]interface{}{
		"method":       "subscribe",
		"subscription": map[string]string{"type": "allMids"},
	})

	runCtx, cancel := context.WithCancel(ctx)
	mf.cancel = cancel

	if err := mf.source.Start(runCtx); err != nil {
		cancel()
		return fmt.Errorf("failed to start feed source: %w", err)
	}

	mf.wg.Add(1)
	go mf.consume(runCtx)

	mf.logger.Info("Market feed started")
	return nil
}

// Stop shuts the feed down and waits for the consumer to drain.
func (mf *MarketFeed) Stop() {
	mf.logger.Info("Stopping market feed...")
	if mf.cancel != nil {
		mf.cancel()
	}
	if err := mf.source.Stop(); err != nil {
		mf.logger.Error("Error stopping feed source", zap.Error(err))
	}
	mf.wg.Wait()
	mf.logger.Info("Market feed stopped")
}

func (mf *MarketFeed) consume(ctx context.Context) {
	defer mf.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-mf.source.Messages():
			if !ok {
				return
			}
			if err := mf.handleFrame(frame); err != nil {
				mf.logger.Warn("Dropping malformed frame", zap.Error(err))
			}
		}
	}
}

func (mf *MarketFeed) handleFrame(frame []byte) error {
	var envelope wsEnvelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		return fmt.Errorf("failed to decode envelope: %w", err)
	}

	switch envelope.Channel {
	case "l2Book":
		return mf.handleBook(envelope.Data)
	case "allMids":
		return mf.handleMids(envelope.Data)
	default:
		// pong, subscription acks and other channels are ignored
		return nil
	}
}

// handleBook replaces the whole snapshot for the coin. Updates are atomic
// per frame; there is no per-level lifecycle.
func (mf *MarketFeed) handleBook(data json.RawMessage) error {
	var payload wsBookData
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to decode l2Book: %w", err)
	}
	if len(payload.Levels) < 2 {
		return fmt.Errorf("l2Book for %s has %d sides", payload.Coin, len(payload.Levels))
	}

	bids, err := parseLevels(payload.Levels[0])
	if err != nil {
		return fmt.Errorf("bad bid levels for %s: %w", payload.Coin, err)
	}
	asks, err := parseLevels(payload.Levels[1])
	if err != nil {
		return fmt.Errorf("bad ask levels for %s: %w", payload.Coin, err)
	}

	snapshot := book.Snapshot{
		Coin:      payload.Coin,
		Bids:      bids,
		Asks:      asks,
		Timestamp: time.UnixMilli(payload.Time),
	}

	mf.mu.Lock()
	mf.books[payload.Coin] = snapshot
	mf.mu.Unlock()

	mf.bus.Publish(Event{Type: EventBookUpdate, Coin: payload.Coin, Data: snapshot})
	return nil
}

func (mf *MarketFeed) handleMids(data json.RawMessage) error {
	var payload wsMidsData
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to decode allMids: %w", err)
	}

	for coin, raw := range payload.Mids {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			mf.logger.Warn("Skipping unparseable mid",
				zap.String("coin", coin),
				zap.String("raw", raw))
			continue
		}

		mf.mu.Lock()
		mf.marks[coin] = price
		mf.mu.Unlock()

		mf.bus.Publish(Event{Type: EventMarkPrice, Coin: coin, Data: price})
	}
	return nil
}

func parseLevels(raw []wsLevel) ([]book.PriceLevel, error) {
	out := make([]book.PriceLevel, 0, len(raw))
	for _, l := range raw {
		price, err := decimal.NewFromString(l.Px)
		if err != nil {
			return nil, fmt.Errorf("invalid price %q: %w", l.Px, err)
		}
		size, err := decimal.NewFromString(l.Sz)
		if err != nil {
			return nil, fmt.Errorf("invalid size %q: %w", l.Sz, err)
		}
		out = append(out, book.PriceLevel{Price: price, Size: size, OrderCount: l.N})
	}
	return out, nil
}

// Snapshot returns the latest raw book for a coin.
func (mf *MarketFeed) Snapshot(coin string) (book.Snapshot, bool) {
	mf.mu.RLock()
	defer mf.mu.RUnlock()
	snapshot, ok := mf.books[coin]
	return snapshot, ok
}

// MarkPrice returns the latest mark price for a coin.
func (mf *MarketFeed) MarkPrice(coin string) (decimal.Decimal, bool) {
	mf.mu.RLock()
	defer mf.mu.RUnlock()
	price, ok := mf.marks[coin]
	return price, ok
}

// Ladder derives the display view of a coin's book from the latest snapshot.
func (mf *MarketFeed) Ladder(coin string) (*DepthView, error) {
	snapshot, ok := mf.Snapshot(coin)
	if !ok {
		return nil, fmt.Errorf("no book snapshot for %s", coin)
	}
	return BuildDepthView(snapshot, mf.bucketSize, mf.topN, mf.depth)
}

// BuildDepthView aggregates one snapshot into a display-ready view. Pure;
// exported so callers with their own snapshots (REST polling, tests) reuse
// the same derivation the feed serves.
func BuildDepthView(snapshot book.Snapshot, bucketSize decimal.Decimal, topN, depth int) (*DepthView, error) {
	bids, err := book.GroupLevels(snapshot.Bids, bucketSize, false)
	if err != nil {
		return nil, fmt.Errorf("failed to group bids: %w", err)
	}
	asks, err := book.GroupLevels(snapshot.Asks, bucketSize, true)
	if err != nil {
		return nil, fmt.Errorf("failed to group asks: %w", err)
	}

	if len(bids) > depth {
		bids = bids[:depth]
	}
	if len(asks) > depth {
		asks = asks[:depth]
	}

	bids = book.CumulativeDepth(bids)
	asks = book.CumulativeDepth(asks)

	maxCumulative := decimal.Zero
	if n := len(bids); n > 0 {
		maxCumulative = bids[n-1].CumulativeSize
	}
	if n := len(asks); n > 0 && asks[n-1].CumulativeSize.GreaterThan(maxCumulative) {
		maxCumulative = asks[n-1].CumulativeSize
	}

	var bestBid, bestAsk *book.PriceLevel
	if len(snapshot.Bids) > 0 {
		bestBid = &snapshot.Bids[0]
	}
	if len(snapshot.Asks) > 0 {
		bestAsk = &snapshot.Asks[0]
	}

	return &DepthView{
		Coin:          snapshot.Coin,
		Bids:          bids,
		Asks:          asks,
		MaxCumulative: maxCumulative,
		Spread:        book.ComputeSpread(bestBid, bestAsk),
		Imbalance:     book.ComputeImbalance(bids, asks, topN),
		Timestamp:     snapshot.Timestamp,
	}, nil
}

package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/liquidvex/market-core/internal/database"
	"github.com/liquidvex/market-core/internal/risk"
)

// RiskAlert is published when a position's risk tier changes.
type RiskAlert struct {
	Coin       string            `json:"coin"`
	Side       risk.PositionSide `json:"side"`
	Assessment risk.Assessment   `json:"assessment"`
	MarkPrice  decimal.Decimal   `json:"mark_price"`
	Previous   risk.Tier         `json:"previous_tier,omitempty"`
}

// RiskMonitor recomputes the liquidation-risk assessment of every tracked
// position on each mark-price tick. The risk math itself is stateless; the
// monitor owns the tier memory so alerts only fire on transitions.
type RiskMonitor struct {
	bus    *EventBus
	repo   *database.Repository
	logger *zap.Logger

	mu        sync.RWMutex
	positions map[string]risk.Position
	lastTiers map[string]risk.Tier

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRiskMonitor creates the risk monitor service
func NewRiskMonitor(bus *EventBus, repo *database.Repository, logger *zap.Logger) *RiskMonitor {
	return &RiskMonitor{
		bus:       bus,
		repo:      repo,
		logger:    logger,
		positions: make(map[string]risk.Position),
		lastTiers: make(map[string]risk.Tier),
	}
}

// Start begins consuming mark-price events.
func (rm *RiskMonitor) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	rm.cancel = cancel

	marks := rm.bus.Subscribe(EventMarkPrice, 256)
	accounts := rm.bus.Subscribe(EventAccountUpdate, 16)

	rm.wg.Add(1)
	go rm.run(runCtx, marks, accounts)

	rm.logger.Info("Risk monitor started")
	return nil
}

// Stop shuts the monitor down.
func (rm *RiskMonitor) Stop() {
	if rm.cancel != nil {
		rm.cancel()
	}
	rm.wg.Wait()
	rm.logger.Info("Risk monitor stopped")
}

func (rm *RiskMonitor) run(ctx context.Context, marks, accounts <-chan Event) {
	defer rm.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-marks:
			if !ok {
				return
			}
			price, isPrice := event.Data.(decimal.Decimal)
			if !isPrice {
				continue
			}
			rm.assess(ctx, event.Coin, price)
		case event, ok := <-accounts:
			if !ok {
				return
			}
			if positions, isPositions := event.Data.([]risk.Position); isPositions {
				rm.SetPositions(positions)
			}
		}
	}
}

// SetPositions replaces the tracked position set. Tier memory for coins no
// longer held is dropped so a reopened position alerts fresh.
func (rm *RiskMonitor) SetPositions(positions []risk.Position) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	next := make(map[string]risk.Position, len(positions))
	for _, position := range positions {
		next[position.Coin] = position
	}

	for coin := range rm.lastTiers {
		if _, held := next[coin]; !held {
			delete(rm.lastTiers, coin)
		}
	}
	rm.positions = next
}

// Position returns the tracked position for a coin, if any.
func (rm *RiskMonitor) Position(coin string) (risk.Position, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	position, ok := rm.positions[coin]
	return position, ok
}

func (rm *RiskMonitor) assess(ctx context.Context, coin string, markPrice decimal.Decimal) {
	rm.mu.Lock()
	position, held := rm.positions[coin]
	if !held {
		rm.mu.Unlock()
		return
	}

	assessment := risk.ComputeRisk(position, markPrice)
	previous, seen := rm.lastTiers[coin]
	changed := !seen || previous != assessment.Tier
	if changed {
		rm.lastTiers[coin] = assessment.Tier
	}
	rm.mu.Unlock()

	if !changed {
		return
	}

	rm.logger.Info("Risk tier changed",
		zap.String("coin", coin),
		zap.String("tier", string(assessment.Tier)),
		zap.String("distance_percent", assessment.DistancePercent.StringFixed(4)))

	rm.bus.Publish(Event{
		Type: EventRiskAlert,
		Coin: coin,
		Data: RiskAlert{
			Coin:       coin,
			Side:       position.Side,
			Assessment: assessment,
			MarkPrice:  markPrice,
			Previous:   previous,
		},
	})

	rm.persist(ctx, coin, position, assessment, markPrice)
}

func (rm *RiskMonitor) persist(ctx context.Context, coin string, position risk.Position, assessment risk.Assessment, markPrice decimal.Decimal) {
	if rm.repo == nil {
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	snapshot := &database.RiskSnapshot{
		ID:              uuid.New(),
		Coin:            coin,
		Side:            string(position.Side),
		Tier:            string(assessment.Tier),
		DistancePercent: assessment.DistancePercent,
		EstimatedLoss:   assessment.EstimatedLoss,
		MarkPrice:       markPrice,
	}
	if err := rm.repo.InsertRiskSnapshot(writeCtx, snapshot); err != nil {
		rm.logger.Error("Failed to persist risk snapshot",
			zap.String("coin", coin),
			zap.Error(err))
	}
}

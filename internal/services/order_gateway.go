package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/liquidvex/market-core/internal/database"
	"github.com/liquidvex/market-core/internal/order"
	"github.com/liquidvex/market-core/internal/risk"
)

// OrderDecision is the gateway's answer to one draft: the validation outcome
// plus the mark price it was judged against.
type OrderDecision struct {
	ID        uuid.UUID       `json:"id"`
	Draft     order.Draft     `json:"draft"`
	Check     risk.Check      `json:"check"`
	MarkPrice decimal.Decimal `json:"mark_price"`
	CheckedAt time.Time       `json:"checked_at"`
}

// OrderGateway runs drafts through the pre-submission checks against the
// live mark price and account state. It never routes orders to the venue;
// the decision is the product.
type OrderGateway struct {
	feed   *MarketFeed
	bus    *EventBus
	repo   *database.Repository
	logger *zap.Logger

	mu      sync.RWMutex
	account risk.AccountState
}

// NewOrderGateway creates the order gateway service
func NewOrderGateway(feed *MarketFeed, bus *EventBus, repo *database.Repository, logger *zap.Logger) *OrderGateway {
	return &OrderGateway{
		feed:   feed,
		bus:    bus,
		repo:   repo,
		logger: logger,
	}
}

// SetAccount updates the balances the margin checks read.
func (og *OrderGateway) SetAccount(account risk.AccountState) {
	og.mu.Lock()
	og.account = account
	og.mu.Unlock()
}

// Account returns the current account state.
func (og *OrderGateway) Account() risk.AccountState {
	og.mu.RLock()
	defer og.mu.RUnlock()
	return og.account
}

// CheckDraft validates a draft against the latest mark price for its coin
// and the given open position, records the outcome, and publishes an
// accepted or rejected event.
func (og *OrderGateway) CheckDraft(ctx context.Context, draft order.Draft, position *risk.Position) (OrderDecision, error) {
	markPrice, ok := og.feed.MarkPrice(draft.Coin)
	if !ok {
		return OrderDecision{}, fmt.Errorf("no mark price for %s", draft.Coin)
	}

	check := order.ValidateOrder(draft, markPrice, og.Account(), position)
	decision := OrderDecision{
		ID:        uuid.New(),
		Draft:     draft,
		Check:     check,
		MarkPrice: markPrice,
		CheckedAt: time.Now().UTC(),
	}

	eventType := EventOrderAccepted
	if !check.IsValid {
		eventType = EventOrderRejected
		og.logger.Info("Order draft rejected",
			zap.String("coin", draft.Coin),
			zap.String("side", string(draft.Side)),
			zap.String("reason", check.Error))
	}
	og.bus.Publish(Event{Type: eventType, Coin: draft.Coin, Data: decision})

	og.persist(ctx, decision)
	return decision, nil
}

func (og *OrderGateway) persist(ctx context.Context, decision OrderDecision) {
	if og.repo == nil {
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	audit := &database.OrderAudit{
		ID:         decision.ID,
		Coin:       decision.Draft.Coin,
		Side:       string(decision.Draft.Side),
		Size:       decision.Draft.Size,
		ReduceOnly: decision.Draft.ReduceOnly,
		IsValid:    decision.Check.IsValid,
	}
	if decision.Draft.Kind != nil {
		audit.OrderType = string(decision.Draft.Kind.Type())
	}
	if limit, isLimit := decision.Draft.Kind.(order.Limit); isLimit {
		audit.Price = limit.Price
	}
	if stopLimit, isStopLimit := decision.Draft.Kind.(order.StopLimit); isStopLimit {
		audit.Price = stopLimit.Price
	}
	if !decision.Check.IsValid {
		reason := decision.Check.Error
		audit.Reason = &reason
	}

	if err := og.repo.InsertOrderAudit(writeCtx, audit); err != nil {
		og.logger.Error("Failed to persist order audit",
			zap.String("coin", decision.Draft.Coin),
			zap.Error(err))
	}
}

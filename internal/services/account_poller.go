package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	exchange "github.com/liquidvex/market-core/config/exchanges"
	"github.com/liquidvex/market-core/internal/risk"
)

// AccountSource fetches balances and open positions for an address.
type AccountSource interface {
	FetchAccount(address string) (risk.AccountState, []risk.Position, error)
}

const accountPollInterval = 5 * time.Second

// AccountPoller periodically fetches the account state, pushes the balances
// into the order gateway, and publishes the open positions so the risk
// monitor tracks them. Without a configured account address it stays idle.
type AccountPoller struct {
	source   AccountSource
	gateway  *OrderGateway
	bus      *EventBus
	logger   *zap.Logger
	address  string
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAccountPoller creates the account poller service
func NewAccountPoller(cfg *exchange.HyperliquidConfig, source AccountSource, gateway *OrderGateway, bus *EventBus, logger *zap.Logger) *AccountPoller {
	return &AccountPoller{
		source:   source,
		gateway:  gateway,
		bus:      bus,
		logger:   logger,
		address:  cfg.AccountAddress,
		interval: accountPollInterval,
	}
}

// Start begins polling. The first fetch happens immediately.
func (ap *AccountPoller) Start(ctx context.Context) error {
	if ap.address == "" {
		ap.logger.Warn("No account address configured, account polling disabled")
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	ap.cancel = cancel

	ap.wg.Add(1)
	go ap.run(runCtx)

	ap.logger.Info("Account poller started", zap.String("address", ap.address))
	return nil
}

// Stop shuts the poller down.
func (ap *AccountPoller) Stop() {
	if ap.cancel != nil {
		ap.cancel()
	}
	ap.wg.Wait()
}

func (ap *AccountPoller) run(ctx context.Context) {
	defer ap.wg.Done()

	ticker := time.NewTicker(ap.interval)
	defer ticker.Stop()

	ap.poll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ap.poll()
		}
	}
}

func (ap *AccountPoller) poll() {
	account, positions, err := ap.source.FetchAccount(ap.address)
	if err != nil {
		ap.logger.Warn("Failed to fetch account state", zap.Error(err))
		return
	}

	ap.gateway.SetAccount(account)
	ap.bus.Publish(Event{Type: EventAccountUpdate, Data: positions})
}

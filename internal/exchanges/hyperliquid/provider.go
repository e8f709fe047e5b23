package hyperliquid

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sonirico/go-hyperliquid"

	exchange "github.com/liquidvex/market-core/config/exchanges"
	"github.com/liquidvex/market-core/internal/book"
	"github.com/liquidvex/market-core/internal/risk"
)

// InfoClient is the slice of the venue's info API the provider reads.
// Narrowed to an interface so tests can script responses.
type InfoClient interface {
	AllMids() (map[string]string, error)
	L2Snapshot(coin string) (*hyperliquid.L2Book, error)
	SpotUserState(address string) (*hyperliquid.UserState, error)
}

// NewInfoClient builds the REST info client from configuration.
func NewInfoClient(cfg *exchange.HyperliquidConfig) *hyperliquid.Info {
	return hyperliquid.NewInfo(cfg.BaseURL, true, nil, nil)
}

// Provider fetches books and mark prices over REST. It backs the one-shot
// CLI path and seeds state before the websocket feed catches up.
type Provider struct {
	info InfoClient
}

// NewProvider creates the REST market data provider
func NewProvider(info *hyperliquid.Info) *Provider {
	return &Provider{info: info}
}

// NewProviderWithClient wires an explicit client, used by tests.
func NewProviderWithClient(info InfoClient) *Provider {
	return &Provider{info: info}
}

// FetchBook retrieves the current book for a coin with decimal precision
func (p *Provider) FetchBook(coin string) (book.Snapshot, error) {
	l2Book, err := p.info.L2Snapshot(coin)
	if err != nil {
		return book.Snapshot{}, fmt.Errorf("failed to get order book: %w", err)
	}

	snapshot := book.Snapshot{
		Coin:      coin,
		Timestamp: time.Now(),
	}

	if l2Book == nil || len(l2Book.Levels) < 2 {
		return snapshot, nil
	}

	for _, level := range l2Book.Levels[0] {
		snapshot.Bids = append(snapshot.Bids, book.PriceLevel{
			Price:      decimal.NewFromFloat(level.Px),
			Size:       decimal.NewFromFloat(level.Sz),
			OrderCount: level.N,
		})
	}
	for _, level := range l2Book.Levels[1] {
		snapshot.Asks = append(snapshot.Asks, book.PriceLevel{
			Price:      decimal.NewFromFloat(level.Px),
			Size:       decimal.NewFromFloat(level.Sz),
			OrderCount: level.N,
		})
	}
	return snapshot, nil
}

// FetchMarkPrices retrieves the current mid price of every listed coin
func (p *Provider) FetchMarkPrices() (map[string]decimal.Decimal, error) {
	mids, err := p.info.AllMids()
	if err != nil {
		return nil, fmt.Errorf("failed to get current prices: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(mids))
	for coin, raw := range mids {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid price format for %s: %w", coin, err)
		}
		prices[coin] = price
	}
	return prices, nil
}

// FetchMarkPrice retrieves the current mid price for one coin
func (p *Provider) FetchMarkPrice(coin string) (decimal.Decimal, error) {
	prices, err := p.FetchMarkPrices()
	if err != nil {
		return decimal.Zero, err
	}

	price, exists := prices[coin]
	if !exists {
		return decimal.Zero, fmt.Errorf("price not found for coin: %s", coin)
	}
	return price, nil
}

// FetchAccount retrieves the account balances and open positions for an
// address. Flat positions are dropped; position side comes from the sign of
// the signed size.
func (p *Provider) FetchAccount(address string) (risk.AccountState, []risk.Position, error) {
	state, err := p.info.SpotUserState(address)
	if err != nil {
		return risk.AccountState{}, nil, fmt.Errorf("failed to get user state: %w", err)
	}

	account := risk.AccountState{
		Equity:           parseDecimal(state.MarginSummary.AccountValue),
		MarginUsed:       parseDecimal(state.MarginSummary.TotalMarginUsed),
		AvailableBalance: parseDecimal(state.Withdrawable),
		Withdrawable:     parseDecimal(state.Withdrawable),
	}

	var positions []risk.Position
	for _, assetPosition := range state.AssetPositions {
		pos := assetPosition.Position

		size := parseDecimal(pos.Szi)
		if size.Sign() == 0 {
			continue
		}
		side := risk.SideLong
		if size.Sign() < 0 {
			side = risk.SideShort
		}

		position := risk.Position{
			Coin:       pos.Coin,
			Side:       side,
			Size:       size.Abs(),
			Leverage:   int(pos.Leverage.Value),
			MarginType: risk.MarginCross,
		}
		if pos.EntryPx != nil {
			position.EntryPrice = parseDecimal(*pos.EntryPx)
		}
		if pos.LiquidationPx != nil {
			position.LiquidationPrice = parseDecimal(*pos.LiquidationPx)
		}
		positions = append(positions, position)
	}

	return account, positions, nil
}

// parseDecimal converts venue strings, defaulting to zero on error.
func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

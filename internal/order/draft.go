package order

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// Side is the direction of a prospective order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// TimeInForce controls how long a resting order stays on the book.
type TimeInForce string

const (
	TIFGoodTilCancel     TimeInForce = "GTC"
	TIFImmediateOrCancel TimeInForce = "IOC"
	TIFFillOrKill        TimeInForce = "FOK"
)

// Type names the order kind on the wire.
type Type string

const (
	TypeLimit      Type = "limit"
	TypeMarket     Type = "market"
	TypeStopLimit  Type = "stop_limit"
	TypeStopMarket Type = "stop_market"
)

// Kind is the per-type payload of a draft. Modelling it as a sealed sum type
// keeps illegal states unrepresentable: a market order has no price field to
// mis-set and post-only only exists on the limit-family kinds.
type Kind interface {
	Type() Type
	sealedKind()
}

// Limit rests at Price until filled or cancelled per TIF.
type Limit struct {
	Price    decimal.Decimal
	PostOnly bool
	TIF      TimeInForce
}

// Market executes immediately at the prevailing price.
type Market struct{}

// StopLimit places a limit order at Price once StopPrice triggers.
type StopLimit struct {
	StopPrice decimal.Decimal
	Price     decimal.Decimal
	PostOnly  bool
	TIF       TimeInForce
}

// StopMarket executes at market once StopPrice triggers.
type StopMarket struct {
	StopPrice decimal.Decimal
}

func (Limit) Type() Type      { return TypeLimit }
func (Market) Type() Type     { return TypeMarket }
func (StopLimit) Type() Type  { return TypeStopLimit }
func (StopMarket) Type() Type { return TypeStopMarket }

func (Limit) sealedKind()      {}
func (Market) sealedKind()     {}
func (StopLimit) sealedKind()  {}
func (StopMarket) sealedKind() {}

// Draft is a transient, not-yet-submitted order as entered on the form.
type Draft struct {
	Coin       string
	Side       Side
	Size       decimal.Decimal
	Leverage   int
	ReduceOnly bool
	Kind       Kind
}

// IsBuy reports whether the draft increases long exposure.
func (d Draft) IsBuy() bool { return d.Side == SideBuy }

// coinSymbolPattern matches venue coin symbols: uppercase letters, 2-10 chars.
var coinSymbolPattern = regexp.MustCompile(`^[A-Z]{2,10}$`)

// maxOrderSize is the venue-wide per-order size cap.
var maxOrderSize = decimal.NewFromInt(1_000_000)

package feed

import (
	"context"
	"time"
)

// MessageSource is the transport collaborator injected into the market feed.
// The aggregation and risk core never sees the connection lifecycle; it only
// consumes the already-framed messages this interface emits.
type MessageSource interface {
	Start(ctx context.Context) error
	Stop() error
	Subscribe(payload interface{})
	Messages() <-chan []byte
	Send(v interface{}) error
	IsConnected() bool
}

// Backoff yields the delay before a reconnection attempt.
type Backoff interface {
	NextDelay(attempt int) time.Duration
	MaxAttempts() int
}

package feed

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

type exponentialBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	maxAttempts  int
	multiplier   float64
	jitter       bool
	randSource   *rand.Rand
	mutex        sync.Mutex
}

// NewExponentialBackoff returns a jittered exponential backoff strategy.
func NewExponentialBackoff(initialDelay, maxDelay time.Duration, maxAttempts int) Backoff {
	return &exponentialBackoff{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		maxAttempts:  maxAttempts,
		multiplier:   2.0,
		jitter:       true,
		randSource:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (eb *exponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return eb.initialDelay
	}

	delay := float64(eb.initialDelay) * math.Pow(eb.multiplier, float64(attempt-1))

	if delay > float64(eb.maxDelay) {
		delay = float64(eb.maxDelay)
	}

	if eb.jitter {
		eb.mutex.Lock()
		jitterFactor := 2*eb.randSource.Float64() - 1
		eb.mutex.Unlock()

		jitter := delay * 0.1 * jitterFactor
		delay += jitter

		if delay < 0 {
			delay = float64(eb.initialDelay)
		}
	}

	return time.Duration(delay)
}

func (eb *exponentialBackoff) MaxAttempts() int {
	return eb.maxAttempts
}

package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/happyculture/soco-concierge/pkg/types"
)

// BreakerClient decorates a Client with a circuit breaker so a flapping
// model endpoint fails fast instead of stacking up blocked requests. An
// open breaker surfaces as types.ErrModel, which the pipeline already
// recovers from on both call shapes.
type BreakerClient struct {
	inner Client
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerClient wraps inner with a circuit breaker. The breaker opens
// after consecutiveFailures back-to-back errors and half-opens after
// cooldown.
func NewBreakerClient(inner Client, consecutiveFailures uint32, cooldown time.Duration) *BreakerClient {
	if consecutiveFailures == 0 {
		consecutiveFailures = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "llm",
		Timeout: cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= consecutiveFailures
		},
	})

	return &BreakerClient{inner: inner, cb: cb}
}

// Chat forwards to the wrapped client through the breaker.
func (c *BreakerClient) Chat(ctx context.Context, messages []Message) (*Response, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.inner.Chat(ctx, messages)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("%w: circuit breaker: %v", types.ErrModel, err)
		}
		return nil, err
	}
	return result.(*Response), nil
}

// Close closes the wrapped client.
func (c *BreakerClient) Close() error {
	return c.inner.Close()
}

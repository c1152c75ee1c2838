package cost

import (
	"context"
	"log/slog"
	"sync"

	"github.com/happyculture/soco-concierge/pkg/llm"
)

// Totals is a snapshot of accumulated usage and spend.
type Totals struct {
	Calls            int
	PromptTokens     int
	CompletionTokens int
	CostUSD          float64
}

// Tracker accumulates token usage across model calls.
type Tracker struct {
	mu     sync.Mutex
	calc   *Calculator
	totals Totals
}

// NewTracker creates a tracker around a calculator.
func NewTracker(calc *Calculator) *Tracker {
	if calc == nil {
		calc = NewCalculator()
	}
	return &Tracker{calc: calc}
}

// Record adds one call's usage and returns its estimated cost.
func (t *Tracker) Record(model string, promptTokens, completionTokens int) float64 {
	callCost := t.calc.Cost(model, promptTokens, completionTokens)

	t.mu.Lock()
	t.totals.Calls++
	t.totals.PromptTokens += promptTokens
	t.totals.CompletionTokens += completionTokens
	t.totals.CostUSD += callCost
	t.mu.Unlock()

	return callCost
}

// Totals returns a snapshot of the accumulated usage.
func (t *Tracker) Totals() Totals {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totals
}

// TrackingClient decorates an llm.Client, recording the token usage of
// every completed call.
type TrackingClient struct {
	inner   llm.Client
	model   string
	tracker *Tracker
	logger  *slog.Logger
}

// NewTrackingClient wraps inner so every successful call is recorded
// against model.
func NewTrackingClient(inner llm.Client, model string, tracker *Tracker, logger *slog.Logger) *TrackingClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrackingClient{
		inner:   inner,
		model:   model,
		tracker: tracker,
		logger:  logger,
	}
}

// Chat implements llm.Client.
func (c *TrackingClient) Chat(ctx context.Context, messages []llm.Message) (*llm.Response, error) {
	resp, err := c.inner.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}
	if resp.TokensUsed != nil {
		callCost := c.tracker.Record(c.model, resp.TokensUsed.PromptTokens, resp.TokensUsed.CompletionTokens)
		totals := c.tracker.Totals()
		c.logger.Debug("model call recorded",
			"model", c.model,
			"prompt_tokens", resp.TokensUsed.PromptTokens,
			"completion_tokens", resp.TokensUsed.CompletionTokens,
			"cost_usd", callCost,
			"total_cost_usd", totals.CostUSD,
		)
	}
	return resp, nil
}

// Close implements llm.Client.
func (c *TrackingClient) Close() error {
	return c.inner.Close()
}

// Package intent maps free-text guest questions onto the closed intent
// set with a single constrained language-model completion. Anything the
// model returns outside the set collapses to the unknown intent: the
// classifier fails closed, never open.
package intent

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/happyculture/soco-concierge/pkg/llm"
	"github.com/happyculture/soco-concierge/pkg/prompts"
	"github.com/happyculture/soco-concierge/pkg/types"
)

// Classifier assigns exactly one intent per question. It is stateless
// and order-independent between queries.
type Classifier struct {
	llm     llm.Client
	library prompts.Library
	logger  *slog.Logger
}

// NewClassifier creates a classifier over the given model client.
func NewClassifier(llmClient llm.Client, library prompts.Library, logger *slog.Logger) *Classifier {
	if library == nil {
		library = prompts.DefaultLibrary
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		llm:     llmClient,
		library: library,
		logger:  logger,
	}
}

// Classify returns the intent for a question. Model failures and
// out-of-set output both yield IntentUnknown.
func (c *Classifier) Classify(ctx context.Context, question string) types.Intent {
	messages, err := c.library.Classify().Intent().Call(prompts.Context{"question": question})
	if err != nil {
		c.logger.Error("build classification prompt", "error", err)
		return types.IntentUnknown
	}

	resp, err := c.llm.Chat(ctx, messages)
	if err != nil {
		c.logger.Warn("intent classification degraded to unknown", "error", err)
		return types.IntentUnknown
	}

	return ParseLabel(resp.Content)
}

// ParseLabel extracts an intent from raw model output. Resolution order:
// the whole output as an exact label, then a label carried in a JSON
// object, then the earliest label occurring in the output (ambiguous
// generations). No match yields IntentUnknown.
func ParseLabel(raw string) types.Intent {
	if intent, ok := types.ParseIntent(raw); ok {
		return intent
	}

	if label, ok := labelFromJSON(raw); ok {
		if intent, ok := types.ParseIntent(label); ok {
			return intent
		}
	}

	normalized := strings.ReplaceAll(strings.ToLower(raw), " ", "_")
	best := types.IntentUnknown
	bestIdx := -1
	for _, candidate := range types.AllIntents() {
		idx := strings.Index(normalized, string(candidate))
		if idx < 0 {
			continue
		}
		if bestIdx < 0 || idx < bestIdx {
			best = candidate
			bestIdx = idx
		}
	}
	return best
}

// labelFromJSON handles models that wrap the label in a JSON object,
// repairing malformed output before decoding.
func labelFromJSON(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}

	repaired, err := jsonrepair.JSONRepair(raw[start:])
	if err != nil {
		return "", false
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(repaired), &payload); err != nil {
		return "", false
	}

	for _, key := range []string{"intent", "label", "intention"} {
		if value, ok := payload[key].(string); ok {
			return value, true
		}
	}
	return "", false
}

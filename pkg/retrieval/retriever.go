// Package retrieval embeds the guest question and pulls the nearest
// knowledge chunks from the store, optionally biased toward chunks
// tagged for the classified intent. Retrieval degradation is never
// fatal: provider and store failures collapse to an empty result.
package retrieval

import (
	"context"
	"log/slog"

	"github.com/happyculture/soco-concierge/pkg/embedder"
	"github.com/happyculture/soco-concierge/pkg/store"
	"github.com/happyculture/soco-concierge/pkg/types"
)

// DefaultTopK matches the production retriever depth.
const DefaultTopK = 4

// IntentTags maps an intent to the chunk metadata filter that biases
// retrieval toward it. Intents without an entry search unfiltered.
type IntentTags map[types.Intent]store.SearchFilter

// DefaultIntentTags biases retrieval by the chunk taxonomy the ingestion
// job writes ("type" metadata).
func DefaultIntentTags() IntentTags {
	return IntentTags{
		types.IntentCheckAvailability: {"type": "room"},
		types.IntentMakeReservation:   {"type": "room"},
		types.IntentCancelReservation: {"type": "policy"},
		types.IntentTalkToHuman:       {"type": "contact"},
	}
}

// Retriever queries the knowledge store for passages relevant to a
// question.
type Retriever struct {
	embedder embedder.Client
	index    store.Index
	tags     IntentTags
	minScore float32
	logger   *slog.Logger
}

// NewRetriever creates a retriever. minScore drops results below the
// similarity threshold; zero disables the cutoff.
func NewRetriever(embedderClient embedder.Client, index store.Index, tags IntentTags, minScore float32, logger *slog.Logger) *Retriever {
	if tags == nil {
		tags = DefaultIntentTags()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		embedder: embedderClient,
		index:    index,
		tags:     tags,
		minScore: minScore,
		logger:   logger,
	}
}

// Retrieve returns up to k chunks relevant to the question in descending
// similarity order. Embedding or store failures are recovered locally as
// an empty result. When the intent-biased search matches no tagged
// chunks, retrieval falls back to the unfiltered top-k.
func (r *Retriever) Retrieve(ctx context.Context, question string, intent types.Intent, k int) types.RetrievalResult {
	if k <= 0 {
		k = DefaultTopK
	}

	embedding, err := r.embedder.EmbedSingle(ctx, question)
	if err != nil {
		r.logger.Warn("retrieval degraded to empty result", "stage", "embed", "error", err)
		return types.RetrievalResult{}
	}

	filter := r.tags[intent]
	result, err := r.index.Search(ctx, embedding, k, filter)
	if err != nil {
		r.logger.Warn("retrieval degraded to empty result", "stage", "search", "error", err)
		return types.RetrievalResult{}
	}

	if len(result) == 0 && len(filter) > 0 {
		result, err = r.index.Search(ctx, embedding, k, nil)
		if err != nil {
			r.logger.Warn("retrieval degraded to empty result", "stage", "fallback search", "error", err)
			return types.RetrievalResult{}
		}
	}

	return r.applyThreshold(result)
}

// applyThreshold drops chunks scoring below the configured minimum.
// Results arrive sorted, so the first miss ends the scan.
func (r *Retriever) applyThreshold(result types.RetrievalResult) types.RetrievalResult {
	if r.minScore <= 0 {
		return result
	}
	for i, sc := range result {
		if sc.Score < r.minScore {
			return result[:i]
		}
	}
	return result
}

package concierge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	soco "github.com/happyculture/soco-concierge"
	"github.com/happyculture/soco-concierge/pkg/config"
	"github.com/happyculture/soco-concierge/pkg/cost"
	"github.com/happyculture/soco-concierge/pkg/embedder"
	"github.com/happyculture/soco-concierge/pkg/intent"
	"github.com/happyculture/soco-concierge/pkg/llm"
	"github.com/happyculture/soco-concierge/pkg/prompts"
	"github.com/happyculture/soco-concierge/pkg/retrieval"
	"github.com/happyculture/soco-concierge/pkg/security"
	"github.com/happyculture/soco-concierge/pkg/store"
	"github.com/happyculture/soco-concierge/pkg/synthesis"
	"github.com/happyculture/soco-concierge/pkg/types"
)

// newIndex opens the knowledge store backend named by the config.
func newIndex(ctx context.Context, cfg *config.Config) (store.Index, error) {
	switch cfg.Store.Backend {
	case "chromem", "":
		return store.NewChromemIndex(store.ChromemConfig{
			PersistPath: cfg.Store.PersistPath,
			Collection:  cfg.Store.Collection,
		})
	case "mongo":
		if cfg.Store.URI == "" {
			return nil, fmt.Errorf("mongo backend requires MONGODB_URI")
		}
		return store.NewMongoIndex(ctx, store.MongoConfig{
			URI:         cfg.Store.URI,
			Database:    cfg.Store.Database,
			Collection:  cfg.Store.Collection,
			VectorIndex: cfg.Store.VectorIndex,
		})
	case "memory":
		return store.NewMemoryIndex(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// newEmbedder builds the embedding client from config.
func newEmbedder(cfg *config.Config) (embedder.Client, error) {
	if cfg.Embedding.APIKey == "" {
		return nil, fmt.Errorf("embedding API key is required (set OPENAI_API_KEY or OPENROUTER_API_KEY)")
	}
	return embedder.NewOpenAIEmbedder(cfg.Embedding.APIKey, embedder.Config{
		Model:      cfg.Embedding.Model,
		BaseURL:    cfg.Embedding.BaseURL,
		Dimensions: cfg.Embedding.Dimensions,
	}), nil
}

// newModelClient builds the chat client from config, wrapped in a
// circuit breaker.
func newModelClient(cfg *config.Config) (llm.Client, error) {
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("LLM API key is required (set OPENAI_API_KEY or OPENROUTER_API_KEY)")
	}

	temperature := cfg.LLM.Temperature
	maxTokens := cfg.LLM.MaxTokens
	client := llm.NewOpenAIClient(cfg.LLM.APIKey, llm.Config{
		Model:       cfg.LLM.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		BaseURL:     cfg.LLM.BaseURL,
	})

	cooldown, err := time.ParseDuration(cfg.LLM.BreakerCooldown)
	if err != nil || cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return llm.NewBreakerClient(client, cfg.LLM.BreakerFailures, cooldown), nil
}

// intentTagsFromConfig converts the configured label→type map into
// retrieval filters, dropping labels outside the closed intent set.
func intentTagsFromConfig(cfg *config.Config) retrieval.IntentTags {
	if len(cfg.Retrieval.IntentTags) == 0 {
		return retrieval.DefaultIntentTags()
	}
	tags := make(retrieval.IntentTags, len(cfg.Retrieval.IntentTags))
	for label, chunkType := range cfg.Retrieval.IntentTags {
		parsed, ok := types.ParseIntent(label)
		if !ok || parsed == types.IntentUnknown {
			continue
		}
		tags[parsed] = store.SearchFilter{"type": chunkType}
	}
	return tags
}

// buildEngine assembles the full pipeline around an open knowledge
// store. The caller owns the returned index and must close it.
func buildEngine(cfg *config.Config, index store.Index, log *slog.Logger) (soco.Engine, error) {
	inner, err := newModelClient(cfg)
	if err != nil {
		return nil, err
	}
	tracker := cost.NewTracker(nil)
	model := cost.NewTrackingClient(inner, cfg.LLM.Model, tracker, log)
	emb, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	library := prompts.DefaultLibrary
	filter := security.NewKeywordFilter(cfg.Security.Denylist)
	classifier := intent.NewClassifier(model, library, log)
	retriever := retrieval.NewRetriever(emb, index, intentTagsFromConfig(cfg), cfg.Retrieval.MinScore, log)
	synthesizer := synthesis.NewSynthesizer(model, library, log)

	return soco.NewPipeline(filter, classifier, retriever, synthesizer, &soco.Config{
		TopK: cfg.Retrieval.TopK,
	}, log), nil
}

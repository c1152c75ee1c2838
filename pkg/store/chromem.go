package store

import (
	"context"
	"fmt"
	"path/filepath"

	chromem "github.com/philippgille/chromem-go"

	"github.com/happyculture/soco-concierge/pkg/types"
)

// ChromemConfig holds configuration for the embedded chromem-go backend.
type ChromemConfig struct {
	// PersistPath persists the collection to disk when set; empty keeps
	// the index in memory only.
	PersistPath string
	Collection  string
}

// ChromemIndex implements Index on chromem-go, an embedded vector store.
// It is the default backend for local development.
type ChromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewChromemIndex creates or opens a chromem-go backed index.
func NewChromemIndex(config ChromemConfig) (*ChromemIndex, error) {
	if config.Collection == "" {
		config.Collection = "hotel_knowledge"
	}

	var db *chromem.DB
	var err error
	if config.PersistPath != "" {
		db, err = chromem.NewPersistentDB(filepath.Join(config.PersistPath, "chromem.gob"), false)
		if err != nil {
			return nil, fmt.Errorf("create persistent chromem db: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	// Chunks always arrive pre-embedded, so the collection never invokes
	// an embedding function.
	noEmbed := func(ctx context.Context, text string) ([]float32, error) {
		return nil, fmt.Errorf("chunks must carry embeddings")
	}

	collection, err := db.GetOrCreateCollection(config.Collection, nil, noEmbed)
	if err != nil {
		return nil, fmt.Errorf("open collection %q: %w", config.Collection, err)
	}

	return &ChromemIndex{db: db, collection: collection}, nil
}

// Upsert inserts or replaces chunks by ID.
func (c *ChromemIndex) Upsert(ctx context.Context, chunks []types.KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:        chunk.ID,
			Content:   chunk.Text,
			Embedding: chunk.Embedding,
			Metadata:  chunk.Metadata,
		}
	}

	if err := c.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("%w: add documents: %v", types.ErrStore, err)
	}
	return nil
}

// Search returns the k nearest chunks by cosine similarity.
func (c *ChromemIndex) Search(ctx context.Context, embedding []float32, k int, filter SearchFilter) (types.RetrievalResult, error) {
	count := c.collection.Count()
	if count == 0 || k <= 0 {
		return types.RetrievalResult{}, nil
	}
	if k > count {
		k = count
	}

	results, err := c.collection.QueryEmbedding(ctx, embedding, k, map[string]string(filter), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: query embedding: %v", types.ErrStore, err)
	}

	retrieved := make(types.RetrievalResult, len(results))
	for i, result := range results {
		retrieved[i] = types.ScoredChunk{
			Chunk: types.KnowledgeChunk{
				ID:       result.ID,
				Text:     result.Content,
				Metadata: result.Metadata,
			},
			Score: result.Similarity,
		}
	}
	return retrieved, nil
}

// Count returns the number of stored chunks.
func (c *ChromemIndex) Count(ctx context.Context) (int, error) {
	return c.collection.Count(), nil
}

// Close is a no-op; chromem persists on write.
func (c *ChromemIndex) Close(ctx context.Context) error {
	return nil
}

// Package store provides the vector index the pipeline retrieves
// knowledge chunks from. Backends implement similarity search over
// pre-embedded chunks; the ingestion batch job populates them.
package store

import (
	"context"

	"github.com/happyculture/soco-concierge/pkg/types"
)

// SearchFilter restricts search candidates to chunks whose metadata
// matches every key/value pair. A nil filter matches all chunks.
type SearchFilter map[string]string

// Index is the knowledge store contract consumed by the retriever and
// the ingestion job. Implementations must be safe for concurrent
// read-only use once populated.
type Index interface {
	// Search returns up to k chunks nearest to the embedding by cosine
	// similarity, in descending score order with stable ties.
	Search(ctx context.Context, embedding []float32, k int, filter SearchFilter) (types.RetrievalResult, error)

	// Upsert inserts or replaces chunks by ID.
	Upsert(ctx context.Context, chunks []types.KnowledgeChunk) error

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// Matches reports whether the chunk metadata satisfies the filter.
func (f SearchFilter) Matches(metadata map[string]string) bool {
	for key, want := range f {
		if metadata[key] != want {
			return false
		}
	}
	return true
}

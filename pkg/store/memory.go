package store

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/happyculture/soco-concierge/pkg/types"
)

// MemoryIndex is an in-memory cosine similarity index. It preserves
// insertion order so equal-score results rank deterministically.
type MemoryIndex struct {
	mu     sync.RWMutex
	chunks []types.KnowledgeChunk
	byID   map[string]int
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{byID: make(map[string]int)}
}

// Upsert inserts or replaces chunks by ID.
func (m *MemoryIndex) Upsert(ctx context.Context, chunks []types.KnowledgeChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, chunk := range chunks {
		if i, ok := m.byID[chunk.ID]; ok {
			m.chunks[i] = chunk
			continue
		}
		m.byID[chunk.ID] = len(m.chunks)
		m.chunks = append(m.chunks, chunk)
	}
	return nil
}

// Search returns the k nearest chunks by cosine similarity. Ties keep
// store order.
func (m *MemoryIndex) Search(ctx context.Context, embedding []float32, k int, filter SearchFilter) (types.RetrievalResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if k <= 0 || len(m.chunks) == 0 {
		return types.RetrievalResult{}, nil
	}

	scored := make(types.RetrievalResult, 0, len(m.chunks))
	for _, chunk := range m.chunks {
		if filter != nil && !filter.Matches(chunk.Metadata) {
			continue
		}
		scored = append(scored, types.ScoredChunk{
			Chunk: chunk,
			Score: CosineSimilarity(embedding, chunk.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// Count returns the number of stored chunks.
func (m *MemoryIndex) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks), nil
}

// Close is a no-op for the in-memory index.
func (m *MemoryIndex) Close(ctx context.Context) error {
	return nil
}

// CosineSimilarity computes the cosine similarity between two vectors.
// A zero or mismatched vector yields 0.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

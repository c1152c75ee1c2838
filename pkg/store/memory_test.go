package store_test

import (
	"context"
	"testing"

	"github.com/happyculture/soco-concierge/pkg/store"
	"github.com/happyculture/soco-concierge/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedIndex(t *testing.T) *store.MemoryIndex {
	t.Helper()

	index := store.NewMemoryIndex()
	err := index.Upsert(context.Background(), []types.KnowledgeChunk{
		{ID: "room-standard", Text: "Chambre Standard 89€", Metadata: map[string]string{"type": "room"}, Embedding: []float32{1, 0, 0}},
		{ID: "spa", Text: "Spa & Jacuzzi Privatif", Metadata: map[string]string{"type": "service"}, Embedding: []float32{0, 1, 0}},
		{ID: "checkin", Text: "Check-in à partir de 15h", Metadata: map[string]string{"type": "policy"}, Embedding: []float32{0.8, 0.6, 0}},
	})
	require.NoError(t, err)
	return index
}

func TestMemorySearchOrdersByDescendingSimilarity(t *testing.T) {
	index := seedIndex(t)

	result, err := index.Search(context.Background(), []float32{1, 0, 0}, 3, nil)
	require.NoError(t, err)
	require.Len(t, result, 3)

	assert.Equal(t, "room-standard", result[0].Chunk.ID)
	assert.Equal(t, "checkin", result[1].Chunk.ID)
	assert.Equal(t, "spa", result[2].Chunk.ID)
	assert.Greater(t, result[0].Score, result[1].Score)
}

func TestMemorySearchStableTies(t *testing.T) {
	index := store.NewMemoryIndex()
	require.NoError(t, index.Upsert(context.Background(), []types.KnowledgeChunk{
		{ID: "first", Embedding: []float32{1, 0}},
		{ID: "second", Embedding: []float32{1, 0}},
	}))

	result, err := index.Search(context.Background(), []float32{1, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, result, 2)

	// Equal scores keep store order.
	assert.Equal(t, "first", result[0].Chunk.ID)
	assert.Equal(t, "second", result[1].Chunk.ID)
}

func TestMemorySearchMetadataFilter(t *testing.T) {
	index := seedIndex(t)

	result, err := index.Search(context.Background(), []float32{1, 0, 0}, 3, store.SearchFilter{"type": "service"})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "spa", result[0].Chunk.ID)

	// Filter matching no chunks yields an empty result, not an error.
	result, err = index.Search(context.Background(), []float32{1, 0, 0}, 3, store.SearchFilter{"type": "garage"})
	require.NoError(t, err)
	assert.True(t, result.Empty())
}

func TestMemorySearchClampsK(t *testing.T) {
	index := seedIndex(t)

	result, err := index.Search(context.Background(), []float32{1, 0, 0}, 10, nil)
	require.NoError(t, err)
	assert.Len(t, result, 3)

	result, err = index.Search(context.Background(), []float32{1, 0, 0}, 0, nil)
	require.NoError(t, err)
	assert.True(t, result.Empty())
}

func TestMemoryUpsertReplacesByID(t *testing.T) {
	index := seedIndex(t)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, []types.KnowledgeChunk{
		{ID: "spa", Text: "Spa rénové", Metadata: map[string]string{"type": "service"}, Embedding: []float32{0, 1, 0}},
	}))

	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	result, err := index.Search(ctx, []float32{0, 1, 0}, 1, nil)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Spa rénové", result[0].Chunk.Text)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, store.CosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-6)
	assert.InDelta(t, 0.0, store.CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.Zero(t, store.CosineSimilarity(nil, []float32{1}))
	assert.Zero(t, store.CosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Zero(t, store.CosineSimilarity([]float32{0, 0}, []float32{0, 0}))
}

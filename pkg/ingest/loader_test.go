package ingest_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happyculture/soco-concierge/pkg/ingest"
	"github.com/happyculture/soco-concierge/pkg/store"
)

type stubEmbedder struct {
	calls int
	fail  bool
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.fail {
		return nil, fmt.Errorf("embedding service down")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i])), 1, 0}
	}
	return out, nil
}

func (s *stubEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (s *stubEmbedder) Dimensions() int { return 3 }
func (s *stubEmbedder) Close() error    { return nil }

func writeKnowledgeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeKnowledgeFile(t, dir, "hotel_knowledge.json", `[
		{"id": "rooms-01", "text": "Chambre Deluxe avec vue mer.", "metadata": {"type": "room", "category": "chambres", "title": "Chambres"}},
		{"text": "Le petit-déjeuner est servi de 7h à 10h30."}
	]`)

	docs, err := ingest.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "rooms-01", docs[0].ID)
	assert.Equal(t, "room", docs[0].Metadata["type"])
	assert.Equal(t, "hotel_knowledge", docs[0].Metadata["source"])

	assert.Equal(t, "hotel_knowledge-1", docs[1].ID)
	assert.Equal(t, "hotel_knowledge", docs[1].Metadata["source"])
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeKnowledgeFile(t, dir, "rooms.json", `[{"id": "r1", "text": "Chambre Classique."}]`)
	writeKnowledgeFile(t, dir, "spa.json", `[{"id": "s1", "text": "Spa et jacuzzi privatif."}]`)

	docs, err := ingest.LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestIngestWritesChunks(t *testing.T) {
	emb := &stubEmbedder{}
	index := store.NewMemoryIndex()
	loader := ingest.NewLoader(emb, index, nil)

	docs := []ingest.Document{
		{ID: "rooms-01", Text: "Chambre Deluxe avec vue mer.", Metadata: map[string]string{"type": "room"}},
		{ID: "policy-01", Text: "Annulation gratuite jusqu'à 48h avant l'arrivée.", Metadata: map[string]string{"type": "policy"}},
	}

	n, err := loader.Ingest(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, emb.calls)

	count, err := index.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIngestEmbedFailure(t *testing.T) {
	emb := &stubEmbedder{fail: true}
	loader := ingest.NewLoader(emb, store.NewMemoryIndex(), nil)

	_, err := loader.Ingest(context.Background(), []ingest.Document{{ID: "a", Text: "texte"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed documents")
}

func TestIngestEmptyInput(t *testing.T) {
	loader := ingest.NewLoader(&stubEmbedder{}, store.NewMemoryIndex(), nil)

	n, err := loader.Ingest(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSplitTextShortTextSinglePiece(t *testing.T) {
	parts := ingest.SplitText("Petit texte.", 500, 50)
	assert.Equal(t, []string{"Petit texte."}, parts)
}

func TestSplitTextLongTextOverlaps(t *testing.T) {
	sentence := "L'hôtel propose un spa avec jacuzzi privatif réservable à la réception. "
	text := strings.Repeat(sentence, 20)

	parts := ingest.SplitText(text, 200, 40)
	require.Greater(t, len(parts), 1)

	for _, part := range parts {
		assert.LessOrEqual(t, len([]rune(part)), 200)
		assert.NotEmpty(t, part)
	}
	// Overlap repeats the tail of one piece at the head of the next.
	tail := parts[0][len(parts[0])-10:]
	assert.Contains(t, parts[1], strings.TrimSpace(tail))
}

func TestSplitTextPrefersParagraphBreaks(t *testing.T) {
	text := strings.Repeat("a", 150) + "\n\n" + strings.Repeat("b", 150)
	parts := ingest.SplitText(text, 200, 20)
	require.Len(t, parts, 2)
	assert.NotContains(t, parts[0], "b")
}

func TestChunkedDocumentIDsSuffixed(t *testing.T) {
	emb := &stubEmbedder{}
	index := store.NewMemoryIndex()
	loader := ingest.NewLoader(emb, index, nil)

	long := strings.Repeat("Description des chambres et des services de l'hôtel. ", 30)
	n, err := loader.Ingest(context.Background(), []ingest.Document{
		{ID: "rooms", Text: long, Metadata: map[string]string{"type": "room"}},
	})
	require.NoError(t, err)
	assert.Greater(t, n, 1)

	count, err := index.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, n, count)
}

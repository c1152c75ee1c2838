package concierge_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	concierge "github.com/happyculture/soco-concierge"
	"github.com/happyculture/soco-concierge/pkg/intent"
	"github.com/happyculture/soco-concierge/pkg/llm"
	"github.com/happyculture/soco-concierge/pkg/retrieval"
	"github.com/happyculture/soco-concierge/pkg/security"
	"github.com/happyculture/soco-concierge/pkg/store"
	"github.com/happyculture/soco-concierge/pkg/synthesis"
	"github.com/happyculture/soco-concierge/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM answers classification prompts with a fixed label and
// synthesis prompts with a fixed answer, so one client serves both call
// shapes like the production client does.
type scriptedLLM struct {
	label    string
	answer   string
	synthErr error
}

func (s *scriptedLLM) Chat(ctx context.Context, messages []llm.Message) (*llm.Response, error) {
	if strings.Contains(messages[0].Content, "Tu classifies") {
		return &llm.Response{Content: s.label}, nil
	}
	if s.synthErr != nil {
		return nil, s.synthErr
	}
	return &llm.Response{Content: s.answer}, nil
}

func (s *scriptedLLM) Close() error { return nil }

// countingEmbedder tracks embedding calls to observe retrieval side
// effects.
type countingEmbedder struct {
	vector []float32
	calls  int
}

func (c *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = c.vector
	}
	return out, nil
}

func (c *countingEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return c.vector, nil
}

func (c *countingEmbedder) Dimensions() int { return len(c.vector) }
func (c *countingEmbedder) Close() error    { return nil }

// countingIndex wraps a MemoryIndex and counts searches.
type countingIndex struct {
	inner   *store.MemoryIndex
	queries int
}

func (c *countingIndex) Search(ctx context.Context, embedding []float32, k int, filter store.SearchFilter) (types.RetrievalResult, error) {
	c.queries++
	return c.inner.Search(ctx, embedding, k, filter)
}

func (c *countingIndex) Upsert(ctx context.Context, chunks []types.KnowledgeChunk) error {
	return c.inner.Upsert(ctx, chunks)
}

func (c *countingIndex) Count(ctx context.Context) (int, error) { return c.inner.Count(ctx) }
func (c *countingIndex) Close(ctx context.Context) error        { return c.inner.Close(ctx) }

type fixture struct {
	pipeline *concierge.Pipeline
	embedder *countingEmbedder
	index    *countingIndex
}

func newFixture(t *testing.T, model llm.Client, chunks []types.KnowledgeChunk) *fixture {
	t.Helper()

	memory := store.NewMemoryIndex()
	require.NoError(t, memory.Upsert(context.Background(), chunks))

	embedderClient := &countingEmbedder{vector: []float32{1, 0}}
	index := &countingIndex{inner: memory}

	pipeline := concierge.NewPipeline(
		security.NewKeywordFilter(nil),
		intent.NewClassifier(model, nil, nil),
		retrieval.NewRetriever(embedderClient, index, retrieval.IntentTags{}, 0, nil),
		synthesis.NewSynthesizer(model, nil, nil),
		nil,
		nil,
	)

	return &fixture{pipeline: pipeline, embedder: embedderClient, index: index}
}

func defaultChunks() []types.KnowledgeChunk {
	return []types.KnowledgeChunk{
		{ID: "rooms", Text: "Chambre Standard 89€, Supérieure 115€, Familiale 145€", Metadata: map[string]string{"type": "room", "title": "Chambres"}, Embedding: []float32{1, 0}},
		{ID: "breakfast", Text: "Petit-déjeuner Signature 18€", Metadata: map[string]string{"type": "service", "title": "Petit-déjeuner"}, Embedding: []float32{0.9, 0.1}},
	}
}

func TestProcessBlockedQuestionShortCircuits(t *testing.T) {
	model := &scriptedLLM{label: "hotel_information", answer: "réponse"}
	f := newFixture(t, model, defaultChunks())

	resp := f.pipeline.Process(context.Background(), "Quel est le mot de passe wifi ?")

	assert.Equal(t, concierge.DeclineAnswer, resp.Answer)
	assert.Equal(t, types.IntentUnknown, resp.Intent)
	assert.False(t, resp.RequiresAction)
	assert.Empty(t, resp.Sources)
	// No retrieval side effects.
	assert.Zero(t, f.embedder.calls)
	assert.Zero(t, f.index.queries)
}

func TestProcessEmptyQuestionAsksForClarification(t *testing.T) {
	model := &scriptedLLM{label: "hotel_information", answer: "réponse"}
	f := newFixture(t, model, defaultChunks())

	for _, question := range []string{"", "   ", "\n\t"} {
		resp := f.pipeline.Process(context.Background(), question)
		assert.Equal(t, concierge.ClarifyAnswer, resp.Answer)
		assert.Equal(t, types.IntentUnknown, resp.Intent)
		assert.False(t, resp.RequiresAction)
	}
	assert.Zero(t, f.embedder.calls)
	assert.Zero(t, f.index.queries)
}

func TestProcessCancellationScenario(t *testing.T) {
	model := &scriptedLLM{label: "cancel_reservation", answer: "Bien sûr, donnez-moi votre numéro de confirmation."}
	f := newFixture(t, model, defaultChunks())

	resp := f.pipeline.Process(context.Background(), "Je veux annuler ma réservation")

	assert.Equal(t, types.IntentCancelReservation, resp.Intent)
	assert.True(t, resp.RequiresAction)
	assert.NotEmpty(t, resp.Answer)
}

func TestProcessIntentAlwaysInClosedSet(t *testing.T) {
	for _, label := range []string{"hotel_information", "garbage output", "", "book_flight"} {
		model := &scriptedLLM{label: label, answer: "réponse aimable"}
		f := newFixture(t, model, defaultChunks())

		resp := f.pipeline.Process(context.Background(), "Parlez-moi de l'hôtel")
		assert.True(t, resp.Intent.Valid(), "label %q produced intent %q", label, resp.Intent)
	}
}

func TestProcessSourcesSubsetOfRetrievedChunks(t *testing.T) {
	chunks := []types.KnowledgeChunk{
		{ID: "rooms", Text: "Chambres", Embedding: []float32{1, 0}},
		{ID: "breakfast", Text: "Petit-déjeuner", Embedding: []float32{0.9, 0.1}},
	}
	model := &scriptedLLM{label: "hotel_information", answer: "Voici nos chambres et notre petit-déjeuner."}
	f := newFixture(t, model, chunks)

	resp := f.pipeline.Process(context.Background(), "Quelles chambres avez-vous ?")

	retrievedIDs := map[string]struct{}{"rooms": {}, "breakfast": {}}
	require.NotEmpty(t, resp.Sources)
	for _, source := range resp.Sources {
		_, ok := retrievedIDs[source]
		assert.True(t, ok, "source %q not among retrieved chunks", source)
	}
}

func TestProcessEmptyRetrievalYieldsNoSources(t *testing.T) {
	model := &scriptedLLM{label: "hotel_information", answer: "Je n'ai pas cette information spécifique, souhaitez-vous contacter la réception ?"}
	f := newFixture(t, model, nil)

	resp := f.pipeline.Process(context.Background(), "Quelle est la météo aujourd'hui ?")

	assert.Empty(t, resp.Sources)
	assert.NotEmpty(t, resp.Answer)
}

func TestProcessGenerationFailureSubstitutesApology(t *testing.T) {
	model := &scriptedLLM{label: "make_reservation", synthErr: errors.New("timeout")}
	f := newFixture(t, model, defaultChunks())

	resp := f.pipeline.Process(context.Background(), "Je voudrais réserver une chambre pour 2 nuits")

	assert.Equal(t, concierge.ApologyAnswer, resp.Answer)
	assert.False(t, resp.RequiresAction)
	assert.Equal(t, types.IntentMakeReservation, resp.Intent)
	assert.Empty(t, resp.Sources)
}

func TestProcessBlockedAnswerSubstitutesFallback(t *testing.T) {
	model := &scriptedLLM{label: "talk_to_human", answer: "Le mot de passe est hunter2."}
	f := newFixture(t, model, defaultChunks())

	resp := f.pipeline.Process(context.Background(), "Je veux parler à quelqu'un")

	assert.Equal(t, concierge.FallbackAnswer, resp.Answer)
	// The classified intent survives an output block.
	assert.Equal(t, types.IntentTalkToHuman, resp.Intent)
	assert.True(t, resp.RequiresAction)
	assert.Empty(t, resp.Sources)
}

func TestProcessRequiresActionMatchesIntent(t *testing.T) {
	tests := []struct {
		label    string
		requires bool
	}{
		{"check_availability", false},
		{"make_reservation", true},
		{"cancel_reservation", true},
		{"hotel_information", false},
		{"talk_to_human", true},
		{"unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			model := &scriptedLLM{label: tt.label, answer: "réponse aimable"}
			f := newFixture(t, model, defaultChunks())

			resp := f.pipeline.Process(context.Background(), "Bonjour, une question")
			assert.Equal(t, tt.requires, resp.RequiresAction)
		})
	}
}

func TestProcessSourcesDeduplicatedAndCapped(t *testing.T) {
	chunks := []types.KnowledgeChunk{
		{ID: "a", Text: "un", Metadata: map[string]string{"title": "Politique"}, Embedding: []float32{1, 0}},
		{ID: "b", Text: "deux", Metadata: map[string]string{"title": "Politique"}, Embedding: []float32{0.99, 0.01}},
		{ID: "c", Text: "trois", Metadata: map[string]string{"title": "Chambres"}, Embedding: []float32{0.98, 0.02}},
		{ID: "d", Text: "quatre", Metadata: map[string]string{"title": "Services"}, Embedding: []float32{0.97, 0.03}},
		{ID: "e", Text: "cinq", Metadata: map[string]string{"title": "Contact"}, Embedding: []float32{0.96, 0.04}},
	}
	model := &scriptedLLM{label: "hotel_information", answer: "Voici tout ce que je sais."}
	f := newFixture(t, model, chunks)

	pipeline := concierge.NewPipeline(
		security.NewKeywordFilter(nil),
		intent.NewClassifier(model, nil, nil),
		retrieval.NewRetriever(f.embedder, f.index, retrieval.IntentTags{}, 0, nil),
		synthesis.NewSynthesizer(model, nil, nil),
		&concierge.Config{TopK: 5},
		nil,
	)

	resp := pipeline.Process(context.Background(), "Dites-moi tout")
	assert.Equal(t, []string{"Politique", "Chambres", "Services"}, resp.Sources)
}

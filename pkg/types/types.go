package types

import (
	"time"

	"github.com/google/uuid"
)

// Query is a single incoming guest question. It is immutable once created
// and lives only for the duration of one pipeline pass.
type Query struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// NewQuery creates a Query for an incoming question.
func NewQuery(text string) Query {
	return Query{
		ID:         uuid.NewString(),
		Text:       text,
		ReceivedAt: time.Now(),
	}
}

// KnowledgeChunk is a retrievable unit of knowledge-base text. Chunks are
// owned by the knowledge store and read-only from the pipeline's perspective.
type KnowledgeChunk struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Embedding []float32         `json:"embedding,omitempty"`
}

// Title returns the human-facing provenance label for the chunk: the
// metadata title when present, then the French label of its taxonomy
// type, otherwise the chunk ID.
func (c KnowledgeChunk) Title() string {
	if t, ok := c.Metadata["title"]; ok && t != "" {
		return t
	}
	if label, ok := typeLabels[c.Metadata["type"]]; ok {
		return label
	}
	return c.ID
}

// typeLabels maps the ingestion taxonomy to the French labels shown as
// answer sources when a chunk carries no title.
var typeLabels = map[string]string{
	"room":       "Chambres",
	"policy":     "Politique",
	"service":    "Services",
	"contact":    "Contact",
	"hotel_info": "Hôtel",
}

// ScoredChunk pairs a retrieved chunk with its similarity score.
type ScoredChunk struct {
	Chunk KnowledgeChunk `json:"chunk"`
	Score float32        `json:"score"`
}

// RetrievalResult is an ordered sequence of scored chunks, ranked by
// descending similarity. It may be empty.
type RetrievalResult []ScoredChunk

// Empty reports whether no chunks were retrieved.
func (r RetrievalResult) Empty() bool { return len(r) == 0 }

// IDs returns the chunk identifiers in rank order.
func (r RetrievalResult) IDs() []string {
	ids := make([]string, len(r))
	for i, sc := range r {
		ids[i] = sc.Chunk.ID
	}
	return ids
}

// Texts returns the chunk texts in rank order.
func (r RetrievalResult) Texts() []string {
	texts := make([]string, len(r))
	for i, sc := range r {
		texts[i] = sc.Chunk.Text
	}
	return texts
}

// Response is the structured result returned to the transport layer.
// Every Response carries exactly one Intent; Sources identify the chunks
// the answer was grounded on.
type Response struct {
	Answer         string   `json:"answer"`
	Intent         Intent   `json:"intent"`
	Sources        []string `json:"sources"`
	RequiresAction bool     `json:"requires_action"`
}

// SecurityVerdict is the outcome of evaluating a piece of text against
// the security filter. It is evaluated independently for inbound and
// outbound text.
type SecurityVerdict struct {
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason,omitempty"`
}

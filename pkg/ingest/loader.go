// Package ingest loads hotel knowledge documents from JSON files,
// splits long texts into overlapping chunks, embeds them, and writes
// them to the knowledge store. It is run as a batch job before the
// server starts answering questions.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/happyculture/soco-concierge/pkg/embedder"
	"github.com/happyculture/soco-concierge/pkg/store"
	"github.com/happyculture/soco-concierge/pkg/types"
)

// Document is a single entry of a knowledge JSON file.
type Document struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

// Chunking defaults mirror the production ingestion job.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// Loader embeds documents and writes them to the knowledge store.
type Loader struct {
	embedder     embedder.Client
	index        store.Index
	chunkSize    int
	chunkOverlap int
	logger       *slog.Logger
}

// NewLoader creates a loader with default chunking.
func NewLoader(emb embedder.Client, index store.Index, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		embedder:     emb,
		index:        index,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		logger:       logger,
	}
}

// LoadFile reads one JSON file holding an array of documents.
func LoadFile(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	source := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for i := range docs {
		if docs[i].Metadata == nil {
			docs[i].Metadata = map[string]string{}
		}
		if docs[i].Metadata["source"] == "" {
			docs[i].Metadata["source"] = source
		}
		if docs[i].ID == "" {
			docs[i].ID = fmt.Sprintf("%s-%d", source, i)
		}
	}
	return docs, nil
}

// LoadDir reads every *.json file of a directory.
func LoadDir(dir string) ([]Document, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var docs []Document
	for _, path := range paths {
		fileDocs, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, fileDocs...)
	}
	return docs, nil
}

// Ingest chunks, embeds and stores the documents. It returns the
// number of chunks written.
func (l *Loader) Ingest(ctx context.Context, docs []Document) (int, error) {
	chunks := l.chunkDocuments(docs)
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	l.logger.Info("embedding knowledge chunks", "count", len(chunks))
	embeddings, err := l.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed documents: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("embed documents: got %d embeddings for %d chunks", len(embeddings), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	if err := l.index.Upsert(ctx, chunks); err != nil {
		return 0, fmt.Errorf("store documents: %w", err)
	}

	l.logger.Info("knowledge store updated", "chunks", len(chunks))
	return len(chunks), nil
}

// chunkDocuments splits long texts and carries document metadata onto
// every resulting chunk.
func (l *Loader) chunkDocuments(docs []Document) []types.KnowledgeChunk {
	var chunks []types.KnowledgeChunk
	for _, doc := range docs {
		parts := SplitText(doc.Text, l.chunkSize, l.chunkOverlap)
		for i, part := range parts {
			id := doc.ID
			if len(parts) > 1 {
				id = fmt.Sprintf("%s-%d", doc.ID, i)
			}
			metadata := make(map[string]string, len(doc.Metadata))
			for k, v := range doc.Metadata {
				metadata[k] = v
			}
			chunks = append(chunks, types.KnowledgeChunk{
				ID:       id,
				Text:     part,
				Metadata: metadata,
			})
		}
	}
	return chunks
}

// SplitText cuts text into pieces of at most chunkSize runes,
// preferring paragraph, line, and sentence boundaries, with overlap
// runes repeated between consecutive pieces. Short texts come back as
// a single piece.
func SplitText(text string, chunkSize, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}

	var parts []string
	start := 0
	for start < len(runes) {
		end := start + chunkSize
		if end >= len(runes) {
			parts = append(parts, strings.TrimSpace(string(runes[start:])))
			break
		}
		cut := boundaryBefore(runes, start, end)
		parts = append(parts, strings.TrimSpace(string(runes[start:cut])))
		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}

	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// boundaryBefore finds the best split point at or before end,
// scanning for a paragraph break, then a newline, then a sentence
// end, then a space. Without any separator it cuts mid-word at end.
func boundaryBefore(runes []rune, start, end int) int {
	window := string(runes[start:end])
	for _, sep := range []string{"\n\n", "\n", ". ", " "} {
		if idx := strings.LastIndex(window, sep); idx > 0 {
			return start + len([]rune(window[:idx+len(sep)]))
		}
	}
	return end
}

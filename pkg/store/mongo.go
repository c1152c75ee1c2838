package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/happyculture/soco-concierge/pkg/types"
)

// MongoConfig holds configuration for the MongoDB Atlas backend.
type MongoConfig struct {
	URI         string
	Database    string
	Collection  string
	VectorIndex string
}

// MongoIndex implements Index on MongoDB Atlas Vector Search. Chunks are
// stored one per document with the embedding under the "embedding" field
// and searched through the $vectorSearch aggregation stage.
type MongoIndex struct {
	client *mongo.Client
	coll   *mongo.Collection
	config MongoConfig
}

type mongoChunk struct {
	ID        string            `bson:"_id"`
	Text      string            `bson:"text"`
	Metadata  map[string]string `bson:"metadata,omitempty"`
	Embedding []float32         `bson:"embedding,omitempty"`
	Score     float64           `bson:"score,omitempty"`
}

// NewMongoIndex connects to MongoDB Atlas and opens the knowledge
// collection.
func NewMongoIndex(ctx context.Context, config MongoConfig) (*MongoIndex, error) {
	if config.Database == "" {
		config.Database = "RAG-assistant"
	}
	if config.Collection == "" {
		config.Collection = "hotel_knowledge"
	}
	if config.VectorIndex == "" {
		config.VectorIndex = "vector_index"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	return &MongoIndex{
		client: client,
		coll:   client.Database(config.Database).Collection(config.Collection),
		config: config,
	}, nil
}

// Search runs a $vectorSearch aggregation and returns the k nearest
// chunks in descending score order.
func (m *MongoIndex) Search(ctx context.Context, embedding []float32, k int, filter SearchFilter) (types.RetrievalResult, error) {
	if k <= 0 {
		return types.RetrievalResult{}, nil
	}

	vectorSearch := bson.D{
		{Key: "index", Value: m.config.VectorIndex},
		{Key: "path", Value: "embedding"},
		{Key: "queryVector", Value: embedding},
		{Key: "numCandidates", Value: k * 10},
		{Key: "limit", Value: k},
	}
	if len(filter) > 0 {
		var clauses bson.D
		for key, value := range filter {
			clauses = append(clauses, bson.E{Key: "metadata." + key, Value: value})
		}
		vectorSearch = append(vectorSearch, bson.E{Key: "filter", Value: clauses})
	}

	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: vectorSearch}},
		{{Key: "$project", Value: bson.D{
			{Key: "text", Value: 1},
			{Key: "metadata", Value: 1},
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}

	cursor, err := m.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%w: vector search: %v", types.ErrStore, err)
	}
	defer cursor.Close(ctx)

	var docs []mongoChunk
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode results: %v", types.ErrStore, err)
	}

	retrieved := make(types.RetrievalResult, len(docs))
	for i, doc := range docs {
		retrieved[i] = types.ScoredChunk{
			Chunk: types.KnowledgeChunk{
				ID:       doc.ID,
				Text:     doc.Text,
				Metadata: doc.Metadata,
			},
			Score: float32(doc.Score),
		}
	}
	return retrieved, nil
}

// Upsert inserts or replaces chunks by ID.
func (m *MongoIndex) Upsert(ctx context.Context, chunks []types.KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, len(chunks))
	for i, chunk := range chunks {
		doc := mongoChunk{
			ID:        chunk.ID,
			Text:      chunk.Text,
			Metadata:  chunk.Metadata,
			Embedding: chunk.Embedding,
		}
		models[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: chunk.ID}}).
			SetReplacement(doc).
			SetUpsert(true)
	}

	if _, err := m.coll.BulkWrite(ctx, models); err != nil {
		return fmt.Errorf("%w: bulk write: %v", types.ErrStore, err)
	}
	return nil
}

// Count returns the number of stored chunks.
func (m *MongoIndex) Count(ctx context.Context) (int, error) {
	n, err := m.coll.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: count: %v", types.ErrStore, err)
	}
	return int(n), nil
}

// Close disconnects from MongoDB.
func (m *MongoIndex) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

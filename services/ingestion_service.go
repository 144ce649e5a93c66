package services

import (
	"context"
	"fmt"
	"time"

	"helpdesk-suggestion-engine/internal/logger"
	"helpdesk-suggestion-engine/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// IngestionError is fatal to the ingestion operation: an empty
// source document or a persistence failure mid-stream.
type IngestionError struct {
	Title   string
	Message string
	Err     error
}

func (e *IngestionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ingestion of %q failed: %s: %v", e.Title, e.Message, e.Err)
	}
	return fmt.Sprintf("ingestion of %q failed: %s", e.Title, e.Message)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// DocumentInfo summarizes one ingested document for operator visibility
type DocumentInfo struct {
	Title       string    `json:"title"`
	ChunkCount  int       `json:"chunk_count"`
	LastUpdated time.Time `json:"last_updated"`
}

// ProgressFunc reports per-chunk ingestion progress (current index,
// total chunks, document title) for caller-visible progress bars.
type ProgressFunc func(current, total int, title string)

// ChunkStore persists and manages document chunks
type ChunkStore interface {
	InsertChunk(ctx context.Context, chunk *models.DocumentChunk) error
	DeleteByTitle(ctx context.Context, title string) (int64, error)
	ListDocuments(ctx context.Context) ([]DocumentInfo, error)
}

// IngestionService turns one document into embedded, persisted
// chunks. Chunks are written in order; if persistence of chunk i
// fails the pipeline aborts and chunks 0..i-1 remain (no rollback) -
// the orphan sweep cleans those up later.
type IngestionService struct {
	chunker    *ChunkingService
	embeddings *EmbeddingService
	store      ChunkStore
}

func NewIngestionService(chunker *ChunkingService, embeddings *EmbeddingService, store ChunkStore) *IngestionService {
	return &IngestionService{
		chunker:    chunker,
		embeddings: embeddings,
		store:      store,
	}
}

// Ingest chunks, embeds and persists one document, returning the
// number of chunks written. An empty source is a hard error, not a
// no-op.
func (is *IngestionService) Ingest(ctx context.Context, content, title string, metadata map[string]interface{}, progress ProgressFunc) (int, error) {
	chunks := is.chunker.ChunkText(content)
	if len(chunks) == 0 {
		return 0, &IngestionError{Title: title, Message: "document produced no chunks"}
	}

	logger.Info("Ingesting document", "title", title, "chunks", len(chunks))

	// Embed everything up front through the rate-limited batch
	// pipeline; nothing is persisted if any chunk fails to embed.
	vectors, err := is.embeddings.EmbedBatch(ctx, chunks)
	if err != nil {
		return 0, &IngestionError{Title: title, Message: "embedding chunks", Err: err}
	}

	for i, text := range chunks {
		meta := make(map[string]interface{}, len(metadata)+2)
		for k, v := range metadata {
			meta[k] = v
		}
		meta[models.MetaTotalChunks] = len(chunks)
		meta[models.MetaChunkSize] = is.chunker.chunkSize

		chunk := &models.DocumentChunk{
			SourceTitle: title,
			ChunkIndex:  i,
			Content:     text,
			Embedding:   vectors[i],
			Metadata:    meta,
			CreatedAt:   time.Now(),
		}

		if err := is.store.InsertChunk(ctx, chunk); err != nil {
			// Chunks 0..i-1 stay behind; the maintenance sweep
			// removes stale partial ingests.
			return i, &IngestionError{Title: title, Message: fmt.Sprintf("persisting chunk %d", i), Err: err}
		}

		if progress != nil {
			progress(i+1, len(chunks), title)
		}
	}

	return len(chunks), nil
}

// Reingest replaces all chunks of an existing document
func (is *IngestionService) Reingest(ctx context.Context, content, title string, metadata map[string]interface{}, progress ProgressFunc) (int, error) {
	if _, err := is.store.DeleteByTitle(ctx, title); err != nil {
		return 0, &IngestionError{Title: title, Message: "removing previous chunks", Err: err}
	}
	return is.Ingest(ctx, content, title, metadata, progress)
}

// DeleteDocument removes all chunks sharing the given title
func (is *IngestionService) DeleteDocument(ctx context.Context, title string) (int64, error) {
	return is.store.DeleteByTitle(ctx, title)
}

// ListDocuments reports ingested documents grouped by title
func (is *IngestionService) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	return is.store.ListDocuments(ctx)
}

// MongoChunkStore is the MongoDB-backed chunk store
type MongoChunkStore struct {
	collection *mongo.Collection
}

func NewMongoChunkStore(collection *mongo.Collection) *MongoChunkStore {
	return &MongoChunkStore{collection: collection}
}

func (ms *MongoChunkStore) InsertChunk(ctx context.Context, chunk *models.DocumentChunk) error {
	_, err := ms.collection.InsertOne(ctx, chunk)
	return err
}

func (ms *MongoChunkStore) DeleteByTitle(ctx context.Context, title string) (int64, error) {
	res, err := ms.collection.DeleteMany(ctx, bson.M{"source_title": title})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (ms *MongoChunkStore) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$source_title"},
			{Key: "chunk_count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "last_updated", Value: bson.D{{Key: "$max", Value: "$created_at"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := ms.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := make([]DocumentInfo, 0)
	for cursor.Next(ctx) {
		var row struct {
			Title       string    `bson:"_id"`
			ChunkCount  int       `bson:"chunk_count"`
			LastUpdated time.Time `bson:"last_updated"`
		}
		if err := cursor.Decode(&row); err != nil {
			continue
		}
		docs = append(docs, DocumentInfo{
			Title:       row.Title,
			ChunkCount:  row.ChunkCount,
			LastUpdated: row.LastUpdated,
		})
	}

	return docs, cursor.Err()
}

package services

import (
	"context"
	"strconv"
	"sync"

	"helpdesk-suggestion-engine/internal/logger"
	"helpdesk-suggestion-engine/internal/telemetry"
	"helpdesk-suggestion-engine/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// EntryMatch is a curated-entry candidate returned by the datastore's
// similarity operator, score already computed.
type EntryMatch struct {
	ID           primitive.ObjectID
	QuestionText string
	AnswerText   string
	CourseScope  string
	Similarity   float64
}

// ChunkMatch is a document-chunk candidate
type ChunkMatch struct {
	ID          primitive.ObjectID
	SourceTitle string
	ChunkIndex  int
	Content     string
	TotalChunks int
	Similarity  float64
}

// MatchStore issues ranked top-K similarity queries against the two
// corpora. The vector index's internal algorithm is the datastore's
// responsibility; this engine never recomputes distances.
type MatchStore interface {
	MatchEntries(ctx context.Context, vector []float32, courseScope string) ([]EntryMatch, error)
	MatchChunks(ctx context.Context, vector []float32) ([]ChunkMatch, error)
}

// RetrievalService fans a question out to both corpora in parallel
// and merges the results. A failed lookup degrades to an empty result
// for that source; both failing yields an empty suggestion list, not
// an error.
type RetrievalService struct {
	embeddings     *EmbeddingService
	matches        MatchStore
	maxSuggestions int
	metrics        *telemetry.Metrics
}

func NewRetrievalService(embeddings *EmbeddingService, matches MatchStore, maxSuggestions int, metrics *telemetry.Metrics) *RetrievalService {
	return &RetrievalService{
		embeddings:     embeddings,
		matches:        matches,
		maxSuggestions: maxSuggestions,
		metrics:        metrics,
	}
}

// Retrieve returns ranked suggestions for a ticket question. Only an
// embedding failure is fatal; lookup failures degrade per branch.
func (rs *RetrievalService) Retrieve(ctx context.Context, question, courseScope string) ([]models.Suggestion, error) {
	tracer := otel.Tracer("retrieval")
	ctx, span := tracer.Start(ctx, "retrieval.dual_source")
	defer span.End()

	vector, err := rs.embeddings.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	var (
		wg       sync.WaitGroup
		curated  []models.Suggestion
		document []models.Suggestion
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		entries, err := rs.matches.MatchEntries(ctx, vector, courseScope)
		if err != nil {
			logger.Warn("Curated-entry lookup failed, degrading to empty", "error", err)
			rs.metrics.RecordDegradation(ctx, "knowledge_entry")
			return
		}
		curated = entrySuggestions(entries)
	}()
	go func() {
		defer wg.Done()
		chunks, err := rs.matches.MatchChunks(ctx, vector)
		if err != nil {
			logger.Warn("Document-chunk lookup failed, degrading to empty", "error", err)
			rs.metrics.RecordDegradation(ctx, "document_chunk")
			return
		}
		document = chunkSuggestions(chunks)
	}()
	wg.Wait()

	span.SetAttributes(
		attribute.Int("retrieval.curated_matches", len(curated)),
		attribute.Int("retrieval.document_matches", len(document)),
	)

	return MergeSuggestions(curated, document, rs.maxSuggestions), nil
}

func entrySuggestions(entries []EntryMatch) []models.Suggestion {
	out := make([]models.Suggestion, 0, len(entries))
	for _, m := range entries {
		out = append(out, models.Suggestion{
			ID:           m.ID.Hex(),
			Source:       models.SourceKnowledgeEntry,
			EntryID:      m.ID,
			QuestionText: m.QuestionText,
			AnswerText:   m.AnswerText,
			Similarity:   m.Similarity,
		})
	}
	return out
}

func chunkSuggestions(chunks []ChunkMatch) []models.Suggestion {
	out := make([]models.Suggestion, 0, len(chunks))
	for _, m := range chunks {
		out = append(out, models.Suggestion{
			ID:          m.ID.Hex(),
			Source:      models.SourceDocumentChunk,
			AnswerText:  m.Content,
			SourceTitle: m.SourceTitle,
			ChunkIndex:  m.ChunkIndex,
			TotalChunks: m.TotalChunks,
			Similarity:  m.Similarity,
		})
	}
	return out
}

// MongoMatchStore runs $vectorSearch against the Atlas vector
// indexes of both collections.
type MongoMatchStore struct {
	entries        *mongo.Collection
	chunks         *mongo.Collection
	entryIndexName string
	chunkIndexName string
	threshold      float64
	topK           int
}

func NewMongoMatchStore(entries, chunks *mongo.Collection, entryIndexName, chunkIndexName string, threshold float64, topK int) *MongoMatchStore {
	return &MongoMatchStore{
		entries:        entries,
		chunks:         chunks,
		entryIndexName: entryIndexName,
		chunkIndexName: chunkIndexName,
		threshold:      threshold,
		topK:           topK,
	}
}

func (ms *MongoMatchStore) MatchEntries(ctx context.Context, vector []float32, courseScope string) ([]EntryMatch, error) {
	search := bson.M{
		"index":         ms.entryIndexName,
		"path":          "embedding",
		"queryVector":   vector,
		"numCandidates": ms.topK * 20,
		"limit":         ms.topK,
	}
	if courseScope != "" {
		search["filter"] = bson.M{"course_scope": courseScope}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: search}},
		{{Key: "$project", Value: bson.M{
			"question_text": 1,
			"answer_text":   1,
			"course_scope":  1,
			"similarity":    bson.M{"$meta": "vectorSearchScore"},
		}}},
		{{Key: "$match", Value: bson.M{"similarity": bson.M{"$gte": ms.threshold}}}},
	}

	cursor, err := ms.entries.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	matches := make([]EntryMatch, 0, ms.topK)
	for cursor.Next(ctx) {
		var row struct {
			ID           primitive.ObjectID `bson:"_id"`
			QuestionText string             `bson:"question_text"`
			AnswerText   string             `bson:"answer_text"`
			CourseScope  string             `bson:"course_scope"`
			Similarity   float64            `bson:"similarity"`
		}
		if err := cursor.Decode(&row); err != nil {
			continue
		}
		matches = append(matches, EntryMatch{
			ID:           row.ID,
			QuestionText: row.QuestionText,
			AnswerText:   row.AnswerText,
			CourseScope:  row.CourseScope,
			Similarity:   row.Similarity,
		})
	}

	return matches, cursor.Err()
}

func (ms *MongoMatchStore) MatchChunks(ctx context.Context, vector []float32) ([]ChunkMatch, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.M{
			"index":         ms.chunkIndexName,
			"path":          "embedding",
			"queryVector":   vector,
			"numCandidates": ms.topK * 20,
			"limit":         ms.topK,
		}}},
		{{Key: "$project", Value: bson.M{
			"source_title": 1,
			"chunk_index":  1,
			"content":      1,
			"metadata":     1,
			"similarity":   bson.M{"$meta": "vectorSearchScore"},
		}}},
		{{Key: "$match", Value: bson.M{"similarity": bson.M{"$gte": ms.threshold}}}},
	}

	cursor, err := ms.chunks.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	matches := make([]ChunkMatch, 0, ms.topK)
	for cursor.Next(ctx) {
		var row struct {
			ID          primitive.ObjectID     `bson:"_id"`
			SourceTitle string                 `bson:"source_title"`
			ChunkIndex  int                    `bson:"chunk_index"`
			Content     string                 `bson:"content"`
			Metadata    map[string]interface{} `bson:"metadata"`
			Similarity  float64                `bson:"similarity"`
		}
		if err := cursor.Decode(&row); err != nil {
			continue
		}
		matches = append(matches, ChunkMatch{
			ID:          row.ID,
			SourceTitle: row.SourceTitle,
			ChunkIndex:  row.ChunkIndex,
			Content:     row.Content,
			TotalChunks: metadataInt(row.Metadata, models.MetaTotalChunks),
			Similarity:  row.Similarity,
		})
	}

	return matches, cursor.Err()
}

// metadataInt reads an int out of loosely-typed chunk metadata
func metadataInt(meta map[string]interface{}, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

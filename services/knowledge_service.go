package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"helpdesk-suggestion-engine/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// KnowledgeService manages instructor-authored Q/A entries. The
// embedding is derived from the question and answer text at write
// time so the curated corpus is always searchable.
type KnowledgeService struct {
	entries    *mongo.Collection
	embeddings *EmbeddingService
}

func NewKnowledgeService(entries *mongo.Collection, embeddings *EmbeddingService) *KnowledgeService {
	return &KnowledgeService{
		entries:    entries,
		embeddings: embeddings,
	}
}

// CreateEntry embeds and inserts a new entry, returning its ID
func (ks *KnowledgeService) CreateEntry(ctx context.Context, entry *models.KnowledgeEntry) (primitive.ObjectID, error) {
	vec, err := ks.embeddings.Embed(ctx, embeddingText(entry))
	if err != nil {
		return primitive.NilObjectID, err
	}

	entry.ID = primitive.NewObjectID()
	entry.Embedding = vec
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt

	if _, err := ks.entries.InsertOne(ctx, entry); err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert knowledge entry: %w", err)
	}
	return entry.ID, nil
}

// UpdateEntry re-embeds and replaces the text fields of an entry.
// Counters are left untouched; only the feedback loop moves them.
func (ks *KnowledgeService) UpdateEntry(ctx context.Context, id primitive.ObjectID, questionText, answerText, courseScope string, tags []string) error {
	entry := &models.KnowledgeEntry{
		QuestionText: questionText,
		AnswerText:   answerText,
	}
	vec, err := ks.embeddings.Embed(ctx, embeddingText(entry))
	if err != nil {
		return err
	}

	res, err := ks.entries.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"question_text": questionText,
			"answer_text":   answerText,
			"course_scope":  courseScope,
			"tags":          tags,
			"embedding":     vec,
			"updated_at":    time.Now(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// GetEntry fetches a single entry by ID
func (ks *KnowledgeService) GetEntry(ctx context.Context, id primitive.ObjectID) (*models.KnowledgeEntry, error) {
	var entry models.KnowledgeEntry
	if err := ks.entries.FindOne(ctx, bson.M{"_id": id}).Decode(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListEntries returns entries, optionally filtered by course scope
func (ks *KnowledgeService) ListEntries(ctx context.Context, courseScope string) ([]models.KnowledgeEntry, error) {
	filter := bson.M{}
	if courseScope != "" {
		filter["course_scope"] = courseScope
	}

	cursor, err := ks.entries.Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := make([]models.KnowledgeEntry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteEntry removes an entry from the curated corpus
func (ks *KnowledgeService) DeleteEntry(ctx context.Context, id primitive.ObjectID) error {
	res, err := ks.entries.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// embeddingText is the canonical text an entry's vector derives from
func embeddingText(entry *models.KnowledgeEntry) string {
	if strings.TrimSpace(entry.AnswerText) == "" {
		return entry.QuestionText
	}
	return entry.QuestionText + "\n" + entry.AnswerText
}

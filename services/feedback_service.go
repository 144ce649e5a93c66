package services

import (
	"context"
	"math"
	"time"

	"helpdesk-suggestion-engine/internal/logger"
	"helpdesk-suggestion-engine/internal/telemetry"
	"helpdesk-suggestion-engine/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FeedbackStore persists suggestion records, feedback events and the
// per-entry counters they move.
type FeedbackStore interface {
	InsertRecords(ctx context.Context, records []models.SuggestionRecord) error
	MarkRecordViewed(ctx context.Context, ticketID string, entryID primitive.ObjectID) (bool, error)
	SetRecordHelpful(ctx context.Context, ticketID string, entryID primitive.ObjectID, isHelpful bool) error
	InsertEvent(ctx context.Context, event models.FeedbackEvent) error
	IncrementViewCount(ctx context.Context, entryID primitive.ObjectID) error
	// IncrementFeedbackCount moves exactly one counter; the boolean
	// reports whether the entry existed.
	IncrementFeedbackCount(ctx context.Context, entryID primitive.ObjectID, isHelpful bool) (bool, error)
}

// FeedbackService records which suggestions were shown and feeds
// view/helpful events back into per-entry counters. All counter
// movement happens through single atomic $inc updates; application
// code never read-modify-writes a counter.
type FeedbackService struct {
	store   FeedbackStore
	metrics *telemetry.Metrics
}

func NewFeedbackService(store FeedbackStore, metrics *telemetry.Metrics) *FeedbackService {
	return &FeedbackService{
		store:   store,
		metrics: metrics,
	}
}

// Record persists suggestion records for a ticket. Best-effort:
// failures are logged and never surfaced to the suggestion caller.
// Only curated-entry suggestions leave a durable trace; document
// chunks are ephemeral per-query results.
func (fs *FeedbackService) Record(ctx context.Context, ticketID string, suggestions []models.Suggestion) {
	records := buildSuggestionRecords(ticketID, suggestions)
	if len(records) == 0 {
		return
	}

	if err := fs.store.InsertRecords(ctx, records); err != nil {
		logger.Warn("Failed to record suggestions", "ticket_id", ticketID, "error", err)
	}
}

// MarkViewed idempotently flags a suggestion record as viewed. The
// entry's view counter moves only on the first transition.
func (fs *FeedbackService) MarkViewed(ctx context.Context, ticketID string, entryID string) error {
	objID, err := primitive.ObjectIDFromHex(entryID)
	if err != nil {
		return err
	}

	transitioned, err := fs.store.MarkRecordViewed(ctx, ticketID, objID)
	if err != nil {
		return err
	}

	if transitioned {
		if err := fs.store.IncrementViewCount(ctx, objID); err != nil {
			logger.Warn("Failed to increment view count", "entry_id", entryID, "error", err)
		}
	}

	return nil
}

// Rate moves exactly one entry counter, then appends the feedback
// event and reflects it on the suggestion record. The counter goes
// first so an event is only ever persisted for an increment that
// applied; rating an entry that no longer exists is
// mongo.ErrNoDocuments and leaves no trace. Repeated identical
// feedback increments again; it is not deduplicated.
func (fs *FeedbackService) Rate(ctx context.Context, ticketID, entryID, studentID string, isHelpful bool) error {
	objID, err := primitive.ObjectIDFromHex(entryID)
	if err != nil {
		return err
	}

	matched, err := fs.store.IncrementFeedbackCount(ctx, objID, isHelpful)
	if err != nil {
		return err
	}
	if !matched {
		return mongo.ErrNoDocuments
	}

	event := models.FeedbackEvent{
		EntryID:   objID,
		TicketID:  ticketID,
		StudentID: studentID,
		IsHelpful: isHelpful,
		CreatedAt: time.Now(),
	}
	if err := fs.store.InsertEvent(ctx, event); err != nil {
		return err
	}

	if err := fs.store.SetRecordHelpful(ctx, ticketID, objID, isHelpful); err != nil {
		logger.Warn("Failed to update suggestion record", "ticket_id", ticketID, "error", err)
	}

	if fs.metrics != nil {
		fs.metrics.FeedbackEvents.Add(ctx, 1)
	}
	return nil
}

// buildSuggestionRecords keeps only curated-entry suggestions,
// preserving their rank position in the merged list.
func buildSuggestionRecords(ticketID string, suggestions []models.Suggestion) []models.SuggestionRecord {
	records := make([]models.SuggestionRecord, 0, len(suggestions))
	for rank, s := range suggestions {
		if s.Source != models.SourceKnowledgeEntry {
			continue
		}
		records = append(records, models.SuggestionRecord{
			TicketID:          ticketID,
			EntryID:           s.EntryID,
			SimilarityPercent: int(math.Round(s.Similarity * 100)),
			RankPosition:      rank + 1,
			WasViewed:         false,
			CreatedAt:         time.Now(),
		})
	}
	return records
}

// MongoFeedbackStore is the MongoDB-backed feedback store
type MongoFeedbackStore struct {
	records *mongo.Collection
	entries *mongo.Collection
	events  *mongo.Collection
}

func NewMongoFeedbackStore(records, entries, events *mongo.Collection) *MongoFeedbackStore {
	return &MongoFeedbackStore{
		records: records,
		entries: entries,
		events:  events,
	}
}

func (ms *MongoFeedbackStore) InsertRecords(ctx context.Context, records []models.SuggestionRecord) error {
	docs := make([]interface{}, len(records))
	for i := range records {
		docs[i] = records[i]
	}
	_, err := ms.records.InsertMany(ctx, docs)
	return err
}

func (ms *MongoFeedbackStore) MarkRecordViewed(ctx context.Context, ticketID string, entryID primitive.ObjectID) (bool, error) {
	res, err := ms.records.UpdateOne(ctx,
		bson.M{"ticket_id": ticketID, "entry_id": entryID, "was_viewed": false},
		bson.M{"$set": bson.M{"was_viewed": true}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (ms *MongoFeedbackStore) SetRecordHelpful(ctx context.Context, ticketID string, entryID primitive.ObjectID, isHelpful bool) error {
	_, err := ms.records.UpdateOne(ctx,
		bson.M{"ticket_id": ticketID, "entry_id": entryID},
		bson.M{"$set": bson.M{"was_helpful": isHelpful}},
	)
	return err
}

func (ms *MongoFeedbackStore) InsertEvent(ctx context.Context, event models.FeedbackEvent) error {
	_, err := ms.events.InsertOne(ctx, event)
	return err
}

func (ms *MongoFeedbackStore) IncrementViewCount(ctx context.Context, entryID primitive.ObjectID) error {
	_, err := ms.entries.UpdateOne(ctx,
		bson.M{"_id": entryID},
		bson.M{"$inc": bson.M{"view_count": 1}},
	)
	return err
}

func (ms *MongoFeedbackStore) IncrementFeedbackCount(ctx context.Context, entryID primitive.ObjectID, isHelpful bool) (bool, error) {
	counter := "helpful_count"
	if !isHelpful {
		counter = "not_helpful_count"
	}

	res, err := ms.entries.UpdateOne(ctx,
		bson.M{"_id": entryID},
		bson.M{"$inc": bson.M{counter: 1}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

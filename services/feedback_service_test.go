package services

import (
	"context"
	"errors"
	"testing"

	"helpdesk-suggestion-engine/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeFeedbackStore struct {
	records        []models.SuggestionRecord
	events         []models.FeedbackEvent
	helpfulSet     int
	viewIncs       int
	helpfulIncs    int
	notHelpfulIncs int
	knownEntries   map[primitive.ObjectID]bool
	viewTransition bool
	incErr         error
}

func (f *fakeFeedbackStore) InsertRecords(ctx context.Context, records []models.SuggestionRecord) error {
	f.records = append(f.records, records...)
	return nil
}

func (f *fakeFeedbackStore) MarkRecordViewed(ctx context.Context, ticketID string, entryID primitive.ObjectID) (bool, error) {
	return f.viewTransition, nil
}

func (f *fakeFeedbackStore) SetRecordHelpful(ctx context.Context, ticketID string, entryID primitive.ObjectID, isHelpful bool) error {
	f.helpfulSet++
	return nil
}

func (f *fakeFeedbackStore) InsertEvent(ctx context.Context, event models.FeedbackEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeFeedbackStore) IncrementViewCount(ctx context.Context, entryID primitive.ObjectID) error {
	f.viewIncs++
	return nil
}

func (f *fakeFeedbackStore) IncrementFeedbackCount(ctx context.Context, entryID primitive.ObjectID, isHelpful bool) (bool, error) {
	if f.incErr != nil {
		return false, f.incErr
	}
	if !f.knownEntries[entryID] {
		return false, nil
	}
	if isHelpful {
		f.helpfulIncs++
	} else {
		f.notHelpfulIncs++
	}
	return true, nil
}

func TestBuildSuggestionRecordsFiltersDocumentChunks(t *testing.T) {
	entryID := primitive.NewObjectID()
	suggestions := []models.Suggestion{
		{Source: models.SourceDocumentChunk, SourceTitle: "syllabus", Similarity: 0.93},
		{Source: models.SourceKnowledgeEntry, EntryID: entryID, Similarity: 0.876},
		{Source: models.SourceDocumentChunk, SourceTitle: "notes", Similarity: 0.80},
	}

	records := buildSuggestionRecords("ticket-42", suggestions)

	if len(records) != 1 {
		t.Fatalf("expected 1 record (curated entries only), got %d", len(records))
	}

	r := records[0]
	if r.TicketID != "ticket-42" {
		t.Errorf("wrong ticket ID %q", r.TicketID)
	}
	if r.EntryID != entryID {
		t.Errorf("wrong entry ID %s", r.EntryID.Hex())
	}
	if r.SimilarityPercent != 88 {
		t.Errorf("similarity 0.876 should round to 88, got %d", r.SimilarityPercent)
	}
	// Rank reflects position in the full merged list, not among records
	if r.RankPosition != 2 {
		t.Errorf("expected rank 2, got %d", r.RankPosition)
	}
	if r.WasViewed {
		t.Error("new records must start unviewed")
	}
	if r.WasHelpful != nil {
		t.Error("new records must start without a helpfulness verdict")
	}
}

func TestRateMissingEntryLeavesNoTrace(t *testing.T) {
	store := &fakeFeedbackStore{knownEntries: map[primitive.ObjectID]bool{}}
	fs := NewFeedbackService(store, nil)

	deletedID := primitive.NewObjectID()
	err := fs.Rate(context.Background(), "ticket-1", deletedID.Hex(), "student-1", true)
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("expected mongo.ErrNoDocuments for a deleted entry, got %v", err)
	}

	if len(store.events) != 0 {
		t.Error("no feedback event may be persisted when the counter did not move")
	}
	if store.helpfulSet != 0 {
		t.Error("suggestion record must stay untouched when the counter did not move")
	}
	if store.helpfulIncs != 0 || store.notHelpfulIncs != 0 {
		t.Error("no counter may move for a missing entry")
	}
}

func TestRateMovesExactlyOneCounter(t *testing.T) {
	entryID := primitive.NewObjectID()
	store := &fakeFeedbackStore{knownEntries: map[primitive.ObjectID]bool{entryID: true}}
	fs := NewFeedbackService(store, nil)

	if err := fs.Rate(context.Background(), "ticket-1", entryID.Hex(), "student-1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := fs.Rate(context.Background(), "ticket-1", entryID.Hex(), "student-2", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.helpfulIncs != 1 || store.notHelpfulIncs != 1 {
		t.Errorf("expected one increment per rating, got helpful=%d not_helpful=%d",
			store.helpfulIncs, store.notHelpfulIncs)
	}
	if len(store.events) != 2 {
		t.Fatalf("expected 2 feedback events, got %d", len(store.events))
	}
	if !store.events[0].IsHelpful || store.events[1].IsHelpful {
		t.Error("events must carry the verdict they were rated with")
	}
	if store.helpfulSet != 2 {
		t.Errorf("expected the record updated per rating, got %d updates", store.helpfulSet)
	}
}

func TestRateCounterErrorAbortsBeforeEvent(t *testing.T) {
	store := &fakeFeedbackStore{incErr: errors.New("write failed")}
	fs := NewFeedbackService(store, nil)

	err := fs.Rate(context.Background(), "ticket-1", primitive.NewObjectID().Hex(), "s", true)
	if err == nil {
		t.Fatal("expected counter write error to surface")
	}
	if len(store.events) != 0 {
		t.Error("failed increment must not leave an event behind")
	}
}

func TestRateRejectsMalformedEntryID(t *testing.T) {
	fs := NewFeedbackService(&fakeFeedbackStore{}, nil)

	if err := fs.Rate(context.Background(), "ticket-1", "not-an-object-id", "s", true); err == nil {
		t.Fatal("expected error for malformed entry ID")
	}
}

func TestMarkViewedIncrementsOnlyOnFirstTransition(t *testing.T) {
	entryID := primitive.NewObjectID()

	store := &fakeFeedbackStore{viewTransition: true}
	fs := NewFeedbackService(store, nil)
	if err := fs.MarkViewed(context.Background(), "ticket-1", entryID.Hex()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.viewIncs != 1 {
		t.Errorf("first view must increment the counter, got %d", store.viewIncs)
	}

	// Already-viewed record: no transition, no increment
	store = &fakeFeedbackStore{viewTransition: false}
	fs = NewFeedbackService(store, nil)
	if err := fs.MarkViewed(context.Background(), "ticket-1", entryID.Hex()); err != nil {
		t.Fatalf("repeated view must stay idempotent: %v", err)
	}
	if store.viewIncs != 0 {
		t.Errorf("repeated view must not increment the counter, got %d", store.viewIncs)
	}
}

func TestBuildSuggestionRecordsEmpty(t *testing.T) {
	if records := buildSuggestionRecords("t", nil); len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}

	onlyChunks := []models.Suggestion{
		{Source: models.SourceDocumentChunk, Similarity: 0.9},
	}
	if records := buildSuggestionRecords("t", onlyChunks); len(records) != 0 {
		t.Errorf("document-only suggestions must leave no records, got %d", len(records))
	}
}

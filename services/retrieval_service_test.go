package services

import (
	"context"
	"errors"
	"testing"

	"helpdesk-suggestion-engine/internal/config"
	"helpdesk-suggestion-engine/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeMatchStore struct {
	entries     []EntryMatch
	chunks      []ChunkMatch
	entriesErr  error
	chunksErr   error
	courseScope string
}

func (f *fakeMatchStore) MatchEntries(ctx context.Context, vector []float32, courseScope string) ([]EntryMatch, error) {
	f.courseScope = courseScope
	if f.entriesErr != nil {
		return nil, f.entriesErr
	}
	return f.entries, nil
}

func (f *fakeMatchStore) MatchChunks(ctx context.Context, vector []float32) ([]ChunkMatch, error) {
	if f.chunksErr != nil {
		return nil, f.chunksErr
	}
	return f.chunks, nil
}

func newTestRetrievalService(store MatchStore) *RetrievalService {
	cfg := &config.Config{
		VectorDimensions: 8,
		EmbedBatchSize:   5,
		EmbedBatchDelay:  1,
	}
	embeddings := NewEmbeddingService(cfg, &fakeEmbedder{dimensions: 8}, nil, nil)
	return NewRetrievalService(embeddings, store, 3, nil)
}

func TestRetrieveMergesBothSources(t *testing.T) {
	store := &fakeMatchStore{
		entries: []EntryMatch{
			{ID: primitive.NewObjectID(), QuestionText: "q1", AnswerText: "a1", Similarity: 0.92},
		},
		chunks: []ChunkMatch{
			{ID: primitive.NewObjectID(), SourceTitle: "syllabus", Content: "c1", TotalChunks: 3, Similarity: 0.88},
		},
	}
	rs := newTestRetrievalService(store)

	suggestions, err := rs.Retrieve(context.Background(), "how do I submit?", "cs101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(suggestions))
	}
	if suggestions[0].Source != models.SourceKnowledgeEntry {
		t.Errorf("highest-similarity curated entry should rank first, got %s", suggestions[0].Source)
	}
	if suggestions[1].TotalChunks != 3 {
		t.Errorf("document suggestion lost total_chunks, got %d", suggestions[1].TotalChunks)
	}
	if store.courseScope != "cs101" {
		t.Errorf("course scope not passed through, got %q", store.courseScope)
	}
}

func TestRetrieveDegradesFailedBranch(t *testing.T) {
	store := &fakeMatchStore{
		entriesErr: errors.New("index unavailable"),
		chunks: []ChunkMatch{
			{ID: primitive.NewObjectID(), SourceTitle: "notes", Content: "c1", Similarity: 0.81},
		},
	}
	rs := newTestRetrievalService(store)

	suggestions, err := rs.Retrieve(context.Background(), "question", "")
	if err != nil {
		t.Fatalf("a single failed branch must not be an error: %v", err)
	}

	if len(suggestions) != 1 {
		t.Fatalf("expected the surviving branch's result, got %d suggestions", len(suggestions))
	}
	if suggestions[0].Source != models.SourceDocumentChunk {
		t.Errorf("expected document suggestion, got %s", suggestions[0].Source)
	}
}

func TestRetrieveBothBranchesFailingYieldsEmpty(t *testing.T) {
	store := &fakeMatchStore{
		entriesErr: errors.New("down"),
		chunksErr:  errors.New("down"),
	}
	rs := newTestRetrievalService(store)

	suggestions, err := rs.Retrieve(context.Background(), "question", "")
	if err != nil {
		t.Fatalf("degraded retrieval must not be an error: %v", err)
	}
	if len(suggestions) != 0 {
		t.Errorf("expected empty result, got %d suggestions", len(suggestions))
	}
}

func TestRetrieveEmbeddingFailureIsFatal(t *testing.T) {
	cfg := &config.Config{
		VectorDimensions: 8,
		EmbedBatchSize:   5,
		EmbedBatchDelay:  1,
	}
	embeddings := NewEmbeddingService(cfg, &fakeEmbedder{dimensions: 4}, nil, nil) // wrong dimension
	rs := NewRetrievalService(embeddings, &fakeMatchStore{}, 3, nil)

	if _, err := rs.Retrieve(context.Background(), "question", ""); err == nil {
		t.Fatal("embedding failure must surface as an error")
	}
}

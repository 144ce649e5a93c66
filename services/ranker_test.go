package services

import (
	"testing"

	"helpdesk-suggestion-engine/models"
)

func TestClassifyConfidence(t *testing.T) {
	tests := []struct {
		similarity float64
		want       models.ConfidenceTier
	}{
		{0.90, models.ConfidenceHigh},
		{0.85, models.ConfidenceHigh},
		{0.80, models.ConfidenceMedium},
		{0.75, models.ConfidenceMedium},
		{0.74, models.ConfidenceLow},
		{0.60, models.ConfidenceLow},
	}

	for _, tt := range tests {
		if got := ClassifyConfidence(tt.similarity); got != tt.want {
			t.Errorf("ClassifyConfidence(%.2f) = %s, want %s", tt.similarity, got, tt.want)
		}
	}
}

func TestMergeSuggestionsOrdersBySimilarity(t *testing.T) {
	curated := []models.Suggestion{
		{ID: "c1", Source: models.SourceKnowledgeEntry, Similarity: 0.90},
		{ID: "c2", Source: models.SourceKnowledgeEntry, Similarity: 0.80},
	}
	document := []models.Suggestion{
		{ID: "d1", Source: models.SourceDocumentChunk, Similarity: 0.95},
	}

	merged := MergeSuggestions(curated, document, 3)

	wantOrder := []string{"d1", "c1", "c2"}
	if len(merged) != len(wantOrder) {
		t.Fatalf("expected %d suggestions, got %d", len(wantOrder), len(merged))
	}
	for i, want := range wantOrder {
		if merged[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, merged[i].ID)
		}
	}
}

func TestMergeSuggestionsTiesResolveCuratedFirst(t *testing.T) {
	curated := []models.Suggestion{
		{ID: "c1", Source: models.SourceKnowledgeEntry, Similarity: 0.88},
	}
	document := []models.Suggestion{
		{ID: "d1", Source: models.SourceDocumentChunk, Similarity: 0.88},
	}

	merged := MergeSuggestions(curated, document, 3)

	if len(merged) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(merged))
	}
	if merged[0].ID != "c1" {
		t.Errorf("tied similarity must rank curated entry first, got %s", merged[0].ID)
	}
}

func TestMergeSuggestionsTruncatesToMax(t *testing.T) {
	curated := []models.Suggestion{
		{ID: "c1", Similarity: 0.92},
		{ID: "c2", Similarity: 0.89},
	}
	document := []models.Suggestion{
		{ID: "d1", Similarity: 0.91},
		{ID: "d2", Similarity: 0.73},
	}

	merged := MergeSuggestions(curated, document, 3)

	if len(merged) != 3 {
		t.Fatalf("expected truncation to 3, got %d", len(merged))
	}
	for _, s := range merged {
		if s.ID == "d2" {
			t.Error("lowest-scoring suggestion should have been truncated")
		}
	}
}

func TestMergeSuggestionsAssignsConfidence(t *testing.T) {
	merged := MergeSuggestions(
		[]models.Suggestion{{ID: "c1", Similarity: 0.86}},
		[]models.Suggestion{{ID: "d1", Similarity: 0.76}, {ID: "d2", Similarity: 0.71}},
		3,
	)

	want := map[string]models.ConfidenceTier{
		"c1": models.ConfidenceHigh,
		"d1": models.ConfidenceMedium,
		"d2": models.ConfidenceLow,
	}
	for _, s := range merged {
		if s.Confidence != want[s.ID] {
			t.Errorf("%s: expected confidence %s, got %s", s.ID, want[s.ID], s.Confidence)
		}
	}
}

func TestMergeSuggestionsEmptyInputs(t *testing.T) {
	merged := MergeSuggestions(nil, nil, 3)
	if len(merged) != 0 {
		t.Errorf("expected empty result, got %d suggestions", len(merged))
	}
}

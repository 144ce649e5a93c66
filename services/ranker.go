package services

import (
	"sort"

	"helpdesk-suggestion-engine/models"
)

// Confidence tier thresholds. Tiering is display-only; ranking is
// always by raw similarity.
const (
	highConfidenceMin   = 0.85
	mediumConfidenceMin = 0.75
)

// ClassifyConfidence buckets a similarity score into a display tier
func ClassifyConfidence(similarity float64) models.ConfidenceTier {
	switch {
	case similarity >= highConfidenceMin:
		return models.ConfidenceHigh
	case similarity >= mediumConfidenceMin:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// MergeSuggestions combines curated-entry and document-chunk matches
// into one ranked list of at most max suggestions. Curated matches
// are concatenated first so that similarity ties resolve curated
// before document, keeping output deterministic.
func MergeSuggestions(curated, document []models.Suggestion, max int) []models.Suggestion {
	merged := make([]models.Suggestion, 0, len(curated)+len(document))
	merged = append(merged, curated...)
	merged = append(merged, document...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Similarity > merged[j].Similarity
	})

	if max > 0 && len(merged) > max {
		merged = merged[:max]
	}

	for i := range merged {
		merged[i].Confidence = ClassifyConfidence(merged[i].Similarity)
	}

	return merged
}

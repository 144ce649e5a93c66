package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	SuggestionsServed     metric.Int64Counter
	SuggestionLatency     metric.Float64Histogram
	EmbeddingCalls        metric.Int64Counter
	SynthesisOutcomes     metric.Int64Counter
	RetrievalDegradations metric.Int64Counter
	FeedbackEvents        metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("helpdesk-suggestion-engine")

	suggestionsServed, err := meter.Int64Counter(
		"suggestions.served.total",
		metric.WithDescription("Total suggestions returned to callers"),
	)
	if err != nil {
		return nil, err
	}

	suggestionLatency, err := meter.Float64Histogram(
		"suggestions.request.duration",
		metric.WithDescription("Suggestion request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	embeddingCalls, err := meter.Int64Counter(
		"embeddings.calls.total",
		metric.WithDescription("Total embedding API calls"),
	)
	if err != nil {
		return nil, err
	}

	synthesisOutcomes, err := meter.Int64Counter(
		"synthesis.outcomes.total",
		metric.WithDescription("Synthesis attempts by outcome (accepted, rejected, error)"),
	)
	if err != nil {
		return nil, err
	}

	retrievalDegradations, err := meter.Int64Counter(
		"retrieval.degradations.total",
		metric.WithDescription("Similarity lookups that failed and degraded to empty"),
	)
	if err != nil {
		return nil, err
	}

	feedbackEvents, err := meter.Int64Counter(
		"feedback.events.total",
		metric.WithDescription("Feedback events recorded"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		SuggestionsServed:     suggestionsServed,
		SuggestionLatency:     suggestionLatency,
		EmbeddingCalls:        embeddingCalls,
		SynthesisOutcomes:     synthesisOutcomes,
		RetrievalDegradations: retrievalDegradations,
		FeedbackEvents:        feedbackEvents,
	}, nil
}

// RecordSuggestionRequest records one served suggestion request
func (m *Metrics) RecordSuggestionRequest(ctx context.Context, count int, durationSec float64) {
	if m == nil {
		return
	}
	m.SuggestionsServed.Add(ctx, int64(count))
	m.SuggestionLatency.Record(ctx, durationSec)
}

// RecordSynthesisOutcome records a synthesis attempt result
func (m *Metrics) RecordSynthesisOutcome(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.SynthesisOutcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordDegradation records a failed similarity lookup branch
func (m *Metrics) RecordDegradation(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.RetrievalDegradations.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

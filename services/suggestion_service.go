package services

import (
	"context"
	"time"

	"helpdesk-suggestion-engine/internal/telemetry"
	"helpdesk-suggestion-engine/models"
)

// SuggestionService is the query-time entry point: retrieve from both
// corpora, synthesize document-sourced answers where worthwhile, then
// hand the final set to the recorder without blocking the caller.
type SuggestionService struct {
	retrieval *RetrievalService
	synthesis *SynthesisService
	feedback  *FeedbackService
	metrics   *telemetry.Metrics
}

func NewSuggestionService(retrieval *RetrievalService, synthesis *SynthesisService, feedback *FeedbackService, metrics *telemetry.Metrics) *SuggestionService {
	return &SuggestionService{
		retrieval: retrieval,
		synthesis: synthesis,
		feedback:  feedback,
		metrics:   metrics,
	}
}

// SuggestForTicket returns ranked suggestions for a ticket question.
// An empty result is a valid state the caller can render as "no
// similar material found"; it is never an error.
func (ss *SuggestionService) SuggestForTicket(ctx context.Context, ticketID, question, courseScope string) ([]models.Suggestion, error) {
	start := time.Now()

	suggestions, err := ss.retrieval.Retrieve(ctx, question, courseScope)
	if err != nil {
		return nil, err
	}

	ss.synthesizeDocumentAnswers(ctx, question, suggestions)

	// Recording must never delay or fail the response
	recorded := make([]models.Suggestion, len(suggestions))
	copy(recorded, suggestions)
	go func() {
		recordCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		ss.feedback.Record(recordCtx, ticketID, recorded)
	}()

	ss.metrics.RecordSuggestionRequest(ctx, len(suggestions), time.Since(start).Seconds())
	return suggestions, nil
}

// synthesizeDocumentAnswers rewrites document-sourced suggestions
// whose source document spans more than one chunk. All matched chunks
// of the same document feed one synthesis call; the gate falling
// through leaves the raw chunk content in place.
func (ss *SuggestionService) synthesizeDocumentAnswers(ctx context.Context, question string, suggestions []models.Suggestion) {
	chunksByTitle := make(map[string][]string)
	for _, s := range suggestions {
		if s.Source == models.SourceDocumentChunk && s.TotalChunks > 1 {
			chunksByTitle[s.SourceTitle] = append(chunksByTitle[s.SourceTitle], s.AnswerText)
		}
	}

	answers := make(map[string]string, len(chunksByTitle))
	for title, chunks := range chunksByTitle {
		if answer, ok := ss.synthesis.Synthesize(ctx, question, chunks); ok {
			answers[title] = answer
		}
	}

	for i := range suggestions {
		s := &suggestions[i]
		if s.Source != models.SourceDocumentChunk {
			continue
		}
		if answer, ok := answers[s.SourceTitle]; ok {
			s.AnswerText = answer
			s.Synthesized = true
		}
	}
}

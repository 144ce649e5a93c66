package services

import (
	"context"
	"fmt"
	"strings"

	"helpdesk-suggestion-engine/internal/ai"
	"helpdesk-suggestion-engine/internal/logger"
	"helpdesk-suggestion-engine/internal/telemetry"
)

// SynthesisService consolidates multi-chunk document hits into one
// coherent answer. A quality gate filters out non-answers; gate
// failure or an API error degrades to the raw chunk content, never
// to a failed retrieval.
type SynthesisService struct {
	completer ai.Completer
	minLength int
	banned    []string
	metrics   *telemetry.Metrics
}

func NewSynthesisService(completer ai.Completer, minLength int, bannedPhrases []string, metrics *telemetry.Metrics) *SynthesisService {
	banned := make([]string, 0, len(bannedPhrases))
	for _, p := range bannedPhrases {
		p = strings.TrimSpace(strings.ToLower(p))
		if p != "" {
			banned = append(banned, p)
		}
	}
	return &SynthesisService{
		completer: completer,
		minLength: minLength,
		banned:    banned,
		metrics:   metrics,
	}
}

// Synthesize builds one answer from the question and raw chunk
// content. The second return is false when the caller should fall
// back to the raw chunks.
func (ss *SynthesisService) Synthesize(ctx context.Context, question string, chunks []string) (string, bool) {
	if len(chunks) == 0 {
		return "", false
	}

	prompt := buildSynthesisPrompt(question, chunks)

	answer, err := ss.completer.Complete(ctx, prompt)
	if err != nil {
		logger.Warn("Answer synthesis failed, falling back to raw content", "error", err)
		ss.metrics.RecordSynthesisOutcome(ctx, "error")
		return "", false
	}

	if !ss.passesQualityGate(answer) {
		logger.Debug("Synthesized answer rejected by quality gate", "length", len(answer))
		ss.metrics.RecordSynthesisOutcome(ctx, "rejected")
		return "", false
	}

	ss.metrics.RecordSynthesisOutcome(ctx, "accepted")
	return answer, true
}

// passesQualityGate accepts an answer only if it is long enough and
// contains none of the configured low-quality phrases.
func (ss *SynthesisService) passesQualityGate(answer string) bool {
	if len(answer) < ss.minLength {
		return false
	}

	lower := strings.ToLower(answer)
	for _, phrase := range ss.banned {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	return true
}

func buildSynthesisPrompt(question string, chunks []string) string {
	var prompt strings.Builder

	prompt.WriteString("You are answering a student's question using excerpts from course reference material.\n\n")
	for i, chunk := range chunks {
		prompt.WriteString(fmt.Sprintf("Excerpt %d:\n%s\n\n", i+1, chunk))
	}
	prompt.WriteString("Question: ")
	prompt.WriteString(question)
	prompt.WriteString("\n\nAnswer strictly from the excerpts above, in the same language as the question. ")
	prompt.WriteString("Do not invent facts. If the excerpts do not contain enough information to answer, say so explicitly.")

	return prompt.String()
}

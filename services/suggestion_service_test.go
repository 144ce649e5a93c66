package services

import (
	"context"
	"strings"
	"testing"

	"helpdesk-suggestion-engine/models"
)

func TestSynthesizeDocumentAnswersRewritesMultiChunkDocs(t *testing.T) {
	completer := &fakeCompleter{
		response: strings.Repeat("a coherent synthesized answer built from chunks ", 2),
	}
	ss := &SuggestionService{
		synthesis: NewSynthesisService(completer, 50, defaultBanned, nil),
	}

	suggestions := []models.Suggestion{
		{Source: models.SourceKnowledgeEntry, AnswerText: "curated answer", Similarity: 0.9},
		{Source: models.SourceDocumentChunk, SourceTitle: "syllabus", AnswerText: "chunk 1", TotalChunks: 3, Similarity: 0.85},
		{Source: models.SourceDocumentChunk, SourceTitle: "syllabus", AnswerText: "chunk 2", TotalChunks: 3, Similarity: 0.80},
	}

	ss.synthesizeDocumentAnswers(context.Background(), "question", suggestions)

	if len(completer.prompts) != 1 {
		t.Fatalf("matched chunks of one document must share one synthesis call, got %d", len(completer.prompts))
	}
	for _, want := range []string{"chunk 1", "chunk 2"} {
		if !strings.Contains(completer.prompts[0], want) {
			t.Errorf("synthesis prompt missing %q", want)
		}
	}

	if suggestions[0].Synthesized || suggestions[0].AnswerText != "curated answer" {
		t.Error("curated suggestion must not be rewritten")
	}
	for _, i := range []int{1, 2} {
		if !suggestions[i].Synthesized {
			t.Errorf("suggestion %d should be marked synthesized", i)
		}
		if suggestions[i].AnswerText != completer.response {
			t.Errorf("suggestion %d kept raw chunk content", i)
		}
	}
}

func TestSynthesizeDocumentAnswersSkipsSingleChunkDocs(t *testing.T) {
	completer := &fakeCompleter{response: strings.Repeat("long enough answer ", 5)}
	ss := &SuggestionService{
		synthesis: NewSynthesisService(completer, 50, defaultBanned, nil),
	}

	suggestions := []models.Suggestion{
		{Source: models.SourceDocumentChunk, SourceTitle: "one-pager", AnswerText: "whole doc", TotalChunks: 1, Similarity: 0.9},
	}

	ss.synthesizeDocumentAnswers(context.Background(), "question", suggestions)

	if len(completer.prompts) != 0 {
		t.Error("single-chunk documents need no synthesis")
	}
	if suggestions[0].Synthesized || suggestions[0].AnswerText != "whole doc" {
		t.Error("single-chunk suggestion must stay untouched")
	}
}

func TestSynthesizeDocumentAnswersFallsBackOnRejection(t *testing.T) {
	// Gate rejects the short answer; raw chunks must survive
	ss := &SuggestionService{
		synthesis: NewSynthesisService(&fakeCompleter{response: "too short"}, 50, defaultBanned, nil),
	}

	suggestions := []models.Suggestion{
		{Source: models.SourceDocumentChunk, SourceTitle: "notes", AnswerText: "raw chunk", TotalChunks: 2, Similarity: 0.82},
	}

	ss.synthesizeDocumentAnswers(context.Background(), "question", suggestions)

	if suggestions[0].Synthesized {
		t.Error("rejected synthesis must not mark the suggestion")
	}
	if suggestions[0].AnswerText != "raw chunk" {
		t.Errorf("expected raw content preserved, got %q", suggestions[0].AnswerText)
	}
}

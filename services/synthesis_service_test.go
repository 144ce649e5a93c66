package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeCompleter struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

var defaultBanned = []string{"don't know", "do not know", "no information", "cannot answer", "unable to answer"}

func TestSynthesizeAcceptsGoodAnswer(t *testing.T) {
	completer := &fakeCompleter{
		response: "The deadline for the final project is May 15th, submitted through the course portal before midnight.",
	}
	ss := NewSynthesisService(completer, 50, defaultBanned, nil)

	answer, ok := ss.Synthesize(context.Background(), "When is the project due?", []string{"chunk one", "chunk two"})
	if !ok {
		t.Fatal("expected answer to pass the quality gate")
	}
	if answer != completer.response {
		t.Errorf("unexpected answer: %q", answer)
	}
}

func TestSynthesizeRejectsShortAnswer(t *testing.T) {
	completer := &fakeCompleter{response: "May 15th."}
	ss := NewSynthesisService(completer, 50, defaultBanned, nil)

	if _, ok := ss.Synthesize(context.Background(), "When?", []string{"chunk"}); ok {
		t.Error("answer below minimum length must be rejected")
	}
}

func TestSynthesizeRejectsBannedPhrases(t *testing.T) {
	tests := []string{
		"Based on the provided excerpts, I don't know the answer to this question, unfortunately.",
		"The excerpts contain NO INFORMATION about the topic you are asking about, sorry about that.",
		"I am Unable To Answer this question from the given reference material excerpts provided.",
	}

	for _, response := range tests {
		ss := NewSynthesisService(&fakeCompleter{response: response}, 50, defaultBanned, nil)
		if _, ok := ss.Synthesize(context.Background(), "question", []string{"chunk"}); ok {
			t.Errorf("answer %q should have been rejected", response)
		}
	}
}

func TestSynthesizeFallsBackOnError(t *testing.T) {
	ss := NewSynthesisService(&fakeCompleter{err: errors.New("api unavailable")}, 50, defaultBanned, nil)

	answer, ok := ss.Synthesize(context.Background(), "question", []string{"chunk"})
	if ok {
		t.Error("completion error must fall back, not succeed")
	}
	if answer != "" {
		t.Errorf("expected empty answer on fallback, got %q", answer)
	}
}

func TestSynthesizeEmptyChunks(t *testing.T) {
	completer := &fakeCompleter{response: "should never be called"}
	ss := NewSynthesisService(completer, 50, defaultBanned, nil)

	if _, ok := ss.Synthesize(context.Background(), "question", nil); ok {
		t.Error("no chunks means no synthesis")
	}
	if len(completer.prompts) != 0 {
		t.Error("completer must not be called without chunks")
	}
}

func TestSynthesisPromptContainsChunksAndQuestion(t *testing.T) {
	completer := &fakeCompleter{
		response: strings.Repeat("a sufficiently long synthesized answer ", 3),
	}
	ss := NewSynthesisService(completer, 50, defaultBanned, nil)

	ss.Synthesize(context.Background(), "what is the grading policy?", []string{"first excerpt", "second excerpt"})

	if len(completer.prompts) != 1 {
		t.Fatalf("expected 1 completion call, got %d", len(completer.prompts))
	}
	prompt := completer.prompts[0]
	for _, want := range []string{"first excerpt", "second excerpt", "what is the grading policy?"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

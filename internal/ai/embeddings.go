package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"helpdesk-suggestion-engine/internal/config"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// EmbeddingError is the structured failure of an embedding call:
// either the external API failed or the input was empty after trimming.
type EmbeddingError struct {
	Status  int
	Message string
	Err     error
}

func (e *EmbeddingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("embedding error (status %d): %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("embedding error (status %d): %s", e.Status, e.Message)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// Embedder converts free text into a fixed-dimension vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// GeminiEmbedder produces embeddings via Google Generative AI
// (text-embedding-004 in the reference deployment). The client is
// constructed once at process start and shared.
type GeminiEmbedder struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiEmbedder(cfg *config.Config) (*GeminiEmbedder, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY for embeddings")
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	return &GeminiEmbedder{
		client:  client,
		model:   cfg.EmbeddingModel,
		timeout: time.Duration(cfg.EmbedTimeout) * time.Second,
	}, nil
}

func (ge *GeminiEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, ge.timeout)
	defer cancel()

	model := ge.client.EmbeddingModel(ge.model)
	resp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, &EmbeddingError{
			Status:  apiStatus(err),
			Message: "embedding request failed",
			Err:     err,
		}
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, &EmbeddingError{Status: 502, Message: "no embedding returned"}
	}

	// genai SDK returns []float32 for Embedding.Values
	return resp.Embedding.Values, nil
}

func (ge *GeminiEmbedder) Close() error {
	if ge.client != nil {
		return ge.client.Close()
	}
	return nil
}

// apiStatus extracts an HTTP-like status from a Google API error
func apiStatus(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 502
}

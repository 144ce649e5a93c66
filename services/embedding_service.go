package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"helpdesk-suggestion-engine/internal/ai"
	"helpdesk-suggestion-engine/internal/config"
	"helpdesk-suggestion-engine/internal/logger"
	"helpdesk-suggestion-engine/internal/telemetry"

	"github.com/redis/go-redis/v9"
)

// EmbeddingService fronts the embedding backend with input
// validation, strict dimension checking and an optional Redis
// read-through cache. Batch mode respects the external API's quota:
// fixed-size groups issued concurrently, serial across groups with a
// mandatory inter-group delay.
type EmbeddingService struct {
	embedder   ai.Embedder
	cache      *redis.Client
	dimensions int
	batchSize  int
	batchDelay time.Duration
	cacheTTL   time.Duration
	metrics    *telemetry.Metrics
}

func NewEmbeddingService(cfg *config.Config, embedder ai.Embedder, cache *redis.Client, metrics *telemetry.Metrics) *EmbeddingService {
	return &EmbeddingService{
		embedder:   embedder,
		cache:      cache,
		dimensions: cfg.VectorDimensions,
		batchSize:  cfg.EmbedBatchSize,
		batchDelay: time.Duration(cfg.EmbedBatchDelay) * time.Millisecond,
		cacheTTL:   time.Duration(cfg.EmbedCacheTTL) * time.Second,
		metrics:    metrics,
	}
}

// Embed returns the embedding vector for a single text. Empty input
// after trimming is a client-side precondition violation, never a
// service call.
func (es *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ai.EmbeddingError{Status: 400, Message: "cannot embed empty text"}
	}

	if vec, ok := es.cacheGet(ctx, text); ok {
		return vec, nil
	}

	if es.metrics != nil {
		es.metrics.EmbeddingCalls.Add(ctx, 1)
	}
	vec, err := es.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := es.ValidateDimensions(vec); err != nil {
		return nil, err
	}

	es.cacheSet(ctx, text, vec)
	return vec, nil
}

// EmbedBatch embeds texts in fixed-size groups: concurrent within a
// group, serial across groups with a fixed delay between them. The
// delay is a rate-limiting discipline, not an optimization target.
func (es *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))
	groupSize := es.batchSize
	if groupSize <= 0 {
		groupSize = 5
	}

	for start := 0; start < len(texts); start += groupSize {
		end := start + groupSize
		if end > len(texts) {
			end = len(texts)
		}

		var wg sync.WaitGroup
		errs := make([]error, end-start)

		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				vec, err := es.Embed(ctx, texts[i])
				if err != nil {
					errs[i-start] = err
					return
				}
				vectors[i] = vec
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				return nil, fmt.Errorf("batch embedding failed: %w", err)
			}
		}

		if end < len(texts) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(es.batchDelay):
			}
		}
	}

	return vectors, nil
}

// ValidateDimensions rejects vectors whose dimensionality does not
// match the datastore's configured index dimension. Mismatches are
// never truncated or padded.
func (es *EmbeddingService) ValidateDimensions(vec []float32) error {
	if len(vec) != es.dimensions {
		return &ai.EmbeddingError{
			Status:  500,
			Message: fmt.Sprintf("embedding has %d dimensions, expected %d", len(vec), es.dimensions),
		}
	}
	return nil
}

func (es *EmbeddingService) cacheGet(ctx context.Context, text string) ([]float32, bool) {
	if es.cache == nil {
		return nil, false
	}

	raw, err := es.cache.Get(ctx, embedCacheKey(text)).Bytes()
	if err != nil {
		return nil, false
	}

	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil || len(vec) != es.dimensions {
		return nil, false
	}
	return vec, true
}

func (es *EmbeddingService) cacheSet(ctx context.Context, text string, vec []float32) {
	if es.cache == nil {
		return
	}

	raw, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := es.cache.Set(ctx, embedCacheKey(text), raw, es.cacheTTL).Err(); err != nil {
		logger.Debug("Embedding cache write failed", "error", err)
	}
}

func embedCacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embed:" + hex.EncodeToString(sum[:])
}

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"helpdesk-suggestion-engine/internal/logger"
	"helpdesk-suggestion-engine/services"
)

const (
	TaskIngestDocument = "document:ingest"
	TaskReingestDoc    = "document:reingest"
)

type IngestDocumentPayload struct {
	Title    string            `json:"title"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Task creators
func NewIngestDocumentTask(title, text string, metadata map[string]string) (*asynq.Task, error) {
	payload, err := json.Marshal(IngestDocumentPayload{
		Title:    title,
		Text:     text,
		Metadata: metadata,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskIngestDocument,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("default"),
	), nil
}

func NewReingestDocumentTask(title, text string, metadata map[string]string) (*asynq.Task, error) {
	payload, err := json.Marshal(IngestDocumentPayload{
		Title:    title,
		Text:     text,
		Metadata: metadata,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskReingestDoc,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("default"),
	), nil
}

// Task handlers
type TaskProcessor struct {
	ingestion *services.IngestionService
}

func NewTaskProcessor(ingestion *services.IngestionService) *TaskProcessor {
	return &TaskProcessor{ingestion: ingestion}
}

func (p *TaskProcessor) IngestDocument(ctx context.Context, t *asynq.Task) error {
	payload, err := decodeIngestPayload(t)
	if err != nil {
		return err
	}

	logger.Info("Ingesting document", "title", payload.Title, "bytes", len(payload.Text))

	count, err := p.ingestion.Ingest(ctx, payload.Text, payload.Title, toMetadata(payload.Metadata), logProgress)
	if err != nil {
		return err
	}

	logger.Info("Document ingested", "title", payload.Title, "chunks", count)
	return nil
}

func (p *TaskProcessor) ReingestDocument(ctx context.Context, t *asynq.Task) error {
	payload, err := decodeIngestPayload(t)
	if err != nil {
		return err
	}

	logger.Info("Reingesting document", "title", payload.Title)

	count, err := p.ingestion.Reingest(ctx, payload.Text, payload.Title, toMetadata(payload.Metadata), logProgress)
	if err != nil {
		return err
	}

	logger.Info("Document reingested", "title", payload.Title, "chunks", count)
	return nil
}

func decodeIngestPayload(t *asynq.Task) (IngestDocumentPayload, error) {
	var payload IngestDocumentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}
	if payload.Title == "" || payload.Text == "" {
		return payload, fmt.Errorf("empty title or text: %w", asynq.SkipRetry)
	}
	return payload, nil
}

func toMetadata(m map[string]string) map[string]interface{} {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func logProgress(current, total int, title string) {
	if current == total || current%10 == 0 {
		logger.Debug("Ingestion progress", "title", title, "current", current, "total", total)
	}
}

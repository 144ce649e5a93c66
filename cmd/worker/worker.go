package main

import (
	"context"
	"log"

	"helpdesk-suggestion-engine/internal/ai"
	"helpdesk-suggestion-engine/internal/config"
	"helpdesk-suggestion-engine/internal/logger"
	"helpdesk-suggestion-engine/internal/queue"
	"helpdesk-suggestion-engine/internal/telemetry"
	"helpdesk-suggestion-engine/services"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		logger.Warn("Metrics disabled", "error", err)
	}

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(context.Background())

	// Redis embedding cache (optional)
	var rdb *redis.Client
	if rdb, err = config.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis cache unavailable for worker", "error", err)
		rdb = nil
	}

	// Embedding backend
	embedder, err := ai.NewGeminiEmbedder(cfg)
	if err != nil {
		log.Fatal("Failed to initialize embedder:", err)
	}
	defer embedder.Close()

	db := mongoClient.Database(cfg.DBName)
	embeddings := services.NewEmbeddingService(cfg, embedder, rdb, metrics)
	chunker := services.NewChunkingService(cfg.ChunkSize, cfg.ChunkOverlap)
	chunkStore := services.NewMongoChunkStore(db.Collection("document_chunks"))
	ingestion := services.NewIngestionService(chunker, embeddings, chunkStore)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	// Ingestion is embedding-bound; low concurrency keeps the API quota safe
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	processor := queue.NewTaskProcessor(ingestion)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskIngestDocument, processor.IngestDocument)
	mux.HandleFunc(queue.TaskReingestDoc, processor.ReingestDocument)

	logger.Info("Starting ingestion worker", "redis", redisOpt.Addr)

	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}

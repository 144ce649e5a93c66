package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"helpdesk-suggestion-engine/internal/ai"
	"helpdesk-suggestion-engine/internal/config"
	"helpdesk-suggestion-engine/internal/logger"
	"helpdesk-suggestion-engine/internal/telemetry"
	"helpdesk-suggestion-engine/middleware"
	"helpdesk-suggestion-engine/routes"
	"helpdesk-suggestion-engine/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
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

	// Tracing is best-effort; the service runs without a collector
	shutdownTracer, err := telemetry.InitTracer("helpdesk-suggestion-engine")
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	} else {
		defer shutdownTracer()
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		logger.Warn("Metrics disabled", "error", err)
	}

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()

	// Redis backs the embedding cache and rate limiting; the service
	// degrades (no cache, no limits) if it is unreachable
	var rdb *redis.Client
	if rdb, err = config.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, embedding cache and rate limiting disabled", "error", err)
		rdb = nil
	}

	// AI clients
	embedder, err := ai.NewGeminiEmbedder(cfg)
	if err != nil {
		log.Fatal("Failed to initialize embedder:", err)
	}
	defer embedder.Close()

	geminiClient, err := ai.NewGeminiClient(cfg)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}
	defer geminiClient.Close()

	// Collections
	db := mongoClient.Database(cfg.DBName)
	entriesCol := db.Collection("knowledge_entries")
	chunksCol := db.Collection("document_chunks")
	recordsCol := db.Collection("suggestion_records")
	eventsCol := db.Collection("feedback_events")

	// Services
	embeddings := services.NewEmbeddingService(cfg, embedder, rdb, metrics)
	chunker := services.NewChunkingService(cfg.ChunkSize, cfg.ChunkOverlap)
	chunkStore := services.NewMongoChunkStore(chunksCol)
	ingestion := services.NewIngestionService(chunker, embeddings, chunkStore)
	extractor := services.NewDocumentExtractor()

	matchStore := services.NewMongoMatchStore(entriesCol, chunksCol,
		cfg.EntryVectorIndexName, cfg.ChunkVectorIndexName,
		cfg.SimilarityThreshold, cfg.MaxSuggestions)
	retrieval := services.NewRetrievalService(embeddings, matchStore, cfg.MaxSuggestions, metrics)
	synthesis := services.NewSynthesisService(geminiClient, cfg.SynthesisMinLength, cfg.SynthesisBanned, metrics)
	feedbackStore := services.NewMongoFeedbackStore(recordsCol, entriesCol, eventsCol)
	feedback := services.NewFeedbackService(feedbackStore, metrics)
	suggestions := services.NewSuggestionService(retrieval, synthesis, feedback, metrics)
	knowledge := services.NewKnowledgeService(entriesCol, embeddings)

	// Background ingestion queue
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer asynqClient.Close()

	// Periodic cleanup of partial ingests
	maintenance := services.NewMaintenanceService(chunksCol,
		time.Duration(cfg.OrphanSweepInterval)*time.Minute,
		time.Duration(cfg.OrphanMinAge)*time.Minute)
	maintenance.Start()
	defer maintenance.Stop()

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.EnrichTrace())
	if rdb != nil {
		router.Use(middleware.RateLimitMiddleware(rdb, cfg))
	}

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Requested-With"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	// Setup routes
	routes.SetupSuggestionRoutes(router, suggestions, feedback)
	routes.SetupDocumentRoutes(router, ingestion, extractor, asynqClient)
	routes.SetupKnowledgeRoutes(router, knowledge)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}

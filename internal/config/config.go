package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI string
	DBName   string
	Port     string
	GinMode  string

	CORSOrigins []string

	// Gemini API
	GeminiAPIKey    string
	GeminiTier      string
	EmbeddingModel  string
	CompletionModel string

	// Embedding pipeline
	VectorDimensions int
	EmbedBatchSize   int
	EmbedBatchDelay  int // milliseconds between batch groups
	EmbedTimeout     int // seconds per embedding call
	EmbedCacheTTL    int // seconds, Redis read-through cache

	// Chunking
	ChunkSize    int
	ChunkOverlap int

	// Retrieval and ranking
	SimilarityThreshold  float64
	MaxSuggestions       int
	EntryVectorIndexName string
	ChunkVectorIndexName string

	// Synthesis quality gate
	SynthesisMinLength int
	SynthesisBanned    []string
	SynthesisTimeout   int // seconds

	// Redis (embedding cache, rate limiting, asynq broker)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// HTTP rate limiting
	RateLimitReqs   int
	RateLimitWindow int

	// Maintenance
	OrphanSweepInterval int // minutes
	OrphanMinAge        int // minutes before a partial ingest is considered stale
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017/helpdesk"),
		DBName:   getEnv("DB_NAME", "helpdesk"),
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),

		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiTier:      getEnv("GEMINI_TIER", "free"),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "text-embedding-004"),
		CompletionModel: getEnv("COMPLETION_MODEL", "gemini-2.0-flash"),

		VectorDimensions: getEnvInt("VECTOR_DIM", 768),
		EmbedBatchSize:   getEnvInt("EMBED_BATCH_SIZE", 5),
		EmbedBatchDelay:  getEnvInt("EMBED_BATCH_DELAY_MS", 1000),
		EmbedTimeout:     getEnvInt("EMBED_TIMEOUT", 30),
		EmbedCacheTTL:    getEnvInt("EMBED_CACHE_TTL", 86400),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),

		SimilarityThreshold:  getEnvFloat64("SIMILARITY_THRESHOLD", 0.70),
		MaxSuggestions:       getEnvInt("MAX_SUGGESTIONS", 3),
		EntryVectorIndexName: getEnv("ENTRY_VECTOR_INDEX", "knowledge_entries_vector"),
		ChunkVectorIndexName: getEnv("CHUNK_VECTOR_INDEX", "document_chunks_vector"),

		SynthesisMinLength: getEnvInt("SYNTHESIS_MIN_LENGTH", 50),
		SynthesisBanned: strings.Split(getEnv("SYNTHESIS_BANNED_PHRASES",
			"don't know,do not know,no information,cannot answer,unable to answer"), ","),
		SynthesisTimeout: getEnvInt("SYNTHESIS_TIMEOUT", 30),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		OrphanSweepInterval: getEnvInt("ORPHAN_SWEEP_INTERVAL", 60),
		OrphanMinAge:        getEnvInt("ORPHAN_MIN_AGE", 60),
	}

	// Validate required fields
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)",
			cfg.ChunkOverlap, cfg.ChunkSize)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

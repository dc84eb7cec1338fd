package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	// Postgres (pgvector)
	DatabaseURL string

	// Redis (asynq queue, rate limiting)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// AI provider configuration
	AIProvider           string // "openai" (default), "google"
	OpenAIAPIKey         string
	OpenAIBaseURL        string
	OpenAIEmbeddingModel string
	OpenAIChatModel      string
	GeminiAPIKey         string
	GoogleEmbeddingModel string
	GoogleChatModel      string

	// Retrieval / context assembly
	VectorDimensions int
	ChunkSize        int
	ChunkOverlap     int
	SectionChunkSize int
	SectionMarkers   []string
	TopK             int
	MaxHistoryTurns  int
	HistoryWindow    int // hours
	MaxTokens        int
	Temperature      float64
	IngestBatchSize  int

	// Upload handling
	MaxFileSize    int64
	FileStorageDir string

	// Rate limiting
	RateLimitReqs   int
	RateLimitWindow int

	// Background job reaper
	StaleJobMaxAgeMinutes int
	ReaperIntervalMinutes int

	// Telemetry
	TracingEnabled bool
	OTLPEndpoint   string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AIProvider:           getEnv("AI_PROVIDER", "openai"),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:        getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIEmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		OpenAIChatModel:      getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GoogleEmbeddingModel: getEnv("GOOGLE_EMBEDDING_MODEL", "text-embedding-004"),
		GoogleChatModel:      getEnv("GOOGLE_CHAT_MODEL", "gemini-2.0-flash"),

		VectorDimensions: getEnvInt("VECTOR_DIM", 1536),
		ChunkSize:        getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:     getEnvInt("CHUNK_OVERLAP", 200),
		SectionChunkSize: getEnvInt("SECTION_CHUNK_SIZE", 3000),
		SectionMarkers:   strings.Split(getEnv("SECTION_MARKERS", "capítulo,capitulo,chapter,sección,section,parte"), ","),
		TopK:             getEnvInt("SEARCH_TOP_K", 3),
		MaxHistoryTurns:  getEnvInt("MAX_HISTORY_TURNS", 20),
		HistoryWindow:    getEnvInt("HISTORY_WINDOW_HOURS", 24),
		MaxTokens:        getEnvInt("MAX_TOKENS", 500),
		Temperature:      getEnvFloat64("TEMPERATURE", 0.7),
		IngestBatchSize:  getEnvInt("INGEST_BATCH_SIZE", 5),

		MaxFileSize:    getEnvInt64("MAX_FILE_SIZE", 104857600), // 100MB
		FileStorageDir: getEnv("FILE_STORAGE_DIR", "./storage"),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		StaleJobMaxAgeMinutes: getEnvInt("STALE_JOB_MAX_AGE_MINUTES", 60),
		ReaperIntervalMinutes: getEnvInt("REAPER_INTERVAL_MINUTES", 10),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required - set it in .env file")
	}

	if cfg.ChunkSize <= cfg.ChunkOverlap {
		return nil, fmt.Errorf("CHUNK_SIZE (%d) must be greater than CHUNK_OVERLAP (%d)", cfg.ChunkSize, cfg.ChunkOverlap)
	}

	switch cfg.AIProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER=openai")
		}
	case "google":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when AI_PROVIDER=google")
		}
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.AIProvider)
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

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
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

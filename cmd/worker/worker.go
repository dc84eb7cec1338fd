package main

import (
	"context"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"rag-chatbot-platform/internal/ai"
	"rag-chatbot-platform/internal/config"
	"rag-chatbot-platform/internal/logger"
	"rag-chatbot-platform/internal/queue"
	"rag-chatbot-platform/internal/store"
	"rag-chatbot-platform/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	pool, err := config.ConnectPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Postgres:", err)
	}
	defer pool.Close()

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := config.InitSchema(initCtx, pool, cfg.VectorDimensions); err != nil {
		cancel()
		log.Fatal("Failed to initialize schema:", err)
	}
	cancel()

	st := store.NewStore(pool)

	gateway, err := ai.NewGateway(cfg)
	if err != nil {
		log.Fatal("Failed to initialize AI gateway:", err)
	}

	extractor := services.NewPDFExtractor(cfg.MaxFileSize)
	sectioner := services.NewSectioner(cfg.SectionMarkers)
	ingestor := services.NewIngestor(
		extractor, gateway, st, sectioner,
		cfg.ChunkSize, cfg.ChunkOverlap, cfg.SectionChunkSize, cfg.IngestBatchSize,
	)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			// PDF ingestion is embedding-bound; low concurrency keeps the
			// provider rate limiter effective.
			Concurrency: 4,
			Queues: map[string]int{
				"ingest":  7,
				"default": 3,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	processor := queue.NewTaskProcessor(ingestor, st)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskIngestPDF, processor.HandleIngestPDF)

	logger.Info("Starting ingestion worker", "concurrency", 4, "redis", cfg.RedisURL)

	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}

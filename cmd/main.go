package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"rag-chatbot-platform/internal/ai"
	"rag-chatbot-platform/internal/config"
	"rag-chatbot-platform/internal/logger"
	"rag-chatbot-platform/internal/store"
	"rag-chatbot-platform/internal/telemetry"
	"rag-chatbot-platform/middleware"
	"rag-chatbot-platform/routes"
	"rag-chatbot-platform/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	if cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer("rag-chatbot-api", cfg.OTLPEndpoint)
		if err != nil {
			log.Fatal("Failed to initialize tracer:", err)
		}
		defer shutdown()
	}

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

	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer queueClient.Close()

	st := store.NewStore(pool)

	gateway, err := ai.NewGateway(cfg)
	if err != nil {
		log.Fatal("Failed to initialize AI gateway:", err)
	}

	rag := services.NewRAGService(
		gateway, st, st,
		cfg.TopK, cfg.MaxHistoryTurns, cfg.MaxTokens, cfg.Temperature,
		time.Duration(cfg.HistoryWindow)*time.Hour,
	)

	// Periodically fail jobs stuck in pending/running and remove their
	// uploaded files.
	scheduler := gocron.NewScheduler(time.UTC)
	maxAge := time.Duration(cfg.StaleJobMaxAgeMinutes) * time.Minute
	scheduler.Every(time.Duration(cfg.ReaperIntervalMinutes) * time.Minute).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		paths, err := st.FailStaleJobs(ctx, maxAge)
		if err != nil {
			logger.Error("stale job reaper failed", "error", err)
			return
		}
		for _, p := range paths {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				logger.Warn("failed to remove stale upload", "path", p, "error", err)
			}
		}
		if len(paths) > 0 {
			logger.Info("reaped stale ingest jobs", "count", len(paths))
		}
	})
	scheduler.StartAsync()
	defer scheduler.Stop()

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.RateLimitMiddleware(rdb, cfg))
	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware("rag-chatbot-api"))
	}

	router.GET("/health", routes.HealthCheck())

	api := router.Group("/api/v1")
	{
		api.POST("/documents", routes.HandlePDFUpload(cfg, st, queueClient, false))
		api.POST("/documents/sections", routes.HandlePDFUpload(cfg, st, queueClient, true))
		api.GET("/jobs/:id", routes.CheckJobStatus(st))
		api.GET("/documents", routes.ListDocuments(st))
		api.DELETE("/documents/:source", routes.DeleteDocument(st))

		api.POST("/query", routes.HandleQuery(rag))
		api.GET("/search", routes.HandleSearch(rag))
		api.GET("/conversations/:user_id", routes.GetConversation(st))
		api.GET("/conversations/:user_id/summary", routes.GetConversationSummary(rag))

		api.GET("/stats", routes.GetStats(st, time.Duration(cfg.HistoryWindow)*time.Hour))
		api.GET("/health", routes.HealthCheck())
		api.GET("/diagnose", routes.Diagnose(pool))
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}

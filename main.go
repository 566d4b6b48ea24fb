package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"
	"go.uber.org/zap"

	"github.com/serisow/ragone/chat_store"
	"github.com/serisow/ragone/config"
	"github.com/serisow/ragone/db"
	"github.com/serisow/ragone/document_store"
	"github.com/serisow/ragone/handlers"
	"github.com/serisow/ragone/lockstore"
	"github.com/serisow/ragone/logging"
	"github.com/serisow/ragone/model_registry"
	"github.com/serisow/ragone/reconciler"
	"github.com/serisow/ragone/server"
	"github.com/serisow/ragone/services/chat_service"
	"github.com/serisow/ragone/services/document_service"
	"github.com/serisow/ragone/services/llm_service"
	"github.com/serisow/ragone/services/rag_service"
	"github.com/serisow/ragone/vector_store"
)

func main() {
	cfg := config.Load()
	logger := setupLogger(cfg)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()

	// Without DATABASE_URL the server runs fully in memory: same behavior,
	// nothing survives a restart.
	var (
		docs      document_store.Store
		vectors   vector_store.Store
		history   chat_store.Store
		reindexer reconciler.Reindexer
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}

		docs = document_store.NewPostgresStore(pool, logger)
		vectors = vector_store.NewPostgresStore(pool, logger)
		history = chat_store.NewPostgresStore(pool, logger)

		indexManager := vector_store.NewIndexManager(pool, logger)
		if err := indexManager.CreateOrUpdateIndex(ctx); err != nil {
			log.Fatalf("Failed to create vector index: %v", err)
		}
		reindexer = indexManager
	} else {
		logger.Warn("DATABASE_URL not set, running with in-memory stores")
		docs = document_store.NewMemoryStore()
		vectors = vector_store.NewMemoryStore()
		history = chat_store.NewMemoryStore()
	}

	locks := lockstore.New()
	locks.StartCleanup(time.Hour, 10*time.Minute)
	defer locks.StopCleanup()

	embedder := rag_service.NewEmbeddingService(
		cfg.EmbeddingAPIURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbeddingTimeout, logger)
	pipeline := rag_service.NewPipeline(
		rag_service.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap), embedder, cfg.EmbedConcurrency, logger)
	extractor := rag_service.NewDocumentExtractor(logger)

	coordinator := document_service.NewCoordinator(docs, vectors, extractor, pipeline, locks, logger)

	registry := model_registry.NewModelRegistry(cfg.DefaultModel)
	registry.RegisterLLMService("openai",
		llm_service.NewOpenAIService("", cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.LLMTimeout, zapLogger))
	registry.RegisterLLMService("anthropic",
		llm_service.NewAnthropicService("", cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.LLMTimeout, zapLogger))

	chain := chat_service.NewChain(history, embedder, vectors, docs, registry, cfg.TopK, logger)

	sweeper := reconciler.New(docs, vectors, locks, reindexer,
		cfg.ReconcileInterval, cfg.PendingTTL, logger)
	go sweeper.Start(ctx)

	r := server.SetupRoutes(
		handlers.NewChatHandler(chain, history, locks, logger),
		handlers.NewUploadHandler(coordinator, logger),
		handlers.NewDocumentsHandler(coordinator, logger))
	n := setupNegroni(r)

	if cfg.Environment == "production" {
		server.ServeProduction(n, server.Config{
			Domains:      cfg.Domains,
			CertCacheDir: cfg.CertCacheDir,
			HTTPSPort:    cfg.HTTPSPort,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: cfg.LLMTimeout + 10*time.Second,
		})
	} else {
		srv := &http.Server{
			Addr:         ":" + cfg.HTTPPort,
			Handler:      n,
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: cfg.LLMTimeout + 10*time.Second,
		}
		logger.Info("Starting development server", slog.String("port", cfg.HTTPPort))
		server.ServeDevelopment(srv)
	}
}

func setupLogger(cfg config.Config) *slog.Logger {
	handler, err := logging.NewDailyFileHandler(cfg.LogDir, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	if err != nil {
		log.Printf("Warning: could not open log directory, falling back to stderr: %v", err)
		return slog.Default()
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func setupNegroni(r *mux.Router) *negroni.Negroni {
	n := negroni.New()

	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())

	n.UseHandler(r)
	return n
}

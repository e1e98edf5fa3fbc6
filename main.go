package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"websage/config"
	"websage/controllers"
	"websage/routes"
	"websage/services/llm"
	"websage/services/rag"
	"websage/sources/history"
	"websage/sources/storage"
	"websage/sources/vectorstore"
	"websage/utils/logging"
)

func main() {
	godotenv.Load()
	logging.InitLogger()
	cfg := config.LoadConfig()

	embed, err := buildEmbedder(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "embedder setup failed:", err)
		os.Exit(1)
	}

	store, err := vectorstore.NewClient(cfg.DataDir, embed)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vector store setup failed:", err)
		os.Exit(1)
	}

	dao, err := history.Open(filepath.Join(cfg.DataDir, "history.db"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "history database setup failed:", err)
		os.Exit(1)
	}
	defer dao.Close()

	completer, err := llm.NewGPTClient(cfg.OpenAIAPIKey)
	if err != nil {
		fmt.Fprintln(os.Stderr, "chat model setup failed:", err)
		os.Exit(1)
	}

	index := rag.NewIndex(store)
	engine := rag.NewEngine(index, rag.NewSynthesizer(completer, cfg.ChatModel))

	var archive *storage.ArchiveClient
	if cfg.ArchiveEnabled() {
		archive, err = storage.NewArchiveClient(cfg)
		if err != nil {
			// archive is optional; run without it
			logging.ErrorLogger.Error("minio connection failed, archival disabled", zap.Error(err))
			archive = nil
		}
	}

	crawlCtrl := controllers.NewCrawlController(cfg, index, archive)
	queryCtrl := controllers.NewQueryController(engine, dao, cfg.SearchThreshold)
	collCtrl := controllers.NewCollectionsController(store)
	healthCtrl := controllers.NewHealthController()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// crawls run for minutes; the request timeout only guards the quick routes
	r.Group(func(gr chi.Router) {
		gr.Use(middleware.Timeout(60 * time.Second))
		gr.Mount("/health", routes.HealthRoutes(healthCtrl))
		gr.Mount("/query", routes.QueryRoutes(queryCtrl))
		gr.Mount("/history", routes.HistoryRoutes(queryCtrl))
		gr.Mount("/collections", routes.CollectionRoutes(collCtrl))
	})
	r.Mount("/crawl", routes.CrawlRoutes(crawlCtrl))

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}
	go func() {
		logging.AppLogger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}

// buildEmbedder picks the configured embedding provider. Crawls cannot hide a
// misconfiguration until the first batch, so fail here instead.
func buildEmbedder(cfg config.Config) (vectorstore.EmbeddingFunc, error) {
	switch cfg.EmbeddingProvider {
	case "ollama":
		return llm.NewOllamaEmbedder(cfg.OllamaHost, cfg.EmbeddingModel).Embed, nil
	case "openai", "":
		embedder, err := llm.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
		if err != nil {
			return nil, err
		}
		return embedder.Embed, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
}

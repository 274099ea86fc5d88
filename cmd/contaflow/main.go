package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/contaflow/contaflow/internal/app"
	"github.com/contaflow/contaflow/internal/jobs"
	"github.com/contaflow/contaflow/internal/ledger"
	"github.com/contaflow/contaflow/internal/ledger/api"
	"github.com/contaflow/contaflow/internal/ledger/closing"
	"github.com/contaflow/contaflow/internal/ledger/reports"
	"github.com/contaflow/contaflow/internal/platform/cache"
	"github.com/contaflow/contaflow/internal/platform/db"
	"github.com/contaflow/contaflow/internal/suggest"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	var repo ledger.Repository
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Warn("postgres unavailable, falling back to in-memory storage", slog.Any("error", err))
		repo = ledger.NewMemoryRepository()
	} else {
		defer pool.Close()
		repo = ledger.NewPostgresRepository(pool)
	}

	var reportCache *api.Cache
	var refresher api.Refresher
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, statement caching disabled", slog.Any("error", err))
		reportCache = api.NewCache(nil, 0)
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		reportCache = api.NewCache(redisClient, cfg.CacheTTL)
		jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}()
		refresher = jobClient
	}

	var oracle ledger.SuggestionOracle
	if cfg.SuggestionsEnabled() {
		oracle, err = suggest.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("suggestion oracle unavailable", slog.Any("error", err))
			oracle = nil
		}
	}

	codes := reports.DefaultCodes()
	service := ledger.NewService(repo, oracle)
	closingService := closing.NewService(repo, codes)
	handler := api.NewHandler(logger, service, closingService, repo, codes, reportCache, refresher)

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		LedgerHandler: handler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aironix-backend/internal/cache"
	"aironix-backend/internal/config"
	"aironix-backend/internal/db"
	"aironix-backend/internal/handler"
	"aironix-backend/internal/job"
	"aironix-backend/internal/provider"
	"aironix-backend/internal/repository"
	"aironix-backend/internal/service"
	"aironix-backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "aironix-backend/docs"
)

var (
	loadEnvFunc         = godotenv.Load
	loadConfigFunc      = config.Load
	initPostgresFunc    = db.InitPostgres
	initRedisFunc       = cache.InitRedis
	initTracerFunc      = tracing.InitTracer
	newNewsRepoFunc     = repository.NewNewsRepository
	newPredictionRepo   = repository.NewPredictionRepository
	newNewsProviderFunc = func(tracer trace.Tracer, apiURL string) service.NewsFetcher {
		return provider.NewNewsProvider(tracer, apiURL)
	}
	newPredictionProviderFunc = func(tracer trace.Tracer, baseURL string) service.PredictionFetcher {
		return provider.NewPredictionProvider(tracer, baseURL)
	}
	newNewsServiceFunc       = service.NewNewsService
	newPredictionServiceFunc = service.NewPredictionService
	newRefreshPollerFunc     = job.NewRefreshPoller
	startPollerFunc          = func(p *job.RefreshPoller, ctx context.Context) { go p.Start(ctx) }
	newHandlerFunc           = handler.New
	newRouterFunc            = gin.Default
	setupSignalNotify        = signal.Notify
	waitForSignalFunc        = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc      = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc   = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Aironix Backend API
// @version         1.0
// @description     News and stock prediction ingestion service with OpenTelemetry tracing.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repositories and run migrations
	newsRepo := newNewsRepoFunc(db.Pool, tracer)
	predictionRepo := newPredictionRepo(db.Pool, tracer)
	if db.Pool != nil {
		if err := newsRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run news migrations: %v", err)
		}
		if err := predictionRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run prediction migrations: %v", err)
		}
	}

	// Providers and services
	newsProvider := newNewsProviderFunc(tracer, cfg.NewsAPIURL)
	predictionProvider := newPredictionProviderFunc(tracer, cfg.PredictionAPIBaseURL)
	newsService := newNewsServiceFunc(tracer, newsProvider, newsRepo, cache.Client, cfg.NewsRetentionCap)
	predictionService := newPredictionServiceFunc(tracer, predictionProvider, predictionRepo, cache.Client)

	// Start refresh poller (background goroutines, stopped by ctx cancel)
	poller := newRefreshPollerFunc(tracer, newsService, predictionService, cfg.NewsPollSecs, cfg.PredictionPollSecs)
	startPollerFunc(poller, ctx)

	// Premium forwarding proxy
	forwarder := provider.NewForwarder(tracer, cfg.PremiumUpstreamURL)

	// Create handlers and routes
	h := newHandlerFunc(tracer, newsService, predictionService, forwarder)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("aironix-backend"))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"hinglish-snaps/api/auth"
	"hinglish-snaps/api/router"
	"hinglish-snaps/api/services"
	"hinglish-snaps/api/validation"
	"hinglish-snaps/config"
	"hinglish-snaps/db"
	"hinglish-snaps/feeder"
	"hinglish-snaps/httpclient"
	"hinglish-snaps/internal/logger"
	"hinglish-snaps/jobs"
	"hinglish-snaps/newsapi"
	"hinglish-snaps/repositories"
	"hinglish-snaps/scheduler"
	"hinglish-snaps/summarizer"
)

const shutdownTimeout = 15 * time.Second

// @title           Hinglish Snaps API
// @version         1.0
// @description     Indian finance, business and tech news summarised in Hinglish
// @BasePath        /api
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Errorf("failed to load config: %v", err)
		os.Exit(1)
	}
	logger.Init(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, database, err := db.Connect(ctx, cfg.Mongo, cfg.Retention)
	if err != nil {
		logger.Log.Errorf("failed to connect to MongoDB: %v", err)
		os.Exit(1)
	}

	source := newSource(cfg.NewsSource)

	gemini, err := summarizer.NewGemini(ctx, cfg.Gemini, httpclient.New(httpclient.Config{Timeout: cfg.Gemini.Timeout}))
	if err != nil {
		logger.Log.Errorf("failed to create gemini client: %v", err)
		os.Exit(1)
	}
	summ := summarizer.NewInstrumented(summarizer.NewLimited(gemini, cfg.SummaryQuota))

	articles := repositories.NewArticleRepository(database)
	queue := repositories.NewConversionQueueRepository(database)
	users := repositories.NewUserRepository(database)

	jwtManager, err := auth.NewJWTManager(cfg.Auth)
	if err != nil {
		logger.Log.Errorf("failed to create jwt manager: %v", err)
		os.Exit(1)
	}

	sched, err := newScheduler(cfg, source, summ, articles, queue)
	if err != nil {
		logger.Log.Errorf("failed to register jobs: %v", err)
		os.Exit(1)
	}
	sched.Start()
	if cfg.Scheduler.RunOnStart {
		sched.RunNow("ingest")
	}

	engine := router.New(router.Deps{
		News:      services.NewNewsService(articles, queue, source, summ, cfg.Query),
		Auth:      services.NewAuthService(users, jwtManager, cfg.Auth.BcryptCost),
		Validator: validation.New(),
		Ping: func(ctx context.Context) error {
			return db.Ping(ctx, client)
		},
	})
	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
	}).Handler(engine)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.InfoWithFields("http server listening", logger.Fields{"addr": cfg.Server.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Errorf("http server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("received shutdown signal, shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("http server shutdown: %v", err)
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Log.Errorf("scheduler did not stop in time: %v", err)
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		logger.Log.Errorf("mongo disconnect: %v", err)
	}
	logger.Log.Info("server stopped")
}

func newSource(cfg config.NewsSourceConfig) newsapi.Source {
	httpClient := httpclient.New(httpclient.Config{Timeout: cfg.Timeout})
	switch cfg.Provider {
	case config.ProviderRSS:
		return feeder.NewGoogleNews(httpClient, cfg.BaseURL)
	default:
		if cfg.APIKey == "" {
			logger.Log.Warn("NEWS_API_KEY is empty, news requests will be rejected")
		}
		return newsapi.NewClient(httpClient, cfg.BaseURL, cfg.APIKey)
	}
}

func newScheduler(cfg config.AppConfig, source newsapi.Source, s summarizer.Summarizer, articles *repositories.ArticleRepository, queue *repositories.ConversionQueueRepository) (*scheduler.Scheduler, error) {
	sched := scheduler.New()

	ingestor := jobs.NewIngestor(source, s, articles, cfg.NewsSource)
	if err := sched.Register("ingest", cfg.Scheduler.Ingest, func(ctx context.Context) {
		ingestor.Run(ctx)
	}); err != nil {
		return nil, err
	}

	retrier := jobs.NewRetrier(s, articles, cfg.Retry)
	if err := sched.Register("retry", cfg.Scheduler.Retry, func(ctx context.Context) {
		if _, err := retrier.Run(ctx); err != nil {
			logger.ErrorWithFields("retry job failed", logger.Fields{"error": err.Error()})
		}
	}); err != nil {
		return nil, err
	}

	if cfg.ConversionQueue.Enabled {
		worker := jobs.NewQueueWorker(s, queue, cfg.ConversionQueue)
		if err := sched.Register("conversion_queue", cfg.Scheduler.ConversionQueue, func(ctx context.Context) {
			if _, err := worker.Run(ctx); err != nil {
				logger.ErrorWithFields("conversion queue job failed", logger.Fields{"error": err.Error()})
			}
		}); err != nil {
			return nil, err
		}
	}

	return sched, nil
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	apihttp "github.com/asvronsky/cinemabot/internal/api/http"
	"github.com/asvronsky/cinemabot/internal/app"
	"github.com/asvronsky/cinemabot/internal/history"
	"github.com/asvronsky/cinemabot/internal/lookup"
	"github.com/asvronsky/cinemabot/internal/metrics"
	"github.com/asvronsky/cinemabot/internal/providers/kinopoisk"
	"github.com/asvronsky/cinemabot/internal/providers/websearch"
	"github.com/asvronsky/cinemabot/internal/stats"
	"github.com/asvronsky/cinemabot/internal/telemetry"
)

func main() {
	cfg := app.LoadConfig()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracer, err := telemetry.Init(context.Background(), "cinemabot")
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", "cinemabot"),
		slog.String("httpAddr", cfg.HTTPAddr),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("logFormat", cfg.LogFormat),
		slog.Duration("requestTimeout", cfg.RequestTimeout),
		slog.Duration("enrichTimeout", cfg.EnrichTimeout),
		slog.String("kinopoiskBaseURL", cfg.KinopoiskBaseURL),
		slog.Bool("hasKinopoiskKey", cfg.KinopoiskAPIKey != ""),
		slog.Bool("hasWebSearchKey", cfg.WebSearchAPIKey != ""),
		slog.String("mongoDB", cfg.MongoDB),
		slog.Bool("hasRedis", strings.TrimSpace(cfg.RedisURL) != ""),
	)

	if cfg.KinopoiskAPIKey == "" {
		logger.Error("KINOPOISK_API_KEY is required")
		os.Exit(1)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancelConnect := context.WithTimeout(rootCtx, 10*time.Second)
	defer cancelConnect()

	mongoClient, err := history.Connect(connectCtx, cfg.MongoURI,
		options.Client().SetMonitor(otelmongo.NewMonitor()))
	if err != nil {
		logger.Error("mongo connect failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := mongoClient.Ping(connectCtx, readpref.Primary()); err != nil {
		logger.Error("mongo ping failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	historyStore := history.NewMongoStore(mongoClient, cfg.MongoDB)
	if err := historyStore.EnsureIndexes(connectCtx); err != nil {
		logger.Warn("history index creation failed", slog.String("error", err.Error()))
	}

	statsCounter := buildStatsCounter(connectCtx, cfg, logger)

	catalog := kinopoisk.NewClient(kinopoisk.Config{
		APIKey:            cfg.KinopoiskAPIKey,
		BaseURL:           cfg.KinopoiskBaseURL,
		UserAgent:         cfg.UserAgent,
		RequestsPerSecond: cfg.KinopoiskMaxRPS,
		Client: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	})
	links := websearch.NewClient(websearch.Config{
		Endpoint:  cfg.WebSearchEndpoint,
		APIKey:    cfg.WebSearchAPIKey,
		UserAgent: cfg.UserAgent,
		Client: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	})

	enricher := lookup.NewEnricher(catalog, links,
		lookup.WithFetchTimeout(cfg.EnrichTimeout),
		lookup.WithEnricherLogger(logger),
	)
	service := lookup.NewService(catalog, enricher, historyStore, statsCounter,
		lookup.WithServiceLogger(logger),
	)

	handler := apihttp.NewServer(service, apihttp.WithLogger(logger)).Handler()
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	logger.Info("cinemabot service started", slog.String("addr", cfg.HTTPAddr))

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("cinemabot service stopped")
}

// buildStatsCounter prefers Redis; when it is absent or unreachable the
// service still starts, with global stats held in process memory only.
func buildStatsCounter(ctx context.Context, cfg app.Config, logger *slog.Logger) lookup.StatsCounter {
	redisURL := strings.TrimSpace(cfg.RedisURL)
	if redisURL == "" {
		logger.Warn("REDIS_URL is not set; global stats will not survive restarts")
		return stats.NewMemoryCounter()
	}

	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn("invalid redis url; falling back to in-memory stats", slog.String("error", err.Error()))
		return stats.NewMemoryCounter()
	}

	counter := stats.NewRedisCounter(redis.NewClient(redisOpts))
	if err := counter.Ping(ctx); err != nil {
		logger.Warn("redis ping failed; falling back to in-memory stats", slog.String("error", err.Error()))
		return stats.NewMemoryCounter()
	}
	logger.Info("redis stats counter enabled", slog.String("addr", redisOpts.Addr))
	return counter
}

func newLogger(levelRaw, formatRaw string) *slog.Logger {
	level := parseLogLevel(levelRaw)
	options := &slog.HandlerOptions{Level: level}
	format := strings.ToLower(strings.TrimSpace(formatRaw))
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, options))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, options))
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

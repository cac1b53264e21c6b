package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/md-rashed-zaman/freeslots/libs/auth"
	"github.com/md-rashed-zaman/freeslots/libs/config"
	"github.com/md-rashed-zaman/freeslots/libs/db"
	"github.com/md-rashed-zaman/freeslots/libs/httpx"
	"github.com/md-rashed-zaman/freeslots/libs/kafkax"
	otelx "github.com/md-rashed-zaman/freeslots/libs/otel"
	"github.com/md-rashed-zaman/freeslots/libs/runtime"
	"github.com/md-rashed-zaman/freeslots/services/availability-service/internal/calendar"
	"github.com/md-rashed-zaman/freeslots/services/availability-service/internal/handlers"
	"github.com/md-rashed-zaman/freeslots/services/availability-service/internal/preferences"
	"github.com/md-rashed-zaman/freeslots/services/availability-service/internal/publish"
	"github.com/md-rashed-zaman/freeslots/services/availability-service/internal/scheduling"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := loadSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}
	logger := runtime.NewLogger(cfg.Service, cfg.LogLevel)
	if err := run(cfg, logger); err != nil {
		logger.Error("service stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg settings, logger *slog.Logger) error {

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(cfg.Service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL, db.PoolConfig{})
	if err != nil {
		return fmt.Errorf("db connection: %w", err)
	}
	defer pool.Close()

	checks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}

	var prefs preferences.Provider = preferences.NewRepository(pool)
	var rateLimit httpx.Middleware
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		prefs = preferences.NewCachedProvider(prefs, rdb, preferences.CacheConfig{TTL: cfg.PrefCacheTTL}, logger)
		rateLimit = httpx.NewRedisRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute, cfg.RateLimitPrefix).
			Middleware(logger, cfg.RateLimitFailOpen)
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
		logger.Info("redis enabled", "addr", cfg.RedisAddr, "cache_ttl", cfg.PrefCacheTTL.String(), "rate_limit_per_minute", cfg.RateLimitPerMinute)
	} else {
		rateLimit = httpx.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute).Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", cfg.RateLimitPerMinute)
	}

	var publisher publish.Publisher = publish.Noop{}
	if writer := kafkax.NewWriter(kafkax.WriterConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.SlotsTopic}); writer != nil {
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close failed", "err", err)
			}
		}()
		publisher = publish.NewKafkaPublisher(writer, logger)
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(cfg.KafkaBrokers)})
		logger.Info("kafka publishing enabled", "topic", cfg.SlotsTopic)
	} else {
		logger.Warn("KAFKA_BROKERS not set; slot events will not be published")
	}

	var verifier *auth.Verifier
	if cfg.AuthRequired {
		var jwks *auth.JWKSClient
		if cfg.JWKSURL != "" {
			jwks = auth.NewJWKSClient(cfg.JWKSURL, cfg.JWKSTTL)
		}
		verifier = auth.NewVerifier(cfg.JWTSecret, jwks)
	} else {
		logger.Warn("AUTH_REQUIRED=false; caller identity is taken from X-User-Id or user_id")
	}

	svc := scheduling.NewService(prefs, calendar.NewRepository(pool), logger)
	availabilityHandler := handlers.NewAvailabilityHandler(svc, publisher, logger, handlers.Config{
		MaxScanDays: cfg.MaxScanDays,
	})

	if err := startGRPC(ctx, ":"+cfg.GRPCPort, checks, logger); err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: newRouter(routerConfig{
			Availability:   http.HandlerFunc(availabilityHandler.Get),
			Verifier:       verifier,
			ReadyChecks:    checks,
			RateLimit:      rateLimit,
			CORS:           cfg.CORS,
			RequestTimeout: cfg.RequestTimeout,
			OperationName:  "availability",
		}, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
	return nil
}

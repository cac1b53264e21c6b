package main

import (
	"errors"
	"time"

	"github.com/md-rashed-zaman/freeslots/libs/config"
	"github.com/md-rashed-zaman/freeslots/libs/httpx"
)

type settings struct {
	Service     string
	Port        string
	GRPCPort    string
	LogLevel    string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PrefCacheTTL  time.Duration

	KafkaBrokers string
	SlotsTopic   string

	JWTSecret    string
	JWKSURL      string
	JWKSTTL      time.Duration
	AuthRequired bool

	MaxScanDays        int
	RequestTimeout     time.Duration
	RateLimitPerMinute int
	RateLimitPrefix    string
	RateLimitFailOpen  bool
	CORS               httpx.CORSPolicy
}

func loadSettings() (settings, error) {
	var s settings
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	var err error

	s.Service = config.String("SERVICE_NAME", "availability-service")
	s.Port, err = config.Port("PORT", "8090")
	collect(err)
	s.GRPCPort, err = config.Port("GRPC_PORT", "9090")
	collect(err)
	s.LogLevel = config.String("LOG_LEVEL", "info")
	s.DatabaseURL, err = config.RequiredString("DATABASE_URL")
	collect(err)

	s.RedisAddr = config.String("REDIS_ADDR", "")
	s.RedisPassword = config.String("REDIS_PASSWORD", "")
	s.RedisDB, err = config.Int("REDIS_DB", 0)
	collect(err)
	s.PrefCacheTTL, err = config.Duration("PREFERENCE_CACHE_TTL", 5*time.Minute)
	collect(err)

	s.KafkaBrokers = config.String("KAFKA_BROKERS", "")
	s.SlotsTopic = config.String("KAFKA_SLOTS_TOPIC", "availability.slots.generated.v1")

	s.JWTSecret = config.String("JWT_SECRET", "")
	s.JWKSURL = config.String("JWKS_URL", "")
	jwksSeconds, err := config.Int("JWKS_CACHE_SECONDS", 300)
	collect(err)
	s.JWKSTTL = time.Duration(jwksSeconds) * time.Second
	s.AuthRequired = config.Bool("AUTH_REQUIRED", true)
	if s.AuthRequired && s.JWTSecret == "" && s.JWKSURL == "" {
		collect(errors.New("AUTH_REQUIRED is set but neither JWT_SECRET nor JWKS_URL is configured"))
	}

	s.MaxScanDays, err = config.Int("MAX_SCAN_DAYS", 31)
	collect(err)
	if s.MaxScanDays <= 0 {
		collect(errors.New("MAX_SCAN_DAYS must be positive"))
	}
	s.RequestTimeout, err = config.Duration("REQUEST_TIMEOUT", 10*time.Second)
	collect(err)
	s.RateLimitPerMinute, err = config.Int("RATE_LIMIT_PER_MINUTE", 120)
	collect(err)
	s.RateLimitPrefix = config.String("RATE_LIMIT_PREFIX", "rl:availability")
	s.RateLimitFailOpen = config.Bool("RATE_LIMIT_FAIL_OPEN", true)

	corsMaxAge, err := config.Duration("CORS_MAX_AGE", 10*time.Minute)
	collect(err)
	s.CORS = httpx.CORSPolicy{
		AllowedOrigins:   config.List("CORS_ALLOWED_ORIGINS", ""),
		AllowedMethods:   config.List("CORS_ALLOWED_METHODS", "GET,OPTIONS"),
		AllowedHeaders:   config.List("CORS_ALLOWED_HEADERS", "Authorization,Content-Type,X-Request-Id"),
		ExposedHeaders:   config.List("CORS_EXPOSED_HEADERS", "X-Request-Id,Retry-After"),
		AllowCredentials: config.Bool("CORS_ALLOW_CREDENTIALS", false),
		MaxAge:           corsMaxAge,
	}

	return s, errors.Join(errs...)
}

package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/md-rashed-zaman/freeslots/libs/auth"
	"github.com/md-rashed-zaman/freeslots/libs/httpx"
	"github.com/md-rashed-zaman/freeslots/libs/runtime"
	"github.com/md-rashed-zaman/freeslots/services/availability-service/internal/handlers"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type routerConfig struct {
	Availability   http.Handler
	Verifier       *auth.Verifier // nil disables bearer auth
	ReadyChecks    []runtime.ReadyCheck
	RateLimit      httpx.Middleware // applied after auth so verified callers key by subject
	CORS           httpx.CORSPolicy
	RequestTimeout time.Duration
	OperationName  string
}

func newRouter(cfg routerConfig, logger *slog.Logger) http.Handler {
	mux := runtime.NewBaseMuxWithReady(cfg.ReadyChecks...)

	availability := cfg.Availability
	if cfg.RateLimit != nil {
		availability = cfg.RateLimit(availability)
	}
	if cfg.Verifier != nil {
		availability = auth.RequireBearer(availability, cfg.Verifier, func(w http.ResponseWriter, status int, message string) {
			handlers.WriteError(w, status, "unauthorized", message)
		})
	}
	mux.Handle("GET /api/v1/availability", availability)

	handler := httpx.Chain(mux,
		httpx.WithRecover(logger),
		httpx.WithCORS(cfg.CORS),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithTimeout(cfg.RequestTimeout),
	)
	return otelhttp.NewHandler(handler, cfg.OperationName)
}

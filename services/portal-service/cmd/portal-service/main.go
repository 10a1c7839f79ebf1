package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/md-rashed-zaman/patientportal/libs/config"
	"github.com/md-rashed-zaman/patientportal/libs/httpx"
	otelx "github.com/md-rashed-zaman/patientportal/libs/otel"
	"github.com/md-rashed-zaman/patientportal/libs/runtime"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/backend"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/directory"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/metrics"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/session"
	"github.com/md-rashed-zaman/patientportal/services/portal-service/internal/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	_ = godotenv.Load()

	service := config.String("SERVICE_NAME", "portal-service")
	logger := runtime.NewLogger(service, config.String("LOG_LEVEL", "info"))
	if err := run(logger, service); err != nil {
		logger.Error("portal-service exited", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, service string) error {
	port, err := config.Port("PORT", "8090")
	if err != nil {
		return err
	}
	backendURL, err := config.RequiredString("BACKEND_URL")
	if err != nil {
		return err
	}

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	client := backend.New(backendURL, config.Duration("BACKEND_TIMEOUT", 10*time.Second))
	checks := []runtime.ReadyCheck{{Name: "backend", Check: client.Ping}}

	sessionTTL := config.Duration("SESSION_TTL", 24*time.Hour)
	paymentsPerMinute := config.Int("PAYMENT_ATTEMPTS_PER_MINUTE", 10)

	var (
		store   session.Store
		limiter httpx.Limiter
	)
	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		defer func() { _ = rdb.Close() }()

		store = session.NewRedisStore(rdb, sessionTTL, "portal:session:")
		limiter = httpx.NewRedisLimiter(rdb, paymentsPerMinute, time.Minute, "portal:rl")
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
		logger.Info("sessions and payment throttling on redis", "redis_addr", addr, "per_minute", paymentsPerMinute)
	} else {
		store = session.NewMemoryStore(sessionTTL)
		limiter = httpx.NewMemoryLimiter(paymentsPerMinute, time.Minute)
		logger.Info("sessions and payment throttling in memory", "per_minute", paymentsPerMinute)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	portalMetrics := metrics.NewPortalMetrics(registry)

	doctors := directory.New(client, logger)
	go func() { _ = doctors.Refresh(ctx) }()

	srv, err := web.New(web.Config{
		Backend:        client,
		Sessions:       store,
		Directory:      doctors,
		PaymentLimiter: limiter,
		Logger:         logger,
		Metrics:        portalMetrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadyChecks:    checks,
		SessionTTL:     sessionTTL,
		CookieSecure:   config.Bool("SESSION_COOKIE_SECURE", false),
		JWTSecret:      config.String("JWT_SECRET", ""),
	})
	if err != nil {
		return err
	}

	handler := httpx.Chain(srv.Routes(),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
		httpx.WithBodyLimit(int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 1<<20))),
		httpx.WithTimeout(config.Duration("REQUEST_TIMEOUT", 15*time.Second)),
	)
	handler = otelhttp.NewHandler(handler, service)

	return runtime.Serve(ctx, &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}, logger, 10*time.Second)
}

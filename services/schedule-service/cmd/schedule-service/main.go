package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/clinicbook/clinicbook/libs/auth"
	"github.com/clinicbook/clinicbook/libs/config"
	"github.com/clinicbook/clinicbook/libs/db"
	"github.com/clinicbook/clinicbook/libs/httpx"
	"github.com/clinicbook/clinicbook/libs/kafkax"
	otelx "github.com/clinicbook/clinicbook/libs/otel"
	"github.com/clinicbook/clinicbook/libs/redisx"
	"github.com/clinicbook/clinicbook/libs/runtime"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/cache"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/customers"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/doctors"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/handlers"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/identity"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/notify"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/scheduling"
	"github.com/clinicbook/clinicbook/services/schedule-service/internal/storage"
)

func main() {
	service := config.String("SERVICE_NAME", "schedule-service")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

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

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.OpenWithOptions(ctx, dbURL, db.Options{
		MaxConns: int32(config.Int("DB_MAX_CONNS", 10)),
		MinConns: int32(config.Int("DB_MIN_CONNS", 2)),
	})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	rdb := redisx.OpenFromEnv()
	var store cache.Cache
	if rdb != nil {
		store = cache.NewRedisCache(rdb, logger)
	} else {
		logger.Warn("REDIS_ADDR not set; using in-process cache")
		store = cache.NewMemoryCache()
	}

	brokers, err := config.RequiredString("KAFKA_BROKERS")
	if err != nil {
		panic(err)
	}
	dispatcher := notify.NewKafkaDispatcher(brokers, logger)
	defer func() { _ = dispatcher.Close() }()

	scheduleRepo := storage.NewScheduleRepository(pool)
	customerRepo := storage.NewCustomerRepository(pool)
	doctorRepo := storage.NewDoctorRepository(pool)

	scheduleSvc := scheduling.NewService(scheduleRepo, customerRepo, doctorRepo, store, dispatcher, logger)
	customerSvc := customers.NewService(customerRepo, store, logger)
	doctorSvc := doctors.NewService(doctorRepo, store, logger)

	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
		{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	}
	if rdb != nil {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "redis", Check: redisx.ReadyCheck(rdb)})
	}
	mux := runtime.NewBaseMuxWithReady(readyChecks...)

	api := http.NewServeMux()
	handlers.NewScheduleHandler(scheduleSvc, logger).Register(api)
	handlers.NewCustomerHandler(customerSvc, logger).Register(api)
	handlers.NewDoctorHandler(doctorSvc, logger).Register(api)

	var apiHandler http.Handler = api
	if validator := buildValidator(logger); validator != nil {
		apiHandler = identity.RequireAuth(validator)(apiHandler)
	}
	mux.Handle("/v1/", apiHandler)

	limitPerMinute := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	var rateLimitMW httpx.Middleware
	if rdb != nil {
		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl"))
		rateLimitMW = rl.Middleware(logger, true)
	} else {
		rl := httpx.NewRateLimiter(limitPerMinute, time.Minute)
		rateLimitMW = rl.Middleware()
	}

	httpHandler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   parseList(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods:   parseList(config.String("CORS_ALLOWED_METHODS", "GET,POST,PATCH,DELETE,OPTIONS")),
			AllowedHeaders:   parseList(config.String("CORS_ALLOWED_HEADERS", "Authorization,Content-Type,X-Request-Id")),
			MaxAge:           config.Seconds("CORS_MAX_AGE_SECONDS", 10*time.Minute),
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(int64(config.Int("MAX_BODY_BYTES", 1<<20))),
		httpx.WithTimeout(config.Seconds("REQUEST_TIMEOUT_SECONDS", 10*time.Second)),
		rateLimitMW,
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "schedule")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
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
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// buildValidator picks a token validator from the environment. Local JWT
// verification wins over remote introspection; with neither configured the
// API runs unauthenticated, which is only acceptable for local development.
func buildValidator(logger *slog.Logger) identity.Validator {
	secret := config.String("AUTH_JWT_SECRET", "")
	jwksURL := config.String("AUTH_JWKS_URL", "")
	if secret != "" || jwksURL != "" {
		var jwks *auth.JWKSClient
		if jwksURL != "" {
			jwks = auth.NewJWKSClient(jwksURL, config.Seconds("AUTH_JWKS_TTL_SECONDS", 5*time.Minute))
		}
		return identity.NewJWTValidator(secret, jwks)
	}
	if base := config.String("AUTH_SERVICE_URL", ""); base != "" {
		return identity.NewRemoteValidator(base)
	}
	logger.Warn("no auth configuration; API is unauthenticated")
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/clinicbook/clinicbook/libs/config"
	"github.com/clinicbook/clinicbook/libs/db"
	"github.com/clinicbook/clinicbook/libs/httpx"
	"github.com/clinicbook/clinicbook/libs/kafkax"
	otelx "github.com/clinicbook/clinicbook/libs/otel"
	"github.com/clinicbook/clinicbook/libs/runtime"
	"github.com/clinicbook/clinicbook/services/notification-service/internal/consumer"
	"github.com/clinicbook/clinicbook/services/notification-service/internal/email"
	"github.com/clinicbook/clinicbook/services/notification-service/internal/storage"
	"github.com/clinicbook/clinicbook/services/notification-service/internal/worker"
)

func main() {
	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "8081")
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

	// The delivery log is optional; without a database the service still
	// consumes and sends, it just keeps no audit trail.
	var deliveries *storage.DeliveryRepository
	var pool *db.Pool
	if dbURL := config.String("DATABASE_URL", ""); dbURL != "" {
		pool, err = db.Open(ctx, dbURL)
		if err != nil {
			logger.Error("db connection failed", "err", err)
			panic(err)
		}
		defer pool.Close()
		deliveries = storage.NewDeliveryRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set; delivery log disabled")
	}

	sender := email.NewSMTPSender(
		config.String("SMTP_HOST", "mailpit"),
		config.String("SMTP_PORT", "1025"),
		config.String("SMTP_FROM", "no-reply@clinicbook.local"),
		config.String("SMTP_USERNAME", ""),
		config.String("SMTP_PASSWORD", ""),
	)
	deliverer := worker.NewDeliverer(sender, logger)

	brokers := config.String("KAFKA_BROKERS", "")
	consumerCfg := consumer.Config{
		Brokers: brokers,
		GroupID: config.String("KAFKA_GROUP_ID", "notification-service"),
		Topic:   config.String("KAFKA_CONSUME_TOPIC", "schedule.notification.requested.v1"),
	}
	eventConsumer := consumer.New(logger, consumerCfg, func(ctx context.Context, msg kafka.Message) error {
		var job worker.Job
		if err := json.Unmarshal(msg.Value, &job); err != nil {
			logger.Error("invalid notification payload", "err", err)
			return nil
		}
		if job.RecipientEmail == "" {
			logger.Error("notification payload missing recipient")
			return nil
		}

		res := deliverer.Deliver(ctx, job)

		if deliveries != nil {
			d := storage.Delivery{
				Recipient: job.RecipientEmail,
				Action:    job.Action,
				Subject:   res.Subject,
				Status:    storage.StatusSent,
				Attempts:  res.Attempts,
			}
			if res.Err != nil {
				d.Status = storage.StatusFailed
				d.Error = res.Err.Error()
			}
			if err := deliveries.Insert(ctx, d); err != nil {
				logger.Error("failed to persist delivery record", "err", err)
			}
		}
		return nil
	})
	go eventConsumer.Run(ctx)

	readyChecks := []runtime.ReadyCheck{
		{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	}
	if pool != nil {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)})
	}
	mux := runtime.NewBaseMuxWithReady(readyChecks...)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "notification")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
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

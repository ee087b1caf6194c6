package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/clinicbook/clinicbook/libs/kafkax"
)

// Dispatcher hands a job to the asynchronous delivery pipeline. Enqueue must
// return promptly and must never surface a failure to the caller: a booking
// or cancellation is complete regardless of notification outcome.
type Dispatcher interface {
	Enqueue(ctx context.Context, job Job)
}

type KafkaDispatcher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewKafkaDispatcher(brokers string, logger *slog.Logger) *KafkaDispatcher {
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  kafkax.SplitBrokers(brokers),
		Topic:    Topic,
		Balancer: &kafka.Hash{},
		// Async hands the message to a background batch; write failures come
		// back through ErrorLogger instead of the Enqueue caller.
		Async: true,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error("notification enqueue failed", "detail", msg)
		}),
	})
	return &KafkaDispatcher{writer: w, logger: logger}
}

func (d *KafkaDispatcher) Enqueue(ctx context.Context, job Job) {
	payload, err := json.Marshal(job)
	if err != nil {
		d.logger.Error("failed to build notification payload", "err", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(job.RecipientEmail),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(uuid.NewString())},
			{Key: "event_type", Value: []byte(Topic)},
		},
	}
	msg.Headers = kafkax.InjectTraceHeaders(ctx, msg.Headers)

	writeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := d.writer.WriteMessages(writeCtx, msg); err != nil {
		d.logger.Error("notification enqueue failed", "recipient", job.RecipientEmail, "action", job.Action, "err", err)
	}
}

func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}

// MemoryDispatcher queues jobs on a buffered channel. Used in tests and as a
// stand-in when no broker is configured; a full queue drops the job with a
// log line rather than blocking the caller.
type MemoryDispatcher struct {
	jobs   chan Job
	logger *slog.Logger
}

func NewMemoryDispatcher(size int, logger *slog.Logger) *MemoryDispatcher {
	if size <= 0 {
		size = 64
	}
	return &MemoryDispatcher{jobs: make(chan Job, size), logger: logger}
}

func (d *MemoryDispatcher) Enqueue(_ context.Context, job Job) {
	select {
	case d.jobs <- job:
	default:
		d.logger.Error("notification queue full, dropping job", "recipient", job.RecipientEmail, "action", job.Action)
	}
}

func (d *MemoryDispatcher) Jobs() <-chan Job {
	return d.jobs
}

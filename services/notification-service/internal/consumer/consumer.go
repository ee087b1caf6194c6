// Package consumer reads notification jobs off Kafka.
package consumer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/clinicbook/clinicbook/libs/kafkax"
)

type Handler func(ctx context.Context, msg kafka.Message) error

type Config struct {
	Brokers string
	GroupID string
	Topic   string
}

type Consumer struct {
	reader  *kafka.Reader
	logger  *slog.Logger
	seen    *dedupSet
	handler Handler
}

func New(logger *slog.Logger, cfg Config, handler Handler) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  kafkax.SplitBrokers(cfg.Brokers),
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{
		reader:  reader,
		logger:  logger,
		seen:    newDedupSet(4096),
		handler: handler,
	}
}

func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("kafka read error", "err", err)
			time.Sleep(1 * time.Second)
			continue
		}

		ctxMsg := kafkax.ExtractTraceContext(ctx, msg)
		ctxSpan, span := otel.Tracer("kafka").Start(ctxMsg, "kafka.consume",
			trace.WithAttributes(
				attribute.String("messaging.system", "kafka"),
				attribute.String("messaging.destination", msg.Topic),
			),
		)

		meta := kafkax.ExtractEventMeta(msg)
		if meta.EventID != "" && !c.seen.Record(meta.EventID) {
			c.logger.Info("duplicate event ignored", "event_id", meta.EventID, "event_type", meta.EventType)
			span.End()
			continue
		}

		if err := c.handler(ctxSpan, msg); err != nil {
			c.logger.Error("handler error", "err", err, "event_id", meta.EventID)
			span.RecordError(err)
		}
		span.End()
	}
}

// dedupSet remembers recently seen event IDs. At-least-once delivery plus
// producer retries means duplicates are expected; the set is bounded and
// evicts oldest-first, so very old replays can slip through. Deliveries are
// idempotent enough (a repeated email) for that to be acceptable.
type dedupSet struct {
	mu    sync.Mutex
	cap   int
	ids   map[string]struct{}
	order []string
}

func newDedupSet(capacity int) *dedupSet {
	return &dedupSet{cap: capacity, ids: make(map[string]struct{}, capacity)}
}

// Record returns false when the id was already present.
func (s *dedupSet) Record(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
	if len(s.order) > s.cap {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.ids, oldest)
	}
	return true
}

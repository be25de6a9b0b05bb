package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/crash-zone-dashboard/internal/config"
	"github.com/couchcryptid/crash-zone-dashboard/internal/domain"
	"github.com/couchcryptid/crash-zone-dashboard/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces dashboard view events to a Kafka topic.
// It implements dashboard.ViewPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates an async Kafka producer for the configured view-event
// topic. Delivery failures are logged and counted, never returned to callers.
func NewWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaViewTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 250 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafkago.Message, err error) {
			if err != nil {
				metrics.ViewEventsFailed.Add(float64(len(messages)))
				logger.Warn("view event delivery failed", "count", len(messages), "error", err)
				return
			}
			metrics.ViewEventsPublished.Add(float64(len(messages)))
		},
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and enqueues view events.
func (w *Writer) Publish(ctx context.Context, events ...domain.ViewEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

// Close flushes pending messages and closes the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a ViewEvent into a Kafka message keyed by view
// so events for one view stay ordered on a partition.
func serializeToMessage(event domain.ViewEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize view event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.View),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "occurred_at", Value: []byte(event.OccurredAt.Format(time.RFC3339))},
		},
	}, nil
}

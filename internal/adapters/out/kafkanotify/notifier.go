// Package kafkanotify publishes delivery lifecycle notifications to a Kafka
// topic. Messages are keyed by recipient so one party's notifications land on
// the same partition and stay ordered; delivery is asynchronous and failures
// are logged, matching the contract that notifications never fail the
// operation that produced them.
package kafkanotify

import (
	"context"
	"encoding/json"
	"log/slog"

	"dispatch/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

// KafkaNotifier implements ports.Notifier on top of an async kafka writer.
type KafkaNotifier struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaNotifier creates a notifier writing to the given topic. The writer
// is asynchronous: Notify only fails when the message cannot be enqueued, and
// broker-side failures surface through the completion callback as warnings.
func NewKafkaNotifier(brokers []string, topic string, logger *slog.Logger) *KafkaNotifier {
	scoped := logger.With("component", "kafka_notifier")

	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					scoped.Warn("notification delivery failed",
						"error", err, "count", len(messages))
				}
			},
		},
		logger: scoped,
	}
}

// Notify enqueues the notification keyed by its recipient.
func (n *KafkaNotifier) Notify(ctx context.Context, notification ports.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(notification.RecipientID),
		Value: payload,
		Time:  notification.OccurredAt,
	})
}

// Close flushes pending messages and releases the writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// DLQTopicPrefix is prepended to a source topic's name to form its
// dead-letter topic.
const DLQTopicPrefix = "freshdrop.dlq"

// DLQTopic returns the dead-letter topic for a source topic.
func DLQTopic(sourceTopic string) string {
	return DLQTopicPrefix + "." + sourceTopic
}

// DLQProducer parks messages that exhausted their consumer retries on a
// dead-letter topic, preserving the original payload and annotating it with
// provenance headers for later inspection.
type DLQProducer struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewDLQProducer builds a synchronous single-message producer. Dead-letter
// traffic is rare enough that batching would only delay visibility.
func NewDLQProducer(brokers []string, logger *slog.Logger) *DLQProducer {
	return &DLQProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchSize:    1,
			BatchTimeout: 100 * time.Millisecond,
			Async:        false,
			RequiredAcks: kafka.RequireAll,
		},
		logger: logger,
	}
}

// Publish copies the failed message onto its dead-letter topic. The original
// topic, partition, offset, consumer group, and last error travel along as
// dlq.* headers.
func (d *DLQProducer) Publish(ctx context.Context, failed kafka.Message, lastErr error, consumerGroup string) error {
	dlqTopic := DLQTopic(failed.Topic)

	headers := make([]kafka.Header, 0, len(failed.Headers)+5)
	headers = append(headers, failed.Headers...)
	headers = append(headers,
		kafka.Header{Key: "dlq.original_topic", Value: []byte(failed.Topic)},
		kafka.Header{Key: "dlq.original_partition", Value: []byte(strconv.Itoa(failed.Partition))},
		kafka.Header{Key: "dlq.original_offset", Value: []byte(strconv.FormatInt(failed.Offset, 10))},
		kafka.Header{Key: "dlq.consumer_group", Value: []byte(consumerGroup)},
	)
	if lastErr != nil {
		headers = append(headers, kafka.Header{Key: "dlq.error", Value: []byte(lastErr.Error())})
	}

	err := d.writer.WriteMessages(ctx, kafka.Message{
		Topic:   dlqTopic,
		Key:     failed.Key,
		Value:   failed.Value,
		Headers: headers,
	})
	if err != nil {
		d.logger.Error("failed to publish message to DLQ",
			slog.String("dlq_topic", dlqTopic),
			slog.String("original_topic", failed.Topic),
			slog.Int("partition", failed.Partition),
			slog.Int64("offset", failed.Offset),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("publish to DLQ %s: %w", dlqTopic, err)
	}

	ConsumerDLQPublished.WithLabelValues(failed.Topic, consumerGroup).Inc()

	d.logger.Warn("message sent to DLQ",
		slog.String("dlq_topic", dlqTopic),
		slog.String("original_topic", failed.Topic),
		slog.Int("partition", failed.Partition),
		slog.Int64("offset", failed.Offset),
		slog.String("consumer_group", consumerGroup),
	)

	return nil
}

// Close releases the underlying writer.
func (d *DLQProducer) Close() error {
	return d.writer.Close()
}

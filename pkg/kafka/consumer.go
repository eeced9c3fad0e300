package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// TopicPrefix is shared by every FreshDrop Kafka topic.
const TopicPrefix = "freshdrop"

// Topic builds a fully qualified topic name, e.g. Topic("rewards",
// "campaign") gives "freshdrop.rewards.campaign".
func Topic(domain, action string) string {
	return TopicPrefix + "." + domain + "." + action
}

// maxHandlerRetries bounds handler attempts per message. A message that
// still fails afterwards is committed and, when a DLQ is configured,
// parked there, so one poison message cannot wedge the partition.
const maxHandlerRetries = 3

// Handler processes one decoded event.
type Handler func(ctx context.Context, event *Event) error

// ConsumerConfig identifies the topic, group, and fetch sizing for a
// consumer group member.
type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topic    string
	MinBytes int
	MaxBytes int
}

// Consumer reads one topic as part of a consumer group, retrying the
// handler with backoff and committing offsets only after the handler
// resolves one way or the other.
type Consumer struct {
	reader    *kafka.Reader
	logger    *slog.Logger
	handler   Handler
	dlq       *DLQProducer
	closeOnce sync.Once
}

// ConsumerOption customizes a Consumer.
type ConsumerOption func(*Consumer)

// WithDLQ parks poison messages on a dead-letter topic instead of
// dropping them.
func WithDLQ(d *DLQProducer) ConsumerOption {
	return func(c *Consumer) { c.dlq = d }
}

func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.Brokers,
			GroupID:  cfg.GroupID,
			Topic:    cfg.Topic,
			MinBytes: cfg.MinBytes,
			MaxBytes: cfg.MaxBytes,
		}),
		logger:  logger,
		handler: handler,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start fetches and processes messages until ctx is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	cfg := c.reader.Config()
	c.logger.Info("consumer started",
		slog.String("topic", cfg.Topic),
		slog.String("group", cfg.GroupID),
	)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopping", slog.String("topic", cfg.Topic))
			return c.Close()
		default:
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("failed to fetch message", slog.String("error", err.Error()))
			continue
		}

		c.processMessage(ctx, msg, cfg.GroupID)
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message, group string) {
	ConsumerMessagesReceived.WithLabelValues(msg.Topic, group).Inc()

	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to unmarshal event",
			slog.String("error", err.Error()),
			slog.String("topic", msg.Topic),
		)
		c.commit(ctx, msg, "bad")
		return
	}

	msgCtx := ExtractTraceContext(ctx, msg.Headers)
	lastErr := c.handleWithRetry(msgCtx, msg, event, group)

	if lastErr != nil {
		ConsumerMessagesFailed.WithLabelValues(msg.Topic, group).Inc()
		c.logger.Error("handler failed after all retries, skipping poison message",
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID),
			slog.String("error", lastErr.Error()),
			slog.String("topic", msg.Topic),
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
			slog.Int("retries", maxHandlerRetries),
		)
		if c.dlq != nil {
			if dlqErr := c.dlq.Publish(ctx, msg, lastErr, group); dlqErr != nil {
				c.logger.Error("failed to publish poison message to DLQ", slog.String("error", dlqErr.Error()))
			}
		}
		c.commit(ctx, msg, "poison")
		return
	}

	ConsumerMessagesProcessed.WithLabelValues(msg.Topic, group).Inc()
	c.commit(ctx, msg, "processed")
}

// handleWithRetry runs the handler up to maxHandlerRetries times with
// linear backoff between attempts. Returns nil as soon as one attempt
// succeeds, the last error otherwise.
func (c *Consumer) handleWithRetry(ctx context.Context, msg kafka.Message, event *Event, group string) error {
	var lastErr error
	for attempt := 1; attempt <= maxHandlerRetries; attempt++ {
		start := time.Now()
		err := c.handler(ctx, event)
		ConsumerProcessingDuration.WithLabelValues(msg.Topic, group).Observe(time.Since(start).Seconds())
		if err == nil {
			return nil
		}

		lastErr = err
		c.logger.Warn("handler failed, will retry",
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID),
			slog.String("error", err.Error()),
			slog.String("topic", msg.Topic),
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
			slog.Int("attempt", attempt),
			slog.Int("max_retries", maxHandlerRetries),
		)

		if attempt < maxHandlerRetries {
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}
	}
	return lastErr
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message, kind string) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("failed to commit "+kind+" message", slog.String("error", err.Error()))
	}
}

// Close releases the reader. Safe to call more than once.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.reader.Close()
	})
	return err
}

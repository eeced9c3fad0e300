package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/freshdrop/rewards/internal/domain"
	pkgkafka "github.com/freshdrop/rewards/pkg/kafka"
)

// TopicOrderCompleted is the order service topic the rewards service listens on.
const TopicOrderCompleted = "freshdrop.orders.completed"

// orderIdempotencyTTL bounds how long processed order event IDs are remembered.
const orderIdempotencyTTL = 24 * time.Hour

// OrderCompletedData is the payload of an order completed event.
type OrderCompletedData struct {
	OrderID     string `json:"order_id"`
	UserID      string `json:"user_id"`
	OrderTotal  int64  `json:"order_total"`
	OrderNumber int    `json:"order_number"`
}

// ScratchEvaluator evaluates scratch-card triggers for a user.
type ScratchEvaluator interface {
	Scratch(ctx context.Context, userID string, trigger domain.TriggerEvent) (*domain.ScratchOutcome, error)
}

// OrderConsumer turns order completed events into scratch-card trigger
// evaluations. Each completed order fires an order_placed trigger, and an
// nth_order_reached trigger when the order number is known.
type OrderConsumer struct {
	consumer *pkgkafka.Consumer
	dlq      *pkgkafka.DLQProducer
	logger   *slog.Logger
}

// NewOrderConsumer creates a consumer for order completed events. The handler
// is wrapped for idempotency so redelivered order events do not grant a second
// scratch evaluation; poison messages go to the dead-letter queue.
func NewOrderConsumer(brokers []string, groupID string, evaluator ScratchEvaluator, logger *slog.Logger) *OrderConsumer {
	handler := pkgkafka.IdempotentHandler(
		pkgkafka.NewMemoryIdempotencyStore(orderIdempotencyTTL),
		orderHandler(evaluator, logger),
		logger,
	)

	dlq := pkgkafka.NewDLQProducer(brokers, logger)

	consumer := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    TopicOrderCompleted,
		MinBytes: 1,
		MaxBytes: 10e6,
	}, handler, logger, pkgkafka.WithDLQ(dlq))

	return &OrderConsumer{
		consumer: consumer,
		dlq:      dlq,
		logger:   logger,
	}
}

// Start begins consuming order events. It blocks until the context is canceled.
func (c *OrderConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

// Close shuts down the underlying Kafka reader and DLQ producer.
func (c *OrderConsumer) Close() error {
	err := c.consumer.Close()
	if dlqErr := c.dlq.Close(); dlqErr != nil && err == nil {
		err = dlqErr
	}
	return err
}

func orderHandler(evaluator ScratchEvaluator, logger *slog.Logger) pkgkafka.Handler {
	return func(ctx context.Context, event *pkgkafka.Event) error {
		var data OrderCompletedData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("unmarshal order completed payload: %w", err)
		}

		if data.UserID == "" {
			logger.WarnContext(ctx, "order event missing user id, skipping",
				slog.String("event_id", event.EventID),
				slog.String("order_id", data.OrderID),
			)
			return nil
		}

		triggers := []domain.TriggerEvent{
			domain.OrderPlaced(data.OrderTotal),
		}
		if data.OrderNumber > 0 {
			triggers = append(triggers, domain.NthOrderReached(data.OrderNumber))
		}

		for _, trigger := range triggers {
			outcome, err := evaluator.Scratch(ctx, data.UserID, trigger)
			if err != nil {
				return fmt.Errorf("evaluate %s trigger for order %s: %w", trigger.Kind, data.OrderID, err)
			}
			if outcome != nil {
				logger.InfoContext(ctx, "scratch card granted from order event",
					slog.String("user_id", data.UserID),
					slog.String("order_id", data.OrderID),
					slog.String("reward_id", outcome.RewardID),
					slog.String("trigger", trigger.Kind),
				)
			}
		}

		return nil
	}
}

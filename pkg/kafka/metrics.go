package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
}

func histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    name,
		Help:    help,
		Buckets: prometheus.DefBuckets,
	}, labels)
}

// Consumer-side metrics, labeled by topic and consumer group except for the
// duplicate counter, which is labeled by event type since deduplication
// happens after the envelope is decoded.
var (
	ConsumerMessagesReceived = counterVec(
		"kafka_consumer_messages_received_total",
		"Messages fetched from the broker, before any processing",
		"topic", "consumer_group",
	)

	ConsumerMessagesProcessed = counterVec(
		"kafka_consumer_messages_processed_total",
		"Messages whose handler completed successfully",
		"topic", "consumer_group",
	)

	ConsumerMessagesFailed = counterVec(
		"kafka_consumer_messages_failed_total",
		"Messages that exhausted all retries (sent to DLQ or dropped)",
		"topic", "consumer_group",
	)

	ConsumerMessagesDuplicate = counterVec(
		"kafka_consumer_messages_duplicate_total",
		"Messages skipped by the idempotency guard",
		"event_type",
	)

	ConsumerDLQPublished = counterVec(
		"kafka_consumer_dlq_published_total",
		"Messages parked on a dead-letter topic",
		"topic", "consumer_group",
	)

	ConsumerProcessingDuration = histogramVec(
		"kafka_consumer_processing_duration_seconds",
		"Handler execution time per message",
		"topic", "consumer_group",
	)
)

// Producer-side metrics, labeled by topic.
var (
	ProducerMessagesPublished = counterVec(
		"kafka_producer_messages_published_total",
		"Events published successfully",
		"topic",
	)

	ProducerPublishErrors = counterVec(
		"kafka_producer_publish_errors_total",
		"Publish attempts that returned an error",
		"topic",
	)

	ProducerPublishDuration = histogramVec(
		"kafka_producer_publish_duration_seconds",
		"Time spent writing to the broker per publish",
		"topic",
	)
)

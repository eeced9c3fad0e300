package kafka

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findMetric gathers the default registry and returns the sample whose
// labels match, or nil.
func findMetric(t *testing.T, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
	sample:
		for _, m := range fam.GetMetric() {
			got := make(map[string]string)
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue sample
				}
			}
			return m
		}
	}
	return nil
}

func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	m := findMetric(t, name, labels)
	if m == nil || m.GetCounter() == nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func TestConsumerMetrics_CountAndObserve(t *testing.T) {
	labels := map[string]string{
		"topic":          "freshdrop.rewards.spin",
		"consumer_group": "rewards-audit",
	}
	lv := func(c *prometheus.CounterVec) prometheus.Counter {
		return c.WithLabelValues(labels["topic"], labels["consumer_group"])
	}

	processedBefore := counterValue(t, "kafka_consumer_messages_processed_total", labels)
	failedBefore := counterValue(t, "kafka_consumer_messages_failed_total", labels)
	receivedBefore := counterValue(t, "kafka_consumer_messages_received_total", labels)

	for i := 0; i < 3; i++ {
		lv(ConsumerMessagesProcessed).Inc()
	}
	lv(ConsumerMessagesFailed).Inc()
	ConsumerMessagesReceived.WithLabelValues(labels["topic"], labels["consumer_group"]).Add(5)
	ConsumerProcessingDuration.WithLabelValues(labels["topic"], labels["consumer_group"]).Observe(0.123)

	assert.InDelta(t, processedBefore+3, counterValue(t, "kafka_consumer_messages_processed_total", labels), 0.001)
	assert.InDelta(t, failedBefore+1, counterValue(t, "kafka_consumer_messages_failed_total", labels), 0.001)
	assert.InDelta(t, receivedBefore+5, counterValue(t, "kafka_consumer_messages_received_total", labels), 0.001)

	hist := findMetric(t, "kafka_consumer_processing_duration_seconds", labels)
	require.NotNil(t, hist)
	assert.GreaterOrEqual(t, hist.GetHistogram().GetSampleCount(), uint64(1))
}

func TestProducerMetrics_CountAndObserve(t *testing.T) {
	labels := map[string]string{"topic": "freshdrop.rewards.scratch"}

	publishedBefore := counterValue(t, "kafka_producer_messages_published_total", labels)
	errorsBefore := counterValue(t, "kafka_producer_publish_errors_total", labels)

	ProducerMessagesPublished.WithLabelValues(labels["topic"]).Inc()
	ProducerMessagesPublished.WithLabelValues(labels["topic"]).Inc()
	ProducerPublishErrors.WithLabelValues(labels["topic"]).Inc()
	ProducerPublishDuration.WithLabelValues(labels["topic"]).Observe(0.05)

	assert.InDelta(t, publishedBefore+2, counterValue(t, "kafka_producer_messages_published_total", labels), 0.001)
	assert.InDelta(t, errorsBefore+1, counterValue(t, "kafka_producer_publish_errors_total", labels), 0.001)

	hist := findMetric(t, "kafka_producer_publish_duration_seconds", labels)
	require.NotNil(t, hist)
	assert.GreaterOrEqual(t, hist.GetHistogram().GetSampleCount(), uint64(1))
}

func TestDuplicateCounter_LabeledByEventType(t *testing.T) {
	labels := map[string]string{"event_type": "rewards.spin.completed"}
	before := counterValue(t, "kafka_consumer_messages_duplicate_total", labels)

	ConsumerMessagesDuplicate.WithLabelValues("rewards.spin.completed").Inc()

	assert.InDelta(t, before+1, counterValue(t, "kafka_consumer_messages_duplicate_total", labels), 0.001)
}

func TestMetrics_AllRegisteredWithHelp(t *testing.T) {
	// Touch each metric so it shows up in Gather even with no prior traffic.
	ConsumerMessagesProcessed.WithLabelValues("t", "g")
	ConsumerMessagesFailed.WithLabelValues("t", "g")
	ConsumerMessagesReceived.WithLabelValues("t", "g")
	ConsumerDLQPublished.WithLabelValues("t", "g")
	ConsumerProcessingDuration.WithLabelValues("t", "g")
	ConsumerMessagesDuplicate.WithLabelValues("t")
	ProducerMessagesPublished.WithLabelValues("t")
	ProducerPublishErrors.WithLabelValues("t")
	ProducerPublishDuration.WithLabelValues("t")

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	helpByName := make(map[string]string)
	for _, fam := range families {
		helpByName[fam.GetName()] = fam.GetHelp()
	}

	names := []string{
		"kafka_consumer_messages_received_total",
		"kafka_consumer_messages_processed_total",
		"kafka_consumer_messages_failed_total",
		"kafka_consumer_messages_duplicate_total",
		"kafka_consumer_dlq_published_total",
		"kafka_consumer_processing_duration_seconds",
		"kafka_producer_messages_published_total",
		"kafka_producer_publish_errors_total",
		"kafka_producer_publish_duration_seconds",
	}
	for _, name := range names {
		help, ok := helpByName[name]
		assert.True(t, ok, "metric %q not registered", name)
		assert.NotEmpty(t, help, "metric %q has empty help", name)
	}
}

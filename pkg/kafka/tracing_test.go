package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func newCarrier(headers ...kafka.Header) (*KafkaHeaderCarrier, *[]kafka.Header) {
	hs := headers
	return &KafkaHeaderCarrier{headers: &hs}, &hs
}

func TestKafkaHeaderCarrier_Get(t *testing.T) {
	carrier, _ := newCarrier(kafka.Header{Key: "existing", Value: []byte("value1")})

	if got := carrier.Get("existing"); got != "value1" {
		t.Errorf("Get(existing) = %q, want value1", got)
	}
	if got := carrier.Get("missing"); got != "" {
		t.Errorf("Get(missing) = %q, want empty", got)
	}
}

func TestKafkaHeaderCarrier_SetAppendsAndOverwrites(t *testing.T) {
	carrier, headers := newCarrier(kafka.Header{Key: "existing", Value: []byte("value1")})

	carrier.Set("new-key", "new-value")
	if got := carrier.Get("new-key"); got != "new-value" {
		t.Errorf("Get(new-key) = %q, want new-value", got)
	}

	carrier.Set("existing", "updated")
	if got := carrier.Get("existing"); got != "updated" {
		t.Errorf("Get(existing) after Set = %q, want updated", got)
	}
	if len(*headers) != 2 {
		t.Errorf("header count = %d, want 2 (overwrite must not append)", len(*headers))
	}
}

func TestKafkaHeaderCarrier_Keys(t *testing.T) {
	carrier, _ := newCarrier(
		kafka.Header{Key: "a", Value: []byte("1")},
		kafka.Header{Key: "b", Value: []byte("2")},
		kafka.Header{Key: "c", Value: []byte("3")},
	)

	keys := carrier.Keys()
	if len(keys) != 3 {
		t.Fatalf("Keys() returned %d keys, want 3", len(keys))
	}
	want := map[string]bool{"a": true, "b": true, "c": true}
	for _, k := range keys {
		if !want[k] {
			t.Errorf("unexpected key %q", k)
		}
	}
}

func TestKafkaHeaderCarrier_EmptyHeaders(t *testing.T) {
	carrier, _ := newCarrier()

	if keys := carrier.Keys(); len(keys) != 0 {
		t.Errorf("Keys() on empty carrier = %d, want 0", len(keys))
	}
	if got := carrier.Get("anything"); got != "" {
		t.Errorf("Get on empty carrier = %q, want empty", got)
	}
}

func TestKafkaHeaderCarrier_TraceparentRoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	const traceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	carrier, _ := newCarrier()
	carrier.Set("traceparent", traceparent)

	if got := carrier.Get("traceparent"); got != traceparent {
		t.Errorf("traceparent = %q, want %q", got, traceparent)
	}
}

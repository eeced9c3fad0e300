package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// spinEvent builds an envelope by hand so tests control the event ID.
func spinEvent(eventID string) *Event {
	return &Event{
		EventID:     eventID,
		EventType:   "rewards.spin.completed",
		AggregateID: "campaign-123",
	}
}

// countingHandler returns a Handler that counts invocations and returns err.
func countingHandler(calls *int32, err error) Handler {
	return func(ctx context.Context, event *Event) error {
		atomic.AddInt32(calls, 1)
		return err
	}
}

func TestMemoryIdempotencyStore_AddThenContains(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	ctx := context.Background()

	if err := store.Add(ctx, "evt-1"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	seen, err := store.Contains(ctx, "evt-1")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !seen {
		t.Error("Contains(evt-1) = false, want true after Add")
	}

	seen, err = store.Contains(ctx, "never-added")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if seen {
		t.Error("Contains(never-added) = true, want false")
	}
}

func TestMemoryIdempotencyStore_TTLExpiry(t *testing.T) {
	store := NewMemoryIdempotencyStore(10 * time.Millisecond)
	ctx := context.Background()

	if err := store.Add(ctx, "evt-expire"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if seen, _ := store.Contains(ctx, "evt-expire"); !seen {
		t.Error("entry missing immediately after Add")
	}

	time.Sleep(20 * time.Millisecond)

	if seen, _ := store.Contains(ctx, "evt-expire"); seen {
		t.Error("entry still present after TTL elapsed")
	}
}

func TestMemoryIdempotencyStore_Len(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	ctx := context.Background()

	if store.Len() != 0 {
		t.Errorf("Len() = %d for new store, want 0", store.Len())
	}

	for _, id := range []string{"a", "b", "c"} {
		_ = store.Add(ctx, id)
	}
	if store.Len() != 3 {
		t.Errorf("Len() = %d after 3 adds, want 3", store.Len())
	}

	// Re-adding an existing ID must not grow the store.
	for i := 0; i < 5; i++ {
		_ = store.Add(ctx, "a")
	}
	if store.Len() != 3 {
		t.Errorf("Len() = %d after repeated adds of same ID, want 3", store.Len())
	}
}

func TestMemoryIdempotencyStore_ConcurrentSameKey(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Add(ctx, "evt-concurrent")
			_, _ = store.Contains(ctx, "evt-concurrent")
		}()
	}
	wg.Wait()

	if store.Len() != 1 {
		t.Errorf("Len() = %d after concurrent adds of one key, want 1", store.Len())
	}
	if seen, _ := store.Contains(ctx, "evt-concurrent"); !seen {
		t.Error("Contains(evt-concurrent) = false, want true")
	}
}

func TestIdempotentHandler_ProcessesFirstDelivery(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	var calls int32
	handler := IdempotentHandler(store, countingHandler(&calls, nil), testLogger())

	if err := handler(context.Background(), spinEvent("evt-first")); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if calls != 1 {
		t.Errorf("inner handler called %d times, want 1", calls)
	}
}

func TestIdempotentHandler_SkipsRedelivery(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	var calls int32
	handler := IdempotentHandler(store, countingHandler(&calls, nil), testLogger())
	event := spinEvent("evt-redelivered")

	for i := 0; i < 2; i++ {
		if err := handler(context.Background(), event); err != nil {
			t.Fatalf("delivery %d: %v", i+1, err)
		}
	}
	if calls != 1 {
		t.Errorf("inner handler called %d times, want 1 (redelivery should be skipped)", calls)
	}
}

func TestIdempotentHandler_EmptyEventID_NeverDeduplicates(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	var calls int32
	handler := IdempotentHandler(store, countingHandler(&calls, nil), testLogger())
	event := spinEvent("")

	for i := 0; i < 3; i++ {
		if err := handler(context.Background(), event); err != nil {
			t.Fatalf("delivery %d: %v", i+1, err)
		}
	}
	if calls != 3 {
		t.Errorf("inner handler called %d times, want 3 (no ID means no dedup)", calls)
	}
}

func TestIdempotentHandler_FailedHandlerCanRetry(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	handlerErr := errors.New("processing failed")
	var calls int32
	handler := IdempotentHandler(store, countingHandler(&calls, handlerErr), testLogger())
	event := spinEvent("evt-err")

	if err := handler(context.Background(), event); !errors.Is(err, handlerErr) {
		t.Fatalf("first delivery error = %v, want handlerErr", err)
	}

	// The ID must not be recorded, so the redelivery reaches the handler.
	if seen, _ := store.Contains(context.Background(), "evt-err"); seen {
		t.Error("event ID recorded despite handler failure")
	}
	if err := handler(context.Background(), event); !errors.Is(err, handlerErr) {
		t.Fatalf("second delivery error = %v, want handlerErr", err)
	}
	if calls != 2 {
		t.Errorf("inner handler called %d times, want 2", calls)
	}
}

func TestIdempotentHandler_StoreFailure_ProcessesAnyway(t *testing.T) {
	var calls int32
	handler := IdempotentHandler(&failingIdempotencyStore{}, countingHandler(&calls, nil), testLogger())

	if err := handler(context.Background(), spinEvent("evt-store-down")); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if calls != 1 {
		t.Errorf("inner handler called %d times, want 1 (store failure fails open)", calls)
	}
}

func TestIdempotentHandler_DistinctIDs_BothProcessed(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	var calls int32
	handler := IdempotentHandler(store, countingHandler(&calls, nil), testLogger())

	for _, id := range []string{"evt-aaa", "evt-bbb"} {
		if err := handler(context.Background(), spinEvent(id)); err != nil {
			t.Fatalf("handler(%s): %v", id, err)
		}
	}
	if calls != 2 {
		t.Errorf("inner handler called %d times, want 2", calls)
	}
	for _, id := range []string{"evt-aaa", "evt-bbb"} {
		if seen, _ := store.Contains(context.Background(), id); !seen {
			t.Errorf("Contains(%q) = false, want true", id)
		}
	}
}

type failingIdempotencyStore struct{}

func (f *failingIdempotencyStore) Contains(_ context.Context, _ string) (bool, error) {
	return false, errors.New("store unavailable")
}

func (f *failingIdempotencyStore) Add(_ context.Context, _ string) error {
	return errors.New("store unavailable")
}

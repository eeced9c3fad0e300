package spinlimit

import (
	"context"
	"strings"
	"sync"
)

// Memory is an in-process Tracker guarded by a mutex. Suitable for tests and
// single-node deployments; multi-node setups need the Redis tracker so all
// nodes see one counter.
type Memory struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMemory creates an empty in-memory tracker.
func NewMemory() *Memory {
	return &Memory{counts: make(map[string]int)}
}

// TryReserve implements Tracker.
func (m *Memory) TryReserve(_ context.Context, campaignID, userID string, limit int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(campaignID, userID)
	if m.counts[k] >= limit {
		return false, nil
	}
	m.counts[k]++
	return true, nil
}

// Used implements Tracker.
func (m *Memory) Used(_ context.Context, campaignID, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key(campaignID, userID)], nil
}

// ResetCampaign implements Tracker.
func (m *Memory) ResetCampaign(_ context.Context, campaignID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := key(campaignID, "")
	for k := range m.counts {
		if strings.HasPrefix(k, prefix) {
			delete(m.counts, k)
		}
	}
	return nil
}

// AngelaMos | 2026
// memory.go

package owner

import (
	"context"
	"sync"
	"time"
)

// MemoryChecker answers from a map. Unknown owners are neither active nor
// subscribed.
type MemoryChecker struct {
	mu     sync.RWMutex
	owners map[string]Snapshot
}

func NewMemoryChecker() *MemoryChecker {
	return &MemoryChecker{owners: make(map[string]Snapshot)}
}

func (m *MemoryChecker) Set(ownerID string, accountActive, subscriptionActive bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.owners[ownerID] = Snapshot{
		AccountActive:      accountActive,
		SubscriptionActive: subscriptionActive,
	}
}

func (m *MemoryChecker) Eligibility(
	_ context.Context,
	ownerID string,
) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := m.owners[ownerID]
	snap.CheckedAt = time.Now()
	return snap, nil
}

var _ Checker = (*MemoryChecker)(nil)

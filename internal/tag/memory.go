// AngelaMos | 2026
// memory.go

package tag

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carterperez-dev/tagback/internal/core"
)

// MemoryRepository keeps records in process. Create enforces the same
// three uniqueness constraints as the tags table under a single lock.
type MemoryRepository struct {
	mu        sync.RWMutex
	byID      map[string]*Record
	byOwner   map[string]string
	byDisplay map[string]string
	byToken   map[string]string
	now       func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:      make(map[string]*Record),
		byOwner:   make(map[string]string),
		byDisplay: make(map[string]string),
		byToken:   make(map[string]string),
		now:       time.Now,
	}
}

func (m *MemoryRepository) Create(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[rec.ID]; ok {
		return fmt.Errorf("create tag: %w", core.ErrDuplicateKey)
	}
	if _, ok := m.byOwner[rec.OwnerID]; ok {
		return fmt.Errorf("create tag: %w", core.ErrDuplicateKey)
	}
	if _, ok := m.byDisplay[rec.DisplayID]; ok {
		return fmt.Errorf("create tag: %w", core.ErrDuplicateKey)
	}
	if _, ok := m.byToken[rec.Token]; ok {
		return fmt.Errorf("create tag: %w", core.ErrDuplicateKey)
	}

	now := m.now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	stored := *rec
	m.byID[stored.ID] = &stored
	m.byOwner[stored.OwnerID] = stored.ID
	m.byDisplay[stored.DisplayID] = stored.ID
	m.byToken[stored.Token] = stored.ID

	return nil
}

func (m *MemoryRepository) GetByDisplayID(
	_ context.Context,
	displayID string,
) (*Record, error) {
	return m.lookup(m.byDisplay, displayID, "get tag by display id")
}

func (m *MemoryRepository) GetByToken(
	_ context.Context,
	token string,
) (*Record, error) {
	return m.lookup(m.byToken, token, "get tag by token")
}

func (m *MemoryRepository) GetByOwnerID(
	_ context.Context,
	ownerID string,
) (*Record, error) {
	return m.lookup(m.byOwner, ownerID, "get tag by owner")
}

func (m *MemoryRepository) lookup(
	index map[string]string,
	key, op string,
) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := index[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	rec := *m.byID[id]
	return &rec, nil
}

func (m *MemoryRepository) UpdateStatus(
	_ context.Context,
	id, status string,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("update tag status: %w", core.ErrNotFound)
	}

	rec.Status = status
	rec.UpdatedAt = m.now()

	return nil
}

func (m *MemoryRepository) ExistsByDisplayID(
	_ context.Context,
	displayID string,
) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.byDisplay[displayID]
	return ok, nil
}

func (m *MemoryRepository) ExistsByToken(
	_ context.Context,
	token string,
) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.byToken[token]
	return ok, nil
}

func (m *MemoryRepository) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.byID)), nil
}

var _ Repository = (*MemoryRepository)(nil)

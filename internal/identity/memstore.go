package identity

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// memstore is an in-memory Store used when no DATABASE_URL is configured and
// in tests.
type memstore struct {
	mu    sync.RWMutex
	byID  map[string]*Identity
	order []string // insertion order, keeps Leaderboard ties stable
}

func NewMemoryStore() Store {
	return &memstore{byID: make(map[string]*Identity)}
}

func (m *memstore) Insert(ctx context.Context, ident *Identity) error {
	if ident == nil {
		return fmt.Errorf("nil identity payload")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byID[ident.ID]; exists {
		return ErrDuplicateIdentity
	}
	cp := *ident
	now := time.Now()
	cp.CreatedAt, cp.UpdatedAt = now, now
	m.byID[cp.ID] = &cp
	m.order = append(m.order, cp.ID)
	return nil
}

func (m *memstore) Get(ctx context.Context, id string) (*Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ident, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *ident
	return &cp, nil
}

func (m *memstore) Update(ctx context.Context, ident *Identity) error {
	if ident == nil {
		return fmt.Errorf("nil identity payload")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[ident.ID]; !ok {
		return fmt.Errorf("update identity: unknown id %s", ident.ID)
	}
	cp := *ident
	cp.UpdatedAt = time.Now()
	m.byID[cp.ID] = &cp
	return nil
}

func (m *memstore) SetStatus(ctx context.Context, id string, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ident, ok := m.byID[id]; ok {
		ident.Status = status
		ident.UpdatedAt = time.Now()
	}
	return nil
}

func (m *memstore) Leaderboard(ctx context.Context, limit int) ([]*Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]*Identity, 0, len(m.order))
	for _, id := range m.order {
		cp := *m.byID[id]
		items = append(items, &cp)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Rating > items[j].Rating })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

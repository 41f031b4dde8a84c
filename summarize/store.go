package summarize

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Summary is one persisted summarization result.
//
// Summary instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Summary struct {
	ID         string    `json:"id"`
	Identity   string    `json:"-"`
	Kind       Kind      `json:"kind"`
	Title      string    `json:"title,omitempty"`
	Markdown   string    `json:"markdown"`
	InputBytes int64     `json:"input_bytes"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists summaries per identity. The production implementation is an
// external database; [MemoryStore] serves development and tests.
type Store interface {
	Save(ctx context.Context, s Summary) error
	ListByIdentity(ctx context.Context, identity string, limit int) ([]Summary, error)
	Get(ctx context.Context, identity, id string) (Summary, error)
}

// MemoryStore is an in-process [Store] keyed by identity, newest first.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]Summary
	byUser map[string][]string
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]Summary),
		byUser: make(map[string][]string),
	}
}

func (m *MemoryStore) Save(_ context.Context, s Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[s.ID]; !exists {
		m.byUser[s.Identity] = append(m.byUser[s.Identity], s.ID)
	}
	m.byID[s.ID] = s
	return nil
}

func (m *MemoryStore) ListByIdentity(_ context.Context, identity string, limit int) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.byUser[identity]
	out := make([]Summary, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.byID[id])
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) Get(_ context.Context, identity, id string) (Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.byID[id]
	if !ok || s.Identity != identity {
		// Another identity's summary is indistinguishable from a missing one.
		return Summary{}, ErrNotFound
	}
	return s, nil
}

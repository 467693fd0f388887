package clientconfig

import (
	"context"
	"sync"
)

// MemoryStore keeps records in process. A single mutex makes CompareAndSwap atomic.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	history map[string][]Record
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		history: make(map[string][]Record),
	}
}

func (s *MemoryStore) Load(_ context.Context, clientID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[clientID]
	if !ok {
		return nil, ErrNotFound
	}
	rec.Data = append([]byte(nil), rec.Data...)
	return &rec, nil
}

func (s *MemoryStore) CompareAndSwap(_ context.Context, rec Record, expected int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := InitialVersion
	if cur, ok := s.records[rec.ClientID]; ok {
		current = cur.Version
	}
	if current != expected {
		return 0, &ConflictError{ClientID: rec.ClientID, Expected: expected, Current: current}
	}
	rec.Version = expected + 1
	rec.Data = append([]byte(nil), rec.Data...)
	s.records[rec.ClientID] = rec
	s.history[rec.ClientID] = append(s.history[rec.ClientID], rec)
	return rec.Version, nil
}

func (s *MemoryStore) History(_ context.Context, clientID string, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.history[clientID]
	out := make([]Record, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, items[i])
	}
	return out, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

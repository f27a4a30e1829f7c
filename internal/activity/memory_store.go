package activity

import (
	"context"
	"sort"
	"sync"
)

// defaultCap bounds the in-memory feed; oldest entries are evicted.
const defaultCap = 5000

// MemoryStore implements Store with an in-memory slice. It is the only
// store for now; the feed is rebuilt from scratch on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	cap     int
	entries []Entry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cap: defaultCap}
}

func (s *MemoryStore) WriteEntries(_ context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	if len(s.entries) > s.cap {
		s.entries = s.entries[len(s.entries)-s.cap:]
	}
	return nil
}

func (s *MemoryStore) Entries(_ context.Context, q Query) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Entry
	for _, e := range s.entries {
		if q.EntityType != "" && e.EntityType != q.EntityType {
			continue
		}
		if q.EntityID != 0 && e.EntityID != q.EntityID {
			continue
		}
		if q.Category != "" && e.Category != q.Category {
			continue
		}
		matched = append(matched, e)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].OccurredAt.After(matched[j].OccurredAt)
	})

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

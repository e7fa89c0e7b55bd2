package history

import (
	"context"
	"sort"
	"sync"

	"github.com/asvronsky/cinemabot/internal/domain"
)

// MemoryStore is an in-memory history log for tests and local runs.
type MemoryStore struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Record(_ context.Context, entry domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, userID int64, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = 15
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]domain.HistoryEntry, 0, limit)
	for _, e := range s.entries {
		if e.UserID == userID {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].SearchedAt.After(matched[j].SearchedAt)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *MemoryStore) TopTitles(_ context.Context, userID int64, limit int) ([]domain.TitleCount, error) {
	if limit <= 0 {
		limit = 15
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int64)
	for _, e := range s.entries {
		if e.UserID == userID {
			counts[e.Title]++
		}
	}

	out := make([]domain.TitleCount, 0, len(counts))
	for title, count := range counts {
		out = append(out, domain.TitleCount{Title: title, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Title < out[j].Title
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

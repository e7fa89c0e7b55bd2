package stats

import (
	"context"
	"sort"
	"sync"

	"github.com/asvronsky/cinemabot/internal/domain"
)

// MemoryCounter is an in-memory counter for tests and runs without Redis.
type MemoryCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{counts: make(map[string]int64)}
}

func (c *MemoryCounter) Increment(_ context.Context, title string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[title]++
	return nil
}

func (c *MemoryCounter) Top(_ context.Context, limit int) ([]domain.TitleCount, error) {
	if limit <= 0 {
		limit = 5
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.TitleCount, 0, len(c.counts))
	for title, count := range c.counts {
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

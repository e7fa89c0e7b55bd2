package stats

import (
	"context"
	"sync"
	"testing"

	"github.com/asvronsky/cinemabot/internal/domain"
)

func TestConcurrentIncrementsLoseNothing(t *testing.T) {
	counter := NewMemoryCounter()

	const workers = 50
	const perWorker = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if err := counter.Increment(context.Background(), "The Matrix"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	counts, err := counter.Top(context.Background(), 5)
	if err != nil {
		t.Fatalf("top error: %v", err)
	}
	if len(counts) != 1 || counts[0].Count != workers*perWorker {
		t.Fatalf("expected exactly %d, got %#v", workers*perWorker, counts)
	}
}

func TestTopOrderingAndLimit(t *testing.T) {
	counter := NewMemoryCounter()
	bump := func(title string, n int) {
		for i := 0; i < n; i++ {
			_ = counter.Increment(context.Background(), title)
		}
	}
	bump("C", 1)
	bump("A", 3)
	bump("B", 3)
	bump("D", 2)

	counts, err := counter.Top(context.Background(), 3)
	if err != nil {
		t.Fatalf("top error: %v", err)
	}
	want := []domain.TitleCount{
		{Title: "A", Count: 3},
		{Title: "B", Count: 3},
		{Title: "D", Count: 2},
	}
	if len(counts) != len(want) {
		t.Fatalf("unexpected counts: %#v", counts)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Fatalf("count %d = %#v, want %#v", i, counts[i], want[i])
		}
	}
}

package lookup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/asvronsky/cinemabot/internal/domain"
	"github.com/asvronsky/cinemabot/internal/history"
	"github.com/asvronsky/cinemabot/internal/stats"
)

func newTestService(catalog *fakeCatalog, links *fakeLinkFinder, historyStore HistoryStore, counter StatsCounter, opts ...ServiceOption) *Service {
	enricher := NewEnricher(catalog, links)
	return NewService(catalog, enricher, historyStore, counter, opts...)
}

func TestLookupRecordsCanonicalTitle(t *testing.T) {
	catalog := &fakeCatalog{
		identity: domain.MovieIdentity{ID: 301, Title: "The Matrix", Rating: 8.5},
		details:  domain.MovieDetails{Description: "desc"},
	}
	historyStore := history.NewMemoryStore()
	counter := stats.NewMemoryCounter()
	service := newTestService(catalog, &fakeLinkFinder{err: domain.ErrNotFound}, historyStore, counter)

	record, err := service.Lookup(context.Background(), 42, "  matrix  ")
	if err != nil {
		t.Fatalf("lookup error: %v", err)
	}
	if record.Identity.Title != "The Matrix" {
		t.Fatalf("unexpected identity: %#v", record.Identity)
	}

	entries, err := historyStore.Recent(context.Background(), 42, 10)
	if err != nil {
		t.Fatalf("recent error: %v", err)
	}
	if len(entries) != 1 || entries[0].Title != "The Matrix" {
		t.Fatalf("history must hold the resolved title, got %#v", entries)
	}

	counts, err := counter.Top(context.Background(), 5)
	if err != nil {
		t.Fatalf("top error: %v", err)
	}
	if len(counts) != 1 || counts[0].Title != "The Matrix" || counts[0].Count != 1 {
		t.Fatalf("counter must hold the resolved title, got %#v", counts)
	}
}

func TestLookupNotFoundWritesNothing(t *testing.T) {
	catalog := &fakeCatalog{resolveErr: domain.ErrNotFound}
	historyStore := history.NewMemoryStore()
	counter := stats.NewMemoryCounter()
	service := newTestService(catalog, &fakeLinkFinder{}, historyStore, counter)

	_, err := service.Lookup(context.Background(), 42, "no such movie")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	entries, _ := historyStore.Recent(context.Background(), 42, 10)
	if len(entries) != 0 {
		t.Fatalf("failed lookup must not touch history, got %#v", entries)
	}
	counts, _ := counter.Top(context.Background(), 5)
	if len(counts) != 0 {
		t.Fatalf("failed lookup must not touch stats, got %#v", counts)
	}
}

func TestLookupResolveFailureIsProviderError(t *testing.T) {
	catalog := &fakeCatalog{resolveErr: domain.NewProviderError("kinopoisk", errors.New("HTTP 500"))}
	service := newTestService(catalog, &fakeLinkFinder{}, history.NewMemoryStore(), stats.NewMemoryCounter())

	_, err := service.Lookup(context.Background(), 42, "matrix")
	if !domain.IsProviderError(err) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}

func TestLookupEmptyQuery(t *testing.T) {
	service := newTestService(&fakeCatalog{}, &fakeLinkFinder{}, history.NewMemoryStore(), stats.NewMemoryCounter())

	_, err := service.Lookup(context.Background(), 42, "   ")
	if !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
}

type failingHistory struct{}

func (failingHistory) Record(context.Context, domain.HistoryEntry) error { return errors.New("down") }
func (failingHistory) Recent(context.Context, int64, int) ([]domain.HistoryEntry, error) {
	return nil, errors.New("down")
}
func (failingHistory) TopTitles(context.Context, int64, int) ([]domain.TitleCount, error) {
	return nil, errors.New("down")
}

type failingCounter struct{}

func (failingCounter) Increment(context.Context, string) error { return errors.New("down") }
func (failingCounter) Top(context.Context, int) ([]domain.TitleCount, error) {
	return nil, errors.New("down")
}

func TestLookupSurvivesStorageFailures(t *testing.T) {
	catalog := &fakeCatalog{
		identity: domain.MovieIdentity{ID: 301, Title: "The Matrix", Rating: 8.5},
		details:  domain.MovieDetails{Description: "desc"},
	}
	service := newTestService(catalog, &fakeLinkFinder{err: domain.ErrNotFound}, failingHistory{}, failingCounter{})

	record, err := service.Lookup(context.Background(), 42, "matrix")
	if err != nil {
		t.Fatalf("storage failures must not fail the lookup: %v", err)
	}
	if record.Caption == "" {
		t.Fatal("expected a caption")
	}
}

func TestHistoryAges(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	historyStore := history.NewMemoryStore()
	for _, entry := range []domain.HistoryEntry{
		{UserID: 42, Title: "Just Now", SearchedAt: now.Add(-30 * time.Second)},
		{UserID: 42, Title: "Minutes", SearchedAt: now.Add(-5 * time.Minute)},
		{UserID: 42, Title: "Hours", SearchedAt: now.Add(-3 * time.Hour)},
		{UserID: 42, Title: "Days", SearchedAt: now.Add(-49 * time.Hour)},
		{UserID: 99, Title: "Other User", SearchedAt: now},
	} {
		if err := historyStore.Record(context.Background(), entry); err != nil {
			t.Fatalf("record error: %v", err)
		}
	}

	service := newTestService(&fakeCatalog{}, &fakeLinkFinder{}, historyStore, stats.NewMemoryCounter(),
		WithClock(func() time.Time { return now }))

	items, err := service.History(context.Background(), 42)
	if err != nil {
		t.Fatalf("history error: %v", err)
	}
	want := []domain.HistoryItem{
		{Title: "Just Now", Age: "just now"},
		{Title: "Minutes", Age: "5m ago"},
		{Title: "Hours", Age: "3h ago"},
		{Title: "Days", Age: "2d ago"},
	}
	if len(items) != len(want) {
		t.Fatalf("unexpected items: %#v", items)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("item %d = %#v, want %#v", i, items[i], want[i])
		}
	}
}

func TestUserStatsComeFromHistory(t *testing.T) {
	historyStore := history.NewMemoryStore()
	now := time.Now()
	for i, title := range []string{"A", "B", "A", "A", "B", "C"} {
		_ = historyStore.Record(context.Background(), domain.HistoryEntry{
			UserID: 42, Title: title, SearchedAt: now.Add(time.Duration(i) * time.Second),
		})
	}
	service := newTestService(&fakeCatalog{}, &fakeLinkFinder{}, historyStore, stats.NewMemoryCounter())

	counts, err := service.UserStats(context.Background(), 42)
	if err != nil {
		t.Fatalf("user stats error: %v", err)
	}
	want := []domain.TitleCount{{Title: "A", Count: 3}, {Title: "B", Count: 2}, {Title: "C", Count: 1}}
	if len(counts) != len(want) {
		t.Fatalf("unexpected counts: %#v", counts)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Fatalf("count %d = %#v, want %#v", i, counts[i], want[i])
		}
	}
}

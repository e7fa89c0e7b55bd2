package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/asvronsky/cinemabot/internal/domain"
	"github.com/asvronsky/cinemabot/internal/metrics"
)

const (
	historyLimit     = 15
	userStatsLimit   = 15
	globalStatsLimit = 5
)

// ErrEmptyQuery is returned by Lookup when the query is blank after trimming.
var ErrEmptyQuery = errors.New("empty query")

// HistoryStore keeps the append-only per-user search log.
type HistoryStore interface {
	Record(ctx context.Context, entry domain.HistoryEntry) error
	Recent(ctx context.Context, userID int64, limit int) ([]domain.HistoryEntry, error)
	TopTitles(ctx context.Context, userID int64, limit int) ([]domain.TitleCount, error)
}

// StatsCounter keeps the global per-title lookup counters.
type StatsCounter interface {
	Increment(ctx context.Context, title string) error
	Top(ctx context.Context, limit int) ([]domain.TitleCount, error)
}

// Service is the lookup facade: resolve a query, enrich the hit, build the
// presentation record and account for the search in history and stats.
type Service struct {
	catalog  Catalog
	enricher *Enricher
	history  HistoryStore
	stats    StatsCounter
	logger   *slog.Logger
	now      func() time.Time
}

type ServiceOption func(*Service)

func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces the timestamp source, so tests can pin history entries.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(catalog Catalog, enricher *Enricher, history HistoryStore, stats StatsCounter, opts ...ServiceOption) *Service {
	s := &Service{
		catalog:  catalog,
		enricher: enricher,
		history:  history,
		stats:    stats,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup resolves a free-text query to a movie, enriches it and returns the
// presentation record. The search is recorded under the resolved canonical
// title, never the raw query; accounting failures are logged and do not fail
// the lookup.
func (s *Service) Lookup(ctx context.Context, userID int64, query string) (domain.PresentationRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		metrics.LookupsTotal.WithLabelValues("invalid").Inc()
		return domain.PresentationRecord{}, ErrEmptyQuery
	}

	started := time.Now()
	identity, err := s.catalog.Resolve(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.LookupsTotal.WithLabelValues("not_found").Inc()
			s.logger.Info("no movie matched query", "query", query, "user_id", userID)
			return domain.PresentationRecord{}, domain.ErrNotFound
		}
		metrics.LookupsTotal.WithLabelValues("error").Inc()
		s.logger.Error("resolve failed", "query", query, "error", err)
		return domain.PresentationRecord{}, fmt.Errorf("resolve %q: %w", query, err)
	}

	bundle := s.enricher.Enrich(ctx, identity.ID, identity.Title)
	record := assemble(identity, bundle)

	s.track(ctx, userID, identity.Title)

	metrics.LookupsTotal.WithLabelValues("ok").Inc()
	metrics.LookupDuration.Observe(time.Since(started).Seconds())
	s.logger.Info("lookup completed",
		"user_id", userID,
		"query", query,
		"movie_id", identity.ID,
		"title", identity.Title,
		"caption_len", captionLen(record.Caption))
	return record, nil
}

// track records the search in history and bumps the global counter. It runs
// on a context detached from the request cancellation so a client going away
// after a successful resolve does not lose the accounting.
func (s *Service) track(ctx context.Context, userID int64, title string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	entry := domain.HistoryEntry{
		UserID:     userID,
		Title:      title,
		SearchedAt: s.now().UTC(),
	}
	if err := s.history.Record(ctx, entry); err != nil {
		metrics.StoreWritesTotal.WithLabelValues("history", "error").Inc()
		s.logger.Error("history write failed", "user_id", userID, "title", title, "error", err)
	} else {
		metrics.StoreWritesTotal.WithLabelValues("history", "ok").Inc()
	}

	if err := s.stats.Increment(ctx, title); err != nil {
		metrics.StoreWritesTotal.WithLabelValues("stats", "error").Inc()
		s.logger.Error("stats increment failed", "title", title, "error", err)
	} else {
		metrics.StoreWritesTotal.WithLabelValues("stats", "ok").Inc()
	}
}

// History returns the user's latest searches, newest first, with a
// human-readable age for each.
func (s *Service) History(ctx context.Context, userID int64) ([]domain.HistoryItem, error) {
	entries, err := s.history.Recent(ctx, userID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	now := s.now()
	items := make([]domain.HistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, domain.HistoryItem{
			Title: e.Title,
			Age:   relativeAge(now.Sub(e.SearchedAt)),
		})
	}
	return items, nil
}

// UserStats returns the user's most searched titles, derived from history.
func (s *Service) UserStats(ctx context.Context, userID int64) ([]domain.TitleCount, error) {
	counts, err := s.history.TopTitles(ctx, userID, userStatsLimit)
	if err != nil {
		return nil, fmt.Errorf("load user stats: %w", err)
	}
	return counts, nil
}

// GlobalStats returns the most searched titles across all users.
func (s *Service) GlobalStats(ctx context.Context) ([]domain.TitleCount, error) {
	counts, err := s.stats.Top(ctx, globalStatsLimit)
	if err != nil {
		return nil, fmt.Errorf("load global stats: %w", err)
	}
	return counts, nil
}

func relativeAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

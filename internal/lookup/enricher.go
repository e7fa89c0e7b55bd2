package lookup

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/asvronsky/cinemabot/internal/domain"
	"github.com/asvronsky/cinemabot/internal/metrics"
)

const defaultEnrichTimeout = 5 * time.Second

// Catalog is the movie catalog the lookup pipeline runs against.
type Catalog interface {
	Resolve(ctx context.Context, query string) (domain.MovieIdentity, error)
	Details(ctx context.Context, movieID int64) (domain.MovieDetails, error)
	Reviews(ctx context.Context, movieID int64) ([]string, error)
}

// LinkFinder locates an online-viewing page for a movie title.
type LinkFinder interface {
	FindWatchLink(ctx context.Context, title string) (domain.ViewingLink, error)
}

// Enricher gathers the optional extras for a resolved movie: description,
// one random non-spoiler fact, one random review title, and a viewing link.
// The three sources are queried concurrently and each fails soft: a dead
// source blanks its field, nothing else.
type Enricher struct {
	catalog   Catalog
	links     LinkFinder
	timeout   time.Duration
	logger    *slog.Logger
	pickIndex func(n int) int
}

type EnricherOption func(*Enricher)

// WithFetchTimeout bounds each of the three enrichment fetches individually.
func WithFetchTimeout(timeout time.Duration) EnricherOption {
	return func(e *Enricher) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

// WithRandSource replaces the randomness behind fact/review selection, so
// tests can pin the choice.
func WithRandSource(src rand.Source) EnricherOption {
	return func(e *Enricher) {
		r := rand.New(src)
		var mu sync.Mutex
		e.pickIndex = func(n int) int {
			mu.Lock()
			defer mu.Unlock()
			return r.IntN(n)
		}
	}
}

func WithEnricherLogger(logger *slog.Logger) EnricherOption {
	return func(e *Enricher) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewEnricher(catalog Catalog, links LinkFinder, opts ...EnricherOption) *Enricher {
	e := &Enricher{
		catalog:   catalog,
		links:     links,
		timeout:   defaultEnrichTimeout,
		logger:    slog.Default(),
		pickIndex: rand.IntN,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich fans out to details, reviews and web search and joins on all three.
// It never fails: every provider error is absorbed into an absent field.
// Latency is bounded by the slowest fetch, not their sum.
func (e *Enricher) Enrich(ctx context.Context, movieID int64, title string) domain.EnrichmentBundle {
	var (
		mu     sync.Mutex
		bundle domain.EnrichmentBundle
	)

	g, groupCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		details, err := e.fetchDetails(groupCtx, movieID)
		if err != nil {
			return nil
		}
		mu.Lock()
		bundle.Description = details.Description
		bundle.Fact = e.pick(details.Facts)
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		titles, err := e.fetchReviews(groupCtx, movieID)
		if err != nil {
			return nil
		}
		mu.Lock()
		bundle.ReviewTitle = e.pick(titles)
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		viewing, err := e.fetchWatchLink(groupCtx, title)
		if err != nil {
			return nil
		}
		mu.Lock()
		bundle.Viewing = &viewing
		mu.Unlock()
		return nil
	})

	// Goroutines always return nil; Wait is the join point only.
	_ = g.Wait()
	return bundle
}

func (e *Enricher) fetchDetails(ctx context.Context, movieID int64) (domain.MovieDetails, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	started := time.Now()
	details, err := e.catalog.Details(fetchCtx, movieID)
	e.observe("details", err, time.Since(started))
	return details, err
}

func (e *Enricher) fetchReviews(ctx context.Context, movieID int64) ([]string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	started := time.Now()
	titles, err := e.catalog.Reviews(fetchCtx, movieID)
	e.observe("reviews", err, time.Since(started))
	return titles, err
}

func (e *Enricher) fetchWatchLink(ctx context.Context, title string) (domain.ViewingLink, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	started := time.Now()
	viewing, err := e.links.FindWatchLink(fetchCtx, title)
	e.observe("weblink", err, time.Since(started))
	return viewing, err
}

func (e *Enricher) pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[e.pickIndex(len(pool))]
}

func (e *Enricher) observe(provider string, err error, elapsed time.Duration) {
	metrics.ProviderRequestDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
	switch {
	case err == nil:
		metrics.ProviderRequestsTotal.WithLabelValues(provider, "ok").Inc()
	case errors.Is(err, domain.ErrNotFound):
		metrics.ProviderRequestsTotal.WithLabelValues(provider, "empty").Inc()
	default:
		metrics.ProviderRequestsTotal.WithLabelValues(provider, "error").Inc()
		e.logger.Warn("enrichment fetch degraded",
			slog.String("provider", provider),
			slog.Int64("elapsedMs", elapsed.Milliseconds()),
			slog.String("error", err.Error()),
		)
	}
}

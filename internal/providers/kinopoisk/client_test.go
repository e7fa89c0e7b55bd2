package kinopoisk

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/asvronsky/cinemabot/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		APIKey:            "test-key",
		BaseURL:           server.URL,
		RequestsPerSecond: 100,
	})
}

func TestResolveReturnsTopMatch(t *testing.T) {
	var gotKey, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-KEY")
		gotQuery = r.URL.Query().Get("query")
		w.Write([]byte(`{"docs":[{"id":301,"name":"The Matrix","rating":{"kp":8.5},"poster":{"url":"https://example.com/p.jpg"}}]}`))
	})

	identity, err := client.Resolve(context.Background(), "matrix")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if gotKey != "test-key" {
		t.Fatalf("unexpected api key header: %q", gotKey)
	}
	if gotQuery != "matrix" {
		t.Fatalf("unexpected query param: %q", gotQuery)
	}
	if identity.ID != 301 || identity.Title != "The Matrix" || identity.Rating != 8.5 {
		t.Fatalf("unexpected identity: %#v", identity)
	}
}

func TestResolveEmptyDocsIsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"docs":[]}`))
	})

	_, err := client.Resolve(context.Background(), "no such movie")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveMalformedPayloadIsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"docs": not json`))
	})

	_, err := client.Resolve(context.Background(), "matrix")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveServerErrorIsProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Resolve(context.Background(), "matrix")
	if err == nil {
		t.Fatal("expected error")
	}
	var providerErr *domain.ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected ProviderError, got %T: %v", err, err)
	}
	if providerErr.Provider != "kinopoisk" {
		t.Fatalf("unexpected provider: %q", providerErr.Provider)
	}
}

func TestDetailsFiltersFacts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{
			"description": "A hacker learns the truth.",
			"facts": [
				{"value": "Shot in Sydney.", "spoiler": false},
				{"value": "Neo dies at the end.", "spoiler": true},
				{"value": "   ", "spoiler": false}
			]
		}`))
	})

	details, err := client.Details(context.Background(), 301)
	if err != nil {
		t.Fatalf("details error: %v", err)
	}
	if details.Description != "A hacker learns the truth." {
		t.Fatalf("unexpected description: %q", details.Description)
	}
	if len(details.Facts) != 1 || details.Facts[0] != "Shot in Sydney." {
		t.Fatalf("unexpected facts: %#v", details.Facts)
	}
}

func TestReviewsDropsBlankTitles(t *testing.T) {
	var gotMovieID string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMovieID = r.URL.Query().Get("movieId")
		w.Write([]byte(`{"docs":[{"title":"A modern classic"},{"title":""},{"title":"Overrated"}]}`))
	})

	titles, err := client.Reviews(context.Background(), 301)
	if err != nil {
		t.Fatalf("reviews error: %v", err)
	}
	if gotMovieID != "301" {
		t.Fatalf("unexpected movieId param: %q", gotMovieID)
	}
	if len(titles) != 2 || titles[0] != "A modern classic" || titles[1] != "Overrated" {
		t.Fatalf("unexpected titles: %#v", titles)
	}
}

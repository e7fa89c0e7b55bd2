package kinopoisk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/asvronsky/cinemabot/internal/domain"
)

const (
	defaultBaseURL   = "https://api.kinopoisk.dev"
	defaultUserAgent = "cinemabot/1.0"

	// Free-tier keys get throttled aggressively; stay polite by default.
	defaultRequestsPerSecond = 5

	maxBodyBytes = 2 * 1024 * 1024
)

type Config struct {
	APIKey            string
	BaseURL           string
	UserAgent         string
	Client            *http.Client
	RequestsPerSecond int
}

// Client talks to the kinopoisk.dev catalog. One client serves the three
// lookup roles: free-text resolution, movie details with the fact pool,
// and review titles.
type Client struct {
	apiKey    string
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	return &Client{
		apiKey:    strings.TrimSpace(cfg.APIKey),
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      httpClient,
		limiter:   rate.NewLimiter(rate.Limit(rps), rps),
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type searchDoc struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Rating struct {
		KP float64 `json:"kp"`
	} `json:"rating"`
	Poster struct {
		URL string `json:"url"`
	} `json:"poster"`
}

type searchResponse struct {
	Docs []searchDoc `json:"docs"`
}

type factDoc struct {
	Value   string `json:"value"`
	Spoiler bool   `json:"spoiler"`
}

type movieResponse struct {
	Description string    `json:"description"`
	Facts       []factDoc `json:"facts"`
}

type reviewDoc struct {
	Title string `json:"title"`
}

type reviewResponse struct {
	Docs []reviewDoc `json:"docs"`
}

// Resolve maps a free-text query to the catalog's top-ranked match.
// An empty result list or an unparseable payload is domain.ErrNotFound:
// the service answered, there just was no movie. Transport failures and
// error statuses become ProviderError.
func (c *Client) Resolve(ctx context.Context, query string) (domain.MovieIdentity, error) {
	params := url.Values{
		"query": {strings.TrimSpace(query)},
		"limit": {"1"},
	}
	payload, err := c.get(ctx, "/v1.4/movie/search?"+params.Encode())
	if err != nil {
		return domain.MovieIdentity{}, err
	}

	var response searchResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return domain.MovieIdentity{}, domain.ErrNotFound
	}
	if len(response.Docs) == 0 {
		return domain.MovieIdentity{}, domain.ErrNotFound
	}
	doc := response.Docs[0]
	if strings.TrimSpace(doc.Name) == "" {
		return domain.MovieIdentity{}, domain.ErrNotFound
	}
	return domain.MovieIdentity{
		ID:        doc.ID,
		Title:     strings.TrimSpace(doc.Name),
		Rating:    doc.Rating.KP,
		PosterURL: strings.TrimSpace(doc.Poster.URL),
	}, nil
}

// Details fetches the movie description and its non-spoiler fact pool.
// Spoiler-flagged and empty facts never leave the client.
func (c *Client) Details(ctx context.Context, movieID int64) (domain.MovieDetails, error) {
	payload, err := c.get(ctx, "/v1.4/movie/"+strconv.FormatInt(movieID, 10))
	if err != nil {
		return domain.MovieDetails{}, err
	}

	var response movieResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return domain.MovieDetails{}, domain.ErrNotFound
	}

	facts := make([]string, 0, len(response.Facts))
	for _, fact := range response.Facts {
		value := strings.TrimSpace(fact.Value)
		if value == "" || fact.Spoiler {
			continue
		}
		facts = append(facts, value)
	}
	return domain.MovieDetails{
		Description: strings.TrimSpace(response.Description),
		Facts:       facts,
	}, nil
}

// Reviews fetches the review-title pool for a movie. Blank titles are
// dropped; an empty pool is returned as-is, selection happens upstream.
func (c *Client) Reviews(ctx context.Context, movieID int64) ([]string, error) {
	params := url.Values{
		"movieId": {strconv.FormatInt(movieID, 10)},
		"limit":   {"20"},
	}
	payload, err := c.get(ctx, "/v1.4/review?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var response reviewResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return nil, domain.ErrNotFound
	}

	titles := make([]string, 0, len(response.Docs))
	for _, doc := range response.Docs {
		title := strings.TrimSpace(doc.Title)
		if title == "" {
			continue
		}
		titles = append(titles, title)
	}
	return titles, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, domain.NewProviderError("kinopoisk", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, domain.NewProviderError("kinopoisk", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.NewProviderError("kinopoisk", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, domain.NewProviderError("kinopoisk",
			fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, domain.NewProviderError("kinopoisk", err)
	}
	return payload, nil
}

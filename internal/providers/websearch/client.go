package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/asvronsky/cinemabot/internal/domain"
)

const (
	defaultEndpoint  = "https://api.search.brave.com/res/v1/web/search"
	defaultUserAgent = "cinemabot/1.0"

	// Appended verbatim to the movie title; the phrasing matters for
	// ranking streaming pages first.
	watchOnlineSuffix = " watch online"

	maxBodyBytes = 1024 * 1024
)

type Config struct {
	Endpoint  string
	APIKey    string
	UserAgent string
	Client    *http.Client
}

// Client finds an online-viewing page for a movie title through a generic
// JSON web-search API. Only the top-ranked result is used.
type Client struct {
	endpoint  string
	apiKey    string
	userAgent string
	http      *http.Client
}

type searchResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type searchResponse struct {
	Web struct {
		Results []searchResult `json:"results"`
	} `json:"web"`
}

func NewClient(cfg Config) *Client {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		endpoint:  endpoint,
		apiKey:    strings.TrimSpace(cfg.APIKey),
		userAgent: userAgent,
		http:      httpClient,
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// FindWatchLink searches the web for `<title> watch online` and returns the
// first result. No result is domain.ErrNotFound; an unreachable or failing
// search backend is a ProviderError.
func (c *Client) FindWatchLink(ctx context.Context, title string) (domain.ViewingLink, error) {
	uri, err := url.Parse(c.endpoint)
	if err != nil {
		return domain.ViewingLink{}, domain.NewProviderError("websearch", fmt.Errorf("invalid endpoint: %w", err))
	}
	query := uri.Query()
	query.Set("q", strings.TrimSpace(title)+watchOnlineSuffix)
	query.Set("count", "1")
	uri.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri.String(), nil)
	if err != nil {
		return domain.ViewingLink{}, domain.NewProviderError("websearch", err)
	}
	req.Header.Set("X-Subscription-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.ViewingLink{}, domain.NewProviderError("websearch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.ViewingLink{}, domain.NewProviderError("websearch",
			fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.ViewingLink{}, domain.NewProviderError("websearch", err)
	}

	var response searchResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return domain.ViewingLink{}, domain.ErrNotFound
	}
	for _, result := range response.Web.Results {
		link := strings.TrimSpace(result.URL)
		if link == "" {
			continue
		}
		return domain.ViewingLink{URL: link, Title: strings.TrimSpace(result.Title)}, nil
	}
	return domain.ViewingLink{}, domain.ErrNotFound
}

// Package brave provides a web search adapter using the Brave Search API.
package brave

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/finquery/internal/core/domain"
	"github.com/custodia-labs/finquery/internal/core/ports/driven"
)

// Ensure Searcher implements the interface.
var _ driven.WebSearcher = (*Searcher)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.search.brave.com/res/v1"
	DefaultMaxResults = 3
	DefaultTimeout    = 15 * time.Second
)

// Config holds configuration for the Brave search adapter.
type Config struct {
	// APIKey is the Brave Search subscription token (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.search.brave.com/res/v1).
	BaseURL string

	// MaxResults caps how many results go into the summary (default: 3).
	MaxResults int

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration
}

// Searcher queries the Brave Search API. Requests are rate limited to one
// per second, matching the free-tier quota.
type Searcher struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	maxResults int
	limiter    *rate.Limiter
}

// searchResponse is the subset of the Brave response we use.
type searchResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// NewSearcher creates a Brave search adapter.
func NewSearcher(cfg Config) (*Searcher, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("brave: API key is required: %w", domain.ErrWebSearchUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Searcher{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxResults: cfg.MaxResults,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}, nil
}

// Search runs a web search and returns the top results as a text block
// suitable for prompt context. An empty string means no results.
func (s *Searcher) Search(ctx context.Context, query string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("brave: rate limit wait: %w", err)
	}

	endpoint := s.baseURL + "/web/search?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("brave: %w", domain.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("brave error (status %d): failed to read response", resp.StatusCode)
		}
		return "", fmt.Errorf("brave error (status %d): %s", resp.StatusCode, string(body))
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return s.formatResults(searchResp), nil
}

// formatResults flattens results into "title: description" lines.
func (s *Searcher) formatResults(resp searchResponse) string {
	results := resp.Web.Results
	if len(results) > s.maxResults {
		results = results[:s.maxResults]
	}

	var b strings.Builder
	for i, res := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %s", res.Title, res.Description)
	}
	return b.String()
}

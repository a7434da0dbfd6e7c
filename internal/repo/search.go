package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sentinelstack/sentinel-agents/internal/cache"
	"github.com/sentinelstack/sentinel-agents/internal/models"
)

// SearchClient retrieves runbook snippets for incident grounding. When
// no endpoint is configured it answers with synthetic snippets so the
// pipeline stays functional in local development.
type SearchClient struct {
	endpoint   string
	apiKey     string
	limit      int
	snippetTTL time.Duration
	httpClient *http.Client
	cache      cache.Provider
	logger     *slog.Logger
}

func NewSearchClient(endpoint, apiKey string, limit int, timeout, snippetTTL time.Duration, cacheProvider cache.Provider, logger *slog.Logger) *SearchClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if limit <= 0 {
		limit = 3
	}
	if snippetTTL <= 0 {
		snippetTTL = 5 * time.Minute
	}
	if cacheProvider == nil {
		cacheProvider = cache.NoopProvider{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		limit:      limit,
		snippetTTL: snippetTTL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cacheProvider,
		logger:     logger,
	}
}

// Search returns up to limit snippets for the query, consulting the
// cache first. Errors from the remote endpoint are returned so the
// caller can decide to degrade; an unconfigured endpoint is not an
// error.
func (c *SearchClient) Search(ctx context.Context, query string) ([]models.Snippet, error) {
	cacheKey := "search:" + query
	if data, err := c.cache.Get(ctx, cacheKey); err == nil {
		var snippets []models.Snippet
		if err := json.Unmarshal(data, &snippets); err == nil {
			return snippets, nil
		}
	}

	snippets, err := c.fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(snippets); err == nil {
		if err := c.cache.Set(ctx, cacheKey, data, c.snippetTTL); err != nil {
			c.logger.Warn("snippet cache write failed", "error", err)
		}
	}
	return snippets, nil
}

func (c *SearchClient) fetch(ctx context.Context, query string) ([]models.Snippet, error) {
	if c.endpoint == "" {
		return c.syntheticSnippets(query), nil
	}

	body, err := json.Marshal(map[string]any{"query": query, "limit": c.limit})
	if err != nil {
		return nil, fmt.Errorf("marshal search query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search endpoint returned %d", resp.StatusCode)
	}

	var out struct {
		Results []models.Snippet `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if len(out.Results) > c.limit {
		out.Results = out.Results[:c.limit]
	}
	return out.Results, nil
}

// syntheticSnippets fabricates deterministic results keyed off the
// query so local runs produce plausible grounding material.
func (c *SearchClient) syntheticSnippets(query string) []models.Snippet {
	snippets := make([]models.Snippet, 0, c.limit)
	for i := 0; i < c.limit; i++ {
		snippets = append(snippets, models.Snippet{
			DocID:   fmt.Sprintf("runbook-%d", i+1),
			Snippet: fmt.Sprintf("Reference %d for %q: verify resource health, review recent deploys, then apply the standard remediation.", i+1, query),
			Score:   1.0 - float64(i)*0.1,
		})
	}
	return snippets
}

package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WarehouseClient queries the analytics warehouse for fleet health
// counts used during post-action validation. An unconfigured endpoint
// yields a synthetic healthy count so validation can run locally.
type WarehouseClient struct {
	endpoint   string
	httpClient *http.Client
}

func NewWarehouseClient(endpoint string, timeout time.Duration) *WarehouseClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WarehouseClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CountHealthy returns the number of healthy instances for a resource.
func (c *WarehouseClient) CountHealthy(ctx context.Context, resource string) (int, error) {
	if c.endpoint == "" {
		return 1, nil
	}

	u := fmt.Sprintf("%s/healthy?resource=%s", c.endpoint, url.QueryEscape(resource))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("warehouse request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("warehouse endpoint returned %d", resp.StatusCode)
	}

	var out struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode warehouse response: %w", err)
	}
	return out.Count, nil
}

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

// ClusterClient probes the cluster state service for the pods backing a
// resource. An unconfigured endpoint yields a synthetic healthy pod
// list so validation can run locally.
type ClusterClient struct {
	endpoint   string
	httpClient *http.Client
}

func NewClusterClient(endpoint string, timeout time.Duration) *ClusterClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ClusterClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ListPods returns the names of running pods for a resource.
func (c *ClusterClient) ListPods(ctx context.Context, resource string) ([]string, error) {
	if c.endpoint == "" {
		return []string{"pod-1", "pod-2"}, nil
	}

	u := fmt.Sprintf("%s/pods?resource=%s", c.endpoint, url.QueryEscape(resource))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cluster request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("cluster endpoint returned %d", resp.StatusCode)
	}

	var out struct {
		Pods []string `json:"pods"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode cluster response: %w", err)
	}
	return out.Pods, nil
}

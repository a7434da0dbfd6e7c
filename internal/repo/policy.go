package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sentinelstack/sentinel-agents/internal/models"
)

// PolicyClient submits action proposals to the external policy
// evaluation endpoint (an OPA-compatible data API).
type PolicyClient struct {
	url        string
	httpClient *http.Client
}

// NewPolicyClient constructs a client targeting the configured policy
// endpoint.
func NewPolicyClient(url string, timeout time.Duration) *PolicyClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PolicyClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Check posts {"input": proposal} and extracts the verdict from the
// nested result object. Transport and HTTP errors are returned to the
// caller, which is expected to fail closed.
func (c *PolicyClient) Check(ctx context.Context, proposal models.ActionProposal) (models.PolicyVerdict, error) {
	if c == nil || c.url == "" {
		return models.PolicyVerdict{}, fmt.Errorf("policy endpoint not configured")
	}

	body, err := json.Marshal(map[string]any{"input": proposal})
	if err != nil {
		return models.PolicyVerdict{}, fmt.Errorf("marshal policy input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return models.PolicyVerdict{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.PolicyVerdict{}, fmt.Errorf("policy request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return models.PolicyVerdict{}, fmt.Errorf("policy endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return models.PolicyVerdict{}, fmt.Errorf("decode policy response: %w", err)
	}

	verdict := models.PolicyVerdict{
		Reason: "No reason provided",
		Raw:    raw,
	}
	if result, ok := raw["result"].(map[string]any); ok {
		if admit, ok := result["admit"].(bool); ok {
			verdict.Admit = admit
		}
		if reason, ok := result["reason"].(string); ok && reason != "" {
			verdict.Reason = reason
		}
		if confidence, ok := result["confidence"].(float64); ok {
			verdict.Confidence = confidence
		}
	}
	return verdict, nil
}

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
)

// WebhookClient delivers notification text to a Slack-compatible
// incoming webhook.
type WebhookClient struct {
	url        string
	httpClient *http.Client
}

func NewWebhookClient(url string, timeout time.Duration) *WebhookClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a destination URL is set. Unconfigured
// clients let callers log locally instead of failing the flow.
func (c *WebhookClient) Configured() bool {
	return c != nil && c.url != ""
}

// Post sends {"text": message} to the webhook.
func (c *WebhookClient) Post(ctx context.Context, message string) error {
	if !c.Configured() {
		return fmt.Errorf("webhook URL not configured")
	}

	body, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil
}

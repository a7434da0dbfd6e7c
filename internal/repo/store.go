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

// EnvelopeStore persists signed envelopes for audit. Writes are
// append-only; envelopes are never updated in place.
type EnvelopeStore interface {
	Save(ctx context.Context, env models.Envelope) error
	List(ctx context.Context, limit int) ([]models.Envelope, error)
	Close() error
}

// HTTPStore forwards envelopes to an external envelope service.
type HTTPStore struct {
	endpoint   string
	httpClient *http.Client
}

func NewHTTPStore(endpoint string, timeout time.Duration) *HTTPStore {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPStore{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPStore) Save(ctx context.Context, env models.Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/envelopes", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("envelope save failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("envelope service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil
}

func (s *HTTPStore) List(ctx context.Context, limit int) ([]models.Envelope, error) {
	url := fmt.Sprintf("%s/envelopes?limit=%d", s.endpoint, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("envelope list failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("envelope service returned %d", resp.StatusCode)
	}

	var envs []models.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&envs); err != nil {
		return nil, fmt.Errorf("decode envelope list: %w", err)
	}
	return envs, nil
}

func (s *HTTPStore) Close() error { return nil }

package repo

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/sentinelstack/sentinel-agents/internal/cache"
)

type stubCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newStubCache() *stubCache {
	return &stubCache{items: map[string][]byte{}}
}

func (s *stubCache) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.items[key]; ok {
		return v, nil
	}
	return nil, cache.ErrCacheMiss
}

func (s *stubCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

func (s *stubCache) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

func (s *stubCache) Close() error { return nil }

func TestSearchSynthetic(t *testing.T) {
	client := NewSearchClient("", "", 3, time.Second, time.Minute, cache.NoopProvider{}, nil)
	snippets, err := client.Search(context.Background(), "pod crash loop")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snippets) != 3 {
		t.Fatalf("expected 3 synthetic snippets, got %d", len(snippets))
	}
	if snippets[0].DocID != "runbook-1" {
		t.Fatalf("unexpected doc id: %s", snippets[0].DocID)
	}
	if snippets[0].Score <= snippets[2].Score {
		t.Fatalf("expected descending scores")
	}
}

func TestSearchCachesResults(t *testing.T) {
	var hits int
	client := NewSearchClient("https://search.test", "key", 2, time.Second, time.Minute, newStubCache(), nil)
	client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		hits++
		if req.URL.Path != "/search" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer key" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		body := []byte(`{"results":[{"doc_id":"rb-9","snippet":"drain the node","score":0.93}]}`)
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(body))}, nil
	}))

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		snippets, err := client.Search(ctx, "node unhealthy")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(snippets) != 1 || snippets[0].DocID != "rb-9" {
			t.Fatalf("unexpected snippets: %+v", snippets)
		}
	}
	if hits != 1 {
		t.Fatalf("expected a single upstream call, got %d", hits)
	}
}

func TestSearchEndpointError(t *testing.T) {
	client := NewSearchClient("https://search.test", "", 3, time.Second, time.Minute, cache.NoopProvider{}, nil)
	client.httpClient = newTestClient(roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusBadGateway, Body: io.NopCloser(bytes.NewReader(nil))}, nil
	}))

	if _, err := client.Search(context.Background(), "disk full"); err == nil {
		t.Fatalf("expected error on 502")
	}
}

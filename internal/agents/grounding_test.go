package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/sentinelstack/sentinel-agents/internal/models"
)

type stubSearcher struct {
	snippets []models.Snippet
	err      error
	queries  []string
}

func (s *stubSearcher) Search(_ context.Context, query string) ([]models.Snippet, error) {
	s.queries = append(s.queries, query)
	return s.snippets, s.err
}

func TestGroundRanksByScore(t *testing.T) {
	search := &stubSearcher{snippets: []models.Snippet{
		{DocID: "low", Score: 0.2},
		{DocID: "high", Score: 0.9},
		{DocID: "mid", Score: 0.5},
	}}
	g := NewGrounding(search, nil)

	snippets := g.Ground(context.Background(), testSignal(), "scale")
	if len(snippets) != 3 {
		t.Fatalf("expected 3 snippets, got %d", len(snippets))
	}
	if snippets[0].DocID != "high" || snippets[2].DocID != "low" {
		t.Fatalf("expected descending order, got %+v", snippets)
	}
	if len(search.queries) != 1 || search.queries[0] != "scale: CPU usage high" {
		t.Fatalf("unexpected query: %v", search.queries)
	}
}

func TestGroundFailureIsEmpty(t *testing.T) {
	g := NewGrounding(&stubSearcher{err: errors.New("search down")}, nil)
	snippets := g.Ground(context.Background(), testSignal(), "scale")
	if len(snippets) != 0 {
		t.Fatalf("expected empty result, got %+v", snippets)
	}
}

func TestGroundNoSearcher(t *testing.T) {
	g := NewGrounding(nil, nil)
	if snippets := g.Ground(context.Background(), testSignal(), "scale"); snippets != nil {
		t.Fatalf("expected nil, got %+v", snippets)
	}
}

func TestPersonalizeDefaults(t *testing.T) {
	p := NewPersonalization(nil, nil)
	examples := p.Personalize(context.Background(), testContext(), nil)
	if len(examples) != 2 {
		t.Fatalf("expected 2 default examples, got %d", len(examples))
	}
}

func TestPersonalizeFetcher(t *testing.T) {
	fetch := func(_ context.Context, _ models.Context, snippets []models.Snippet) ([]models.Example, error) {
		return []models.Example{{Example: "scale to 5 replicas"}}, nil
	}
	p := NewPersonalization(fetch, nil)
	examples := p.Personalize(context.Background(), testContext(), nil)
	if len(examples) != 1 || examples[0].Example != "scale to 5 replicas" {
		t.Fatalf("unexpected examples: %+v", examples)
	}
}

func TestPersonalizeFailureIsEmpty(t *testing.T) {
	fetch := func(context.Context, models.Context, []models.Snippet) ([]models.Example, error) {
		return nil, errors.New("profile store down")
	}
	p := NewPersonalization(fetch, nil)
	if examples := p.Personalize(context.Background(), testContext(), nil); len(examples) != 0 {
		t.Fatalf("expected empty result, got %+v", examples)
	}
}

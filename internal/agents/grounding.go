package agents

import (
	"context"
	"log/slog"
	"sort"

	"github.com/sentinelstack/sentinel-agents/internal/models"
)

// Searcher retrieves ranked reference snippets for a query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.Snippet, error)
}

// Grounding retrieves supporting material for a classified signal.
// Retrieval is advisory: any failure yields an empty result, never an
// error, so the pipeline keeps moving.
type Grounding struct {
	search Searcher
	logger *slog.Logger
}

func NewGrounding(search Searcher, logger *slog.Logger) *Grounding {
	if logger == nil {
		logger = slog.Default()
	}
	return &Grounding{search: search, logger: logger}
}

// Ground returns snippets ranked by score descending.
func (g *Grounding) Ground(ctx context.Context, signal models.Signal, queryClass string) []models.Snippet {
	if g.search == nil {
		return nil
	}

	query := queryClass + ": " + signal.Message
	snippets, err := g.search.Search(ctx, query)
	if err != nil {
		g.logger.Warn("grounding retrieval failed", "query_class", queryClass, "error", err)
		return nil
	}

	sort.SliceStable(snippets, func(i, j int) bool {
		return snippets[i].Score > snippets[j].Score
	})

	var top any
	if len(snippets) > 0 {
		top = snippets[0]
	}
	g.logger.Info("grounding_retrieved",
		"query_class", queryClass,
		"num_results", len(snippets),
		"top_result", top,
	)
	return snippets
}

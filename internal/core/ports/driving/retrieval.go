package driving

import (
	"context"

	"github.com/documint-labs/documint/internal/core/domain"
)

// RetrievalService builds retrieval indexes and serves ranked queries.
type RetrievalService interface {
	// Build rebuilds the project's retrieval index and publishes it
	// atomically. Concurrent searches keep seeing the previous complete
	// index until the swap. Embeddings are computed only for chunks
	// that lack a cached vector.
	Build(ctx context.Context, project *domain.Project) error

	// Search runs one (persona, task) query against the project's
	// published index and returns the ranked, diversity-constrained
	// top-k as an Insight. k <= 0 is rejected with
	// domain.ErrInvalidInput; an empty project yields an empty result
	// list. An unavailable embedding signal degrades the query to
	// BM25-only scoring, never fails it.
	Search(ctx context.Context, project *domain.Project, persona, task string, k int) (*domain.Insight, error)

	// Stale reports whether the published index was built at an older
	// project revision. Advisory: the caller decides whether to
	// rebuild before serving.
	Stale(project *domain.Project) bool
}

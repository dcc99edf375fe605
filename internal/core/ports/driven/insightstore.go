package driven

import (
	"context"

	"github.com/documint-labs/documint/internal/core/domain"
)

// InsightStore persists retrieval query records per project.
type InsightStore interface {
	// Save stores an insight. Insights are immutable once written.
	Save(ctx context.Context, insight *domain.Insight) error

	// Get retrieves an insight by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.Insight, error)

	// ListByProject returns all insights for a project, newest first.
	ListByProject(ctx context.Context, projectName string) ([]domain.Insight, error)

	// Delete removes an insight by ID.
	Delete(ctx context.Context, id string) error
}

package driven

import (
	"context"

	"github.com/documint-labs/documint/internal/core/domain"
)

// ProjectStore persists projects with their documents and chunks.
// Re-reading a saved project reconstructs an identical in-memory value.
// Save must be atomic per project: a crash mid-save never leaves a
// partially written project visible to subsequent loads.
type ProjectStore interface {
	// Load retrieves a project by name.
	// Returns domain.ErrNotFound if the project does not exist.
	Load(ctx context.Context, name string) (*domain.Project, error)

	// Save stores or replaces a project's manifest and chunks.
	Save(ctx context.Context, project *domain.Project) error

	// Delete removes a project entirely.
	Delete(ctx context.Context, name string) error

	// List returns the names of all stored projects.
	List(ctx context.Context) ([]string, error)

	// UpdateEmbeddings writes freshly computed chunk vectors back without
	// touching the project structure, and records the model that produced
	// them. This is the embedding cache: vectors are reused across
	// rebuilds instead of recomputed.
	UpdateEmbeddings(ctx context.Context, projectName string, vectors map[string][]float32, model string) error

	// UpdateDomain records the most recent query classification on the
	// project without touching its documents, chunks or revision.
	UpdateDomain(ctx context.Context, projectName string, d domain.Domain) error

	// Close releases resources.
	Close() error
}

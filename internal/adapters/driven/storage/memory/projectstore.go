package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/documint-labs/documint/internal/core/domain"
	"github.com/documint-labs/documint/internal/core/ports/driven"
)

// Ensure ProjectStore implements the interface.
var _ driven.ProjectStore = (*ProjectStore)(nil)

// ProjectStore is an in-memory implementation of driven.ProjectStore.
// It deep-copies on Save and Load so callers never alias stored state.
type ProjectStore struct {
	mu       sync.RWMutex
	projects map[string]*domain.Project
}

// NewProjectStore creates a new in-memory project store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{
		projects: make(map[string]*domain.Project),
	}
}

// Load retrieves a project by name.
func (s *ProjectStore) Load(_ context.Context, name string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, ok := s.projects[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneProject(project), nil
}

// Save stores or replaces a project.
func (s *ProjectStore) Save(_ context.Context, project *domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects[project.Name] = cloneProject(project)
	return nil
}

// Delete removes a project entirely.
func (s *ProjectStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[name]; !ok {
		return domain.ErrNotFound
	}
	delete(s.projects, name)
	return nil
}

// List returns all project names, sorted.
func (s *ProjectStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.projects))
	for name := range s.projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// UpdateEmbeddings writes chunk vectors back without touching the
// project structure.
func (s *ProjectStore) UpdateEmbeddings(
	_ context.Context, projectName string, vectors map[string][]float32, model string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, ok := s.projects[projectName]
	if !ok {
		return domain.ErrNotFound
	}

	for i := range project.Chunks {
		if vec, ok := vectors[project.Chunks[i].ID]; ok {
			project.Chunks[i].Embedding = append([]float32(nil), vec...)
		}
	}
	project.EmbeddingModel = model
	project.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateDomain records the last query classification.
func (s *ProjectStore) UpdateDomain(
	_ context.Context, projectName string, d domain.Domain,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, ok := s.projects[projectName]
	if !ok {
		return domain.ErrNotFound
	}

	project.Domain = d
	return nil
}

// Close releases resources. No-op for the in-memory store.
func (s *ProjectStore) Close() error { return nil }

// cloneProject deep-copies a project.
func cloneProject(p *domain.Project) *domain.Project {
	out := *p
	out.Documents = append([]domain.Document(nil), p.Documents...)
	out.Chunks = append([]domain.Chunk(nil), p.Chunks...)
	for i := range out.Chunks {
		if p.Chunks[i].Embedding != nil {
			out.Chunks[i].Embedding = append([]float32(nil), p.Chunks[i].Embedding...)
		}
	}
	return &out
}

package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/documint-labs/documint/internal/core/domain"
	"github.com/documint-labs/documint/internal/core/ports/driven"
)

// Ensure InsightStore implements the interface.
var _ driven.InsightStore = (*InsightStore)(nil)

// InsightStore is an in-memory implementation of driven.InsightStore.
type InsightStore struct {
	mu       sync.RWMutex
	insights map[string]domain.Insight
}

// NewInsightStore creates a new in-memory insight store.
func NewInsightStore() *InsightStore {
	return &InsightStore{
		insights: make(map[string]domain.Insight),
	}
}

// Save stores an insight.
func (s *InsightStore) Save(_ context.Context, insight *domain.Insight) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *insight
	stored.Results = append([]domain.RankedChunk(nil), insight.Results...)
	s.insights[insight.ID] = stored
	return nil
}

// Get retrieves an insight by ID.
func (s *InsightStore) Get(_ context.Context, id string) (*domain.Insight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	insight, ok := s.insights[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &insight, nil
}

// ListByProject returns all insights for a project, newest first.
func (s *InsightStore) ListByProject(_ context.Context, projectName string) ([]domain.Insight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Insight
	for _, insight := range s.insights {
		if insight.ProjectName == projectName {
			out = append(out, insight)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete removes an insight by ID.
func (s *InsightStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.insights[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.insights, id)
	return nil
}

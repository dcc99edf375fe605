package cli

import (
	"context"
	"errors"
	"time"

	"github.com/documint-labs/documint/internal/adapters/driven/storage/memory"
	"github.com/documint-labs/documint/internal/core/domain"
	"github.com/documint-labs/documint/internal/core/ports/driving"
)

// mockIngestService returns canned results without touching storage.
type mockIngestService struct {
	ingestResult *driving.IngestResult
	removeResult *driving.RemoveResult
	err          error
}

func (m *mockIngestService) Ingest(_ context.Context, _ string, files []driving.IngestFile) (*driving.IngestResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.ingestResult != nil {
		return m.ingestResult, nil
	}
	result := &driving.IngestResult{}
	for _, f := range files {
		result.Added = append(result.Added, domain.Document{
			ID:        "hash-" + f.Name,
			Name:      f.Name,
			PageCount: 1,
		})
		result.ChunkCount++
	}
	return result, nil
}

func (m *mockIngestService) RemoveDocument(_ context.Context, _, _ string) (*driving.RemoveResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.removeResult != nil {
		return m.removeResult, nil
	}
	return &driving.RemoveResult{Removed: true}, nil
}

// mockRetrievalService serves a fixed insight.
type mockRetrievalService struct {
	insight *domain.Insight
	err     error
}

func (m *mockRetrievalService) Build(_ context.Context, _ *domain.Project) error {
	return m.err
}

func (m *mockRetrievalService) Search(_ context.Context, project *domain.Project, persona, task string, k int) (*domain.Insight, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.insight != nil {
		return m.insight, nil
	}
	return &domain.Insight{
		ID:          "insight-1",
		ProjectName: project.Name,
		Persona:     persona,
		Task:        task,
		K:           k,
		Domain:      domain.DomainGeneral,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func (m *mockRetrievalService) Stale(_ *domain.Project) bool {
	return false
}

var errMockService = errors.New("mock service failure")

// setupTestServices wires mock services plus in-memory stores into the
// command tree and returns a cleanup that restores the previous wiring.
func setupTestServices() func() {
	oldIngest := ingestService
	oldRetrieval := retrievalService
	oldProjects := projectStore
	oldInsights := insightStore

	ingestService = &mockIngestService{}
	retrievalService = &mockRetrievalService{}
	projectStore = memory.NewProjectStore()
	insightStore = memory.NewInsightStore()

	return func() {
		ingestService = oldIngest
		retrievalService = oldRetrieval
		projectStore = oldProjects
		insightStore = oldInsights
	}
}

// seedProject stores a small project with two documents and three
// chunks through whatever project store is currently wired.
func seedProject(name string) *domain.Project {
	project := domain.NewProject(name)
	project.Domain = domain.DomainTravel
	project.AppendDocument(
		domain.Document{ID: "doc-a", Name: "alps.pdf", PageCount: 3, ByteSize: 100, CreatedAt: time.Now().UTC()},
		[]domain.Chunk{
			{ID: "doc-a:0", DocumentID: "doc-a", Heading: "Mountain Trails", Content: "Alpine routes for summer hiking.", PageNumber: 1, OrderIndex: 0},
			{ID: "doc-a:1", DocumentID: "doc-a", Heading: "Packing", Content: "What to carry above the treeline.", PageNumber: 2, OrderIndex: 1},
		},
	)
	project.AppendDocument(
		domain.Document{ID: "doc-b", Name: "finance.pdf", PageCount: 1, ByteSize: 50, CreatedAt: time.Now().UTC()},
		[]domain.Chunk{
			{ID: "doc-b:0", DocumentID: "doc-b", Heading: "Quarterly Outlook", Content: "Revenue projections for the quarter.", PageNumber: 1, OrderIndex: 0},
		},
	)
	_ = projectStore.Save(context.Background(), project)
	return project
}

package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/documint-labs/documint/internal/adapters/driven/storage/memory"
	"github.com/documint-labs/documint/internal/chunker"
	"github.com/documint-labs/documint/internal/core/domain"
	"github.com/documint-labs/documint/internal/core/ports/driven"
	"github.com/documint-labs/documint/internal/core/ports/driving"
)

// --- Mock implementations ---

// mockExtractor implements driven.LayoutExtractor for testing.
// It emits a fixed number of uniform body blocks per file, keyed by
// file name, so each chunk count is predictable (one chunk per page).
type mockExtractor struct {
	pages    map[string]int
	failWith map[string]error
}

func (m *mockExtractor) Extract(_ context.Context, name string, _ []byte) (*driven.Extraction, error) {
	if err, ok := m.failWith[name]; ok {
		return nil, err
	}

	pages := m.pages[name]
	if pages == 0 {
		pages = 1
	}

	blocks := make([]domain.PageBlock, pages)
	for i := range blocks {
		blocks[i] = domain.PageBlock{
			PageNumber: i + 1,
			Text: fmt.Sprintf(
				"Page %d of %s carries enough body text to stand as its own chunk.", i+1, name),
			FontSize: 10,
		}
	}

	return &driven.Extraction{Blocks: blocks, PageCount: pages}, nil
}

func newTestIngest(store driven.ProjectStore, extractor driven.LayoutExtractor) *IngestService {
	return NewIngestService(store, extractor, chunker.New(), WithIngestWorkers(2))
}

func file(name, content string) driving.IngestFile {
	return driving.IngestFile{Name: name, Data: []byte(content)}
}

// TestIngestService_Ingest_NewDocuments tests ingesting fresh files
// into a new project.
func TestIngestService_Ingest_NewDocuments(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProjectStore()
	svc := newTestIngest(store, &mockExtractor{pages: map[string]int{"a.pdf": 2, "b.pdf": 3}})

	result, err := svc.Ingest(ctx, "p1", []driving.IngestFile{
		file("a.pdf", "contents of a"),
		file("b.pdf", "contents of b"),
	})
	require.NoError(t, err)

	require.Len(t, result.Added, 2)
	assert.Empty(t, result.SkippedDuplicates)
	assert.Empty(t, result.Failed)
	assert.Equal(t, 5, result.ChunkCount)
	assert.Equal(t, "a.pdf", result.Added[0].Name)
	assert.Equal(t, domain.HashBytes([]byte("contents of a")), result.Added[0].ID)
	assert.Equal(t, 2, result.Added[0].PageCount)

	project, err := store.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, project.Documents, 2)
	assert.Len(t, project.Chunks, 5)
	assert.Equal(t, int64(2), project.Revision)
}

// TestIngestService_Ingest_SkipsDuplicates tests content-hash dedup on
// re-ingest of identical bytes.
func TestIngestService_Ingest_SkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProjectStore()
	svc := newTestIngest(store, &mockExtractor{pages: map[string]int{"a.pdf": 2, "b.pdf": 3}})

	_, err := svc.Ingest(ctx, "p1", []driving.IngestFile{
		file("a.pdf", "contents of a"),
		file("b.pdf", "contents of b"),
	})
	require.NoError(t, err)

	result, err := svc.Ingest(ctx, "p1", []driving.IngestFile{file("a.pdf", "contents of a")})
	require.NoError(t, err)

	assert.Empty(t, result.Added)
	assert.Equal(t, []string{"a.pdf"}, result.SkippedDuplicates)
	assert.Equal(t, 5, result.ChunkCount)

	// No structural change, so the revision stays put.
	project, err := store.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), project.Revision)
}

// TestIngestService_Ingest_DuplicateWithinBatch tests that the same
// bytes appearing twice in one batch are ingested once.
func TestIngestService_Ingest_DuplicateWithinBatch(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProjectStore()
	svc := newTestIngest(store, &mockExtractor{})

	result, err := svc.Ingest(ctx, "p1", []driving.IngestFile{
		file("a.pdf", "same bytes"),
		file("copy-of-a.pdf", "same bytes"),
	})
	require.NoError(t, err)

	assert.Len(t, result.Added, 1)
	assert.Equal(t, []string{"copy-of-a.pdf"}, result.SkippedDuplicates)
}

// TestIngestService_Ingest_FailedFileDoesNotAbortBatch tests that one
// bad document fails alone.
func TestIngestService_Ingest_FailedFileDoesNotAbortBatch(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProjectStore()
	svc := newTestIngest(store, &mockExtractor{
		failWith: map[string]error{
			"broken.pdf": fmt.Errorf("%w: no text layer", domain.ErrExtractionFailed),
		},
	})

	result, err := svc.Ingest(ctx, "p1", []driving.IngestFile{
		file("good.pdf", "fine"),
		file("broken.pdf", "garbage"),
	})
	require.NoError(t, err)

	require.Len(t, result.Added, 1)
	assert.Equal(t, "good.pdf", result.Added[0].Name)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "broken.pdf", result.Failed[0].Name)
	assert.ErrorIs(t, result.Failed[0].Err, domain.ErrExtractionFailed)
}

// TestIngestService_Ingest_EmptyProjectName tests input validation.
func TestIngestService_Ingest_EmptyProjectName(t *testing.T) {
	svc := newTestIngest(memory.NewProjectStore(), &mockExtractor{})

	_, err := svc.Ingest(context.Background(), "  ", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestIngestService_RemoveDocument tests removal and chunk cleanup.
func TestIngestService_RemoveDocument(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProjectStore()
	svc := newTestIngest(store, &mockExtractor{pages: map[string]int{"a.pdf": 2, "b.pdf": 3}})

	_, err := svc.Ingest(ctx, "p1", []driving.IngestFile{
		file("a.pdf", "contents of a"),
		file("b.pdf", "contents of b"),
	})
	require.NoError(t, err)

	result, err := svc.RemoveDocument(ctx, "p1", "a.pdf")
	require.NoError(t, err)
	assert.True(t, result.Removed)
	assert.Equal(t, 1, result.RemainingDocuments)
	assert.Equal(t, 3, result.RemainingChunks)

	removedID := domain.HashBytes([]byte("contents of a"))
	project, err := store.Load(ctx, "p1")
	require.NoError(t, err)
	for _, c := range project.Chunks {
		assert.NotEqual(t, removedID, c.DocumentID)
	}
}

// TestIngestService_RemoveDocument_Unknown tests that removing a
// document that is not in the project surfaces not-found and leaves
// the project untouched.
func TestIngestService_RemoveDocument_Unknown(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProjectStore()
	svc := newTestIngest(store, &mockExtractor{pages: map[string]int{"a.pdf": 1}})

	_, err := svc.Ingest(ctx, "p1", []driving.IngestFile{file("a.pdf", "x")})
	require.NoError(t, err)

	result, err := svc.RemoveDocument(ctx, "p1", "ghost.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, result)

	project, err := store.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, project.Documents, 1)
	assert.Equal(t, int64(1), project.Revision)
}

// TestIngestService_RemoveDocument_LastLeavesEmptyProject tests that a
// project survives losing its last document and accepts new ingests.
func TestIngestService_RemoveDocument_LastLeavesEmptyProject(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProjectStore()
	svc := newTestIngest(store, &mockExtractor{})

	_, err := svc.Ingest(ctx, "p1", []driving.IngestFile{file("a.pdf", "only one")})
	require.NoError(t, err)

	result, err := svc.RemoveDocument(ctx, "p1", "a.pdf")
	require.NoError(t, err)
	assert.True(t, result.Removed)
	assert.Equal(t, 0, result.RemainingDocuments)
	assert.Equal(t, 0, result.RemainingChunks)

	project, err := store.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, project.Documents)

	again, err := svc.Ingest(ctx, "p1", []driving.IngestFile{file("a.pdf", "only one")})
	require.NoError(t, err)
	assert.Len(t, again.Added, 1)
}

// TestIngestService_RemoveDocument_MissingProject tests the not-found
// path.
func TestIngestService_RemoveDocument_MissingProject(t *testing.T) {
	svc := newTestIngest(memory.NewProjectStore(), &mockExtractor{})

	_, err := svc.RemoveDocument(context.Background(), "ghost", "a.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

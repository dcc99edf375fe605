package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/documint-labs/documint/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [project]", searchCmd.Use)
}

func TestSearchCmd_Short(t *testing.T) {
	assert.Equal(t, "Run persona-driven retrieval over a project", searchCmd.Short)
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "trip", "extra"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasTopFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("top")
	require.NotNil(t, flag, "top flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "5", flag.DefValue)
}

func TestSearchCmd_TaskFlagRequired(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "trip"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "task")
}

func TestSearchCmd_ServiceNotConfigured(t *testing.T) {
	oldService := retrievalService
	retrievalService = nil
	defer func() {
		retrievalService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "trip", "--task", "plan a trip"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "retrieval service not configured")
}

func TestSearchCmd_UnknownProject(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "ghost", "--task", "plan a trip"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), `project "ghost" does not exist`)
}

func TestSearchCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	project := seedProject("trip")
	score := 0.8
	retrievalService = &mockRetrievalService{insight: &domain.Insight{
		ID:          "insight-1",
		ProjectName: project.Name,
		Task:        "plan a hiking trip",
		K:           5,
		Domain:      domain.DomainTravel,
		Results: []domain.RankedChunk{
			{Chunk: project.Chunks[0], BM25Score: 1, EmbeddingScore: &score, HybridScore: 0.9, ImportanceRank: 1},
			{Chunk: project.Chunks[1], BM25Score: 0.4, HybridScore: 0.4, ImportanceRank: 2},
		},
		CreatedAt: time.Now().UTC(),
	}}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "trip", "--task", "plan a hiking trip"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Domain: travel")
	assert.Contains(t, buf.String(), "[1] Mountain Trails | alps.pdf, p.1 (score 0.900)")
	assert.Contains(t, buf.String(), "Alpine routes for summer hiking.")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	seedProject("trip")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "trip", "--task", "plan a hiking trip", "--json"})
	defer func() {
		rootCmd.SetArgs(nil)
		searchJSON = false // Reset flag
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "\"ID\"")
	assert.Contains(t, buf.String(), "\"ProjectName\"")
	assert.Contains(t, buf.String(), "\"Results\"")
}

func TestSearchCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	seedProject("trip")
	retrievalService = &mockRetrievalService{err: errMockService}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "trip", "--task", "plan a trip"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestOutputInsightTable_EmptyResults(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	err := outputInsightTable(rootCmd, domain.NewProject("trip"), &domain.Insight{})

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No results found")
}

func TestOutputInsightTable_MissingHeading(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	project := domain.NewProject("trip")
	project.AppendDocument(domain.Document{ID: "doc-a", Name: "alps.pdf"}, nil)

	err := outputInsightTable(rootCmd, project, &domain.Insight{
		Results: []domain.RankedChunk{
			{Chunk: domain.Chunk{ID: "doc-a:0", DocumentID: "doc-a", Content: "Body text.", PageNumber: 2}, HybridScore: 0.5, ImportanceRank: 1},
		},
	})

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "(no heading)")
	assert.Contains(t, buf.String(), "alps.pdf, p.2")
}

func TestOutputInsightTable_TruncatesLongContent(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	long := ""
	for i := 0; i < 40; i++ {
		long += "abcdefghij"
	}
	project := domain.NewProject("trip")
	project.AppendDocument(domain.Document{ID: "doc-a", Name: "alps.pdf"}, nil)

	err := outputInsightTable(rootCmd, project, &domain.Insight{
		Results: []domain.RankedChunk{
			{Chunk: domain.Chunk{ID: "doc-a:0", DocumentID: "doc-a", Heading: "H", Content: long, PageNumber: 1}, ImportanceRank: 1},
		},
	})

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "...")
	assert.NotContains(t, buf.String(), long)
}

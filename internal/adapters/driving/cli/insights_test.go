package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/documint-labs/documint/internal/core/domain"
)

func seedInsight(t *testing.T, id, task string, createdAt time.Time) *domain.Insight {
	t.Helper()
	score := 0.7
	insight := &domain.Insight{
		ID:          id,
		ProjectName: "trip",
		Persona:     "Travel Planner",
		Task:        task,
		K:           3,
		Domain:      domain.DomainTravel,
		Results: []domain.RankedChunk{
			{
				Chunk:          domain.Chunk{ID: "doc-a:0", DocumentID: "doc-a", Heading: "Mountain Trails", Content: "Alpine routes.", PageNumber: 1},
				BM25Score:      1,
				EmbeddingScore: &score,
				HybridScore:    0.9,
				ImportanceRank: 1,
			},
		},
		CreatedAt: createdAt,
	}
	require.NoError(t, insightStore.Save(context.Background(), insight))
	return insight
}

func TestInsightsListCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"insights", "list", "trip"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No insights recorded for project trip")
}

func TestInsightsListCmd_NewestFirst(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	base := time.Now().UTC()
	seedInsight(t, "older", "first question", base.Add(-time.Hour))
	seedInsight(t, "newer", "second question", base)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"insights", "list", "trip"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	output := buf.String()
	assert.Less(t, bytes.Index([]byte(output), []byte("newer")), bytes.Index([]byte(output), []byte("older")))
	assert.Contains(t, output, "[travel] second question")
}

func TestInsightsShowCmd_DisplaysResults(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	seedInsight(t, "insight-1", "plan a hiking trip", time.Now().UTC())

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"insights", "show", "insight-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Insight:  insight-1")
	assert.Contains(t, buf.String(), "Persona:  Travel Planner")
	assert.Contains(t, buf.String(), "Task:     plan a hiking trip")
	assert.Contains(t, buf.String(), "[1] Mountain Trails | p.1 (score 0.900)")
}

func TestInsightsShowCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	seedInsight(t, "insight-1", "plan a hiking trip", time.Now().UTC())

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"insights", "show", "insight-1", "--json"})
	defer func() {
		rootCmd.SetArgs(nil)
		insightsJSON = false // Reset flag
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "\"EmbeddingScore\": 0.7")
}

func TestInsightsShowCmd_Unknown(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"insights", "show", "ghost"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), `insight "ghost" does not exist`)
}

func TestInsightsDeleteCmd_Deletes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	seedInsight(t, "insight-1", "plan a hiking trip", time.Now().UTC())

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"insights", "delete", "insight-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Deleted insight insight-1")

	_, err = insightStore.Get(context.Background(), "insight-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInsightsDeleteCmd_Unknown(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"insights", "delete", "ghost"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), `insight "ghost" does not exist`)
}

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/documint-labs/documint/internal/core/ports/driving"
)

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [project] [file]...", ingestCmd.Use)
}

func TestIngestCmd_Short(t *testing.T) {
	assert.Equal(t, "Add documents to a project", ingestCmd.Short)
}

func TestIngestCmd_RequiresProjectAndFile(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "trip"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg(s)")
}

func TestIngestCmd_ServiceNotConfigured(t *testing.T) {
	oldService := ingestService
	ingestService = nil
	defer func() {
		ingestService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "trip", "somefile.json"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ingest service not configured")
}

func TestIngestCmd_MissingFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "trip", "/does/not/exist.json"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "reading /does/not/exist.json")
}

func TestIngestCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "guide.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"blocks":[]}`), 0644))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", "trip", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "added    guide.json")
	assert.Contains(t, buf.String(), "1 added, 0 skipped, 0 failed")
}

func TestPrintIngestResult_MixedOutcomes(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	printIngestResult(rootCmd, &driving.IngestResult{
		SkippedDuplicates: []string{"dup.json"},
		Failed:            []driving.IngestFailure{{Name: "bad.json", Err: errMockService}},
		ChunkCount:        7,
	})

	assert.Contains(t, buf.String(), "skipped  dup.json (already ingested)")
	assert.Contains(t, buf.String(), "failed   bad.json")
	assert.Contains(t, buf.String(), "0 added, 1 skipped, 1 failed. Project now has 7 chunks.")
}

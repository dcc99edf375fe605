// Package cli implements the DocumInt command line interface using cobra.
// Commands are thin: they parse flags, call the core services through
// the driving ports and format the result.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/documint-labs/documint/internal/core/ports/driven"
	"github.com/documint-labs/documint/internal/core/ports/driving"
	"github.com/documint-labs/documint/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Services wired in by the composition root (cmd/documint).
var (
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	projectStore     driven.ProjectStore
	insightStore     driven.InsightStore
	configStore      driven.ConfigStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "documint",
	Short: "Index PDF collections and run persona-driven retrieval",
	Long: `DocumInt ingests PDF document collections into named projects,
splits them into heading-aligned chunks and serves ranked hybrid
retrieval (BM25 + embeddings) for a given persona and task.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose logging to stderr")
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices wires the core services into the command tree.
// The insight store and config store may be nil.
func SetServices(
	ingest driving.IngestService,
	retrieval driving.RetrievalService,
	projects driven.ProjectStore,
	insights driven.InsightStore,
	config driven.ConfigStore,
) {
	ingestService = ingest
	retrievalService = retrieval
	projectStore = projects
	insightStore = insights
	configStore = config
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

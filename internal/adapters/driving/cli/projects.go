package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/documint-labs/documint/internal/core/domain"
)

var (
	exportOutput  string
	importAs      string
	importReplace bool
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage projects",
	RunE:  runProjectsList,
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	RunE:  runProjectsList,
}

var projectsShowCmd = &cobra.Command{
	Use:   "show [project]",
	Short: "Show a project's documents and stats",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsShow,
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete [project]",
	Short: "Delete a project and all of its data",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsDelete,
}

var projectsExportCmd = &cobra.Command{
	Use:   "export [project]",
	Short: "Export a project to a JSON file",
	Long: `Writes the project's manifest, chunks and cached embedding vectors
to a portable JSON file. An imported project needs no re-embedding as
long as the same embedding model is configured.`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectsExport,
}

var projectsImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a project from an exported JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsImport,
}

func init() {
	projectsExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default <project>.json)")
	projectsImportCmd.Flags().StringVar(&importAs, "as", "", "import under a different project name")
	projectsImportCmd.Flags().BoolVar(&importReplace, "replace", false, "overwrite an existing project with the same name")
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsShowCmd)
	projectsCmd.AddCommand(projectsDeleteCmd)
	projectsCmd.AddCommand(projectsExportCmd)
	projectsCmd.AddCommand(projectsImportCmd)
	rootCmd.AddCommand(projectsCmd)
}

// projectExport is the portable on-disk form of one project.
type projectExport struct {
	Name           string            `json:"name"`
	Domain         string            `json:"domain"`
	EmbeddingModel string            `json:"embedding_model,omitempty"`
	ExportedAt     time.Time         `json:"exported_at"`
	Documents      []domain.Document `json:"documents"`
	Chunks         []exportChunk     `json:"chunks"`
}

// exportChunk mirrors domain.Chunk with JSON field names.
type exportChunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Heading    string    `json:"heading"`
	Content    string    `json:"content"`
	PageNumber int       `json:"page_number"`
	OrderIndex int       `json:"order_index"`
	Embedding  []float32 `json:"embedding,omitempty"`
}

func runProjectsList(cmd *cobra.Command, _ []string) error {
	if projectStore == nil {
		return errors.New("project store not configured")
	}

	names, err := projectStore.List(context.Background())
	if err != nil {
		return fmt.Errorf("listing projects: %w", err)
	}

	if len(names) == 0 {
		cmd.Println("No projects yet. Create one with: documint ingest <project> <file>...")
		return nil
	}

	for _, name := range names {
		cmd.Println(name)
	}
	return nil
}

func runProjectsShow(cmd *cobra.Command, args []string) error {
	if projectStore == nil {
		return errors.New("project store not configured")
	}

	project, err := loadProject(args[0])
	if err != nil {
		return err
	}

	cmd.Printf("Project:   %s\n", project.Name)
	cmd.Printf("Domain:    %s\n", project.Domain)
	if project.EmbeddingModel != "" {
		cmd.Printf("Embedding: %s\n", project.EmbeddingModel)
	} else {
		cmd.Printf("Embedding: (none, BM25-only)\n")
	}
	cmd.Printf("Documents: %d\n", len(project.Documents))
	cmd.Printf("Chunks:    %d\n", len(project.Chunks))
	cmd.Printf("Updated:   %s\n", project.UpdatedAt.Format(time.RFC3339))
	cmd.Println()

	for _, doc := range project.Documents {
		chunkCount := 0
		for _, c := range project.Chunks {
			if c.DocumentID == doc.ID {
				chunkCount++
			}
		}
		cmd.Printf("  %s  %d pages, %d chunks\n", doc.Name, doc.PageCount, chunkCount)
	}
	return nil
}

func runProjectsDelete(cmd *cobra.Command, args []string) error {
	if projectStore == nil {
		return errors.New("project store not configured")
	}

	if err := projectStore.Delete(context.Background(), args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("project %q does not exist", args[0])
		}
		return fmt.Errorf("deleting project: %w", err)
	}

	cmd.Printf("Deleted project %s.\n", args[0])
	return nil
}

func runProjectsExport(cmd *cobra.Command, args []string) error {
	if projectStore == nil {
		return errors.New("project store not configured")
	}

	project, err := loadProject(args[0])
	if err != nil {
		return err
	}

	export := projectExport{
		Name:           project.Name,
		Domain:         string(project.Domain),
		EmbeddingModel: project.EmbeddingModel,
		ExportedAt:     time.Now().UTC(),
		Documents:      project.Documents,
		Chunks:         make([]exportChunk, len(project.Chunks)),
	}
	for i, c := range project.Chunks {
		export.Chunks[i] = exportChunk{
			ID:         c.ID,
			DocumentID: c.DocumentID,
			Heading:    c.Heading,
			Content:    c.Content,
			PageNumber: c.PageNumber,
			OrderIndex: c.OrderIndex,
			Embedding:  c.Embedding,
		}
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling export: %w", err)
	}

	output := exportOutput
	if output == "" {
		output = project.Name + ".json"
	}
	if err := os.WriteFile(output, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	cmd.Printf("Exported %s to %s (%d documents, %d chunks).\n",
		project.Name, output, len(export.Documents), len(export.Chunks))
	return nil
}

func runProjectsImport(cmd *cobra.Command, args []string) error {
	if projectStore == nil {
		return errors.New("project store not configured")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	var export projectExport
	if err := json.Unmarshal(data, &export); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	if export.Name == "" {
		return fmt.Errorf("%s is not a project export: missing name", args[0])
	}

	name := export.Name
	if importAs != "" {
		name = importAs
	}

	ctx := context.Background()
	if _, err := projectStore.Load(ctx, name); err == nil && !importReplace {
		return fmt.Errorf("project %q already exists (use --replace to overwrite)", name)
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("checking project: %w", err)
	}

	project := domain.NewProject(name)
	project.Domain = domain.Domain(export.Domain)
	if !project.Domain.Valid() {
		project.Domain = domain.DomainGeneral
	}
	project.EmbeddingModel = export.EmbeddingModel
	project.Documents = export.Documents
	project.Chunks = make([]domain.Chunk, len(export.Chunks))
	for i, c := range export.Chunks {
		project.Chunks[i] = domain.Chunk{
			ID:         c.ID,
			DocumentID: c.DocumentID,
			Heading:    c.Heading,
			Content:    c.Content,
			PageNumber: c.PageNumber,
			OrderIndex: c.OrderIndex,
			Embedding:  c.Embedding,
		}
	}
	project.Revision = 1
	project.UpdatedAt = time.Now().UTC()

	if err := projectStore.Save(ctx, project); err != nil {
		return fmt.Errorf("saving project: %w", err)
	}

	cmd.Printf("Imported %s (%d documents, %d chunks).\n",
		name, len(project.Documents), len(project.Chunks))
	return nil
}

// loadProject loads a project, translating not-found into a friendly
// error.
func loadProject(name string) (*domain.Project, error) {
	project, err := projectStore.Load(context.Background(), name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("project %q does not exist", name)
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return project, nil
}

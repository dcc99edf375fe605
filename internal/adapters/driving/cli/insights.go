package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/documint-labs/documint/internal/core/domain"
)

var insightsJSON bool

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Inspect recorded search insights",
}

var insightsListCmd = &cobra.Command{
	Use:   "list [project]",
	Short: "List insights recorded for a project, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runInsightsList,
}

var insightsShowCmd = &cobra.Command{
	Use:   "show [insight-id]",
	Short: "Show a recorded insight with its ranked results",
	Args:  cobra.ExactArgs(1),
	RunE:  runInsightsShow,
}

var insightsDeleteCmd = &cobra.Command{
	Use:   "delete [insight-id]",
	Short: "Delete a recorded insight",
	Args:  cobra.ExactArgs(1),
	RunE:  runInsightsDelete,
}

func init() {
	insightsShowCmd.Flags().BoolVar(&insightsJSON, "json", false, "output as JSON")
	insightsCmd.AddCommand(insightsListCmd)
	insightsCmd.AddCommand(insightsShowCmd)
	insightsCmd.AddCommand(insightsDeleteCmd)
	rootCmd.AddCommand(insightsCmd)
}

func runInsightsList(cmd *cobra.Command, args []string) error {
	if insightStore == nil {
		return errors.New("insight store not configured")
	}

	insights, err := insightStore.ListByProject(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("listing insights: %w", err)
	}

	if len(insights) == 0 {
		cmd.Printf("No insights recorded for project %s.\n", args[0])
		return nil
	}

	for _, ins := range insights {
		cmd.Printf("%s  %s  [%s] %s\n",
			ins.ID, ins.CreatedAt.Format(time.RFC3339), ins.Domain, ins.Task)
	}
	return nil
}

func runInsightsShow(cmd *cobra.Command, args []string) error {
	if insightStore == nil {
		return errors.New("insight store not configured")
	}

	insight, err := insightStore.Get(context.Background(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("insight %q does not exist", args[0])
		}
		return fmt.Errorf("loading insight: %w", err)
	}

	if insightsJSON {
		return outputInsightJSON(cmd, insight)
	}

	cmd.Printf("Insight:  %s\n", insight.ID)
	cmd.Printf("Project:  %s\n", insight.ProjectName)
	if insight.Persona != "" {
		cmd.Printf("Persona:  %s\n", insight.Persona)
	}
	cmd.Printf("Task:     %s\n", insight.Task)
	cmd.Printf("Domain:   %s\n", insight.Domain)
	cmd.Printf("Recorded: %s\n", insight.CreatedAt.Format(time.RFC3339))
	cmd.Println()

	if len(insight.Results) == 0 {
		cmd.Println("No results.")
		return nil
	}
	for _, r := range insight.Results {
		heading := r.Chunk.Heading
		if heading == "" {
			heading = "(no heading)"
		}
		cmd.Printf("  [%d] %s | p.%d (score %.3f)\n",
			r.ImportanceRank, heading, r.Chunk.PageNumber, r.HybridScore)
	}
	return nil
}

func runInsightsDelete(cmd *cobra.Command, args []string) error {
	if insightStore == nil {
		return errors.New("insight store not configured")
	}

	if err := insightStore.Delete(context.Background(), args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("insight %q does not exist", args[0])
		}
		return fmt.Errorf("deleting insight: %w", err)
	}

	cmd.Printf("Deleted insight %s.\n", args[0])
	return nil
}

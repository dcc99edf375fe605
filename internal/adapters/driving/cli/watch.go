package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/documint-labs/documint/internal/core/domain"
	"github.com/documint-labs/documint/internal/core/ports/driving"
	"github.com/documint-labs/documint/internal/logger"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [project] [directory]",
	Short: "Watch a directory and ingest layout files as they appear",
	Long: `Watches a directory for layout JSON files and ingests new or
changed files into the project automatically. Deleted files are removed
from the project. Hidden files and subdirectories are ignored.

Runs until interrupted with Ctrl-C.`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "quiet period before ingesting a changed file")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	projectName, dir := args[0], args[1]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s for project %s. Press Ctrl-C to stop.\n", dir, projectName)

	// Writes arrive as bursts of events; a per-path timer ingests once
	// the file has been quiet for the debounce window.
	pending := make(map[string]*time.Timer)
	ready := make(chan string)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watchable(event.Name) {
				continue
			}

			switch {
			case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
				path := event.Name
				if timer, exists := pending[path]; exists {
					timer.Stop()
				}
				pending[path] = time.AfterFunc(watchDebounce, func() {
					select {
					case ready <- path:
					case <-ctx.Done():
					}
				})

			case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
				if timer, exists := pending[event.Name]; exists {
					timer.Stop()
					delete(pending, event.Name)
				}
				removeWatched(ctx, cmd, projectName, filepath.Base(event.Name))
			}

		case path := <-ready:
			delete(pending, path)
			ingestWatched(ctx, cmd, projectName, path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}

// watchable reports whether a path is a candidate layout file. Hidden
// files and non-JSON files are skipped; directories are filtered out by
// extension before any stat is needed.
func watchable(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".json")
}

func ingestWatched(ctx context.Context, cmd *cobra.Command, projectName, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		// The file may have vanished between the event and the read.
		logger.Warn("reading %s: %v", path, err)
		return
	}

	result, err := ingestService.Ingest(ctx, projectName, []driving.IngestFile{
		{Name: filepath.Base(path), Data: data},
	})
	if err != nil {
		cmd.Printf("Failed to ingest %s: %v\n", filepath.Base(path), err)
		return
	}

	switch {
	case len(result.Added) > 0:
		cmd.Printf("Ingested %s (project now has %d chunks).\n", filepath.Base(path), result.ChunkCount)
	case len(result.SkippedDuplicates) > 0:
		logger.Debug("skipped duplicate %s", filepath.Base(path))
	case len(result.Failed) > 0:
		cmd.Printf("Failed to ingest %s: %v\n", filepath.Base(path), result.Failed[0].Err)
	}
}

func removeWatched(ctx context.Context, cmd *cobra.Command, projectName, name string) {
	_, err := ingestService.RemoveDocument(ctx, projectName, name)
	switch {
	case err == nil:
		cmd.Printf("Removed %s.\n", name)
	case errors.Is(err, domain.ErrNotFound):
		// Files deleted from the directory without ever being
		// ingested are not part of the project.
		logger.Debug("removing %s: %v", name, err)
	default:
		logger.Warn("removing %s: %v", name, err)
	}
}

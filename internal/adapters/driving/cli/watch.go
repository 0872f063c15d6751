package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/notegraph-labs/notegraph-cli/internal/logger"
)

// settleDelay gives editors and copy operations time to finish writing
// before the file is ingested.
const settleDelay = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a folder and ingest files dropped into it",
	Long: `Watches the directory and ingests every supported file created or
written there. Runs until interrupted. Files already present when the
watch starts are not ingested.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if notesEngine == nil {
		return errors.New("notes engine not configured")
	}
	if extractor == nil {
		return errors.New("extractor not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cannot watch %s: not a directory", dir)
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

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)

	// A write burst for one file collapses into a single ingest: the timer
	// resets on every event and fires once the file goes quiet.
	pending := make(map[string]*time.Timer)
	ingestCh := make(chan string)

	for {
		select {
		case <-ctx.Done():
			cmd.Println("Stopped.")
			return nil

		case path := <-ingestCh:
			delete(pending, path)
			ingestDropped(ctx, cmd, path)

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !extractor.Supports(filepath.Ext(event.Name)) {
				continue
			}

			path := event.Name
			if timer, exists := pending[path]; exists {
				timer.Reset(settleDelay)
				continue
			}
			pending[path] = time.AfterFunc(settleDelay, func() {
				ingestCh <- path
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}

// ingestDropped ingests one dropped file, reporting failures without
// stopping the watch.
func ingestDropped(ctx context.Context, cmd *cobra.Command, path string) {
	extracted, err := extractor.Extract(ctx, path)
	if err != nil {
		cmd.PrintErrf("Skipping %s: %v\n", path, err)
		return
	}

	result, err := notesEngine.CreateDocument(ctx, extracted.Title, extracted.Text, extracted.MediaRefs, extracted.ImagePaths)
	if err != nil {
		cmd.PrintErrf("Failed to ingest %s: %v\n", path, err)
		return
	}

	cmd.Printf("Ingested %s as %s (%d topics)\n", path, result.Document.ID, len(result.Topics))
}

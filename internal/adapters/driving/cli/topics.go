package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driving"
)

var topicsJSON bool

var topicsCmd = &cobra.Command{
	Use:   "topics [doc-id]",
	Short: "List a document's live topics",
	Args:  cobra.ExactArgs(1),
	RunE:  runTopics,
}

var granularityCmd = &cobra.Command{
	Use:   "granularity [doc-id] [value]",
	Short: "Re-segment a document at a new granularity",
	Long: `Sets the topic granularity (0-100) and re-segments the document.
Low values produce a few broad topics; high values produce many specific
ones. Existing notes become stale and are regenerated on the next
'generate' run.`,
	Args: cobra.ExactArgs(2),
	RunE: runGranularity,
}

var mergeCmd = &cobra.Command{
	Use:   "merge [doc-id] [topic-key] [topic-key] ...",
	Short: "Merge two or more topics into one",
	Long: `Merges the named topics into a fresh topic that owns the union of
their spans. The merged topic is named by the language model. Notes for
the absorbed topics become stale.`,
	Args: cobra.MinimumNArgs(3),
	RunE: runMerge,
}

func init() {
	topicsCmd.Flags().BoolVar(&topicsJSON, "json", false, "output topics as JSON")
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(granularityCmd)
	rootCmd.AddCommand(mergeCmd)
}

func runTopics(cmd *cobra.Command, args []string) error {
	if notesEngine == nil {
		return errors.New("notes engine not configured")
	}

	topics, err := notesEngine.ListTopics(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list topics: %w", err)
	}

	if topicsJSON {
		data, err := json.MarshalIndent(topics, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal topics: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(topics) == 0 {
		cmd.Println("No topics. The document may still be in the uploaded state.")
		return nil
	}

	printTopics(cmd, topics)
	return nil
}

func runGranularity(cmd *cobra.Command, args []string) error {
	if notesEngine == nil {
		return errors.New("notes engine not configured")
	}

	value, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("granularity must be a number between 0 and 100: %w", err)
	}

	result, err := notesEngine.SetGranularity(context.Background(), args[0], value)
	if err != nil {
		return fmt.Errorf("failed to set granularity: %w", err)
	}

	cmd.Printf("Re-segmented at granularity %d into %d topics:\n\n",
		result.Document.Granularity, len(result.Topics))
	printTopics(cmd, result.Topics)

	if result.Reduced {
		cmd.Println("Note: the document supported fewer topics than the granularity asked for.")
	}
	return nil
}

func runMerge(cmd *cobra.Command, args []string) error {
	if notesEngine == nil {
		return errors.New("notes engine not configured")
	}

	docID := args[0]
	keys := args[1:]

	merged, err := notesEngine.MergeTopics(context.Background(), docID, keys)
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	cmd.Printf("Merged %d topics into %q (%s)\n", len(keys), merged.Name, merged.Key)
	if merged.Description != "" {
		cmd.Printf("  %s\n", merged.Description)
	}
	return nil
}

// printTopics renders a topic list in a stable, scannable layout shared by
// the ingest, topics, and granularity commands.
func printTopics(cmd *cobra.Command, topics []driving.TopicView) {
	for i := range topics {
		noteMark := " "
		if topics[i].HasCurrentNote {
			noteMark = "*"
		}
		cmd.Printf("  %s %-12s %s\n", noteMark, topics[i].Key, topics[i].Name)
		if topics[i].Description != "" {
			cmd.Printf("    %s\n", topics[i].Description)
		}
		cmd.Printf("    spans: %d  text: %d chars  version: %d\n",
			topics[i].SpanCount, topics[i].SpanTextLen, topics[i].Version)
	}
	cmd.Println()
	cmd.Println("* = has a current note")
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driving"
)

var (
	generateFormat string
	generateImages bool
	generateTopics []string
	noteFormat     string
)

var generateCmd = &cobra.Command{
	Use:   "generate [doc-id]",
	Short: "Generate notes for topics without a current note",
	Long: `Synthesises a note for every live topic that does not already have a
current note in the requested format. Topics whose notes are up to date
are skipped. Enrichment and image analysis failures downgrade individual
notes to partial rather than failing the run.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

var noteCmd = &cobra.Command{
	Use:   "note [doc-id] [topic-key]",
	Short: "Print the current note for a topic",
	Args:  cobra.ExactArgs(2),
	RunE:  runNote,
}

var reviseCmd = &cobra.Command{
	Use:   "revise [doc-id] [topic-key] [instruction]",
	Short: "Revise one note with a free-form instruction",
	Long: `Applies the instruction to the topic's note through a conversational
revision session. Only that note changes; the instruction and outcome are
recorded in the topic's chat log.`,
	Args: cobra.ExactArgs(3),
	RunE: runRevise,
}

var chatCmd = &cobra.Command{
	Use:   "chat [doc-id] [topic-key]",
	Short: "Show the revision chat log for a topic",
	Args:  cobra.ExactArgs(2),
	RunE:  runChat,
}

func init() {
	generateCmd.Flags().StringVarP(&generateFormat, "format", "f", "", "note format: markdown, latex, or html")
	generateCmd.Flags().BoolVar(&generateImages, "images", false, "describe referenced images via the vision service")
	generateCmd.Flags().StringSliceVar(&generateTopics, "topics", nil, "restrict generation to these topic keys")
	noteCmd.Flags().StringVarP(&noteFormat, "format", "f", "", "note format: markdown, latex, or html")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(reviseCmd)
	rootCmd.AddCommand(chatCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if notesEngine == nil {
		return errors.New("notes engine not configured")
	}

	format, err := domain.ParseNoteFormat(generateFormat)
	if err != nil {
		return fmt.Errorf("invalid format %q: %w", generateFormat, err)
	}

	result, err := notesEngine.GenerateNotes(context.Background(), args[0], driving.GenerateOptions{
		Format:        format,
		ProcessImages: generateImages,
		TopicKeys:     generateTopics,
	})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	cmd.Printf("Generated %d notes (%d reused, %d partial)\n",
		len(result.Notes), result.Reused, result.Partial)

	for i := range result.Notes {
		mark := " "
		if result.Notes[i].Partial {
			mark = "~"
		}
		cmd.Printf("  %s %s\n", mark, result.Notes[i].TopicName)
	}

	if len(result.Failed) > 0 {
		keys := make([]string, 0, len(result.Failed))
		for key := range result.Failed {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		cmd.Println()
		cmd.Printf("Failed (%d):\n", len(result.Failed))
		for _, key := range keys {
			cmd.Printf("  %s: %s\n", key, result.Failed[key])
		}
	}

	if result.Partial > 0 {
		cmd.Println()
		cmd.Println("~ = partial note (a non-critical collaborator failed); regenerate to retry")
	}
	return nil
}

func runNote(cmd *cobra.Command, args []string) error {
	if notesEngine == nil {
		return errors.New("notes engine not configured")
	}

	format, err := domain.ParseNoteFormat(noteFormat)
	if err != nil {
		return fmt.Errorf("invalid format %q: %w", noteFormat, err)
	}

	view, err := notesEngine.GetNote(context.Background(), args[0], args[1], format)
	if err != nil {
		return fmt.Errorf("failed to get note: %w", err)
	}

	if view.Stale {
		cmd.PrintErrln("Warning: this note predates the topic's current version. Run 'generate' to refresh it.")
	}
	if view.Partial {
		cmd.PrintErrln("Warning: this note is partial; a collaborator failed during synthesis.")
	}

	cmd.Println(strings.TrimRight(view.Rendered, "\n"))
	return nil
}

func runRevise(cmd *cobra.Command, args []string) error {
	if notesEngine == nil {
		return errors.New("notes engine not configured")
	}

	view, err := notesEngine.ReviseNote(context.Background(), args[0], args[1], args[2])
	if err != nil {
		return fmt.Errorf("revision failed: %w", err)
	}

	cmd.Printf("Revised %q (revision %d)\n\n", view.TopicName, view.Revision)
	cmd.Println(strings.TrimRight(view.Rendered, "\n"))
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	if notesEngine == nil {
		return errors.New("notes engine not configured")
	}

	turns, err := notesEngine.GetChatLog(context.Background(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to get chat log: %w", err)
	}

	if len(turns) == 0 {
		cmd.Println("No revision history for this topic.")
		return nil
	}

	for i := range turns {
		role := string(turns[i].Role)
		if turns[i].IsError {
			role += " (error)"
		}
		cmd.Printf("[%s] %s (rev %d)\n", role, turns[i].CreatedAt.Format("2006-01-02 15:04"), turns[i].NoteRevision)
		cmd.Printf("  %s\n\n", turns[i].Content)
	}
	return nil
}

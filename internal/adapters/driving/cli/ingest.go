package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var ingestTitle string

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document and segment it into topics",
	Long: `Extracts text from the file, stores it as a document, and segments it
into topics at the default granularity. Plain text and markdown files are
supported; markdown image references are carried along for note generation.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestTitle, "title", "t", "", "document title (default: derived from filename)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if notesEngine == nil {
		return errors.New("notes engine not configured")
	}
	if extractor == nil {
		return errors.New("extractor not configured")
	}

	path := args[0]
	ctx := context.Background()

	if !extractor.Supports(filepath.Ext(path)) {
		return fmt.Errorf("unsupported file type %q (plain text and markdown only)", filepath.Ext(path))
	}

	extracted, err := extractor.Extract(ctx, path)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	title := ingestTitle
	if title == "" {
		title = extracted.Title
	}

	result, err := notesEngine.CreateDocument(ctx, title, extracted.Text, extracted.MediaRefs, extracted.ImagePaths)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested %q as %s\n", result.Document.Title, result.Document.ID)
	cmd.Printf("Segmented into %d topics at granularity %d:\n\n",
		len(result.Topics), result.Document.Granularity)
	printTopics(cmd, result.Topics)

	if result.Reduced {
		cmd.Println("Note: the document supported fewer topics than the granularity asked for.")
	}
	return nil
}

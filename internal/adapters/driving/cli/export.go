package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
)

var (
	exportFormat string
	exportDir    string
)

var exportCmd = &cobra.Command{
	Use:   "export [doc-id]",
	Short: "Write every current note to files",
	Long: `Writes the current note for every live topic to the output directory,
one file per topic. Markdown exports also get an index file with a table
of contents linking to each note.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "note format: markdown, latex, or html")
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", ".", "output directory")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if notesEngine == nil {
		return errors.New("notes engine not configured")
	}

	format, err := domain.ParseNoteFormat(exportFormat)
	if err != nil {
		return fmt.Errorf("invalid format %q: %w", exportFormat, err)
	}

	notes, err := notesEngine.ExportAll(context.Background(), args[0], format)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if len(notes) == 0 {
		cmd.Println("Nothing to export. Run 'generate' first.")
		return nil
	}

	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	for i := range notes {
		path := filepath.Join(exportDir, notes[i].Filename)
		if err := os.WriteFile(path, []byte(notes[i].Content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", notes[i].Filename, err)
		}
		cmd.Printf("  %s\n", path)
	}

	cmd.Printf("Exported %d files to %s\n", len(notes), exportDir)
	return nil
}

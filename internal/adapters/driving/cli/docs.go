package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var docsJSON bool

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List ingested documents",
	RunE:  runDocs,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and everything it owns",
	Long:  `Removes the document, its topic graph, all notes, and all revision chat logs.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	docsCmd.Flags().BoolVar(&docsJSON, "json", false, "output documents as JSON")
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runDocs(cmd *cobra.Command, _ []string) error {
	if notesEngine == nil {
		return errors.New("notes engine not configured")
	}

	ctx := context.Background()
	docs, err := notesEngine.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if docsJSON {
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(docs) == 0 {
		cmd.Println("No documents. Run 'notegraph ingest <file>' to add one.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Title: %s\n", docs[i].Title)
		cmd.Printf("    Granularity: %d  State: %s  Ingested: %s\n",
			docs[i].Granularity, docs[i].State, docs[i].CreatedAt.Format("2006-01-02 15:04"))
		cmd.Println()
	}
	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if notesEngine == nil {
		return errors.New("notes engine not configured")
	}

	docID := args[0]
	if err := notesEngine.DeleteDocument(context.Background(), docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted document %s\n", docID)
	return nil
}

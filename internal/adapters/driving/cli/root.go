// Package cli implements the notegraph command line interface using cobra.
// Commands talk to the engine exclusively through the driving ports; the
// concrete services are injected by the entrypoint before Execute runs.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driving"
	"github.com/notegraph-labs/notegraph-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Injected services. Commands check for nil so a partially wired binary
// fails with a clear message instead of a panic.
var (
	notesEngine driving.NotesEngine
	extractor   driven.Extractor
	configStore driven.ConfigStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "notegraph",
	Short: "Turn study notes into a cross-linked topic graph",
	Long: `Notegraph ingests documents, segments them into topics at a chosen
granularity, and generates enriched, cross-linked notes per topic.

Typical flow:
  notegraph ingest lecture.md
  notegraph topics <doc-id>
  notegraph generate <doc-id>
  notegraph export <doc-id> --out ./notes`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetEngine injects the notes engine.
func SetEngine(e driving.NotesEngine) {
	notesEngine = e
}

// SetExtractor injects the document extractor.
func SetExtractor(e driven.Extractor) {
	extractor = e
}

// SetConfigStore injects the configuration store.
func SetConfigStore(c driven.ConfigStore) {
	configStore = c
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

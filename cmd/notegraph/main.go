// Command notegraph is the entrypoint for the notegraph CLI. It wires the
// file-based config, SQLite storage, AI adapters, and core services behind
// the driving ports, then hands control to the cobra command tree.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/notegraph-labs/notegraph-cli/internal/adapters/driven/ai"
	"github.com/notegraph-labs/notegraph-cli/internal/adapters/driven/config/file"
	"github.com/notegraph-labs/notegraph-cli/internal/adapters/driven/extraction/plaintext"
	"github.com/notegraph-labs/notegraph-cli/internal/adapters/driven/storage/sqlite"
	"github.com/notegraph-labs/notegraph-cli/internal/adapters/driving/cli"
	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
	"github.com/notegraph-labs/notegraph-cli/internal/core/services"
	"github.com/notegraph-labs/notegraph-cli/internal/logger"
	"github.com/notegraph-labs/notegraph-cli/internal/renderers"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("initialising config store: %w", err)
	}

	promptStore, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("initialising prompt store: %w", err)
	}
	// Hot-reload matters for the long-running surfaces (watch, tui, mcp
	// serve); for one-shot commands the watcher just closes with the
	// process.
	if err := promptStore.Watch(); err != nil {
		logger.Warn("prompt hot-reload disabled: %v", err)
	} else {
		defer promptStore.Close()
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("initialising storage: %w", err)
	}
	defer store.Close()

	settings := settingsFromConfig(configStore)

	llmSettings := ai.LLMSettings{
		Provider: settings.LLMProvider,
		Model:    settings.LLMModel,
		APIKey:   configStore.GetString("llm.api_key"),
		BaseURL:  configStore.GetString("llm.base_url"),
	}

	// Validate connectivity up front so generation failures surface early.
	// An unreachable provider only warns: config commands must keep working
	// so the provider can be fixed.
	llm, err := ai.CreateAndValidateLLMService(llmSettings)
	if err != nil {
		logger.Warn("%v", err)
		llm, err = ai.CreateLLMService(llmSettings)
		if err != nil {
			return err
		}
	}
	defer llm.Close()

	ctx := context.Background()

	// Enricher and image analyzer are optional collaborators; failing to
	// build one degrades notes rather than blocking startup.
	var enricher driven.Enricher
	if settings.EnrichmentEnabled {
		enricher, err = ai.CreateEnricher(ctx, ai.EnrichmentSettings{
			APIKey:         configStore.GetString("enrichment.api_key"),
			SearchEngineID: configStore.GetString("enrichment.cx"),
		})
		if err != nil {
			logger.Warn("enrichment disabled: %v", err)
			enricher = nil
		}
	}

	analyzer, err := ai.CreateImageAnalyzer(llmSettings)
	if err != nil {
		logger.Warn("image analysis disabled: %v", err)
		analyzer = nil
	}

	segmenter := services.NewSegmenter(llm,
		services.WithMinContentChars(settings.MinContentChars))
	mergeEngine := services.NewMergeEngine(llm)

	synthOpts := []services.SynthesizerOption{
		services.WithLinkTuning(settings.LinkThreshold, settings.MaxOutDegree),
		services.WithMinPrimaryChars(settings.MinPrimaryChars),
	}
	if enricher != nil {
		synthOpts = append(synthOpts, services.WithEnricher(enricher))
	}
	if analyzer != nil {
		synthOpts = append(synthOpts, services.WithImageAnalyzer(analyzer))
	}
	synthesizer := services.NewNoteSynthesizer(llm, renderers.NewRegistry(), synthOpts...)

	revision := services.NewRevisionSession(llm)

	for _, svc := range []driven.PromptStoreAware{segmenter, mergeEngine, synthesizer, revision} {
		svc.SetPromptStore(promptStore)
	}

	engine := services.NewEngine(
		store.DocumentStore(),
		store.NoteStore(),
		store.ChatStore(),
		segmenter,
		mergeEngine,
		synthesizer,
		revision,
		settings,
	)

	cli.SetEngine(engine)
	cli.SetExtractor(plaintext.New())
	cli.SetConfigStore(configStore)
	cli.SetVersion(version)

	return cli.Execute()
}

// settingsFromConfig overlays persisted configuration on the defaults.
// Unset or invalid keys keep their default.
func settingsFromConfig(cfg driven.ConfigStore) domain.Settings {
	s := domain.DefaultSettings()

	if v := cfg.GetString("llm.provider"); v != "" {
		s.LLMProvider = domain.AIProvider(v)
	}
	if v := cfg.GetString("llm.model"); v != "" {
		s.LLMModel = v
	}
	if format, err := domain.ParseNoteFormat(cfg.GetString("notes.format")); err == nil && format != "" {
		s.DefaultFormat = format
	}
	s.EnrichmentEnabled = cfg.GetBool("notes.enrichment")
	s.ProcessImages = cfg.GetBool("notes.images")

	if v := cfg.GetFloat("links.threshold"); v > 0 {
		s.LinkThreshold = v
	}
	if v := cfg.GetInt("links.max_outdegree"); v > 0 {
		s.MaxOutDegree = v
	}

	return s.Normalise()
}

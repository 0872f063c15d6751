package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
	"github.com/notegraph-labs/notegraph-cli/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
//
// Long-running processes (TUI, MCP server) can call Watch to have edits on
// disk picked up without a restart.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptSegment: `Analyse the following document and partition it into coherent topics.
%s
Aim for between %d and %d topics. If the content cannot support that many distinct topics, return fewer rather than fabricating empty ones.

Each topic owns one or more character ranges [start, end) of the document text (0 to %d). Ranges of different topics must never overlap.

DOCUMENT TEXT:
%s

Return ONLY JSON in this exact format, with no text before or after:
{
  "topics": [
    {"name": "Topic Name", "description": "One-line description", "spans": [{"start": 0, "end": 120}]}
  ]
}`,

	driven.PromptSegmentRepair: `Your previous segmentation was invalid: %s.

Remember the partition rule: every character range belongs to AT MOST ONE topic, ranges never overlap, and every topic needs a non-empty name and at least one range within the document bounds.

Analyse the following document again and partition it into coherent topics.
%s
Aim for between %d and %d topics. Character ranges run from 0 to %d.

DOCUMENT TEXT:
%s

Return ONLY JSON in this exact format, with no text before or after:
{
  "topics": [
    {"name": "Topic Name", "description": "One-line description", "spans": [{"start": 0, "end": 120}]}
  ]
}`,

	driven.PromptSummarise: `You are an educational content expert. Write an enriched study note for the topic "%s" (%s) from the source material below.

Structure the note with clear explanations, appropriate headings, and examples or analogies where helpful. Use Markdown syntax inside the body.

SOURCE MATERIAL:
%s

Return ONLY JSON in this exact format, with no text before or after:
{"summary": "one or two sentence summary", "body": "the full note body in Markdown", "confident": true}
Set "confident" to false if the source material is too thin to cover the topic properly.`,

	driven.PromptMergeName: `The following study topics are being combined into one.
Pick a single concise name that covers all of them.
Return ONLY the name, nothing else.

Topics:
%s

Name:`,

	driven.PromptRevise: `You are revising a single study note at the user's direction. You will receive the current note content and an instruction.

Apply the instruction to the note and return ONLY the complete revised note content in the same format it was given in. Do not add commentary before or after the note. Do not change the note's title unless asked.`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.notegraph/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".notegraph", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Watch starts watching the prompt directory and clears the cache whenever
// a prompt file changes, so long-running processes pick up edits without a
// restart. Calling Watch twice is an error; use Close to stop watching.
func (s *PromptStore) Watch() error {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return s.initErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return fmt.Errorf("prompt store already watching %s", s.promptDir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create prompt watcher: %w", err)
	}
	if err := watcher.Add(s.promptDir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch prompt directory: %w", err)
	}

	s.watcher = watcher
	s.done = make(chan struct{})
	go s.watchLoop(watcher, s.done)
	return nil
}

// Close stops the prompt directory watcher, if one is running.
func (s *PromptStore) Close() error {
	s.mu.Lock()
	watcher, done := s.watcher, s.done
	s.watcher, s.done = nil, nil
	s.mu.Unlock()

	if watcher == nil {
		return nil
	}
	close(done)
	return watcher.Close()
}

// watchLoop drains watcher events until Close is called.
func (s *PromptStore) watchLoop(watcher *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".txt") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				logger.Debug("Prompt file changed, reloading: %s", filepath.Base(event.Name))
				s.Reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Prompt watcher error: %v", err)
		}
	}
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Notegraph Prompts

This directory contains customisable prompts used by Notegraph's LLM features.

## Files

- ` + "`segment.txt`" + ` - Partitions document content into topics
- ` + "`segment_repair.txt`" + ` - Corrective re-prompt after an invalid partition
- ` + "`summarise.txt`" + ` - Synthesises a study note for one topic
- ` + "`merge_name.txt`" + ` - Names a merged topic
- ` + "`revise.txt`" + ` - System prompt for note revision chats

## Customisation

Edit any file to customise LLM behaviour. Changes take effect on the next
command or after restarting the TUI.

## Format Placeholders

Some prompts use Go fmt placeholders:
- ` + "`%s`" + ` - String (e.g., the document content)
- ` + "`%d`" + ` - Integer (e.g., topic counts or content length)

Ensure customised prompts maintain placeholders in the correct positions.
`
	return os.WriteFile(path, []byte(content), 0600)
}

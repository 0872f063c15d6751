package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
)

// --- Mock implementations shared across the service tests ---

// mockLLM implements driven.LanguageModel for testing.
type mockLLM struct {
	generateFunc  func(prompt string) (string, error)
	chatFunc      func(messages []driven.ChatMessage) (string, error)
	generateCalls int
	chatCalls     int
	lastPrompt    string
	lastMessages  []driven.ChatMessage
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.generateCalls++
	m.lastPrompt = prompt
	if m.generateFunc != nil {
		return m.generateFunc(prompt)
	}
	return "", nil
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.chatCalls++
	m.lastMessages = messages
	if m.chatFunc != nil {
		return m.chatFunc(messages)
	}
	return "", nil
}

func (m *mockLLM) ModelName() string { return "mock-model" }

func (m *mockLLM) Ping(_ context.Context) error { return nil }

func (m *mockLLM) Close() error { return nil }

// mockEnricher implements driven.Enricher for testing.
type mockEnricher struct {
	supplement string
	err        error
	calls      int
}

func (m *mockEnricher) Supplement(_ context.Context, _, _ string) (string, error) {
	m.calls++
	return m.supplement, m.err
}

// mockAnalyzer implements driven.ImageAnalyzer for testing.
type mockAnalyzer struct {
	description string
	err         error
	calls       int
}

func (m *mockAnalyzer) Describe(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.description, m.err
}

// mockRenderer implements driven.Renderer with a plain text rendition.
type mockRenderer struct {
	format    domain.NoteFormat
	renderErr error
}

func (m *mockRenderer) Format() domain.NoteFormat { return m.format }

func (m *mockRenderer) Render(body *domain.NoteBody, nameFor func(string) string) (string, error) {
	if m.renderErr != nil {
		return "", m.renderErr
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n", body.Title, body.Summary)
	for _, sec := range body.Sections {
		if sec.Heading != "" {
			fmt.Fprintf(&b, "\n## %s\n", sec.Heading)
		}
		b.WriteString("\n" + sec.Content + "\n")
	}
	for _, link := range body.Links {
		fmt.Fprintf(&b, "\nSee also: %s\n", nameFor(link.Target))
	}
	return b.String(), nil
}

// mockRegistry implements driven.RendererRegistry over mockRenderer values.
type mockRegistry struct {
	renderers map[domain.NoteFormat]driven.Renderer
}

func newMockRegistry(formats ...domain.NoteFormat) *mockRegistry {
	r := &mockRegistry{renderers: make(map[domain.NoteFormat]driven.Renderer)}
	if len(formats) == 0 {
		formats = []domain.NoteFormat{domain.FormatMarkdown}
	}
	for _, f := range formats {
		r.renderers[f] = &mockRenderer{format: f}
	}
	return r
}

func (r *mockRegistry) Get(format domain.NoteFormat) (driven.Renderer, error) {
	renderer, ok := r.renderers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
	return renderer, nil
}

func (r *mockRegistry) Formats() []domain.NoteFormat {
	out := make([]domain.NoteFormat, 0, len(r.renderers))
	for f := range r.renderers {
		out = append(out, f)
	}
	return out
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	reloads int
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("prompt %s: %w", name, domain.ErrNotFound)
}

func (m *mockPromptStore) Reload() { m.reloads++ }

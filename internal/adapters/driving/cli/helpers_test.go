package cli

import (
	"context"
	"time"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driving"
)

// ==================== Mock Engine ====================

var testCreatedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// mockEngine is a canned-data NotesEngine for command tests.
type mockEngine struct {
	deletedID       string
	lastGranularity int
	lastInstruction string
	err             error
}

var _ driving.NotesEngine = (*mockEngine)(nil)

func testDocument() domain.Document {
	return domain.Document{
		ID:          "doc-1",
		Title:       "Cell Biology",
		Granularity: 50,
		State:       domain.StateSegmented,
		CreatedAt:   testCreatedAt,
	}
}

func testTopics() []driving.TopicView {
	return []driving.TopicView{
		{Key: "mitosis", Name: "Mitosis", Description: "Somatic cell division", SpanCount: 3, SpanTextLen: 420, Version: 1, HasCurrentNote: true},
		{Key: "meiosis", Name: "Meiosis", SpanCount: 2, SpanTextLen: 310, Version: 1},
	}
}

func testNote() *driving.NoteView {
	return &driving.NoteView{
		TopicKey:    "mitosis",
		TopicName:   "Mitosis",
		Format:      domain.FormatMarkdown,
		Rendered:    "# Mitosis\n\nCell division for growth and repair.\n",
		Revision:    2,
		GeneratedAt: testCreatedAt,
	}
}

func (m *mockEngine) CreateDocument(_ context.Context, title, _ string, _, _ []string) (*driving.DocumentResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	doc := testDocument()
	if title != "" {
		doc.Title = title
	}
	return &driving.DocumentResult{Document: doc, Topics: testTopics()}, nil
}

func (m *mockEngine) GetDocument(_ context.Context, _ string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	doc := testDocument()
	return &doc, nil
}

func (m *mockEngine) ListDocuments(_ context.Context) ([]domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.Document{testDocument()}, nil
}

func (m *mockEngine) SetGranularity(_ context.Context, _ string, value int) (*driving.DocumentResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastGranularity = value
	doc := testDocument()
	doc.Granularity = value
	return &driving.DocumentResult{Document: doc, Topics: testTopics()}, nil
}

func (m *mockEngine) ListTopics(_ context.Context, _ string) ([]driving.TopicView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return testTopics(), nil
}

func (m *mockEngine) MergeTopics(_ context.Context, _ string, _ []string) (*driving.TopicView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &driving.TopicView{Key: "cell-division", Name: "Cell Division", Description: "Merged coverage of division", Version: 1}, nil
}

func (m *mockEngine) GenerateNotes(_ context.Context, _ string, _ driving.GenerateOptions) (*driving.GenerateResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	partial := *testNote()
	partial.TopicKey = "meiosis"
	partial.TopicName = "Meiosis"
	partial.Partial = true
	return &driving.GenerateResult{
		Notes:   []driving.NoteView{*testNote(), partial},
		Reused:  1,
		Partial: 1,
		Failed:  map[string]string{"prophase": "model unavailable"},
	}, nil
}

func (m *mockEngine) GetNote(_ context.Context, _, _ string, _ domain.NoteFormat) (*driving.NoteView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return testNote(), nil
}

func (m *mockEngine) ReviseNote(_ context.Context, _, _, instruction string) (*driving.NoteView, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastInstruction = instruction
	note := testNote()
	note.Revision = 3
	return note, nil
}

func (m *mockEngine) GetChatLog(_ context.Context, _, _ string) ([]domain.ChatTurn, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.ChatTurn{
		{ID: "turn-1", Role: domain.RoleUser, Content: "shorten the intro", NoteRevision: 2, CreatedAt: testCreatedAt},
		{ID: "turn-2", Role: domain.RoleAssistant, Content: "Shortened the introduction.", NoteRevision: 3, CreatedAt: testCreatedAt},
	}, nil
}

func (m *mockEngine) ExportAll(_ context.Context, _ string, _ domain.NoteFormat) ([]driving.ExportedNote, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []driving.ExportedNote{
		{Filename: "index.md", TopicName: "Index", Content: "# Cell Biology\n"},
		{Filename: "mitosis.md", TopicName: "Mitosis", Content: "# Mitosis\n"},
	}, nil
}

func (m *mockEngine) DeleteDocument(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deletedID = id
	return nil
}

// ==================== Mock Extractor ====================

type mockExtractor struct {
	result *driven.ExtractResult
	err    error
}

var _ driven.Extractor = (*mockExtractor)(nil)

func (m *mockExtractor) Extract(_ context.Context, _ string) (*driven.ExtractResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockExtractor) Supports(ext string) bool {
	return ext == ".txt" || ext == ".md"
}

// ==================== Mock Config Store ====================

type mockConfigStore struct {
	values map[string]any
}

var _ driven.ConfigStore = (*mockConfigStore)(nil)

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if s, ok := m.values[key].(string); ok {
		return s
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	if i, ok := m.values[key].(int); ok {
		return i
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	if f, ok := m.values[key].(float64); ok {
		return f
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	if b, ok := m.values[key].(bool); ok {
		return b
	}
	return false
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return nil }
func (m *mockConfigStore) Load() error { return nil }

func (m *mockConfigStore) Path() string {
	return "/tmp/notegraph/config.toml"
}

// ==================== Setup ====================

// setupTestServices installs mock services and returns a cleanup that
// restores the previous ones.
func setupTestServices() func() {
	oldEngine := notesEngine
	oldExtractor := extractor
	oldStore := configStore

	notesEngine = &mockEngine{}
	extractor = &mockExtractor{result: &driven.ExtractResult{
		Title: "Cell Biology",
		Text:  "Mitosis is cell division.\n\nMeiosis produces gametes.",
	}}
	configStore = newMockConfigStore()

	return func() {
		notesEngine = oldEngine
		extractor = oldExtractor
		configStore = oldStore
	}
}

// failingEngine returns an engine whose every call fails with err.
func failingEngine(err error) *mockEngine {
	return &mockEngine{err: err}
}

package mcp

import (
	"context"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driving"
)

// mockEngine is a mock implementation of driving.NotesEngine.
type mockEngine struct {
	documents []domain.Document
	document  *domain.Document
	docResult *driving.DocumentResult
	topics    []driving.TopicView
	topic     *driving.TopicView
	genResult *driving.GenerateResult
	note      *driving.NoteView
	turns     []domain.ChatTurn
	exported  []driving.ExportedNote
	err       error

	// lastGranularity records the value passed to SetGranularity.
	lastGranularity int
}

func (m *mockEngine) CreateDocument(_ context.Context, _, _ string, _, _ []string) (*driving.DocumentResult, error) {
	return m.docResult, m.err
}

func (m *mockEngine) GetDocument(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockEngine) ListDocuments(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockEngine) SetGranularity(_ context.Context, _ string, granularity int) (*driving.DocumentResult, error) {
	m.lastGranularity = granularity
	return m.docResult, m.err
}

func (m *mockEngine) ListTopics(_ context.Context, _ string) ([]driving.TopicView, error) {
	return m.topics, m.err
}

func (m *mockEngine) MergeTopics(_ context.Context, _ string, _ []string) (*driving.TopicView, error) {
	return m.topic, m.err
}

func (m *mockEngine) GenerateNotes(_ context.Context, _ string, _ driving.GenerateOptions) (*driving.GenerateResult, error) {
	return m.genResult, m.err
}

func (m *mockEngine) GetNote(_ context.Context, _, _ string, _ domain.NoteFormat) (*driving.NoteView, error) {
	return m.note, m.err
}

func (m *mockEngine) ReviseNote(_ context.Context, _, _, _ string) (*driving.NoteView, error) {
	return m.note, m.err
}

func (m *mockEngine) GetChatLog(_ context.Context, _, _ string) ([]domain.ChatTurn, error) {
	return m.turns, m.err
}

func (m *mockEngine) ExportAll(_ context.Context, _ string, _ domain.NoteFormat) ([]driving.ExportedNote, error) {
	return m.exported, m.err
}

func (m *mockEngine) DeleteDocument(_ context.Context, _ string) error {
	return m.err
}

package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driving"
)

// mockEngine implements the subset of driving.NotesEngine the TUI touches;
// the remaining methods satisfy the interface.
type mockEngine struct {
	documents []domain.Document
	topics    []driving.TopicView
	note      *driving.NoteView
	err       error
}

func (m *mockEngine) CreateDocument(_ context.Context, _, _ string, _, _ []string) (*driving.DocumentResult, error) {
	return nil, m.err
}

func (m *mockEngine) GetDocument(_ context.Context, _ string) (*domain.Document, error) {
	return nil, m.err
}

func (m *mockEngine) ListDocuments(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockEngine) SetGranularity(_ context.Context, _ string, _ int) (*driving.DocumentResult, error) {
	return nil, m.err
}

func (m *mockEngine) ListTopics(_ context.Context, _ string) ([]driving.TopicView, error) {
	return m.topics, m.err
}

func (m *mockEngine) MergeTopics(_ context.Context, _ string, _ []string) (*driving.TopicView, error) {
	return nil, m.err
}

func (m *mockEngine) GenerateNotes(_ context.Context, _ string, _ driving.GenerateOptions) (*driving.GenerateResult, error) {
	return nil, m.err
}

func (m *mockEngine) GetNote(_ context.Context, _, _ string, _ domain.NoteFormat) (*driving.NoteView, error) {
	return m.note, m.err
}

func (m *mockEngine) ReviseNote(_ context.Context, _, _, _ string) (*driving.NoteView, error) {
	return m.note, m.err
}

func (m *mockEngine) GetChatLog(_ context.Context, _, _ string) ([]domain.ChatTurn, error) {
	return nil, m.err
}

func (m *mockEngine) ExportAll(_ context.Context, _ string, _ domain.NoteFormat) ([]driving.ExportedNote, error) {
	return nil, m.err
}

func (m *mockEngine) DeleteDocument(_ context.Context, _ string) error {
	return m.err
}

func sizedApp(t *testing.T, engine *mockEngine) *App {
	t.Helper()
	app, err := NewApp(engine)
	require.NoError(t, err)

	model, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return model.(*App)
}

func TestNewApp_RequiresEngine(t *testing.T) {
	app, err := NewApp(nil)
	require.Error(t, err)
	assert.Nil(t, app)
}

func TestApp_DocumentsLoaded(t *testing.T) {
	app := sizedApp(t, &mockEngine{})

	model, _ := app.Update(documentsLoadedMsg{
		documents: []domain.Document{
			{ID: "doc-1", Title: "Cell Biology", Granularity: 50, State: domain.StateSegmented},
		},
	})
	app = model.(*App)

	view := app.View()
	assert.Contains(t, view, "Documents")
	assert.Contains(t, view, "Cell Biology")
}

func TestApp_DocumentsLoadError(t *testing.T) {
	app := sizedApp(t, &mockEngine{})

	model, _ := app.Update(documentsLoadedMsg{err: errors.New("store down")})
	app = model.(*App)

	assert.Contains(t, app.View(), "store down")
}

func TestApp_Navigation(t *testing.T) {
	app := sizedApp(t, &mockEngine{})
	model, _ := app.Update(documentsLoadedMsg{
		documents: []domain.Document{
			{ID: "doc-1", Title: "First"},
			{ID: "doc-2", Title: "Second"},
		},
	})
	app = model.(*App)

	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	app = model.(*App)
	assert.Equal(t, 1, app.selectedDoc)

	// Moving past the end stays on the last document.
	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	app = model.(*App)
	assert.Equal(t, 1, app.selectedDoc)

	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	app = model.(*App)
	assert.Equal(t, 0, app.selectedDoc)
}

func TestApp_DrillIntoTopics(t *testing.T) {
	engine := &mockEngine{
		topics: []driving.TopicView{
			{Key: "t1", Name: "Mitosis", HasCurrentNote: true},
			{Key: "t2", Name: "Meiosis"},
		},
	}
	app := sizedApp(t, engine)
	model, _ := app.Update(documentsLoadedMsg{
		documents: []domain.Document{{ID: "doc-1", Title: "Cell Biology"}},
	})
	app = model.(*App)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	model, _ = app.Update(cmd())
	app = model.(*App)

	assert.Equal(t, viewTopics, app.state)
	view := app.View()
	assert.Contains(t, view, "Mitosis")
	assert.Contains(t, view, "Meiosis")
}

func TestApp_NoteViewShowsBadges(t *testing.T) {
	engine := &mockEngine{
		note: &driving.NoteView{
			TopicName: "Mitosis",
			Rendered:  "# Mitosis\n\nCell division.\n",
			Stale:     true,
			Partial:   true,
		},
	}
	app := sizedApp(t, engine)
	model, _ := app.Update(documentsLoadedMsg{
		documents: []domain.Document{{ID: "doc-1", Title: "Cell Biology"}},
	})
	app = model.(*App)
	model, _ = app.Update(topicsLoadedMsg{
		topics: []driving.TopicView{{Key: "t1", Name: "Mitosis"}},
	})
	app = model.(*App)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	model, _ = app.Update(cmd())
	app = model.(*App)

	assert.Equal(t, viewNote, app.state)
	view := app.View()
	assert.Contains(t, view, "STALE")
	assert.Contains(t, view, "PARTIAL")
	assert.Contains(t, view, "Cell division.")
}

func TestApp_EscGoesBack(t *testing.T) {
	app := sizedApp(t, &mockEngine{})
	model, _ := app.Update(documentsLoadedMsg{
		documents: []domain.Document{{ID: "doc-1", Title: "Cell Biology"}},
	})
	app = model.(*App)
	model, _ = app.Update(topicsLoadedMsg{
		topics: []driving.TopicView{{Key: "t1", Name: "Mitosis"}},
	})
	app = model.(*App)
	require.Equal(t, viewTopics, app.state)

	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	app = model.(*App)
	assert.Equal(t, viewDocuments, app.state)

	// Esc at the top level quits.
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

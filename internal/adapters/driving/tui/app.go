// Package tui provides an interactive terminal UI for browsing documents,
// topics, and notes. It follows the Elm architecture via Bubbletea: a
// document list drills into a topic list, which drills into a scrollable
// note viewer with a staleness badge.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driving"
)

// viewState identifies which pane is active.
type viewState int

const (
	viewDocuments viewState = iota
	viewTopics
	viewNote
)

// ==================== Messages ====================

type documentsLoadedMsg struct {
	documents []domain.Document
	err       error
}

type topicsLoadedMsg struct {
	topics []driving.TopicView
	err    error
}

type noteLoadedMsg struct {
	note *driving.NoteView
	err  error
}

// ==================== Model ====================

// App is the TUI application model.
type App struct {
	engine driving.NotesEngine
	ctx    context.Context
	styles *Styles

	state     viewState
	documents []domain.Document
	topics    []driving.TopicView
	note      *driving.NoteView

	selectedDoc   int
	selectedTopic int

	viewer viewport.Model

	width  int
	height int
	ready  bool
	err    error
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the TUI application.
func NewApp(engine driving.NotesEngine) (*App, error) {
	if engine == nil {
		return nil, errors.New("tui: notes engine is required")
	}

	return &App{
		engine: engine,
		ctx:    context.Background(),
		styles: DefaultStyles(),
		state:  viewDocuments,
		viewer: viewport.New(80, 20),
	}, nil
}

// WithContext sets the context used for engine calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("notegraph"),
		a.loadDocuments(),
	)
}

// ==================== Commands ====================

func (a *App) loadDocuments() tea.Cmd {
	return func() tea.Msg {
		docs, err := a.engine.ListDocuments(a.ctx)
		return documentsLoadedMsg{documents: docs, err: err}
	}
}

func (a *App) loadTopics(documentID string) tea.Cmd {
	return func() tea.Msg {
		topics, err := a.engine.ListTopics(a.ctx, documentID)
		return topicsLoadedMsg{topics: topics, err: err}
	}
}

func (a *App) loadNote(documentID, topicKey string) tea.Cmd {
	return func() tea.Msg {
		note, err := a.engine.GetNote(a.ctx, documentID, topicKey, domain.FormatMarkdown)
		return noteLoadedMsg{note: note, err: err}
	}
}

// ==================== Update ====================

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.viewer.Width = msg.Width
		a.viewer.Height = msg.Height - 4
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case documentsLoadedMsg:
		a.err = msg.err
		if msg.err == nil {
			a.documents = msg.documents
			if a.selectedDoc >= len(a.documents) {
				a.selectedDoc = 0
			}
		}
		return a, nil

	case topicsLoadedMsg:
		a.err = msg.err
		if msg.err == nil {
			a.topics = msg.topics
			a.selectedTopic = 0
			a.state = viewTopics
		}
		return a, nil

	case noteLoadedMsg:
		a.err = msg.err
		if msg.err == nil {
			a.note = msg.note
			a.viewer.SetContent(msg.note.Rendered)
			a.viewer.GotoTop()
			a.state = viewNote
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return a, tea.Quit

	case "esc":
		switch a.state {
		case viewNote:
			a.state = viewTopics
		case viewTopics:
			a.state = viewDocuments
		case viewDocuments:
			return a, tea.Quit
		}
		a.err = nil
		return a, nil

	case "up", "k":
		a.moveSelection(-1)
		return a, nil

	case "down", "j":
		a.moveSelection(1)
		return a, nil

	case "enter":
		return a.drillIn()

	case "r":
		return a.reload()
	}

	// Remaining keys scroll the note viewer.
	if a.state == viewNote {
		var cmd tea.Cmd
		a.viewer, cmd = a.viewer.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a *App) moveSelection(delta int) {
	switch a.state {
	case viewDocuments:
		a.selectedDoc = clamp(a.selectedDoc+delta, len(a.documents))
	case viewTopics:
		a.selectedTopic = clamp(a.selectedTopic+delta, len(a.topics))
	case viewNote:
		if delta > 0 {
			a.viewer.LineDown(1)
		} else {
			a.viewer.LineUp(1)
		}
	}
}

func (a *App) drillIn() (tea.Model, tea.Cmd) {
	switch a.state {
	case viewDocuments:
		if len(a.documents) > 0 {
			return a, a.loadTopics(a.documents[a.selectedDoc].ID)
		}
	case viewTopics:
		if len(a.topics) > 0 {
			return a, a.loadNote(a.documents[a.selectedDoc].ID, a.topics[a.selectedTopic].Key)
		}
	case viewNote:
		// Nothing deeper to open.
	}
	return a, nil
}

func (a *App) reload() (tea.Model, tea.Cmd) {
	switch a.state {
	case viewDocuments:
		return a, a.loadDocuments()
	case viewTopics:
		return a, a.loadTopics(a.documents[a.selectedDoc].ID)
	case viewNote:
		return a, a.loadNote(a.documents[a.selectedDoc].ID, a.topics[a.selectedTopic].Key)
	}
	return a, nil
}

func clamp(v, length int) int {
	if v < 0 {
		return 0
	}
	if v >= length && length > 0 {
		return length - 1
	}
	if length == 0 {
		return 0
	}
	return v
}

// ==================== View ====================

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var b strings.Builder

	switch a.state {
	case viewDocuments:
		a.renderDocuments(&b)
	case viewTopics:
		a.renderTopics(&b)
	case viewNote:
		a.renderNote(&b)
	}

	if a.err != nil {
		b.WriteString("\n")
		b.WriteString(a.styles.Error.Render("Error: " + a.err.Error()))
	}

	b.WriteString("\n")
	b.WriteString(a.styles.Help.Render(a.helpLine()))
	return b.String()
}

func (a *App) renderDocuments(b *strings.Builder) {
	b.WriteString(a.styles.Title.Render("Documents"))
	b.WriteString("\n\n")

	if len(a.documents) == 0 {
		b.WriteString(a.styles.Muted.Render("No documents. Ingest one with 'notegraph ingest <file>'."))
		b.WriteString("\n")
		return
	}

	for i := range a.documents {
		line := fmt.Sprintf("%s  (granularity %d, %s)",
			a.documents[i].Title, a.documents[i].Granularity, a.documents[i].State)
		a.writeListLine(b, line, i == a.selectedDoc)
	}
}

func (a *App) renderTopics(b *strings.Builder) {
	doc := a.documents[a.selectedDoc]
	b.WriteString(a.styles.Title.Render("Topics"))
	b.WriteString(a.styles.Muted.Render("  " + doc.Title))
	b.WriteString("\n\n")

	if len(a.topics) == 0 {
		b.WriteString(a.styles.Muted.Render("No topics yet."))
		b.WriteString("\n")
		return
	}

	for i := range a.topics {
		mark := "  "
		if a.topics[i].HasCurrentNote {
			mark = "* "
		}
		line := mark + a.topics[i].Name
		if a.topics[i].Description != "" {
			line += a.styles.Muted.Render("  " + a.topics[i].Description)
		}
		a.writeListLine(b, line, i == a.selectedTopic)
	}
}

func (a *App) renderNote(b *strings.Builder) {
	b.WriteString(a.styles.Title.Render(a.note.TopicName))
	if a.note.Stale {
		b.WriteString("  ")
		b.WriteString(a.styles.Badge.Render("STALE"))
	}
	if a.note.Partial {
		b.WriteString("  ")
		b.WriteString(a.styles.Badge.Render("PARTIAL"))
	}
	b.WriteString("\n\n")
	b.WriteString(a.viewer.View())
}

func (a *App) writeListLine(b *strings.Builder, line string, selected bool) {
	if selected {
		b.WriteString(a.styles.Selected.Render("> " + line))
	} else {
		b.WriteString(a.styles.Normal.Render("  " + line))
	}
	b.WriteString("\n")
}

func (a *App) helpLine() string {
	switch a.state {
	case viewNote:
		return "↑/↓ scroll · esc back · q quit"
	case viewTopics:
		return "↑/k ↓/j navigate · enter view note · r reload · esc back · q quit"
	default:
		return "↑/k ↓/j navigate · enter open · r reload · q quit"
	}
}

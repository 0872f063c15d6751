package driven

import (
	"context"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
)

// DocumentStore persists documents together with their topic graph state.
// Saves are all-or-nothing per call: a partially-applied topic set must
// never become visible to a later load.
type DocumentStore interface {
	// SaveDocument stores or updates a document record.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document and cascades to its graph state,
	// notes, and chat log.
	DeleteDocument(ctx context.Context, id string) error

	// SaveGraph atomically replaces the persisted graph state for a
	// document: live topics in order, tombstones, and hyperlink edges.
	SaveGraph(ctx context.Context, documentID string, state *GraphState) error

	// GetGraph retrieves the persisted graph state for a document.
	// Returns an empty state, not an error, when nothing was saved yet.
	GetGraph(ctx context.Context, documentID string) (*GraphState, error)
}

// GraphState is the persisted form of a document's topic graph.
type GraphState struct {
	// Topics is the live topic set in insertion order.
	Topics []domain.Topic

	// Tombstones maps absorbed topic keys to their absorbing key.
	Tombstones map[string]string

	// Edges is the document's hyperlink edge table.
	Edges []domain.HyperlinkEdge

	// Unassigned lists content ranges no live topic owns.
	Unassigned []domain.Span
}

// NoteStore persists notes. Notes for absorbed topics are retained for
// audit but flagged stale; only one note per (topic, format) is current.
type NoteStore interface {
	// SaveNote stores or updates a note.
	SaveNote(ctx context.Context, note *domain.Note) error

	// GetNote retrieves the note for a topic in a format.
	GetNote(ctx context.Context, documentID, topicKey string, format domain.NoteFormat) (*domain.Note, error)

	// ListNotes returns all notes for a document.
	ListNotes(ctx context.Context, documentID string) ([]domain.Note, error)

	// DeleteNotes removes all notes for a document.
	DeleteNotes(ctx context.Context, documentID string) error
}

// ChatStore persists revision chat turns. The log is append-only.
type ChatStore interface {
	// AppendTurn appends a chat turn to the log.
	AppendTurn(ctx context.Context, turn *domain.ChatTurn) error

	// ListTurns returns the turns for a topic in append order.
	ListTurns(ctx context.Context, documentID, topicKey string) ([]domain.ChatTurn, error)

	// DeleteTurns removes all turns for a document.
	DeleteTurns(ctx context.Context, documentID string) error
}

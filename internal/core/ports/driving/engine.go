package driving

import (
	"context"
	"time"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
)

// NotesEngine is the application's primary driving port: every surface
// (CLI, TUI, MCP) talks to the topic graph engine through it.
//
// Mutating operations on one document are serialised; a second mutation
// while one is in flight fails with domain.ErrDocumentBusy. Reads observe
// a consistent snapshot, never a half-applied merge.
type NotesEngine interface {
	// CreateDocument ingests extracted content, segments it at the default
	// granularity, and returns the new document with its topics. mediaRefs
	// and imagePaths carry the extractor's media streams and local image
	// candidates; images are analysed during note generation.
	CreateDocument(ctx context.Context, title, content string, mediaRefs, imagePaths []string) (*DocumentResult, error)

	// GetDocument returns one document.
	GetDocument(ctx context.Context, documentID string) (*domain.Document, error)

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// SetGranularity updates the granularity and re-segments the document.
	// Existing notes become stale; they are retained, not deleted.
	SetGranularity(ctx context.Context, documentID string, granularity int) (*DocumentResult, error)

	// ListTopics returns the live topics in stable insertion order.
	ListTopics(ctx context.Context, documentID string) ([]TopicView, error)

	// MergeTopics merges two or more live topics into a fresh one.
	MergeTopics(ctx context.Context, documentID string, topicKeys []string) (*TopicView, error)

	// GenerateNotes synthesises notes for every live topic that does not
	// already have a current note in the requested format. Non-critical
	// collaborator failures downgrade individual notes to partial.
	GenerateNotes(ctx context.Context, documentID string, opts GenerateOptions) (*GenerateResult, error)

	// GetNote returns the current note for a topic, flagging staleness.
	GetNote(ctx context.Context, documentID, topicKey string, format domain.NoteFormat) (*NoteView, error)

	// ReviseNote applies a free-form instruction to one note through a
	// revision session. Only that note changes.
	ReviseNote(ctx context.Context, documentID, topicKey, instruction string) (*NoteView, error)

	// GetChatLog returns the revision chat turns for a topic in order.
	GetChatLog(ctx context.Context, documentID, topicKey string) ([]domain.ChatTurn, error)

	// ExportAll returns every current note for a document plus, for
	// markdown, a table-of-contents index note.
	ExportAll(ctx context.Context, documentID string, format domain.NoteFormat) ([]ExportedNote, error)

	// DeleteDocument removes a document and everything it owns.
	DeleteDocument(ctx context.Context, documentID string) error
}

// DocumentResult is the outcome of an operation that (re)segments.
type DocumentResult struct {
	// Document is the updated document.
	Document domain.Document

	// Topics is the live topic set in order.
	Topics []TopicView

	// Reduced is true when segmentation returned fewer topics than the
	// granularity hint asked for.
	Reduced bool
}

// TopicView is a read model of one live topic.
type TopicView struct {
	// Key is the topic key.
	Key string

	// Name is the topic name.
	Name string

	// Description is the one-line summary.
	Description string

	// Version is the current topic version.
	Version int

	// SpanCount is the number of owned spans.
	SpanCount int

	// SpanTextLen is the total owned text length.
	SpanTextLen int

	// HasCurrentNote is true when a non-stale note exists in any format.
	HasCurrentNote bool
}

// GenerateOptions configures a note generation pass.
type GenerateOptions struct {
	// Format is the output format. Zero value uses the configured default.
	Format domain.NoteFormat

	// ProcessImages enables image analysis for topics with image refs.
	ProcessImages bool

	// TopicKeys restricts generation to these topics. Empty means all.
	TopicKeys []string
}

// GenerateResult summarises a generation pass.
type GenerateResult struct {
	// Notes are the notes now current for the pass's topics.
	Notes []NoteView

	// Reused counts topics whose existing current note was kept.
	Reused int

	// Partial counts notes downgraded by non-critical failures.
	Partial int

	// Failed maps topic keys to the error message that stopped their note.
	Failed map[string]string
}

// NoteView is a read model of one note.
type NoteView struct {
	// TopicKey is the owning topic.
	TopicKey string

	// TopicName is the owning topic's name.
	TopicName string

	// Format is the rendered format.
	Format domain.NoteFormat

	// Rendered is the rendered output.
	Rendered string

	// Revision is the note's revision counter.
	Revision int

	// Partial flags degraded synthesis.
	Partial bool

	// Stale is true when the topic's version has advanced past the note's.
	Stale bool

	// Links are the outbound hyperlink edges.
	Links []domain.HyperlinkEdge

	// GeneratedAt is when the content was last produced.
	GeneratedAt time.Time
}

// ExportedNote is one file of an export.
type ExportedNote struct {
	// Filename is the suggested file name for the note.
	Filename string

	// TopicName is the topic the note belongs to. Empty for the index.
	TopicName string

	// Content is the rendered note.
	Content string
}

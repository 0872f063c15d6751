package domain

import "time"

// ChatRole identifies the sender of a chat turn.
type ChatRole string

// Chat roles.
const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatTurn is one exchange in a revision session. Turns are append-only and
// ordered; they record the note revision they were applied against so the
// conversation can be replayed against history.
type ChatTurn struct {
	// ID is the unique identifier for the turn.
	ID string

	// DocumentID links to the owning document.
	DocumentID string

	// TopicKey scopes the turn to the note being revised.
	TopicKey string

	// Role is the sender.
	Role ChatRole

	// Content is the message text.
	Content string

	// NoteRevision is the note revision this turn was applied against.
	NoteRevision int

	// IsError marks assistant turns that report a collaborator failure
	// rather than a revision result.
	IsError bool

	// CreatedAt is when the turn was recorded.
	CreatedAt time.Time
}

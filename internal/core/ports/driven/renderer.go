package driven

import "github.com/notegraph-labs/notegraph-cli/internal/core/domain"

// Renderer turns a structured note body into a string in one output format.
// Each renderer handles exactly one format.
type Renderer interface {
	// Format returns the format this renderer produces.
	Format() domain.NoteFormat

	// Render produces the output string for the note body.
	// Hyperlink anchors in the body are rendered as format-appropriate
	// links to the target topic's note file.
	Render(body *domain.NoteBody, nameFor func(topicKey string) string) (string, error)
}

// RendererRegistry selects a renderer for a requested format.
type RendererRegistry interface {
	// Get returns the renderer for the format, or ErrUnsupportedFormat.
	Get(format domain.NoteFormat) (Renderer, error)

	// Formats lists the registered formats.
	Formats() []domain.NoteFormat
}

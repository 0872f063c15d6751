package renderers

import (
	"fmt"
	"strings"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
)

// Ensure Markdown implements the interface.
var _ driven.Renderer = (*Markdown)(nil)

// Markdown renders notes as Markdown files with `[name](file.md)` links
// between related topics.
type Markdown struct{}

// NewMarkdown creates a Markdown renderer.
func NewMarkdown() *Markdown {
	return &Markdown{}
}

// Format returns the format this renderer produces.
func (r *Markdown) Format() domain.NoteFormat {
	return domain.FormatMarkdown
}

// Render produces the Markdown output for the note body.
func (r *Markdown) Render(body *domain.NoteBody, nameFor func(string) string) (string, error) {
	if body == nil {
		return "", domain.ErrInvalidInput
	}
	content := composeMarkdown(body)
	for _, a := range linkAnchors(body, nameFor) {
		target := fmt.Sprintf("[%s](%s%s)", a.name, domain.FileSafeName(a.name), domain.FormatMarkdown.Extension())
		content = replaceUnlinked(content, a.name, target, markdownLinked)
	}
	return content, nil
}

// markdownLinked reports whether the occurrence is already link text or a
// link target.
func markdownLinked(before, after string) bool {
	return strings.HasSuffix(before, "[") ||
		strings.HasSuffix(before, "](") ||
		strings.HasPrefix(after, "]")
}

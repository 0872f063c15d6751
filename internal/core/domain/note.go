package domain

import (
	"strings"
	"time"
)

// NoteFormat is the rendered output format of a note.
type NoteFormat string

// Supported note formats.
const (
	FormatMarkdown NoteFormat = "markdown"
	FormatLaTeX    NoteFormat = "latex"
	FormatHTML     NoteFormat = "html"
)

// IsValid returns true if the format is recognised.
func (f NoteFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatLaTeX, FormatHTML:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f NoteFormat) String() string {
	return string(f)
}

// ParseNoteFormat resolves a user-supplied format name, accepting the
// common short forms. Empty input returns the zero format so callers can
// substitute their configured default.
func ParseNoteFormat(s string) (NoteFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "latex", "tex":
		return FormatLaTeX, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Extension returns the file extension for the format, dot included.
func (f NoteFormat) Extension() string {
	switch f {
	case FormatLaTeX:
		return ".tex"
	case FormatHTML:
		return ".html"
	default:
		return ".md"
	}
}

// FileSafeName converts a topic name to a filesystem-safe base name, used
// both for exported note files and for cross-note link targets so the two
// always agree.
func FileSafeName(name string) string {
	return strings.NewReplacer(" ", "_", "/", "_", "\\", "_").Replace(name)
}

// SectionProvenance tags where a note section's content came from.
type SectionProvenance string

// Section provenance values.
const (
	// ProvenancePrimary marks content synthesised from the topic's own spans.
	ProvenancePrimary SectionProvenance = "primary"

	// ProvenanceEnrichment marks supplementary material from the enricher.
	ProvenanceEnrichment SectionProvenance = "enrichment"

	// ProvenanceImageAnalysis marks descriptions produced from images.
	ProvenanceImageAnalysis SectionProvenance = "image_analysis"
)

// Section is one structured block of a note body.
type Section struct {
	// Heading is the section heading. Empty for lead content.
	Heading string

	// Content is the section body text (markdown-ish prose).
	Content string

	// Provenance tags the content origin.
	Provenance SectionProvenance
}

// ImageRef is an image attached to a note with its analysed description.
type ImageRef struct {
	// Path locates the image relative to the document's asset folder.
	Path string

	// Description is the analyser's description, empty if analysis failed.
	Description string
}

// NoteBody is the structured content of a note before rendering.
type NoteBody struct {
	// Title is the note title, normally the topic name.
	Title string

	// Summary is the short topic summary used for hyperlink scoring.
	Summary string

	// Sections are the ordered content blocks.
	Sections []Section

	// Images are attached image references.
	Images []ImageRef

	// Links are outbound hyperlink targets computed at synthesis time.
	Links []HyperlinkEdge
}

// Note is the rendered artifact for exactly one topic at a given topic
// version. If the topic's version advances the note is stale and must be
// regenerated before being served as current.
type Note struct {
	// ID is the unique identifier for the note.
	ID string

	// DocumentID links to the owning document.
	DocumentID string

	// TopicKey links to the topic this note was generated for.
	TopicKey string

	// TopicVersion is the topic version the note was derived from.
	TopicVersion int

	// Body is the structured content.
	Body NoteBody

	// Rendered is the output of the renderer for Format.
	Rendered string

	// Format is the rendered output format.
	Format NoteFormat

	// Revision counts content revisions made by revision sessions.
	Revision int

	// Partial is true when a non-critical collaborator (enrichment, image
	// analysis) failed and the note was produced from primary content only.
	Partial bool

	// GeneratedAt is when the note content was last produced.
	GeneratedAt time.Time
}

// StaleAgainst reports whether the note is out of date for the given topic.
func (n *Note) StaleAgainst(t *Topic) bool {
	return n.TopicKey != t.Key || n.TopicVersion != t.Version
}

package domain

import "time"

// DocumentState describes where a document sits in its lifecycle.
type DocumentState string

// Document lifecycle states.
const (
	// StateUploaded means content was extracted but not yet segmented.
	StateUploaded DocumentState = "uploaded"

	// StateSegmented means the topic graph holds a live topic set.
	StateSegmented DocumentState = "segmented"

	// StateNotesGenerated means at least one generation pass completed.
	StateNotesGenerated DocumentState = "notes_generated"
)

// IsValid returns true if the state is recognised.
func (s DocumentState) IsValid() bool {
	switch s {
	case StateUploaded, StateSegmented, StateNotesGenerated:
		return true
	default:
		return false
	}
}

// DefaultGranularity is the starting granularity for new documents.
const DefaultGranularity = 50

// Document is one processed input: immutable extracted content plus the
// granularity setting that drives segmentation. Topics and notes are owned
// by the document and cascade on delete.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Title is the human-readable title, usually the source filename.
	Title string

	// Content is the extracted plain text. Immutable after creation.
	Content string

	// MediaRefs lists media streams (audio/video) referenced by spans.
	MediaRefs []string

	// ImagePaths lists local image files collected during extraction,
	// candidates for image analysis at note generation time.
	ImagePaths []string

	// Granularity is the topic resolution setting, 0-100.
	Granularity int

	// State is the lifecycle state.
	State DocumentState

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document last changed.
	UpdatedAt time.Time
}

// ContentLen returns the content length in runes, the unit spans are
// measured in.
func (d *Document) ContentLen() int {
	return len([]rune(d.Content))
}

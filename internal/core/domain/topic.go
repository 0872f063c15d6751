package domain

import "time"

// Topic is a named partition unit of a document's content. Its key is stable
// within the document; its version advances when span ownership changes
// (merges), invalidating notes bound to older versions.
type Topic struct {
	// Key is the unique identifier within the document. Never reused:
	// merges mint a fresh key rather than resurrecting an absorbed one.
	Key string

	// DocumentID links to the owning document.
	DocumentID string

	// Name is the human-readable topic name.
	Name string

	// Description is a one-line summary used in prompts and listings.
	Description string

	// Spans is the ordered set of source spans this topic owns.
	// Within one document, spans of distinct live topics never overlap.
	Spans []Span

	// Version increases monotonically on every span-ownership change.
	Version int

	// CreatedAt is when the topic first appeared (segmentation or merge).
	CreatedAt time.Time
}

// SpanTextLen returns the total text-stream length the topic owns.
func (t *Topic) SpanTextLen() int {
	return TotalSpanLen(t.Spans)
}

// TopicProposal is a segmentation candidate before it enters the graph.
// Proposals come from the language model and are validated before they are
// trusted: names must be non-empty and spans must partition cleanly.
type TopicProposal struct {
	// Name is the proposed topic name.
	Name string

	// Description is the proposed one-line summary.
	Description string

	// Spans is the proposed span ownership.
	Spans []Span
}

// SegmentationHint is the resolution target derived from granularity.
type SegmentationHint struct {
	// MinTopics is the floor the segmenter aims for. Falling below it is
	// reported as a reduced outcome, not an error.
	MinTopics int

	// MaxTopics is the ceiling. Monotonic in granularity.
	MaxTopics int

	// Guidance is prose describing the requested resolution, inserted into
	// the segmentation prompt.
	Guidance string
}

// SegmentationResult is the validated output of one segmentation run.
type SegmentationResult struct {
	// Proposals is the ordered topic set.
	Proposals []TopicProposal

	// Reduced is true when the content supported fewer topics than the
	// hint's floor. The proposals are still usable.
	Reduced bool
}

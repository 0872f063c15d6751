package domain

import "sort"

// TextStream is the stream name for spans over the extracted plain text.
// Media spans (audio/video timestamps) carry their media reference instead.
const TextStream = ""

// Span is a half-open range [Start, End) over one content stream.
// For text content the bounds are character offsets into the document's
// extracted text; for media content they are millisecond timestamps and
// Stream names the media reference.
type Span struct {
	// Start is the inclusive start offset.
	Start int

	// End is the exclusive end offset.
	End int

	// Stream identifies the content stream. Empty for the document text.
	Stream string
}

// Len returns the number of units the span covers.
func (s Span) Len() int {
	if s.End <= s.Start {
		return 0
	}
	return s.End - s.Start
}

// Valid returns true if the span is non-empty with sane bounds.
func (s Span) Valid() bool {
	return s.Start >= 0 && s.End > s.Start
}

// Overlaps returns true if the spans share any offset on the same stream.
func (s Span) Overlaps(other Span) bool {
	if s.Stream != other.Stream {
		return false
	}
	return s.Start < other.End && other.Start < s.End
}

// SortSpans orders spans by stream, then start, then end, in place.
func SortSpans(spans []Span) {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Stream != spans[j].Stream {
			return spans[i].Stream < spans[j].Stream
		}
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End < spans[j].End
	})
}

// FindOverlap returns the first overlapping pair in spans, or nil.
// The input is not modified.
func FindOverlap(spans []Span) *[2]Span {
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	SortSpans(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Overlaps(sorted[i-1]) {
			pair := [2]Span{sorted[i-1], sorted[i]}
			return &pair
		}
	}
	return nil
}

// TotalSpanLen sums the lengths of all text-stream spans.
func TotalSpanLen(spans []Span) int {
	total := 0
	for _, s := range spans {
		if s.Stream == TextStream {
			total += s.Len()
		}
	}
	return total
}

// TextGaps returns the sub-ranges of [0, contentLen) on the text stream not
// covered by any span. Used to tag unassigned content after segmentation.
func TextGaps(spans []Span, contentLen int) []Span {
	var text []Span
	for _, s := range spans {
		if s.Stream == TextStream && s.Valid() {
			text = append(text, s)
		}
	}
	SortSpans(text)

	var gaps []Span
	cursor := 0
	for _, s := range text {
		if s.Start > cursor {
			gaps = append(gaps, Span{Start: cursor, End: s.Start})
		}
		if s.End > cursor {
			cursor = s.End
		}
	}
	if cursor < contentLen {
		gaps = append(gaps, Span{Start: cursor, End: contentLen})
	}
	return gaps
}

// UnionSpans merges the given span sets into one sorted slice.
// Spans remain individually tracked; adjacent or duplicate spans are not
// coalesced, so a merged topic retains the exact spans of its sources.
func UnionSpans(sets ...[]Span) []Span {
	var union []Span
	for _, set := range sets {
		union = append(union, set...)
	}
	SortSpans(union)
	return union
}

// SliceText extracts and concatenates the text-stream span contents from
// content. Out-of-range bounds are clamped rather than panicking, since span
// proposals come from an external model.
func SliceText(content string, spans []Span) string {
	sorted := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Stream == TextStream && s.Valid() {
			sorted = append(sorted, s)
		}
	}
	SortSpans(sorted)

	runes := []rune(content)
	out := make([]rune, 0, len(runes))
	for i, s := range sorted {
		start, end := s.Start, s.End
		if start > len(runes) {
			start = len(runes)
		}
		if end > len(runes) {
			end = len(runes)
		}
		if i > 0 && len(out) > 0 {
			out = append(out, '\n', '\n')
		}
		out = append(out, runes[start:end]...)
	}
	return string(out)
}

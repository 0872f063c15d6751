package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpan_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want bool
	}{
		{"disjoint", Span{Start: 0, End: 10}, Span{Start: 10, End: 20}, false},
		{"touching half-open", Span{Start: 0, End: 10}, Span{Start: 9, End: 20}, true},
		{"contained", Span{Start: 0, End: 100}, Span{Start: 20, End: 30}, true},
		{"identical", Span{Start: 5, End: 15}, Span{Start: 5, End: 15}, true},
		{"different streams", Span{Start: 0, End: 10}, Span{Start: 0, End: 10, Stream: "audio-1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestFindOverlap_Disjoint(t *testing.T) {
	spans := []Span{
		{Start: 260, End: 400},
		{Start: 0, End: 120},
		{Start: 120, End: 260},
	}
	assert.Nil(t, FindOverlap(spans))
}

func TestFindOverlap_Overlapping(t *testing.T) {
	spans := []Span{
		{Start: 0, End: 150},
		{Start: 120, End: 260},
	}
	pair := FindOverlap(spans)
	require.NotNil(t, pair)
	assert.Equal(t, Span{Start: 0, End: 150}, pair[0])
	assert.Equal(t, Span{Start: 120, End: 260}, pair[1])
}

func TestTextGaps(t *testing.T) {
	spans := []Span{
		{Start: 120, End: 260},
		{Start: 0, End: 100},
	}
	gaps := TextGaps(spans, 400)
	assert.Equal(t, []Span{
		{Start: 100, End: 120},
		{Start: 260, End: 400},
	}, gaps)
}

func TestTextGaps_FullCoverage(t *testing.T) {
	spans := []Span{
		{Start: 0, End: 120},
		{Start: 120, End: 260},
		{Start: 260, End: 400},
	}
	assert.Empty(t, TextGaps(spans, 400))
}

func TestTextGaps_IgnoresMediaStreams(t *testing.T) {
	spans := []Span{
		{Start: 0, End: 400},
		{Start: 0, End: 9000, Stream: "audio-1"},
	}
	assert.Empty(t, TextGaps(spans, 400))
}

func TestUnionSpans_RetainsIndividualSpans(t *testing.T) {
	a := []Span{{Start: 120, End: 260}}
	b := []Span{{Start: 0, End: 120}}

	union := UnionSpans(a, b)
	require.Len(t, union, 2)
	assert.Equal(t, Span{Start: 0, End: 120}, union[0])
	assert.Equal(t, Span{Start: 120, End: 260}, union[1])
}

func TestSliceText(t *testing.T) {
	content := "alpha beta gamma"

	got := SliceText(content, []Span{
		{Start: 11, End: 16},
		{Start: 0, End: 5},
	})
	assert.Equal(t, "alpha\n\ngamma", got)
}

func TestSliceText_ClampsOutOfRange(t *testing.T) {
	got := SliceText("short", []Span{{Start: 2, End: 500}})
	assert.Equal(t, "ort", got)
}

func TestTotalSpanLen(t *testing.T) {
	spans := []Span{
		{Start: 0, End: 120},
		{Start: 120, End: 260},
		{Start: 0, End: 5000, Stream: "video-2"},
	}
	assert.Equal(t, 260, TotalSpanLen(spans))
}

package renderers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
)

func TestComposeMarkdown_FullBody(t *testing.T) {
	body := &domain.NoteBody{
		Title:   "Mitosis",
		Summary: "Division of a somatic cell into two daughters.",
		Sections: []domain.Section{
			{Heading: "Phases", Content: "- Prophase\n- Metaphase", Provenance: domain.ProvenancePrimary},
			{Heading: "Background", Content: "Chromatin condenses first.", Provenance: domain.ProvenanceEnrichment},
		},
		Images: []domain.ImageRef{
			{Path: "assets/spindle.png", Description: "Spindle apparatus"},
			{Path: "assets/plate.png"},
		},
	}

	out := composeMarkdown(body)

	assert.Contains(t, out, "# Mitosis\n")
	assert.Contains(t, out, "\nDivision of a somatic cell into two daughters.\n")
	assert.Contains(t, out, "\n## Phases\n")
	assert.Contains(t, out, "- Prophase\n- Metaphase")
	assert.Contains(t, out, "\n## Background\n")
	assert.Contains(t, out, "\n## Figures\n")
	assert.Contains(t, out, "![Spindle apparatus](assets/spindle.png)")
	// Images without a description fall back to the file name.
	assert.Contains(t, out, "![plate.png](assets/plate.png)")
}

func TestComposeMarkdown_OmitsEmptyParts(t *testing.T) {
	body := &domain.NoteBody{
		Title:    "Meiosis",
		Sections: []domain.Section{{Content: "Two divisions, four gametes."}},
	}

	out := composeMarkdown(body)

	assert.Equal(t, "# Meiosis\n\nTwo divisions, four gametes.\n", out)
	assert.NotContains(t, out, "## Figures")
}

func TestLinkAnchors_FallbackShortAndDuplicate(t *testing.T) {
	body := &domain.NoteBody{
		Links: []domain.HyperlinkEdge{
			{Source: "t1", Target: "t2", Anchor: "Interphase", Score: 0.5},
			{Source: "t1", Target: "t3", Score: 0.4},
			{Source: "t1", Target: "t4", Anchor: "ATP", Score: 0.3},
			{Source: "t1", Target: "t5", Anchor: "Interphase", Score: 0.2},
		},
	}
	nameFor := func(key string) string {
		require.Equal(t, "t2", key, "only the missing anchor should be resolved")
		return "Cell Cycle"
	}

	anchors := linkAnchors(body, nameFor)

	require.Len(t, anchors, 2)
	// Longest name first so nested names link the more specific topic.
	assert.Equal(t, "Interphase", anchors[0].name)
	assert.Equal(t, "t2", anchors[1].key)
	assert.Equal(t, "Cell Cycle", anchors[1].name)
}

func TestLinkAnchors_LongestFirst(t *testing.T) {
	body := &domain.NoteBody{
		Links: []domain.HyperlinkEdge{
			{Source: "t1", Target: "t2", Anchor: "Cell"},
			{Source: "t1", Target: "t3", Anchor: "Cell Structure"},
		},
	}

	anchors := linkAnchors(body, func(string) string { return "" })

	require.Len(t, anchors, 2)
	assert.Equal(t, "Cell Structure", anchors[0].name)
	assert.Equal(t, "Cell", anchors[1].name)
}

func TestReplaceUnlinked(t *testing.T) {
	linked := func(before, after string) bool {
		return len(before) > 0 && before[len(before)-1] == '['
	}

	t.Run("replaces unguarded occurrences", func(t *testing.T) {
		out := replaceUnlinked("Mitosis then more Mitosis", "Mitosis", "[Mitosis](Mitosis.md)", linked)
		assert.Equal(t, "[Mitosis](Mitosis.md) then more [Mitosis](Mitosis.md)", out)
	})

	t.Run("skips guarded occurrences", func(t *testing.T) {
		out := replaceUnlinked("[Mitosis](x.md) and Mitosis", "Mitosis", "LINK", linked)
		assert.Equal(t, "[Mitosis](x.md) and LINK", out)
	})

	t.Run("replacement containing the name does not loop", func(t *testing.T) {
		out := replaceUnlinked("Mitosis", "Mitosis", "Mitosis Mitosis", nil)
		assert.Equal(t, "Mitosis Mitosis", out)
	})

	t.Run("absent name leaves content untouched", func(t *testing.T) {
		out := replaceUnlinked("nothing here", "Mitosis", "LINK", linked)
		assert.Equal(t, "nothing here", out)
	})
}

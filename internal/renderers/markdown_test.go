package renderers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
)

func TestMarkdown_Render(t *testing.T) {
	r := NewMarkdown()
	assert.Equal(t, domain.FormatMarkdown, r.Format())

	body := &domain.NoteBody{
		Title:   "Mitosis",
		Summary: "Somatic cells divide after Interphase completes.",
		Sections: []domain.Section{
			{Heading: "Phases", Content: "Prophase precedes Metaphase."},
		},
		Links: []domain.HyperlinkEdge{
			{Source: "t1", Target: "t2", Anchor: "Interphase", Score: 0.5},
		},
	}

	out, err := r.Render(body, func(string) string { return "" })
	require.NoError(t, err)

	assert.Contains(t, out, "# Mitosis")
	assert.Contains(t, out, "[Interphase](Interphase.md)")
	assert.Contains(t, out, "## Phases")
}

func TestMarkdown_RenderDoesNotRelinkExistingLinks(t *testing.T) {
	body := &domain.NoteBody{
		Title: "Meiosis",
		Sections: []domain.Section{
			{Content: "See [Interphase](Interphase.md) and Interphase."},
		},
		Links: []domain.HyperlinkEdge{
			{Source: "t1", Target: "t2", Anchor: "Interphase"},
		},
	}

	out, err := NewMarkdown().Render(body, func(string) string { return "" })
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, "[Interphase](Interphase.md)"))
	assert.Equal(t, 0, strings.Count(out, "[[Interphase]"))
}

func TestMarkdown_RenderNestedNamesLinkMostSpecific(t *testing.T) {
	body := &domain.NoteBody{
		Title: "Biology",
		Sections: []domain.Section{
			{Content: "Cell Structure and the Cell wall."},
		},
		Links: []domain.HyperlinkEdge{
			{Source: "t1", Target: "t2", Anchor: "Cell"},
			{Source: "t1", Target: "t3", Anchor: "Cell Structure"},
		},
	}

	out, err := NewMarkdown().Render(body, func(string) string { return "" })
	require.NoError(t, err)

	assert.Contains(t, out, "[Cell Structure](Cell_Structure.md) and the [Cell](Cell.md) wall.")
}

func TestMarkdown_RenderNilBody(t *testing.T) {
	_, err := NewMarkdown().Render(nil, func(string) string { return "" })
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
)

func TestNoteStore_SaveAndGet(t *testing.T) {
	store := NewNoteStore()
	ctx := context.Background()

	note := &domain.Note{
		ID:           "n1",
		DocumentID:   "doc-1",
		TopicKey:     "t1",
		TopicVersion: 1,
		Format:       domain.FormatMarkdown,
		Rendered:     "# Mitosis\n",
	}
	require.NoError(t, store.SaveNote(ctx, note))

	saved, err := store.GetNote(ctx, "doc-1", "t1", domain.FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "n1", saved.ID)
	assert.Equal(t, "# Mitosis\n", saved.Rendered)
}

func TestNoteStore_GetNote_NotFound(t *testing.T) {
	store := NewNoteStore()

	_, err := store.GetNote(context.Background(), "doc-1", "t1", domain.FormatMarkdown)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNoteStore_OneNotePerTopicAndFormat(t *testing.T) {
	store := NewNoteStore()
	ctx := context.Background()

	require.NoError(t, store.SaveNote(ctx, &domain.Note{
		ID: "n1", DocumentID: "doc-1", TopicKey: "t1", Format: domain.FormatMarkdown, Revision: 0,
	}))
	require.NoError(t, store.SaveNote(ctx, &domain.Note{
		ID: "n1", DocumentID: "doc-1", TopicKey: "t1", Format: domain.FormatMarkdown, Revision: 1,
	}))
	require.NoError(t, store.SaveNote(ctx, &domain.Note{
		ID: "n2", DocumentID: "doc-1", TopicKey: "t1", Format: domain.FormatLaTeX,
	}))

	md, err := store.GetNote(ctx, "doc-1", "t1", domain.FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, 1, md.Revision)

	notes, err := store.ListNotes(ctx, "doc-1")
	require.NoError(t, err)
	assert.Len(t, notes, 2)
}

func TestNoteStore_ListNotes_FiltersByDocument(t *testing.T) {
	store := NewNoteStore()
	ctx := context.Background()

	require.NoError(t, store.SaveNote(ctx, &domain.Note{ID: "a", DocumentID: "doc-1", TopicKey: "t1", Format: domain.FormatMarkdown}))
	require.NoError(t, store.SaveNote(ctx, &domain.Note{ID: "b", DocumentID: "doc-2", TopicKey: "t9", Format: domain.FormatMarkdown}))

	notes, err := store.ListNotes(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "a", notes[0].ID)
}

func TestNoteStore_DeleteNotes(t *testing.T) {
	store := NewNoteStore()
	ctx := context.Background()

	require.NoError(t, store.SaveNote(ctx, &domain.Note{ID: "a", DocumentID: "doc-1", TopicKey: "t1", Format: domain.FormatMarkdown}))
	require.NoError(t, store.SaveNote(ctx, &domain.Note{ID: "b", DocumentID: "doc-2", TopicKey: "t9", Format: domain.FormatMarkdown}))

	require.NoError(t, store.DeleteNotes(ctx, "doc-1"))

	_, err := store.GetNote(ctx, "doc-1", "t1", domain.FormatMarkdown)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	notes, err := store.ListNotes(ctx, "doc-2")
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

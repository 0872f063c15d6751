package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
)

func TestChatStore_AppendAndList(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	require.NoError(t, store.AppendTurn(ctx, &domain.ChatTurn{
		ID: "c1", DocumentID: "doc-1", TopicKey: "t1", Role: domain.RoleUser, Content: "shorter please",
	}))
	require.NoError(t, store.AppendTurn(ctx, &domain.ChatTurn{
		ID: "c2", DocumentID: "doc-1", TopicKey: "t1", Role: domain.RoleAssistant, Content: "done",
	}))
	require.NoError(t, store.AppendTurn(ctx, &domain.ChatTurn{
		ID: "c3", DocumentID: "doc-1", TopicKey: "t2", Role: domain.RoleUser, Content: "other topic",
	}))

	turns, err := store.ListTurns(ctx, "doc-1", "t1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "c1", turns[0].ID)
	assert.Equal(t, "c2", turns[1].ID)
	assert.Equal(t, domain.RoleAssistant, turns[1].Role)
}

func TestChatStore_ListTurns_Empty(t *testing.T) {
	store := NewChatStore()

	turns, err := store.ListTurns(context.Background(), "doc-1", "t1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestChatStore_DeleteTurns(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()

	require.NoError(t, store.AppendTurn(ctx, &domain.ChatTurn{ID: "c1", DocumentID: "doc-1", TopicKey: "t1"}))
	require.NoError(t, store.AppendTurn(ctx, &domain.ChatTurn{ID: "c2", DocumentID: "doc-2", TopicKey: "t1"}))

	require.NoError(t, store.DeleteTurns(ctx, "doc-1"))

	turns, err := store.ListTurns(ctx, "doc-1", "t1")
	require.NoError(t, err)
	assert.Empty(t, turns)

	other, err := store.ListTurns(ctx, "doc-2", "t1")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

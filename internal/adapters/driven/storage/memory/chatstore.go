package memory

import (
	"context"
	"sync"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
)

// Ensure ChatStore implements the interface.
var _ driven.ChatStore = (*ChatStore)(nil)

// ChatStore is an in-memory implementation of driven.ChatStore.
type ChatStore struct {
	mu    sync.RWMutex
	turns map[string][]domain.ChatTurn
}

// NewChatStore creates a new in-memory chat store.
func NewChatStore() *ChatStore {
	return &ChatStore{turns: make(map[string][]domain.ChatTurn)}
}

// AppendTurn appends a turn to the document's log.
func (s *ChatStore) AppendTurn(_ context.Context, turn *domain.ChatTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns[turn.DocumentID] = append(s.turns[turn.DocumentID], *turn)
	return nil
}

// ListTurns returns the turns for a topic in append order.
func (s *ChatStore) ListTurns(_ context.Context, documentID, topicKey string) ([]domain.ChatTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.ChatTurn
	for _, turn := range s.turns[documentID] {
		if turn.TopicKey == topicKey {
			result = append(result, turn)
		}
	}
	return result, nil
}

// DeleteTurns removes all turns for a document.
func (s *ChatStore) DeleteTurns(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, documentID)
	return nil
}

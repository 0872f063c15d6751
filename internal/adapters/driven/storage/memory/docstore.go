package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	graphs    map[string]driven.GraphState
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		graphs:    make(map[string]driven.GraphState),
	}
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns all documents, newest first.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Document, 0, len(s.documents))
	for id := range s.documents {
		result = append(result, s.documents[id])
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteDocument removes a document and its graph state.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	delete(s.graphs, id)
	return nil
}

// SaveGraph replaces the graph state for a document.
func (s *DocumentStore) SaveGraph(_ context.Context, documentID string, state *driven.GraphState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[documentID] = copyGraphState(state)
	return nil
}

// GetGraph retrieves the graph state for a document. Returns an empty
// state when nothing was saved yet.
func (s *DocumentStore) GetGraph(_ context.Context, documentID string) (*driven.GraphState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.graphs[documentID]
	if !ok {
		return &driven.GraphState{Tombstones: make(map[string]string)}, nil
	}
	out := copyGraphState(&state)
	return &out, nil
}

// copyGraphState deep-copies so callers cannot mutate stored state.
func copyGraphState(state *driven.GraphState) driven.GraphState {
	out := driven.GraphState{
		Topics:     make([]domain.Topic, len(state.Topics)),
		Tombstones: make(map[string]string, len(state.Tombstones)),
		Edges:      append([]domain.HyperlinkEdge(nil), state.Edges...),
		Unassigned: append([]domain.Span(nil), state.Unassigned...),
	}
	for i, t := range state.Topics {
		t.Spans = append([]domain.Span(nil), t.Spans...)
		out.Topics[i] = t
	}
	for k, v := range state.Tombstones {
		out.Tombstones[k] = v
	}
	return out
}

package memory

import (
	"context"
	"sync"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
)

// Ensure NoteStore implements the interface.
var _ driven.NoteStore = (*NoteStore)(nil)

// noteKey identifies the current note slot for a topic and format.
type noteKey struct {
	documentID string
	topicKey   string
	format     domain.NoteFormat
}

// NoteStore is an in-memory implementation of driven.NoteStore.
type NoteStore struct {
	mu    sync.RWMutex
	notes map[noteKey]domain.Note
	order []noteKey
}

// NewNoteStore creates a new in-memory note store.
func NewNoteStore() *NoteStore {
	return &NoteStore{notes: make(map[noteKey]domain.Note)}
}

// SaveNote stores or updates the note for its (topic, format) slot.
func (s *NoteStore) SaveNote(_ context.Context, note *domain.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := noteKey{documentID: note.DocumentID, topicKey: note.TopicKey, format: note.Format}
	if _, ok := s.notes[key]; !ok {
		s.order = append(s.order, key)
	}
	s.notes[key] = *note
	return nil
}

// GetNote retrieves the note for a topic in a format.
func (s *NoteStore) GetNote(_ context.Context, documentID, topicKey string, format domain.NoteFormat) (*domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	note, ok := s.notes[noteKey{documentID: documentID, topicKey: topicKey, format: format}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &note, nil
}

// ListNotes returns all notes for a document in save order.
func (s *NoteStore) ListNotes(_ context.Context, documentID string) ([]domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Note
	for _, key := range s.order {
		if key.documentID != documentID {
			continue
		}
		if note, ok := s.notes[key]; ok {
			result = append(result, note)
		}
	}
	return result, nil
}

// DeleteNotes removes all notes for a document.
func (s *NoteStore) DeleteNotes(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.order[:0]
	for _, key := range s.order {
		if key.documentID == documentID {
			delete(s.notes, key)
			continue
		}
		kept = append(kept, key)
	}
	s.order = kept
	return nil
}

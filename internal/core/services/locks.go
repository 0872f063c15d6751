package services

import (
	"sync"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
)

// documentLocks serialises mutating operations per document. Reads share the
// lock; a mutation attempted while another is in flight fails fast with
// ErrDocumentBusy instead of queueing, so callers can surface a retry hint.
// Operations on different documents are fully independent.
type documentLocks struct {
	mu    sync.Mutex
	locks map[string]*docLock
}

type docLock struct {
	rw sync.RWMutex
	// writing tracks an in-flight mutation; guarded by rw's writer side
	// being unavailable is not observable, so we track it explicitly.
	writingMu sync.Mutex
	writing   bool
}

func newDocumentLocks() *documentLocks {
	return &documentLocks{locks: make(map[string]*docLock)}
}

func (l *documentLocks) get(documentID string) *docLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	dl, ok := l.locks[documentID]
	if !ok {
		dl = &docLock{}
		l.locks[documentID] = dl
	}
	return dl
}

// acquireWrite takes the exclusive section for a document. Returns a release
// function, or ErrDocumentBusy if a mutation is already in flight.
func (l *documentLocks) acquireWrite(documentID string) (func(), error) {
	dl := l.get(documentID)

	dl.writingMu.Lock()
	if dl.writing {
		dl.writingMu.Unlock()
		return nil, domain.ErrDocumentBusy
	}
	dl.writing = true
	dl.writingMu.Unlock()

	// Waits for in-flight readers to drain; new mutations are already
	// rejected above, so this cannot deadlock against another writer.
	dl.rw.Lock()

	return func() {
		dl.rw.Unlock()
		dl.writingMu.Lock()
		dl.writing = false
		dl.writingMu.Unlock()
	}, nil
}

// acquireRead takes a shared section for a document. Readers block briefly
// behind an in-flight mutation so they always observe a consistent snapshot.
func (l *documentLocks) acquireRead(documentID string) func() {
	dl := l.get(documentID)
	dl.rw.RLock()
	return dl.rw.RUnlock
}

// drop forgets the lock for a deleted document.
func (l *documentLocks) drop(documentID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, documentID)
}

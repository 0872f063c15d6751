package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/notegraph-labs/notegraph-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all persistence store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.notegraph/data/notes.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".notegraph", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "notes.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// NoteStore returns a NoteStore interface backed by this store.
func (s *Store) NoteStore() driven.NoteStore {
	return &noteStore{store: s}
}

// ChatStore returns a ChatStore interface backed by this store.
func (s *Store) ChatStore() driven.ChatStore {
	return &chatStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	mediaJSON, err := json.Marshal(doc.MediaRefs)
	if err != nil {
		return fmt.Errorf("marshalling media refs: %w", err)
	}
	imagesJSON, err := json.Marshal(doc.ImagePaths)
	if err != nil {
		return fmt.Errorf("marshalling image paths: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, content, media_refs, image_paths, granularity, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			media_refs = excluded.media_refs,
			image_paths = excluded.image_paths,
			granularity = excluded.granularity,
			state = excluded.state,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Title, doc.Content, string(mediaJSON), string(imagesJSON), doc.Granularity,
		string(doc.State), doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, content, media_refs, image_paths, granularity, state, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row.Scan)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

// ListDocuments returns all documents, newest first.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, content, media_refs, image_paths, granularity, state, created_at, updated_at
		FROM documents ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// DeleteDocument removes a document. Foreign keys cascade to its graph
// state, notes, and chat log.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// SaveGraph atomically replaces a document's persisted graph state.
func (s *documentStore) SaveGraph(ctx context.Context, documentID string, state *driven.GraphState) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"topics", "tombstones", "edges", "unassigned"} {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM "+table+" WHERE document_id = ?", documentID); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for i, topic := range state.Topics {
		spansJSON, err := json.Marshal(topic.Spans)
		if err != nil {
			return fmt.Errorf("marshalling spans: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO topics (document_id, key, name, description, spans, version, position, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, documentID, topic.Key, topic.Name, topic.Description,
			string(spansJSON), topic.Version, i, topic.CreatedAt); err != nil {
			return fmt.Errorf("saving topic: %w", err)
		}
	}

	for absorbed, by := range state.Tombstones {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tombstones (document_id, absorbed_key, absorbed_by)
			VALUES (?, ?, ?)
		`, documentID, absorbed, by); err != nil {
			return fmt.Errorf("saving tombstone: %w", err)
		}
	}

	for i, edge := range state.Edges {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO edges (document_id, position, source, target, anchor, score)
			VALUES (?, ?, ?, ?, ?, ?)
		`, documentID, i, edge.Source, edge.Target, edge.Anchor, edge.Score); err != nil {
			return fmt.Errorf("saving edge: %w", err)
		}
	}

	for i, span := range state.Unassigned {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO unassigned (document_id, position, span_start, span_end, stream)
			VALUES (?, ?, ?, ?, ?)
		`, documentID, i, span.Start, span.End, span.Stream); err != nil {
			return fmt.Errorf("saving unassigned span: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetGraph retrieves a document's persisted graph state. Returns an empty
// state when nothing was saved yet.
func (s *documentStore) GetGraph(ctx context.Context, documentID string) (*driven.GraphState, error) {
	state := &driven.GraphState{Tombstones: make(map[string]string)}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT key, name, description, spans, version, created_at
		FROM topics WHERE document_id = ? ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying topics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		topic := domain.Topic{DocumentID: documentID}
		var spansJSON string
		if err := rows.Scan(&topic.Key, &topic.Name, &topic.Description,
			&spansJSON, &topic.Version, &topic.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning topic: %w", err)
		}
		if err := json.Unmarshal([]byte(spansJSON), &topic.Spans); err != nil {
			return nil, fmt.Errorf("unmarshalling spans: %w", err)
		}
		state.Topics = append(state.Topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating topics: %w", err)
	}

	tombRows, err := s.store.db.QueryContext(ctx, `
		SELECT absorbed_key, absorbed_by FROM tombstones WHERE document_id = ?
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying tombstones: %w", err)
	}
	defer tombRows.Close()

	for tombRows.Next() {
		var absorbed, by string
		if err := tombRows.Scan(&absorbed, &by); err != nil {
			return nil, fmt.Errorf("scanning tombstone: %w", err)
		}
		state.Tombstones[absorbed] = by
	}
	if err := tombRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tombstones: %w", err)
	}

	edgeRows, err := s.store.db.QueryContext(ctx, `
		SELECT source, target, anchor, score
		FROM edges WHERE document_id = ? ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var edge domain.HyperlinkEdge
		if err := edgeRows.Scan(&edge.Source, &edge.Target, &edge.Anchor, &edge.Score); err != nil {
			return nil, fmt.Errorf("scanning edge: %w", err)
		}
		state.Edges = append(state.Edges, edge)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating edges: %w", err)
	}

	spanRows, err := s.store.db.QueryContext(ctx, `
		SELECT span_start, span_end, stream
		FROM unassigned WHERE document_id = ? ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying unassigned spans: %w", err)
	}
	defer spanRows.Close()

	for spanRows.Next() {
		var span domain.Span
		if err := spanRows.Scan(&span.Start, &span.End, &span.Stream); err != nil {
			return nil, fmt.Errorf("scanning unassigned span: %w", err)
		}
		state.Unassigned = append(state.Unassigned, span)
	}
	if err := spanRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating unassigned spans: %w", err)
	}

	return state, nil
}

// ==================== Note Store ====================

// noteStore implements driven.NoteStore.
type noteStore struct {
	store *Store
}

var _ driven.NoteStore = (*noteStore)(nil)

// SaveNote stores or updates a note. One note per (document, topic, format).
func (s *noteStore) SaveNote(ctx context.Context, note *domain.Note) error {
	bodyJSON, err := json.Marshal(note.Body)
	if err != nil {
		return fmt.Errorf("marshalling note body: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO notes
			(id, document_id, topic_key, format, topic_version, body, rendered, revision, partial, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id, topic_key, format) DO UPDATE SET
			id = excluded.id,
			topic_version = excluded.topic_version,
			body = excluded.body,
			rendered = excluded.rendered,
			revision = excluded.revision,
			partial = excluded.partial,
			generated_at = excluded.generated_at
	`, note.ID, note.DocumentID, note.TopicKey, string(note.Format), note.TopicVersion,
		string(bodyJSON), note.Rendered, note.Revision, note.Partial, note.GeneratedAt)

	if err != nil {
		return fmt.Errorf("saving note: %w", err)
	}
	return nil
}

// GetNote retrieves the note for a topic in a format.
func (s *noteStore) GetNote(
	ctx context.Context,
	documentID, topicKey string,
	format domain.NoteFormat,
) (*domain.Note, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, document_id, topic_key, format, topic_version, body, rendered, revision, partial, generated_at
		FROM notes WHERE document_id = ? AND topic_key = ? AND format = ?
	`, documentID, topicKey, string(format))

	note, err := scanNote(row.Scan)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return note, err
}

// ListNotes returns all notes for a document in first-save order.
func (s *noteStore) ListNotes(ctx context.Context, documentID string) ([]domain.Note, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, topic_key, format, topic_version, body, rendered, revision, partial, generated_at
		FROM notes WHERE document_id = ? ORDER BY rowid
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.Note //nolint:prealloc // size unknown from query
	for rows.Next() {
		note, err := scanNote(rows.Scan)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notes: %w", err)
	}

	return notes, nil
}

// DeleteNotes removes all notes for a document.
func (s *noteStore) DeleteNotes(ctx context.Context, documentID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM notes WHERE document_id = ?", documentID)
	if err != nil {
		return fmt.Errorf("deleting notes: %w", err)
	}
	return nil
}

// ==================== Chat Store ====================

// chatStore implements driven.ChatStore.
type chatStore struct {
	store *Store
}

var _ driven.ChatStore = (*chatStore)(nil)

// AppendTurn appends a chat turn to the log.
func (s *chatStore) AppendTurn(ctx context.Context, turn *domain.ChatTurn) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO chat_turns (id, document_id, topic_key, role, content, note_revision, is_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, turn.ID, turn.DocumentID, turn.TopicKey, string(turn.Role),
		turn.Content, turn.NoteRevision, turn.IsError, turn.CreatedAt)

	if err != nil {
		return fmt.Errorf("appending chat turn: %w", err)
	}
	return nil
}

// ListTurns returns the turns for a topic in append order.
func (s *chatStore) ListTurns(ctx context.Context, documentID, topicKey string) ([]domain.ChatTurn, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, topic_key, role, content, note_revision, is_error, created_at
		FROM chat_turns WHERE document_id = ? AND topic_key = ? ORDER BY seq
	`, documentID, topicKey)
	if err != nil {
		return nil, fmt.Errorf("querying chat turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.ChatTurn //nolint:prealloc // size unknown from query
	for rows.Next() {
		var turn domain.ChatTurn
		var role string
		if err := rows.Scan(&turn.ID, &turn.DocumentID, &turn.TopicKey, &role,
			&turn.Content, &turn.NoteRevision, &turn.IsError, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning chat turn: %w", err)
		}
		turn.Role = domain.ChatRole(role)
		turns = append(turns, turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat turns: %w", err)
	}

	return turns, nil
}

// DeleteTurns removes all turns for a document.
func (s *chatStore) DeleteTurns(ctx context.Context, documentID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM chat_turns WHERE document_id = ?", documentID)
	if err != nil {
		return fmt.Errorf("deleting chat turns: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// scanDocument scans a document using the given scan function, which
// works for both *sql.Row and *sql.Rows.
func scanDocument(scan func(...any) error) (*domain.Document, error) {
	var doc domain.Document
	var mediaJSON, imagesJSON, state string

	if err := scan(&doc.ID, &doc.Title, &doc.Content, &mediaJSON, &imagesJSON,
		&doc.Granularity, &state, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.State = domain.DocumentState(state)
	if err := json.Unmarshal([]byte(mediaJSON), &doc.MediaRefs); err != nil {
		return nil, fmt.Errorf("unmarshalling media refs: %w", err)
	}
	if err := json.Unmarshal([]byte(imagesJSON), &doc.ImagePaths); err != nil {
		return nil, fmt.Errorf("unmarshalling image paths: %w", err)
	}

	return &doc, nil
}

// scanNote scans a note using the given scan function.
func scanNote(scan func(...any) error) (*domain.Note, error) {
	var note domain.Note
	var format, bodyJSON string

	if err := scan(&note.ID, &note.DocumentID, &note.TopicKey, &format, &note.TopicVersion,
		&bodyJSON, &note.Rendered, &note.Revision, &note.Partial, &note.GeneratedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning note: %w", err)
	}

	note.Format = domain.NoteFormat(format)
	if err := json.Unmarshal([]byte(bodyJSON), &note.Body); err != nil {
		return nil, fmt.Errorf("unmarshalling note body: %w", err)
	}

	return &note, nil
}

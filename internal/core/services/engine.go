package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driving"
	"github.com/notegraph-labs/notegraph-cli/internal/logger"
)

// Ensure Engine implements the interface.
var _ driving.NotesEngine = (*Engine)(nil)

// Engine wires the topic graph components behind the NotesEngine port and
// enforces the concurrency model: one mutating operation per document at a
// time, consistent snapshots for readers, and bounded collaborator calls.
type Engine struct {
	docStore  driven.DocumentStore
	noteStore driven.NoteStore
	chatStore driven.ChatStore

	segmenter   *Segmenter
	mergeEngine *MergeEngine
	synthesizer *NoteSynthesizer
	revision    *RevisionSession

	settings domain.Settings
	locks    *documentLocks
}

// NewEngine creates the engine. All stores and components are required.
func NewEngine(
	docStore driven.DocumentStore,
	noteStore driven.NoteStore,
	chatStore driven.ChatStore,
	segmenter *Segmenter,
	mergeEngine *MergeEngine,
	synthesizer *NoteSynthesizer,
	revision *RevisionSession,
	settings domain.Settings,
) *Engine {
	return &Engine{
		docStore:    docStore,
		noteStore:   noteStore,
		chatStore:   chatStore,
		segmenter:   segmenter,
		mergeEngine: mergeEngine,
		synthesizer: synthesizer,
		revision:    revision,
		settings:    settings.Normalise(),
		locks:       newDocumentLocks(),
	}
}

// collaboratorCtx bounds a collaborator-heavy step so a hung service cannot
// hold the document lock indefinitely.
func (e *Engine) collaboratorCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.settings.CollaboratorTimeout)
}

// CreateDocument ingests extracted content and segments it at the default
// granularity. Insufficient content creates nothing; an upstream
// segmentation failure leaves the document saved in the uploaded state so
// segmentation can be retried via SetGranularity.
func (e *Engine) CreateDocument(ctx context.Context, title, content string, mediaRefs, imagePaths []string) (*driving.DocumentResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: empty content", domain.ErrInsufficientContent)
	}

	now := time.Now()
	doc := &domain.Document{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(title),
		Content:     content,
		MediaRefs:   mediaRefs,
		ImagePaths:  imagePaths,
		Granularity: domain.DefaultGranularity,
		State:       domain.StateUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if doc.Title == "" {
		doc.Title = "Untitled document"
	}

	release, err := e.locks.acquireWrite(doc.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := e.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	logger.Info("created document %s (%d chars)", doc.ID, doc.ContentLen())

	return e.segmentLocked(ctx, doc, doc.Granularity)
}

// GetDocument returns one document.
func (e *Engine) GetDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	release := e.locks.acquireRead(documentID)
	defer release()
	return e.docStore.GetDocument(ctx, documentID)
}

// ListDocuments returns all documents, newest first.
func (e *Engine) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return e.docStore.ListDocuments(ctx)
}

// SetGranularity updates the granularity and re-segments. Existing notes
// become stale through topic replacement; they are retained for audit.
func (e *Engine) SetGranularity(ctx context.Context, documentID string, granularity int) (*driving.DocumentResult, error) {
	if granularity < domain.GranularityMin || granularity > domain.GranularityMax {
		return nil, fmt.Errorf("%w: granularity %d outside [%d,%d]",
			domain.ErrInvalidInput, granularity, domain.GranularityMin, domain.GranularityMax)
	}

	release, err := e.locks.acquireWrite(documentID)
	if err != nil {
		return nil, err
	}
	defer release()

	doc, err := e.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	return e.segmentLocked(ctx, doc, granularity)
}

// segmentLocked runs segmentation and applies the result. Caller holds the
// write lock. The graph is only persisted after Apply validates the
// partition, so a failed run leaves the previous topic set intact.
func (e *Engine) segmentLocked(ctx context.Context, doc *domain.Document, granularity int) (*driving.DocumentResult, error) {
	hint := domain.MapGranularity(granularity)

	cctx, cancel := e.collaboratorCtx(ctx)
	defer cancel()
	segResult, err := e.segmenter.Segment(cctx, doc.Content, hint)
	if err != nil {
		return nil, err
	}

	graph := NewTopicGraph(doc.ID, doc.ContentLen())
	now := time.Now()
	if err := graph.Apply(segResult.Proposals, now); err != nil {
		return nil, err
	}

	if err := e.docStore.SaveGraph(ctx, doc.ID, graph.State()); err != nil {
		return nil, fmt.Errorf("save graph: %w", err)
	}

	doc.Granularity = granularity
	doc.State = domain.StateSegmented
	doc.UpdatedAt = now
	if err := e.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	views, err := e.topicViews(ctx, doc.ID, graph)
	if err != nil {
		return nil, err
	}
	return &driving.DocumentResult{
		Document: *doc,
		Topics:   views,
		Reduced:  segResult.Reduced,
	}, nil
}

// ListTopics returns the live topics in stable insertion order.
func (e *Engine) ListTopics(ctx context.Context, documentID string) ([]driving.TopicView, error) {
	release := e.locks.acquireRead(documentID)
	defer release()

	_, graph, err := e.loadGraph(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return e.topicViews(ctx, documentID, graph)
}

// MergeTopics merges two or more live topics into a fresh topic.
func (e *Engine) MergeTopics(ctx context.Context, documentID string, topicKeys []string) (*driving.TopicView, error) {
	release, err := e.locks.acquireWrite(documentID)
	if err != nil {
		return nil, err
	}
	defer release()

	_, graph, err := e.loadGraph(ctx, documentID)
	if err != nil {
		return nil, err
	}

	cctx, cancel := e.collaboratorCtx(ctx)
	defer cancel()
	merged, err := e.mergeEngine.Merge(cctx, graph, topicKeys, time.Now())
	if err != nil {
		return nil, err
	}

	if err := e.docStore.SaveGraph(ctx, documentID, graph.State()); err != nil {
		return nil, fmt.Errorf("save graph: %w", err)
	}

	view := topicView(merged)
	return &view, nil
}

// GenerateNotes synthesises notes for live topics missing a current note
// in the requested format. Existing current notes are reused; individual
// synthesis failures are collected, not fatal for the pass.
func (e *Engine) GenerateNotes(ctx context.Context, documentID string, opts driving.GenerateOptions) (*driving.GenerateResult, error) {
	format := opts.Format
	if format == "" {
		format = e.settings.DefaultFormat
	}
	if !format.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, opts.Format)
	}

	release, err := e.locks.acquireWrite(documentID)
	if err != nil {
		return nil, err
	}
	defer release()

	doc, graph, err := e.loadGraph(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if graph.Len() == 0 {
		return nil, fmt.Errorf("%w: document has no topics; segment it first", domain.ErrInvalidInput)
	}

	topics := graph.List()
	selected := selectTopics(topics, opts.TopicKeys)
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: no matching topics", domain.ErrInvalidInput)
	}

	result := &driving.GenerateResult{Failed: make(map[string]string)}

	for i := range selected {
		topic := &selected[i]

		existing, err := e.noteStore.GetNote(ctx, documentID, topic.Key, format)
		if err == nil && !existing.StaleAgainst(topic) {
			logger.Debug("reusing current note for topic %q", topic.Name)
			result.Reused++
			result.Notes = append(result.Notes, noteView(existing, topic))
			continue
		}

		cctx, cancel := e.collaboratorCtx(ctx)
		note, err := e.synthesizer.Synthesize(cctx, SynthesisInput{
			Document:      doc,
			Topic:         topic,
			Siblings:      siblingsOf(topics, topic.Key),
			Format:        format,
			ProcessImages: opts.ProcessImages || e.settings.ProcessImages,
			ImagePaths:    doc.ImagePaths,
		})
		cancel()
		if err != nil {
			logger.Warn("synthesis for topic %q failed: %v", topic.Name, err)
			result.Failed[topic.Key] = err.Error()
			continue
		}

		if err := e.noteStore.SaveNote(ctx, note); err != nil {
			return nil, fmt.Errorf("save note: %w", err)
		}
		graph.SetEdges(topic.Key, note.Body.Links)
		if note.Partial {
			result.Partial++
		}
		result.Notes = append(result.Notes, noteView(note, topic))
	}

	if err := e.docStore.SaveGraph(ctx, documentID, graph.State()); err != nil {
		return nil, fmt.Errorf("save graph: %w", err)
	}
	if len(result.Notes) > 0 && doc.State != domain.StateNotesGenerated {
		doc.State = domain.StateNotesGenerated
		doc.UpdatedAt = time.Now()
		if err := e.docStore.SaveDocument(ctx, doc); err != nil {
			return nil, fmt.Errorf("save document: %w", err)
		}
	}

	return result, nil
}

// GetNote returns the current note for a topic, flagging staleness.
func (e *Engine) GetNote(ctx context.Context, documentID, topicKey string, format domain.NoteFormat) (*driving.NoteView, error) {
	if format == "" {
		format = e.settings.DefaultFormat
	}

	release := e.locks.acquireRead(documentID)
	defer release()

	_, graph, err := e.loadGraph(ctx, documentID)
	if err != nil {
		return nil, err
	}

	topic, err := graph.Get(topicKey)
	if err != nil {
		// The key may have been absorbed by a merge; resolve it so callers
		// holding an old key get the successor's note.
		if live := graph.Resolve(topicKey); live != "" {
			topic, err = graph.Get(live)
		}
		if err != nil {
			return nil, err
		}
	}

	note, err := e.noteStore.GetNote(ctx, documentID, topic.Key, format)
	if err != nil {
		return nil, err
	}
	view := noteView(note, topic)
	return &view, nil
}

// ReviseNote applies an instruction to one note through a revision
// session. Error turns are appended to the chat log even when the turn
// fails, so the user sees the failure in context.
func (e *Engine) ReviseNote(ctx context.Context, documentID, topicKey, instruction string) (*driving.NoteView, error) {
	release, err := e.locks.acquireWrite(documentID)
	if err != nil {
		return nil, err
	}
	defer release()

	_, graph, err := e.loadGraph(ctx, documentID)
	if err != nil {
		return nil, err
	}
	topic, err := graph.Get(topicKey)
	if err != nil {
		return nil, err
	}

	note, err := e.currentNoteAnyFormat(ctx, documentID, topic)
	if err != nil {
		return nil, err
	}

	history, err := e.chatStore.ListTurns(ctx, documentID, topic.Key)
	if err != nil {
		return nil, err
	}

	cctx, cancel := e.collaboratorCtx(ctx)
	defer cancel()
	outcome, revErr := e.revision.Revise(cctx, topic, note, history, instruction)

	// Persist the turn pair regardless of outcome; the log is the user's
	// record of what happened.
	if outcome != nil {
		for i := range outcome.Turns {
			if err := e.chatStore.AppendTurn(ctx, &outcome.Turns[i]); err != nil {
				return nil, fmt.Errorf("append chat turn: %w", err)
			}
		}
	}
	if revErr != nil {
		return nil, revErr
	}

	if err := e.noteStore.SaveNote(ctx, outcome.Note); err != nil {
		return nil, fmt.Errorf("save note: %w", err)
	}

	view := noteView(outcome.Note, topic)
	return &view, nil
}

// GetChatLog returns the revision chat turns for a topic in order.
func (e *Engine) GetChatLog(ctx context.Context, documentID, topicKey string) ([]domain.ChatTurn, error) {
	release := e.locks.acquireRead(documentID)
	defer release()
	return e.chatStore.ListTurns(ctx, documentID, topicKey)
}

// ExportAll returns every current note for a document. Markdown exports
// get a table-of-contents index note first, linking each note file.
func (e *Engine) ExportAll(ctx context.Context, documentID string, format domain.NoteFormat) ([]driving.ExportedNote, error) {
	if format == "" {
		format = e.settings.DefaultFormat
	}

	release := e.locks.acquireRead(documentID)
	defer release()

	_, graph, err := e.loadGraph(ctx, documentID)
	if err != nil {
		return nil, err
	}

	type entry struct {
		name    string
		content string
	}
	var entries []entry
	for _, topic := range graph.List() {
		note, err := e.noteStore.GetNote(ctx, documentID, topic.Key, format)
		if err != nil || note.StaleAgainst(&topic) {
			continue
		}
		entries = append(entries, entry{name: topic.Name, content: note.Rendered})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no current notes in format %s", domain.ErrNotFound, format)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	var out []driving.ExportedNote
	if format == domain.FormatMarkdown {
		var b strings.Builder
		b.WriteString("# Table of Contents\n\nThis document provides an overview and links to all generated notes:\n\n")
		for _, en := range entries {
			b.WriteString(fmt.Sprintf("- [%s](./%s)\n", en.name, exportFilename(en.name, format)))
		}
		out = append(out, driving.ExportedNote{
			Filename: "000_index" + format.Extension(),
			Content:  b.String(),
		})
	}
	for _, en := range entries {
		out = append(out, driving.ExportedNote{
			Filename:  exportFilename(en.name, format),
			TopicName: en.name,
			Content:   en.content,
		})
	}
	return out, nil
}

// DeleteDocument removes a document and cascades to topics, notes, and
// the chat log.
func (e *Engine) DeleteDocument(ctx context.Context, documentID string) error {
	release, err := e.locks.acquireWrite(documentID)
	if err != nil {
		return err
	}

	if _, err := e.docStore.GetDocument(ctx, documentID); err != nil {
		release()
		return err
	}
	if err := e.noteStore.DeleteNotes(ctx, documentID); err != nil {
		release()
		return fmt.Errorf("delete notes: %w", err)
	}
	if err := e.chatStore.DeleteTurns(ctx, documentID); err != nil {
		release()
		return fmt.Errorf("delete chat log: %w", err)
	}
	if err := e.docStore.DeleteDocument(ctx, documentID); err != nil {
		release()
		return fmt.Errorf("delete document: %w", err)
	}

	release()
	e.locks.drop(documentID)
	logger.Info("deleted document %s", documentID)
	return nil
}

// loadGraph loads a document and rebuilds its graph from persisted state.
func (e *Engine) loadGraph(ctx context.Context, documentID string) (*domain.Document, *TopicGraph, error) {
	doc, err := e.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	state, err := e.docStore.GetGraph(ctx, documentID)
	if err != nil {
		return nil, nil, fmt.Errorf("load graph: %w", err)
	}
	return doc, GraphFromState(documentID, doc.ContentLen(), state), nil
}

// currentNoteAnyFormat finds the topic's current note, preferring the
// configured default format.
func (e *Engine) currentNoteAnyFormat(ctx context.Context, documentID string, topic *domain.Topic) (*domain.Note, error) {
	if note, err := e.noteStore.GetNote(ctx, documentID, topic.Key, e.settings.DefaultFormat); err == nil {
		return note, nil
	}
	notes, err := e.noteStore.ListNotes(ctx, documentID)
	if err != nil {
		return nil, err
	}
	for i := range notes {
		if notes[i].TopicKey == topic.Key {
			return &notes[i], nil
		}
	}
	return nil, fmt.Errorf("no note for topic %s: %w", topic.Key, domain.ErrNotFound)
}

// topicViews builds read models, marking topics that have a current note.
func (e *Engine) topicViews(ctx context.Context, documentID string, graph *TopicGraph) ([]driving.TopicView, error) {
	notes, err := e.noteStore.ListNotes(ctx, documentID)
	if err != nil {
		return nil, err
	}

	views := make([]driving.TopicView, 0, graph.Len())
	for _, topic := range graph.List() {
		view := topicView(&topic)
		for i := range notes {
			if notes[i].TopicKey == topic.Key && !notes[i].StaleAgainst(&topic) {
				view.HasCurrentNote = true
				break
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func topicView(t *domain.Topic) driving.TopicView {
	return driving.TopicView{
		Key:         t.Key,
		Name:        t.Name,
		Description: t.Description,
		Version:     t.Version,
		SpanCount:   len(t.Spans),
		SpanTextLen: t.SpanTextLen(),
	}
}

func noteView(n *domain.Note, t *domain.Topic) driving.NoteView {
	return driving.NoteView{
		TopicKey:    n.TopicKey,
		TopicName:   t.Name,
		Format:      n.Format,
		Rendered:    n.Rendered,
		Revision:    n.Revision,
		Partial:     n.Partial,
		Stale:       n.StaleAgainst(t),
		Links:       append([]domain.HyperlinkEdge(nil), n.Body.Links...),
		GeneratedAt: n.GeneratedAt,
	}
}

// selectTopics filters topics to the requested keys, or returns all.
func selectTopics(topics []domain.Topic, keys []string) []domain.Topic {
	if len(keys) == 0 {
		return topics
	}
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	var out []domain.Topic
	for i := range topics {
		if want[topics[i].Key] {
			out = append(out, topics[i])
		}
	}
	return out
}

// siblingsOf returns every topic except the given key.
func siblingsOf(topics []domain.Topic, key string) []domain.Topic {
	out := make([]domain.Topic, 0, len(topics)-1)
	for i := range topics {
		if topics[i].Key != key {
			out = append(out, topics[i])
		}
	}
	return out
}

// exportFilename derives a file name from a topic name.
func exportFilename(name string, format domain.NoteFormat) string {
	return domain.FileSafeName(name) + format.Extension()
}

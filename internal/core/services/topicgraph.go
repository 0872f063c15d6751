package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
	"github.com/notegraph-labs/notegraph-cli/internal/logger"
)

// TopicGraph is the authoritative in-memory structure for one document's
// topics: span ownership, insertion order, merge tombstones, and the
// hyperlink edge table. It owns all mutation invariants - every topic set
// enters through Apply or RecordMerge, which reject inconsistent states
// outright rather than resolving overlaps ad hoc.
type TopicGraph struct {
	documentID string
	contentLen int

	order      []string
	topics     map[string]*domain.Topic
	tombstones map[string]string
	edges      []domain.HyperlinkEdge
	unassigned []domain.Span
}

// NewTopicGraph creates an empty graph for a document.
func NewTopicGraph(documentID string, contentLen int) *TopicGraph {
	return &TopicGraph{
		documentID: documentID,
		contentLen: contentLen,
		topics:     make(map[string]*domain.Topic),
		tombstones: make(map[string]string),
	}
}

// GraphFromState rebuilds a graph from its persisted form.
func GraphFromState(documentID string, contentLen int, state *driven.GraphState) *TopicGraph {
	g := NewTopicGraph(documentID, contentLen)
	if state == nil {
		return g
	}
	for i := range state.Topics {
		t := state.Topics[i]
		g.order = append(g.order, t.Key)
		g.topics[t.Key] = &t
	}
	for absorbed, into := range state.Tombstones {
		g.tombstones[absorbed] = into
	}
	g.edges = append(g.edges, state.Edges...)
	g.unassigned = append(g.unassigned, state.Unassigned...)
	return g
}

// State returns the graph's persistable form.
func (g *TopicGraph) State() *driven.GraphState {
	state := &driven.GraphState{
		Topics:     g.List(),
		Tombstones: make(map[string]string, len(g.tombstones)),
		Edges:      append([]domain.HyperlinkEdge(nil), g.edges...),
		Unassigned: append([]domain.Span(nil), g.unassigned...),
	}
	for absorbed, into := range g.tombstones {
		state.Tombstones[absorbed] = into
	}
	return state
}

// Apply replaces the current topic set with validated proposals. Used on
// initial segmentation and on granularity change. Overlapping spans fail
// with ErrInvariantViolation; gaps are allowed and tracked as unassigned.
// Previous tombstones and edges are cleared - the old topic set no longer
// exists in any form, and notes bound to it are stale by version mismatch.
func (g *TopicGraph) Apply(proposals []domain.TopicProposal, now time.Time) error {
	if len(proposals) == 0 {
		return fmt.Errorf("%w: empty proposal set", domain.ErrInvalidInput)
	}

	var all []domain.Span
	for i := range proposals {
		if proposals[i].Name == "" {
			return fmt.Errorf("%w: proposal %d has no name", domain.ErrInvalidInput, i)
		}
		for _, s := range proposals[i].Spans {
			if !s.Valid() {
				return fmt.Errorf("%w: topic %q has invalid span [%d,%d)",
					domain.ErrInvariantViolation, proposals[i].Name, s.Start, s.End)
			}
			if s.Stream == domain.TextStream && s.End > g.contentLen {
				return fmt.Errorf("%w: topic %q span [%d,%d) exceeds content length %d",
					domain.ErrInvariantViolation, proposals[i].Name, s.Start, s.End, g.contentLen)
			}
			all = append(all, s)
		}
	}
	if pair := domain.FindOverlap(all); pair != nil {
		logger.Warn("partition invariant violated: spans [%d,%d) and [%d,%d) overlap",
			pair[0].Start, pair[0].End, pair[1].Start, pair[1].End)
		return fmt.Errorf("%w: spans [%d,%d) and [%d,%d) overlap",
			domain.ErrInvariantViolation, pair[0].Start, pair[0].End, pair[1].Start, pair[1].End)
	}

	g.order = g.order[:0]
	g.topics = make(map[string]*domain.Topic, len(proposals))
	g.tombstones = make(map[string]string)
	g.edges = nil

	for i := range proposals {
		topic := &domain.Topic{
			Key:         uuid.New().String(),
			DocumentID:  g.documentID,
			Name:        proposals[i].Name,
			Description: proposals[i].Description,
			Spans:       append([]domain.Span(nil), proposals[i].Spans...),
			Version:     1,
			CreatedAt:   now,
		}
		g.order = append(g.order, topic.Key)
		g.topics[topic.Key] = topic
	}

	g.recomputeUnassigned()
	logger.Debug("applied %d topics to document %s (%d unassigned ranges)",
		len(g.order), g.documentID, len(g.unassigned))
	return nil
}

// Get returns a copy of one live topic.
func (g *TopicGraph) Get(key string) (*domain.Topic, error) {
	t, ok := g.topics[key]
	if !ok {
		return nil, fmt.Errorf("topic %s: %w", key, domain.ErrNotFound)
	}
	cp := *t
	cp.Spans = append([]domain.Span(nil), t.Spans...)
	return &cp, nil
}

// List returns copies of the live topics in stable insertion order.
func (g *TopicGraph) List() []domain.Topic {
	out := make([]domain.Topic, 0, len(g.order))
	for _, key := range g.order {
		t := g.topics[key]
		cp := *t
		cp.Spans = append([]domain.Span(nil), t.Spans...)
		out = append(out, cp)
	}
	return out
}

// Len returns the number of live topics.
func (g *TopicGraph) Len() int {
	return len(g.order)
}

// Resolve follows the tombstone table from any topic key - live or
// absorbed - to the live key it now maps to. Returns "" for unknown keys.
// Chains are followed so edges rewritten through successive merges still
// land on a live topic.
func (g *TopicGraph) Resolve(key string) string {
	seen := 0
	for {
		if _, ok := g.topics[key]; ok {
			return key
		}
		next, ok := g.tombstones[key]
		if !ok {
			return ""
		}
		key = next
		seen++
		if seen > len(g.tombstones) {
			// Defensive bound; tombstones always point forward to newer
			// keys, so a cycle here would itself be an invariant bug.
			return ""
		}
	}
}

// RecordMerge installs a merge result: the absorbed topics leave the live
// set, the result takes the earliest absorbed topic's position, and every
// edge referencing an absorbed key is rewritten to the result. Invoked by
// the MergeEngine after validation; the result's version is bumped past
// every absorbed version so existing notes read as stale.
func (g *TopicGraph) RecordMerge(result *domain.Topic, absorbedKeys []string) error {
	if result == nil || len(absorbedKeys) < 2 {
		return fmt.Errorf("%w: merge needs at least two topics", domain.ErrMergeTargetInvalid)
	}
	if _, exists := g.topics[result.Key]; exists {
		return fmt.Errorf("%w: key %s already live", domain.ErrInvariantViolation, result.Key)
	}

	position := -1
	maxVersion := 0
	var union []domain.Span
	for _, key := range absorbedKeys {
		t, ok := g.topics[key]
		if !ok {
			return fmt.Errorf("%w: topic %s is not live", domain.ErrMergeTargetInvalid, key)
		}
		if t.Version > maxVersion {
			maxVersion = t.Version
		}
		union = domain.UnionSpans(union, t.Spans)
		for i, k := range g.order {
			if k == key && (position == -1 || i < position) {
				position = i
			}
		}
	}

	// The result must own exactly the union of the absorbed spans; anything
	// else silently changes span ownership outside the validated path.
	if len(domain.UnionSpans(result.Spans)) != len(union) {
		return fmt.Errorf("%w: merge result spans differ from absorbed union", domain.ErrInvariantViolation)
	}
	resultSpans := domain.UnionSpans(result.Spans)
	for i := range union {
		if resultSpans[i] != union[i] {
			return fmt.Errorf("%w: merge result spans differ from absorbed union", domain.ErrInvariantViolation)
		}
	}

	result.Version = maxVersion + 1
	result.DocumentID = g.documentID

	absorbed := make(map[string]bool, len(absorbedKeys))
	for _, key := range absorbedKeys {
		absorbed[key] = true
		delete(g.topics, key)
		g.tombstones[key] = result.Key
	}

	newOrder := make([]string, 0, len(g.order)-len(absorbedKeys)+1)
	for i, key := range g.order {
		if i == position {
			newOrder = append(newOrder, result.Key)
		}
		if !absorbed[key] {
			newOrder = append(newOrder, key)
		}
	}
	g.order = newOrder
	g.topics[result.Key] = result

	g.edges = domain.RewriteEdges(g.edges, g.Resolve)
	g.recomputeUnassigned()

	logger.Debug("merged %d topics into %s (version %d) for document %s",
		len(absorbedKeys), result.Key, result.Version, g.documentID)
	return nil
}

// SetEdges replaces the outbound edges of one topic. Called after note
// synthesis computes a topic's hyperlinks. Self-loops and duplicates are
// dropped; edges pointing at retired keys are resolved through tombstones.
func (g *TopicGraph) SetEdges(sourceKey string, edges []domain.HyperlinkEdge) {
	kept := make([]domain.HyperlinkEdge, 0, len(g.edges)+len(edges))
	for _, e := range g.edges {
		if e.Source != sourceKey {
			kept = append(kept, e)
		}
	}
	for _, e := range edges {
		e.Source = sourceKey
		kept = append(kept, e)
	}
	g.edges = domain.RewriteEdges(kept, g.Resolve)
}

// Edges returns a copy of the document's hyperlink edge table.
func (g *TopicGraph) Edges() []domain.HyperlinkEdge {
	return append([]domain.HyperlinkEdge(nil), g.edges...)
}

// EdgesFrom returns the outbound edges of one topic.
func (g *TopicGraph) EdgesFrom(sourceKey string) []domain.HyperlinkEdge {
	var out []domain.HyperlinkEdge
	for _, e := range g.edges {
		if e.Source == sourceKey {
			out = append(out, e)
		}
	}
	return out
}

// Unassigned returns the content ranges no live topic owns.
func (g *TopicGraph) Unassigned() []domain.Span {
	return append([]domain.Span(nil), g.unassigned...)
}

// Validate re-checks the partition invariant over the live set. Cheap
// enough to run after every mutation in tests; returns the violation.
func (g *TopicGraph) Validate() error {
	var all []domain.Span
	for _, key := range g.order {
		all = append(all, g.topics[key].Spans...)
	}
	if pair := domain.FindOverlap(all); pair != nil {
		return fmt.Errorf("%w: spans [%d,%d) and [%d,%d) overlap",
			domain.ErrInvariantViolation, pair[0].Start, pair[0].End, pair[1].Start, pair[1].End)
	}
	return nil
}

func (g *TopicGraph) recomputeUnassigned() {
	var all []domain.Span
	for _, key := range g.order {
		all = append(all, g.topics[key].Spans...)
	}
	g.unassigned = domain.TextGaps(all, g.contentLen)
}

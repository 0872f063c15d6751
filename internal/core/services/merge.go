package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
	"github.com/notegraph-labs/notegraph-cli/internal/logger"
)

// Ensure MergeEngine can use customised prompts.
var _ driven.PromptStoreAware = (*MergeEngine)(nil)

// MergeEngine validates and executes merge requests against a TopicGraph.
// The merged topic gets a freshly minted key - absorbed keys are never
// reused, so stale note bindings cannot silently resurrect.
type MergeEngine struct {
	llm         driven.LanguageModel
	promptStore driven.PromptStore
}

// NewMergeEngine creates a merge engine. The language model is optional;
// without it merged topics are named by concatenation.
func NewMergeEngine(llm driven.LanguageModel) *MergeEngine {
	return &MergeEngine{llm: llm}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (m *MergeEngine) SetPromptStore(store driven.PromptStore) {
	m.promptStore = store
}

// Merge combines two or more live topics into one new topic and records
// the result in the graph. The new topic owns exactly the union of the
// absorbed topics' spans, individually retained.
func (m *MergeEngine) Merge(ctx context.Context, graph *TopicGraph, topicKeys []string, now time.Time) (*domain.Topic, error) {
	distinct := dedupeKeys(topicKeys)
	if len(distinct) < 2 {
		return nil, fmt.Errorf("%w: need at least two distinct topics, got %d", domain.ErrMergeTargetInvalid, len(distinct))
	}

	topics := make([]*domain.Topic, 0, len(distinct))
	var spanSets [][]domain.Span
	for _, key := range distinct {
		t, err := graph.Get(key)
		if err != nil {
			return nil, fmt.Errorf("%w: topic %s is not in the live set", domain.ErrMergeTargetInvalid, key)
		}
		topics = append(topics, t)
		spanSets = append(spanSets, t.Spans)
	}

	result := &domain.Topic{
		Key:         uuid.New().String(),
		Name:        m.mergedName(ctx, topics),
		Description: mergedDescription(topics),
		Spans:       domain.UnionSpans(spanSets...),
		CreatedAt:   now,
	}

	if err := graph.RecordMerge(result, distinct); err != nil {
		return nil, err
	}

	merged, err := graph.Get(result.Key)
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// defaultMergeNamePrompt is the fallback prompt when no PromptStore is configured.
const defaultMergeNamePrompt = `The following study topics are being combined into one.
Pick a single concise name that covers all of them.
Return ONLY the name, nothing else.

Topics:
%s

Name:`

// mergedName asks the model to summarise the union into one name, falling
// back to concatenating the original names when the model is unavailable
// or unhelpful.
func (m *MergeEngine) mergedName(ctx context.Context, topics []*domain.Topic) string {
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.Name
	}
	fallback := strings.Join(names, " & ")

	if m.llm == nil {
		return fallback
	}

	template := defaultMergeNamePrompt
	if m.promptStore != nil {
		if p, err := m.promptStore.Load(driven.PromptMergeName); err == nil {
			template = p
		}
	}
	prompt := fmt.Sprintf(template, "- "+strings.Join(names, "\n- "))

	raw, err := m.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   60,
		Temperature: 0.2,
	})
	if err != nil {
		logger.Warn("merge naming failed, falling back to concatenation: %v", err)
		return fallback
	}

	name := strings.TrimSpace(strings.Split(strings.TrimSpace(raw), "\n")[0])
	name = strings.Trim(name, `"'`)
	if name == "" || len(name) > 120 {
		return fallback
	}
	return name
}

// mergedDescription joins the distinct source descriptions.
func mergedDescription(topics []*domain.Topic) string {
	var parts []string
	seen := make(map[string]bool)
	for _, t := range topics {
		d := strings.TrimSpace(t.Description)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		parts = append(parts, d)
	}
	return strings.Join(parts, " ")
}

// dedupeKeys removes duplicates while preserving order.
func dedupeKeys(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

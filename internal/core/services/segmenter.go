package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"context"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
	"github.com/notegraph-labs/notegraph-cli/internal/logger"
)

// Ensure Segmenter can use customised prompts.
var _ driven.PromptStoreAware = (*Segmenter)(nil)

// maxSegmentRetries is the number of corrective re-prompts after an
// invalid response before the segmenter gives up.
const maxSegmentRetries = 2

// maxPromptContent caps the content characters sent in one prompt.
const maxPromptContent = 10000

// Segmenter turns raw content plus a granularity hint into an ordered set
// of topic proposals. The language model does the semantic judgment; the
// segmenter owns the contract: it validates names, bounds, and the
// partition invariant on every response, and re-prompts with the violation
// spelled out when the model gets it wrong.
type Segmenter struct {
	llm             driven.LanguageModel
	promptStore     driven.PromptStore
	minContentChars int
}

// SegmenterOption configures the segmenter.
type SegmenterOption func(*Segmenter)

// WithMinContentChars sets the minimum content length accepted.
func WithMinContentChars(n int) SegmenterOption {
	return func(s *Segmenter) {
		if n > 0 {
			s.minContentChars = n
		}
	}
}

// NewSegmenter creates a segmenter backed by the given language model.
func NewSegmenter(llm driven.LanguageModel, opts ...SegmenterOption) *Segmenter {
	s := &Segmenter{
		llm:             llm,
		minContentChars: domain.DefaultMinContentChars,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *Segmenter) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// segmentResponse is the strict shape expected from the model.
type segmentResponse struct {
	Topics []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Spans       []struct {
			Start int `json:"start"`
			End   int `json:"end"`
		} `json:"spans"`
	} `json:"topics"`
}

// Segment proposes a topic partition of content at the hinted resolution.
// Returns ErrInsufficientContent for empty or too-short content and
// ErrSegmentationUpstream when the model stays unavailable or malformed
// after the corrective retries. It never silently returns zero topics.
func (s *Segmenter) Segment(ctx context.Context, content string, hint domain.SegmentationHint) (*domain.SegmentationResult, error) {
	trimmed := strings.TrimSpace(content)
	if len([]rune(trimmed)) < s.minContentChars {
		return nil, fmt.Errorf("%w: need at least %d characters of content", domain.ErrInsufficientContent, s.minContentChars)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	contentLen := len([]rune(content))
	prompt := s.buildPrompt(content, hint)

	var lastErr error
	for attempt := 0; attempt <= maxSegmentRetries; attempt++ {
		if attempt > 0 {
			logger.Debug("segmentation retry %d/%d: %v", attempt, maxSegmentRetries, lastErr)
			prompt = s.buildRepairPrompt(content, hint, lastErr)
		}

		raw, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
			MaxTokens:   4096,
			Temperature: 0.2,
		})
		if err != nil {
			lastErr = domain.NewCollaboratorError("llm", "segment", domain.IsRetriable(err), err)
			if !domain.IsRetriable(err) {
				break
			}
			continue
		}

		proposals, err := parseProposals(raw, contentLen)
		if err != nil {
			lastErr = err
			continue
		}

		result := &domain.SegmentationResult{
			Proposals: proposals,
			Reduced:   len(proposals) < hint.MinTopics,
		}
		if result.Reduced {
			logger.Info("segmentation returned %d topics, below the hint floor of %d", len(proposals), hint.MinTopics)
		}
		return result, nil
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrSegmentationUpstream, lastErr)
}

// parseProposals validates a model response into topic proposals.
// Shape mismatches and partition violations come back as plain errors so
// the caller can feed them into the corrective re-prompt.
func parseProposals(raw string, contentLen int) ([]domain.TopicProposal, error) {
	jsonStr, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var resp segmentResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %v", err)
	}
	if len(resp.Topics) == 0 {
		return nil, fmt.Errorf("response contains no topics")
	}

	proposals := make([]domain.TopicProposal, 0, len(resp.Topics))
	var all []domain.Span
	for i, t := range resp.Topics {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, fmt.Errorf("topic %d has an empty name", i)
		}
		if len(t.Spans) == 0 {
			return nil, fmt.Errorf("topic %q has no spans", name)
		}
		spans := make([]domain.Span, 0, len(t.Spans))
		for _, sp := range t.Spans {
			span := domain.Span{Start: sp.Start, End: sp.End}
			if !span.Valid() {
				return nil, fmt.Errorf("topic %q has invalid span [%d,%d)", name, sp.Start, sp.End)
			}
			if span.End > contentLen {
				// Clamp rather than reject: models routinely overshoot the
				// final offset by a few characters.
				span.End = contentLen
				if !span.Valid() {
					return nil, fmt.Errorf("topic %q span [%d,%d) is outside the content", name, sp.Start, sp.End)
				}
			}
			spans = append(spans, span)
			all = append(all, span)
		}
		proposals = append(proposals, domain.TopicProposal{
			Name:        name,
			Description: strings.TrimSpace(t.Description),
			Spans:       spans,
		})
	}

	if pair := domain.FindOverlap(all); pair != nil {
		return nil, fmt.Errorf("spans [%d,%d) and [%d,%d) overlap; each character must belong to at most one topic",
			pair[0].Start, pair[0].End, pair[1].Start, pair[1].End)
	}

	return proposals, nil
}

// extractJSON pulls the outermost JSON object out of a model response that
// may be wrapped in prose or code fences.
func extractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return raw[start : end+1], nil
}

// defaultSegmentPrompt is the fallback prompt when no PromptStore is configured.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const defaultSegmentPrompt = `Analyse the following document and partition it into coherent topics.
%s
Aim for between %d and %d topics. If the content cannot support that many distinct topics, return fewer rather than fabricating empty ones.

Each topic owns one or more character ranges [start, end) of the document text (0 to %d). Ranges of different topics must never overlap.

DOCUMENT TEXT:
%s

Return ONLY JSON in this exact format, with no text before or after:
{
  "topics": [
    {"name": "Topic Name", "description": "One-line description", "spans": [{"start": 0, "end": 120}]}
  ]
}`

// defaultSegmentRepairPrompt is the corrective re-prompt after an invalid response.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const defaultSegmentRepairPrompt = `Your previous segmentation was invalid: %s.

Remember the partition rule: every character range belongs to AT MOST ONE topic, ranges never overlap, and every topic needs a non-empty name and at least one range within the document bounds.

Analyse the following document again and partition it into coherent topics.
%s
Aim for between %d and %d topics. Character ranges run from 0 to %d.

DOCUMENT TEXT:
%s

Return ONLY JSON in this exact format, with no text before or after:
{
  "topics": [
    {"name": "Topic Name", "description": "One-line description", "spans": [{"start": 0, "end": 120}]}
  ]
}`

func (s *Segmenter) buildPrompt(content string, hint domain.SegmentationHint) string {
	template := s.loadPrompt(driven.PromptSegment, defaultSegmentPrompt)
	return fmt.Sprintf(template, hint.Guidance, hint.MinTopics, hint.MaxTopics,
		len([]rune(content)), truncate(content, maxPromptContent))
}

func (s *Segmenter) buildRepairPrompt(content string, hint domain.SegmentationHint, cause error) string {
	template := s.loadPrompt(driven.PromptSegmentRepair, defaultSegmentRepairPrompt)
	return fmt.Sprintf(template, cause, hint.Guidance, hint.MinTopics, hint.MaxTopics,
		len([]rune(content)), truncate(content, maxPromptContent))
}

func (s *Segmenter) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}

// truncate limits content to n runes for prompt inclusion.
func truncate(content string, n int) string {
	runes := []rune(content)
	if len(runes) <= n {
		return content
	}
	return string(runes[:n])
}

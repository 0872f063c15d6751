package services

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
	"github.com/notegraph-labs/notegraph-cli/internal/logger"
)

// Ensure NoteSynthesizer can use customised prompts.
var _ driven.PromptStoreAware = (*NoteSynthesizer)(nil)

// minLinkNameLen guards against false-positive links on very short names.
const minLinkNameLen = 4

// NoteSynthesizer expands a topic into an enriched note: primary content
// summarised by the language model, supplementary material for thin topics,
// image descriptions, and the hyperlink edges to sibling topics.
//
// The summarisation step is the only fatal one. Enrichment and image
// analysis degrade the note to partial instead of blocking it.
type NoteSynthesizer struct {
	llm         driven.LanguageModel
	enricher    driven.Enricher
	analyzer    driven.ImageAnalyzer
	renderers   driven.RendererRegistry
	promptStore driven.PromptStore

	minPrimaryChars int
	linkThreshold   float64
	maxOutDegree    int
}

// SynthesizerOption configures the synthesizer.
type SynthesizerOption func(*NoteSynthesizer)

// WithEnricher sets the optional enrichment collaborator.
func WithEnricher(e driven.Enricher) SynthesizerOption {
	return func(s *NoteSynthesizer) { s.enricher = e }
}

// WithImageAnalyzer sets the optional image analysis collaborator.
func WithImageAnalyzer(a driven.ImageAnalyzer) SynthesizerOption {
	return func(s *NoteSynthesizer) { s.analyzer = a }
}

// WithLinkTuning sets the hyperlink similarity threshold and out-degree cap.
func WithLinkTuning(threshold float64, maxOutDegree int) SynthesizerOption {
	return func(s *NoteSynthesizer) {
		if threshold > 0 && threshold < 1 {
			s.linkThreshold = threshold
		}
		if maxOutDegree > 0 {
			s.maxOutDegree = maxOutDegree
		}
	}
}

// WithMinPrimaryChars sets the enrichment trigger threshold.
func WithMinPrimaryChars(n int) SynthesizerOption {
	return func(s *NoteSynthesizer) {
		if n > 0 {
			s.minPrimaryChars = n
		}
	}
}

// NewNoteSynthesizer creates a synthesizer. The language model and renderer
// registry are required; enricher and analyzer are optional.
func NewNoteSynthesizer(llm driven.LanguageModel, renderers driven.RendererRegistry, opts ...SynthesizerOption) *NoteSynthesizer {
	s := &NoteSynthesizer{
		llm:             llm,
		renderers:       renderers,
		minPrimaryChars: domain.DefaultMinPrimaryChars,
		linkThreshold:   domain.DefaultLinkThreshold,
		maxOutDegree:    domain.DefaultMaxOutDegree,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *NoteSynthesizer) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// SynthesisInput carries everything one synthesis run needs.
type SynthesisInput struct {
	// Document is the owning document.
	Document *domain.Document

	// Topic is the topic to expand.
	Topic *domain.Topic

	// Siblings are the other live topics, for hyperlink scoring.
	Siblings []domain.Topic

	// Format is the output format.
	Format domain.NoteFormat

	// ProcessImages enables image analysis.
	ProcessImages bool

	// ImagePaths are candidate images for this document.
	ImagePaths []string
}

// summariseResponse is the strict shape expected from the model.
type summariseResponse struct {
	Summary   string `json:"summary"`
	Body      string `json:"body"`
	Confident bool   `json:"confident"`
}

// Synthesize produces a note for one topic. A failure of the core
// summarisation step returns ErrSynthesisFailed and no note; failures of
// enrichment or image analysis return a partial note and no error.
func (s *NoteSynthesizer) Synthesize(ctx context.Context, in SynthesisInput) (*domain.Note, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if !in.Format.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, in.Format)
	}

	primary := domain.SliceText(in.Document.Content, in.Topic.Spans)
	if strings.TrimSpace(primary) == "" {
		primary = in.Topic.Description
	}

	summarised, err := s.summarise(ctx, in.Topic, primary)
	if err != nil {
		return nil, err
	}

	body := domain.NoteBody{
		Title:   in.Topic.Name,
		Summary: summarised.Summary,
		Sections: []domain.Section{{
			Content:    summarised.Body,
			Provenance: domain.ProvenancePrimary,
		}},
	}
	partial := false

	// Thin topics get supplementary material. Enrichment trouble never
	// blocks the note.
	if in.Topic.SpanTextLen() < s.minPrimaryChars || !summarised.Confident {
		section, ok := s.enrich(ctx, in.Topic, summarised.Summary)
		if ok {
			body.Sections = append(body.Sections, section)
		} else {
			partial = true
		}
	}

	if in.ProcessImages && len(in.ImagePaths) > 0 {
		images, degraded := s.describeImages(ctx, in.ImagePaths)
		body.Images = images
		if section, ok := imageSection(images); ok {
			body.Sections = append(body.Sections, section)
		}
		if degraded {
			partial = true
		}
	}

	body.Links = s.computeLinks(in.Topic, summarised, in.Siblings)

	renderer, err := s.renderers.Get(in.Format)
	if err != nil {
		return nil, err
	}
	nameFor := siblingNames(in.Topic, in.Siblings)
	rendered, err := renderer.Render(&body, nameFor)
	if err != nil {
		return nil, fmt.Errorf("%w: render: %v", domain.ErrSynthesisFailed, err)
	}

	return &domain.Note{
		ID:           uuid.New().String(),
		DocumentID:   in.Document.ID,
		TopicKey:     in.Topic.Key,
		TopicVersion: in.Topic.Version,
		Body:         body,
		Rendered:     rendered,
		Format:       in.Format,
		Partial:      partial,
		GeneratedAt:  time.Now(),
	}, nil
}

// defaultSummarisePrompt is the fallback prompt when no PromptStore is configured.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const defaultSummarisePrompt = `You are an educational content expert. Write an enriched study note for the topic "%s" (%s) from the source material below.

Structure the note with clear explanations, appropriate headings, and examples or analogies where helpful. Use Markdown syntax inside the body.

SOURCE MATERIAL:
%s

Return ONLY JSON in this exact format, with no text before or after:
{"summary": "one or two sentence summary", "body": "the full note body in Markdown", "confident": true}
Set "confident" to false if the source material is too thin to cover the topic properly.`

// summarise runs the core summarisation step with one corrective retry on
// a malformed response. Its failure is fatal for the note.
func (s *NoteSynthesizer) summarise(ctx context.Context, topic *domain.Topic, primary string) (*summariseResponse, error) {
	template := s.loadPrompt(driven.PromptSummarise, defaultSummarisePrompt)
	prompt := fmt.Sprintf(template, topic.Name, topic.Description, truncate(primary, maxPromptContent))

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		raw, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
			MaxTokens:   4096,
			Temperature: 0.3,
		})
		if err != nil {
			lastErr = domain.NewCollaboratorError("llm", "summarise", domain.IsRetriable(err), err)
			if !domain.IsRetriable(err) {
				break
			}
			continue
		}

		parsed, err := parseSummarise(raw)
		if err != nil {
			lastErr = err
			prompt = "Your previous response was invalid: " + err.Error() + ". " + prompt
			continue
		}
		return parsed, nil
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrSynthesisFailed, lastErr)
}

func parseSummarise(raw string) (*summariseResponse, error) {
	jsonStr, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}
	var resp summariseResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %v", err)
	}
	if strings.TrimSpace(resp.Body) == "" {
		return nil, fmt.Errorf("response body is empty")
	}
	if strings.TrimSpace(resp.Summary) == "" {
		resp.Summary = firstSentence(resp.Body)
	}
	return &resp, nil
}

// enrich fetches supplementary material for a thin topic. Returns ok=false
// when the enricher is missing or fails.
func (s *NoteSynthesizer) enrich(ctx context.Context, topic *domain.Topic, summary string) (domain.Section, bool) {
	if s.enricher == nil {
		logger.Debug("topic %q is thin but no enricher is configured", topic.Name)
		return domain.Section{}, false
	}
	supplement, err := s.enricher.Supplement(ctx, topic.Name, summary)
	if err != nil {
		logger.Warn("enrichment for topic %q failed: %v", topic.Name, err)
		return domain.Section{}, false
	}
	if strings.TrimSpace(supplement) == "" {
		return domain.Section{}, false
	}
	return domain.Section{
		Heading:    "Supplementary material",
		Content:    supplement,
		Provenance: domain.ProvenanceEnrichment,
	}, true
}

// describeImages runs image analysis over the candidate paths. Failures
// attach the image without a description and flag degradation.
func (s *NoteSynthesizer) describeImages(ctx context.Context, paths []string) ([]domain.ImageRef, bool) {
	degraded := false
	images := make([]domain.ImageRef, 0, len(paths))
	for _, path := range paths {
		ref := domain.ImageRef{Path: path}
		if s.analyzer == nil {
			degraded = true
			images = append(images, ref)
			continue
		}
		desc, err := s.analyzer.Describe(ctx, path)
		if err != nil {
			logger.Warn("image analysis for %s failed: %v", path, err)
			degraded = true
		} else {
			ref.Description = desc
		}
		images = append(images, ref)
	}
	return images, degraded
}

// imageSection collects the analysed figure descriptions into a section of
// their own. Images that produced no description are left to the figure
// gallery alone.
func imageSection(images []domain.ImageRef) (domain.Section, bool) {
	lines := make([]string, 0, len(images))
	for _, img := range images {
		if img.Description == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", filepath.Base(img.Path), img.Description))
	}
	if len(lines) == 0 {
		return domain.Section{}, false
	}
	return domain.Section{
		Heading:    "Figure notes",
		Content:    strings.Join(lines, "\n"),
		Provenance: domain.ProvenanceImageAnalysis,
	}, true
}

// computeLinks scores this topic's content against every sibling's
// name+description and keeps edges above the threshold, best first, capped
// at the out-degree limit. Sibling names shorter than four characters are
// never linked.
func (s *NoteSynthesizer) computeLinks(topic *domain.Topic, summarised *summariseResponse, siblings []domain.Topic) []domain.HyperlinkEdge {
	source := wordSet(topic.Name + " " + summarised.Summary + " " + summarised.Body)

	var edges []domain.HyperlinkEdge
	for i := range siblings {
		other := &siblings[i]
		if other.Key == topic.Key || len(other.Name) < minLinkNameLen {
			continue
		}
		score := jaccard(source, wordSet(other.Name+" "+other.Description))
		if score > s.linkThreshold {
			edges = append(edges, domain.HyperlinkEdge{
				Source: topic.Key,
				Target: other.Key,
				Anchor: other.Name,
				Score:  score,
			})
		}
	}

	sort.SliceStable(edges, func(i, j int) bool { return edges[i].Score > edges[j].Score })
	if len(edges) > s.maxOutDegree {
		edges = edges[:s.maxOutDegree]
	}
	return domain.DedupeEdges(edges)
}

// siblingNames builds the key-to-name lookup renderers use for link text.
func siblingNames(topic *domain.Topic, siblings []domain.Topic) func(string) string {
	names := make(map[string]string, len(siblings)+1)
	names[topic.Key] = topic.Name
	for i := range siblings {
		names[siblings[i].Key] = siblings[i].Name
	}
	return func(key string) string { return names[key] }
}

func (s *NoteSynthesizer) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}

// wordSet tokenises text into a lowercase word set.
func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?()[]{}\"'`*#")
		if len(w) > 1 {
			set[w] = true
		}
	}
	return set
}

// jaccard computes word-overlap similarity between two sets.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for w := range a {
		if b[w] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// firstSentence extracts a rough first sentence for fallback summaries.
func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	for i, r := range text {
		if r == '.' || r == '\n' {
			return text[:i+1]
		}
	}
	if len(text) > 200 {
		return text[:200]
	}
	return text
}

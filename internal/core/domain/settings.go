package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies a language model service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local models)"
	case AIProviderOpenAI:
		return "OpenAI (cloud API)"
	case AIProviderAnthropic:
		return "Anthropic (cloud API)"
	default:
		return unknownDescription
	}
}

// Default tunables. The link threshold and out-degree cap are starting
// points, not contracts; both are user-configurable.
const (
	// DefaultMinContentChars is the minimum extracted text length the
	// segmenter accepts.
	DefaultMinContentChars = 80

	// DefaultMinPrimaryChars is the span-text length below which a topic is
	// considered thin and enrichment is attempted.
	DefaultMinPrimaryChars = 280

	// DefaultLinkThreshold is the Jaccard similarity needed for an edge.
	DefaultLinkThreshold = 0.1

	// DefaultMaxOutDegree caps outbound links per note.
	DefaultMaxOutDegree = 6

	// DefaultCollaboratorTimeout bounds a single collaborator call so a
	// failing service cannot hold the document lock indefinitely.
	DefaultCollaboratorTimeout = 120 * time.Second
)

// Settings holds the user-configurable engine behaviour.
type Settings struct {
	// LLMProvider selects the language model service.
	LLMProvider AIProvider

	// LLMModel is the provider-specific model name. Empty uses the
	// adapter's default.
	LLMModel string

	// EnrichmentEnabled toggles the enricher collaborator.
	EnrichmentEnabled bool

	// ProcessImages toggles image analysis during note generation.
	ProcessImages bool

	// DefaultFormat is the note format used when none is requested.
	DefaultFormat NoteFormat

	// MinContentChars is the segmenter's minimum content length.
	MinContentChars int

	// MinPrimaryChars is the enrichment trigger threshold.
	MinPrimaryChars int

	// LinkThreshold is the hyperlink similarity threshold.
	LinkThreshold float64

	// MaxOutDegree caps outbound hyperlinks per note.
	MaxOutDegree int

	// CollaboratorTimeout bounds individual collaborator calls.
	CollaboratorTimeout time.Duration
}

// DefaultSettings returns settings with all defaults applied.
func DefaultSettings() Settings {
	return Settings{
		LLMProvider:         AIProviderOllama,
		DefaultFormat:       FormatMarkdown,
		MinContentChars:     DefaultMinContentChars,
		MinPrimaryChars:     DefaultMinPrimaryChars,
		LinkThreshold:       DefaultLinkThreshold,
		MaxOutDegree:        DefaultMaxOutDegree,
		CollaboratorTimeout: DefaultCollaboratorTimeout,
	}
}

// Normalise fills zero values with defaults and clamps nonsense.
func (s Settings) Normalise() Settings {
	def := DefaultSettings()
	if !s.LLMProvider.IsValid() {
		s.LLMProvider = def.LLMProvider
	}
	if !s.DefaultFormat.IsValid() {
		s.DefaultFormat = def.DefaultFormat
	}
	if s.MinContentChars <= 0 {
		s.MinContentChars = def.MinContentChars
	}
	if s.MinPrimaryChars <= 0 {
		s.MinPrimaryChars = def.MinPrimaryChars
	}
	if s.LinkThreshold <= 0 || s.LinkThreshold >= 1 {
		s.LinkThreshold = def.LinkThreshold
	}
	if s.MaxOutDegree <= 0 {
		s.MaxOutDegree = def.MaxOutDegree
	}
	if s.CollaboratorTimeout <= 0 {
		s.CollaboratorTimeout = def.CollaboratorTimeout
	}
	return s
}

package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible
	// default or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptSegment extracts a topic list with spans from document content.
	// Placeholders: %s (granularity guidance), %d %d (min/max topics),
	// %d (content length), %s (content).
	PromptSegment = "segment"

	// PromptSegmentRepair restates the partition rule after an invalid
	// response. Placeholders: %s (violation description), then the same
	// placeholders as PromptSegment.
	PromptSegmentRepair = "segment_repair"

	// PromptSummarise synthesises a topic note from its owned content.
	// Placeholders: %s (topic name), %s (topic description), %s (content).
	PromptSummarise = "summarise"

	// PromptMergeName picks a name for a merged topic.
	// Placeholder: %s (the original names, newline separated).
	PromptMergeName = "merge_name"

	// PromptRevise is the system prompt for note revision chats.
	// This prompt has no format placeholders.
	PromptRevise = "revise"
)

// PromptStoreAware is an optional interface for services that can use
// custom prompts. Services implementing this interface can have their
// prompt templates customised by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}

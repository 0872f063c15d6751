package driven

import "context"

// Extractor turns an uploaded file into plain text plus media references.
// OCR, PDF, DOCX, and audio/video transcription live behind this port; the
// engine only ever sees the extracted text.
type Extractor interface {
	// Extract reads the file at path and returns its result.
	Extract(ctx context.Context, path string) (*ExtractResult, error)

	// Supports reports whether the extractor handles the file extension.
	Supports(ext string) bool
}

// ExtractResult is the output of extraction.
type ExtractResult struct {
	// Title is a human-readable title, usually derived from the filename.
	Title string

	// Text is the extracted plain text.
	Text string

	// MediaRefs lists media streams referenced by the source, if any.
	MediaRefs []string

	// ImagePaths lists embedded or sibling images found during extraction.
	ImagePaths []string
}

// Enricher looks up supplementary material for a topic whose own spans are
// too thin to produce a useful note. This is an optional collaborator; its
// failure downgrades a note to partial, never blocks it.
type Enricher interface {
	// Supplement returns additional material for the topic summary.
	Supplement(ctx context.Context, topicName, topicSummary string) (string, error)
}

// ImageAnalyzer describes images referenced by a topic's spans.
// Optional; failure leaves images attached without descriptions.
type ImageAnalyzer interface {
	// Describe returns a textual description of the image at path.
	Describe(ctx context.Context, path string) (string, error)
}

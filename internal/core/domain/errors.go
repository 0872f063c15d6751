package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientContent indicates the document content is empty or too
	// short to segment into topics. The user can fix this by uploading more.
	ErrInsufficientContent = errors.New("insufficient content")

	// ErrInvariantViolation indicates the topic partition invariant was
	// broken. This is an internal bug: it is always logged in full and
	// surfaced to users as a generic processing error.
	ErrInvariantViolation = errors.New("partition invariant violation")

	// ErrStaleTarget indicates an operation targeted a note or topic version
	// that has since advanced. The caller must refresh and retry.
	ErrStaleTarget = errors.New("stale target")

	// ErrDocumentBusy indicates another mutating operation is already running
	// for the document. The caller should retry later.
	ErrDocumentBusy = errors.New("document busy")

	// ErrMergeTargetInvalid indicates a merge request named fewer than two
	// topics or a topic that is not live in the graph.
	ErrMergeTargetInvalid = errors.New("merge target invalid")

	// ErrSegmentationUpstream indicates the language model was unavailable or
	// kept returning malformed segmentations after retries.
	ErrSegmentationUpstream = errors.New("segmentation upstream failure")

	// ErrSynthesisFailed indicates the core summarisation step for a note
	// failed. No partial note is recorded when this is returned.
	ErrSynthesisFailed = errors.New("note synthesis failed")

	// ErrRevisionInFlight indicates a revision turn is already awaiting a
	// response for the document.
	ErrRevisionInFlight = errors.New("revision already in flight")

	// ErrLLMUnavailable indicates no language model service is configured.
	ErrLLMUnavailable = errors.New("language model service unavailable")

	// ErrEnrichmentUnavailable indicates the enrichment service is not
	// configured. Notes are still produced from primary content.
	ErrEnrichmentUnavailable = errors.New("enrichment service unavailable")

	// ErrAnalysisUnavailable indicates the image analysis service is not
	// configured. Notes are still produced without image descriptions.
	ErrAnalysisUnavailable = errors.New("image analysis unavailable")

	// ErrUnsupportedFormat indicates an unknown note output format.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtractionFailed indicates the extractor could not produce text
	// from the uploaded file.
	ErrExtractionFailed = errors.New("extraction failed")
)

// CollaboratorError wraps a failure from an external collaborator (language
// model, enricher, image analyser, renderer, extractor) with enough context
// to decide whether to retry. Components translate raw collaborator errors
// into this type at the boundary; raw shapes never propagate inward.
type CollaboratorError struct {
	// Collaborator names the failing service ("llm", "enricher", ...).
	Collaborator string

	// Op is the operation that failed ("segment", "summarise", ...).
	Op string

	// Retriable is true if the failure is transient (timeouts, rate limits).
	Retriable bool

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Collaborator, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// NewCollaboratorError wraps err with collaborator context.
func NewCollaboratorError(collaborator, op string, retriable bool, err error) *CollaboratorError {
	return &CollaboratorError{
		Collaborator: collaborator,
		Op:           op,
		Retriable:    retriable,
		Err:          err,
	}
}

// IsRetriable reports whether err is a retriable collaborator failure.
func IsRetriable(err error) bool {
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return ce.Retriable
	}
	return false
}

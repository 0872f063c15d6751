package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driving"
)

// ==================== Input/output schemas ====================

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// DocumentOutput describes one document.
type DocumentOutput struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Granularity int    `json:"granularity"`
	State       string `json:"state"`
	CreatedAt   string `json:"created_at"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// ListTopicsInput is the input schema for the list_topics tool.
type ListTopicsInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document whose topics to list"`
}

// TopicOutput describes one live topic.
type TopicOutput struct {
	Key            string `json:"key"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Version        int    `json:"version"`
	SpanCount      int    `json:"span_count"`
	HasCurrentNote bool   `json:"has_current_note"`
}

// ListTopicsOutput is the output schema for the list_topics tool.
type ListTopicsOutput struct {
	Topics []TopicOutput `json:"topics"`
	Count  int           `json:"count"`
}

// SetGranularityInput is the input schema for the set_granularity tool.
type SetGranularityInput struct {
	DocumentID  string `json:"document_id" jsonschema:"the document to re-segment"`
	Granularity int    `json:"granularity" jsonschema:"topic granularity from 0 (few broad topics) to 100 (many specific topics)"`
}

// SetGranularityOutput is the output schema for the set_granularity tool.
type SetGranularityOutput struct {
	Topics  []TopicOutput `json:"topics"`
	Reduced bool          `json:"reduced"`
}

// MergeTopicsInput is the input schema for the merge_topics tool.
type MergeTopicsInput struct {
	DocumentID string   `json:"document_id" jsonschema:"the document owning the topics"`
	TopicKeys  []string `json:"topic_keys" jsonschema:"two or more live topic keys to merge"`
}

// MergeTopicsOutput is the output schema for the merge_topics tool.
type MergeTopicsOutput struct {
	Merged TopicOutput `json:"merged"`
}

// GenerateNotesInput is the input schema for the generate_notes tool.
type GenerateNotesInput struct {
	DocumentID string   `json:"document_id" jsonschema:"the document to generate notes for"`
	Format     string   `json:"format,omitempty" jsonschema:"note format: markdown, latex, or html (default markdown)"`
	TopicKeys  []string `json:"topic_keys,omitempty" jsonschema:"restrict generation to these topics"`
}

// GenerateNotesOutput is the output schema for the generate_notes tool.
type GenerateNotesOutput struct {
	Generated int               `json:"generated"`
	Reused    int               `json:"reused"`
	Partial   int               `json:"partial"`
	Failed    map[string]string `json:"failed,omitempty"`
}

// GetNoteInput is the input schema for the get_note tool.
type GetNoteInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document owning the topic"`
	TopicKey   string `json:"topic_key" jsonschema:"the topic whose note to fetch"`
	Format     string `json:"format,omitempty" jsonschema:"note format: markdown, latex, or html (default markdown)"`
}

// NoteOutput describes one note.
type NoteOutput struct {
	TopicKey  string `json:"topic_key"`
	TopicName string `json:"topic_name"`
	Format    string `json:"format"`
	Rendered  string `json:"rendered"`
	Revision  int    `json:"revision"`
	Partial   bool   `json:"partial"`
	Stale     bool   `json:"stale"`
}

// ReviseNoteInput is the input schema for the revise_note tool.
type ReviseNoteInput struct {
	DocumentID  string `json:"document_id" jsonschema:"the document owning the topic"`
	TopicKey    string `json:"topic_key" jsonschema:"the topic whose note to revise"`
	Instruction string `json:"instruction" jsonschema:"free-form instruction describing the change"`
}

// ==================== Registration ====================

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List all ingested documents",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_topics",
		Description: "List a document's live topics",
	}, s.handleListTopics)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_granularity",
		Description: "Re-segment a document at a new topic granularity (0-100)",
	}, s.handleSetGranularity)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "merge_topics",
		Description: "Merge two or more topics into one",
	}, s.handleMergeTopics)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_notes",
		Description: "Generate notes for topics without a current note",
	}, s.handleGenerateNotes)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_note",
		Description: "Get the current note for a topic",
	}, s.handleGetNote)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "revise_note",
		Description: "Revise one note with a free-form instruction",
	}, s.handleReviseNote)
}

// ==================== Handlers ====================

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.engine.ListDocuments(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = DocumentOutput{
			ID:          docs[i].ID,
			Title:       docs[i].Title,
			Granularity: docs[i].Granularity,
			State:       string(docs[i].State),
			CreatedAt:   docs[i].CreatedAt.Format(time.RFC3339),
		}
	}

	return nil, output, nil
}

func (s *Server) handleListTopics(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListTopicsInput,
) (*mcp.CallToolResult, ListTopicsOutput, error) {
	topics, err := s.engine.ListTopics(ctx, input.DocumentID)
	if err != nil {
		return nil, ListTopicsOutput{}, err
	}

	return nil, ListTopicsOutput{
		Topics: topicOutputs(topics),
		Count:  len(topics),
	}, nil
}

func (s *Server) handleSetGranularity(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SetGranularityInput,
) (*mcp.CallToolResult, SetGranularityOutput, error) {
	result, err := s.engine.SetGranularity(ctx, input.DocumentID, input.Granularity)
	if err != nil {
		return nil, SetGranularityOutput{}, err
	}

	return nil, SetGranularityOutput{
		Topics:  topicOutputs(result.Topics),
		Reduced: result.Reduced,
	}, nil
}

func (s *Server) handleMergeTopics(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MergeTopicsInput,
) (*mcp.CallToolResult, MergeTopicsOutput, error) {
	merged, err := s.engine.MergeTopics(ctx, input.DocumentID, input.TopicKeys)
	if err != nil {
		return nil, MergeTopicsOutput{}, err
	}

	return nil, MergeTopicsOutput{Merged: topicOutput(*merged)}, nil
}

func (s *Server) handleGenerateNotes(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateNotesInput,
) (*mcp.CallToolResult, GenerateNotesOutput, error) {
	format, err := domain.ParseNoteFormat(input.Format)
	if err != nil {
		return nil, GenerateNotesOutput{}, err
	}

	result, err := s.engine.GenerateNotes(ctx, input.DocumentID, driving.GenerateOptions{
		Format:    format,
		TopicKeys: input.TopicKeys,
	})
	if err != nil {
		return nil, GenerateNotesOutput{}, err
	}

	return nil, GenerateNotesOutput{
		Generated: len(result.Notes),
		Reused:    result.Reused,
		Partial:   result.Partial,
		Failed:    result.Failed,
	}, nil
}

func (s *Server) handleGetNote(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetNoteInput,
) (*mcp.CallToolResult, NoteOutput, error) {
	format, err := domain.ParseNoteFormat(input.Format)
	if err != nil {
		return nil, NoteOutput{}, err
	}

	view, err := s.engine.GetNote(ctx, input.DocumentID, input.TopicKey, format)
	if err != nil {
		return nil, NoteOutput{}, err
	}

	return nil, noteOutput(view), nil
}

func (s *Server) handleReviseNote(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReviseNoteInput,
) (*mcp.CallToolResult, NoteOutput, error) {
	view, err := s.engine.ReviseNote(ctx, input.DocumentID, input.TopicKey, input.Instruction)
	if err != nil {
		return nil, NoteOutput{}, err
	}

	return nil, noteOutput(view), nil
}

// ==================== Conversions ====================

func topicOutput(t driving.TopicView) TopicOutput {
	return TopicOutput{
		Key:            t.Key,
		Name:           t.Name,
		Description:    t.Description,
		Version:        t.Version,
		SpanCount:      t.SpanCount,
		HasCurrentNote: t.HasCurrentNote,
	}
}

func topicOutputs(topics []driving.TopicView) []TopicOutput {
	outputs := make([]TopicOutput, len(topics))
	for i := range topics {
		outputs[i] = topicOutput(topics[i])
	}
	return outputs
}

func noteOutput(view *driving.NoteView) NoteOutput {
	return NoteOutput{
		TopicKey:  view.TopicKey,
		TopicName: view.TopicName,
		Format:    string(view.Format),
		Rendered:  view.Rendered,
		Revision:  view.Revision,
		Partial:   view.Partial,
		Stale:     view.Stale,
	}
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
)

// uriScheme is the custom URI scheme for notegraph resources.
const uriScheme = "notegraph://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing documents.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "List of all ingested documents",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	// Template for a document's current notes.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "document/{documentId}",
		Name:        "document-notes",
		Description: "Current markdown notes for a document, one section per topic",
		MIMEType:    "text/markdown",
	}, s.handleDocumentNotesResource)
}

// handleDocumentsResource returns a list of all ingested documents.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docs, err := s.engine.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type docInfo struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Granularity int    `json:"granularity"`
		State       string `json:"state"`
	}

	infos := make([]docInfo, len(docs))
	for i := range docs {
		infos[i] = docInfo{
			ID:          docs[i].ID,
			Title:       docs[i].Title,
			Granularity: docs[i].Granularity,
			State:       string(docs[i].State),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentNotesResource returns every current note for a document as
// one markdown stream.
func (s *Server) handleDocumentNotesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	notes, err := s.engine.ExportAll(ctx, docID, domain.FormatMarkdown)
	if err != nil {
		return nil, fmt.Errorf("exporting notes: %w", err)
	}

	parts := make([]string, len(notes))
	for i := range notes {
		parts[i] = notes[i].Content
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     strings.Join(parts, "\n---\n\n"),
		}},
	}, nil
}

// extractDocumentID extracts the document ID from a URI like
// notegraph://document/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "document/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}

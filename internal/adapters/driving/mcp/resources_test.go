package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driving"
)

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid document URI",
			uri:      "notegraph://document/doc-456",
			expected: "doc-456",
		},
		{
			name:     "invalid prefix",
			uri:      "file://document/doc-456",
			expected: "",
		},
		{
			name:     "documents list URI is not a document",
			uri:      "notegraph://documents",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractDocumentID(tt.uri))
		})
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	engine := &mockEngine{
		documents: []domain.Document{
			{ID: "doc-1", Title: "Cell Biology", Granularity: 50, State: domain.StateSegmented},
		},
	}
	server, err := NewServer(engine)
	require.NoError(t, err)

	req := &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "notegraph://documents"},
	}
	result, err := server.handleDocumentsResource(ctx, req)

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	assert.Contains(t, result.Contents[0].Text, `"id": "doc-1"`)
	assert.Contains(t, result.Contents[0].Text, `"title": "Cell Biology"`)
}

func TestServer_handleDocumentNotesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("joins exported notes", func(t *testing.T) {
		engine := &mockEngine{
			exported: []driving.ExportedNote{
				{Filename: "index.md", Content: "# Index\n"},
				{Filename: "Mitosis.md", TopicName: "Mitosis", Content: "# Mitosis\n"},
			},
		}
		server, err := NewServer(engine)
		require.NoError(t, err)

		req := &mcp.ReadResourceRequest{
			Params: &mcp.ReadResourceParams{URI: "notegraph://document/doc-1"},
		}
		result, err := server.handleDocumentNotesResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "text/markdown", result.Contents[0].MIMEType)
		assert.Equal(t, "# Index\n\n---\n\n# Mitosis\n", result.Contents[0].Text)
	})

	t.Run("rejects malformed URI", func(t *testing.T) {
		server, err := NewServer(&mockEngine{})
		require.NoError(t, err)

		req := &mcp.ReadResourceRequest{
			Params: &mcp.ReadResourceParams{URI: "notegraph://documents"},
		}
		_, err = server.handleDocumentNotesResource(ctx, req)
		require.Error(t, err)
	})

	t.Run("propagates engine errors", func(t *testing.T) {
		server, err := NewServer(&mockEngine{err: errors.New("export failed")})
		require.NoError(t, err)

		req := &mcp.ReadResourceRequest{
			Params: &mcp.ReadResourceParams{URI: "notegraph://document/doc-1"},
		}
		_, err = server.handleDocumentNotesResource(ctx, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "export failed")
	})
}

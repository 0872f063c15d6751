// Package mcp provides an MCP (Model Context Protocol) server adapter for
// notegraph. It lets AI assistants browse documents and topics, tune
// granularity, merge topics, and generate or revise notes.
package mcp

import "errors"

// ErrMissingEngine is returned when the notes engine is not provided.
var ErrMissingEngine = errors.New("mcp: notes engine is required")

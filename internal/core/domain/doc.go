// Package domain defines the core business entities for Notegraph.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested study document with its granularity setting
//   - Topic: A named, span-owning partition unit of a document
//   - Span: A half-open range over one content stream
//   - Note: The enriched, rendered artifact for one topic version
//   - HyperlinkEdge: A directed cross-reference between topics' notes
//   - ChatTurn: One exchange in a note revision session
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

// Package renderers provides implementations of the Renderer interface for
// the supported note output formats. Every format starts from the same
// Markdown intermediate: the note body is flattened to Markdown, cross-note
// hyperlinks are inserted, and the result is converted to the target format.
//
// Renderers are registered with the Registry at startup.
package renderers

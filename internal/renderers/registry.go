package renderers

import (
	"fmt"
	"sort"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.RendererRegistry = (*Registry)(nil)

// Registry maps note formats to their renderers.
type Registry struct {
	renderers map[domain.NoteFormat]driven.Renderer
}

// NewRegistry creates a registry with all built-in renderers registered.
func NewRegistry() *Registry {
	r := &Registry{renderers: make(map[domain.NoteFormat]driven.Renderer)}
	r.Register(NewMarkdown())
	r.Register(NewLaTeX())
	r.Register(NewHTML())
	return r
}

// Register adds a renderer, replacing any previous one for its format.
func (r *Registry) Register(renderer driven.Renderer) {
	r.renderers[renderer.Format()] = renderer
}

// Get returns the renderer for the format.
func (r *Registry) Get(format domain.NoteFormat) (driven.Renderer, error) {
	renderer, ok := r.renderers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
	return renderer, nil
}

// Formats lists the registered formats in stable order.
func (r *Registry) Formats() []domain.NoteFormat {
	out := make([]domain.NoteFormat, 0, len(r.renderers))
	for f := range r.renderers {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

package renderers

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
)

// minAnchorLen guards against linking very short names, which match almost
// anywhere in prose.
const minAnchorLen = 4

// composeMarkdown flattens a note body into Markdown, the common
// intermediate every output format starts from.
func composeMarkdown(body *domain.NoteBody) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", body.Title)

	if summary := strings.TrimSpace(body.Summary); summary != "" {
		b.WriteString("\n" + summary + "\n")
	}
	for _, sec := range body.Sections {
		if heading := strings.TrimSpace(sec.Heading); heading != "" {
			fmt.Fprintf(&b, "\n## %s\n", heading)
		}
		if content := strings.TrimSpace(sec.Content); content != "" {
			b.WriteString("\n" + content + "\n")
		}
	}
	if len(body.Images) > 0 {
		b.WriteString("\n## Figures\n")
		for _, img := range body.Images {
			alt := img.Description
			if alt == "" {
				alt = filepath.Base(img.Path)
			}
			fmt.Fprintf(&b, "\n![%s](%s)\n", alt, img.Path)
		}
	}
	return b.String()
}

// anchor is one linkable topic name with its key.
type anchor struct {
	name string
	key  string
}

// linkAnchors resolves the body's edges to linkable names, longest first so
// a name containing another topic's name links to the more specific topic.
func linkAnchors(body *domain.NoteBody, nameFor func(string) string) []anchor {
	seen := make(map[string]bool, len(body.Links))
	anchors := make([]anchor, 0, len(body.Links))
	for _, edge := range body.Links {
		name := edge.Anchor
		if name == "" {
			name = nameFor(edge.Target)
		}
		if len(name) < minAnchorLen || seen[name] {
			continue
		}
		seen[name] = true
		anchors = append(anchors, anchor{name: name, key: edge.Target})
	}
	sort.SliceStable(anchors, func(i, j int) bool { return len(anchors[i].name) > len(anchors[j].name) })
	return anchors
}

// replaceUnlinked substitutes every occurrence of name that the linked
// predicate does not rule out. The scan resumes after each replacement, so
// a replacement containing the name cannot loop.
func replaceUnlinked(content, name, replacement string, linked func(before, after string) bool) string {
	var b strings.Builder
	for {
		i := strings.Index(content, name)
		if i < 0 {
			b.WriteString(content)
			return b.String()
		}
		before, after := content[:i], content[i+len(name):]
		if linked != nil && linked(before, after) {
			b.WriteString(content[:i+len(name)])
			content = after
			continue
		}
		b.WriteString(before)
		b.WriteString(replacement)
		content = after
	}
}

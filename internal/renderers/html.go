package renderers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
)

// Ensure HTML implements the interface.
var _ driven.Renderer = (*HTML)(nil)

// HTML renders notes as standalone HTML documents with anchor links
// between related topics.
type HTML struct{}

// NewHTML creates an HTML renderer.
func NewHTML() *HTML {
	return &HTML{}
}

// Format returns the format this renderer produces.
func (r *HTML) Format() domain.NoteFormat {
	return domain.FormatHTML
}

// Render produces the HTML output for the note body.
func (r *HTML) Render(body *domain.NoteBody, nameFor func(string) string) (string, error) {
	if body == nil {
		return "", domain.ErrInvalidInput
	}
	content := composeMarkdown(body)
	for _, a := range linkAnchors(body, nameFor) {
		target := fmt.Sprintf(`[%s](%s%s)`, a.name, domain.FileSafeName(a.name), domain.FormatHTML.Extension())
		content = replaceUnlinked(content, a.name, target, markdownLinked)
	}
	return markdownToHTML(body.Title, content), nil
}

const htmlStyle = `        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            margin: 0 auto;
            padding: 20px;
            max-width: 800px;
        }
        code {
            background-color: #f5f5f5;
            padding: 2px 4px;
            border-radius: 3px;
            font-family: monospace;
        }
        pre {
            background-color: #f5f5f5;
            padding: 16px;
            border-radius: 5px;
            overflow-x: auto;
            font-family: monospace;
        }
        a {
            color: #0366d6;
            text-decoration: none;
        }
        a:hover {
            text-decoration: underline;
        }
        img {
            max-width: 100%;
        }`

// markdownToHTML converts the Markdown intermediate to a complete HTML
// document, line by line: headings, lists, fenced code, and paragraphs.
func markdownToHTML(title, content string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>%s</title>
    <style>
%s
    </style>
</head>
<body>
`, htmlEscape(title), htmlStyle)

	inCode := false
	inParagraph := false
	listTag := ""

	closeParagraph := func() {
		if inParagraph {
			b.WriteString("</p>\n")
			inParagraph = false
		}
	}
	closeList := func() {
		if listTag != "" {
			fmt.Fprintf(&b, "</%s>\n", listTag)
			listTag = ""
		}
	}
	openList := func(tag string) {
		closeParagraph()
		if listTag != tag {
			closeList()
			fmt.Fprintf(&b, "<%s>\n", tag)
			listTag = tag
		}
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			closeParagraph()
			closeList()
			if !inCode {
				b.WriteString("<pre><code>\n")
			} else {
				b.WriteString("</code></pre>\n")
			}
			inCode = !inCode
			continue
		}
		if inCode {
			b.WriteString(htmlEscape(line) + "\n")
			continue
		}

		if trimmed == "" {
			closeParagraph()
			closeList()
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "### "):
			closeParagraph()
			closeList()
			fmt.Fprintf(&b, "<h3>%s</h3>\n", htmlInline(strings.TrimPrefix(trimmed, "### ")))
		case strings.HasPrefix(trimmed, "## "):
			closeParagraph()
			closeList()
			fmt.Fprintf(&b, "<h2>%s</h2>\n", htmlInline(strings.TrimPrefix(trimmed, "## ")))
		case strings.HasPrefix(trimmed, "# "):
			closeParagraph()
			closeList()
			fmt.Fprintf(&b, "<h1>%s</h1>\n", htmlInline(strings.TrimPrefix(trimmed, "# ")))
		case strings.HasPrefix(trimmed, "![") && strings.Contains(trimmed, "]("):
			closeParagraph()
			closeList()
			b.WriteString(htmlImage(trimmed) + "\n")
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			openList("ul")
			item := strings.TrimPrefix(strings.TrimPrefix(trimmed, "- "), "* ")
			fmt.Fprintf(&b, "<li>%s</li>\n", htmlInline(item))
		case orderedItemRe.MatchString(trimmed):
			openList("ol")
			fmt.Fprintf(&b, "<li>%s</li>\n", htmlInline(orderedItemRe.ReplaceAllString(trimmed, "")))
		default:
			closeList()
			if !inParagraph {
				b.WriteString("<p>")
				inParagraph = true
			} else {
				b.WriteString(" ")
			}
			b.WriteString(htmlInline(trimmed))
		}
	}
	closeParagraph()
	closeList()
	if inCode {
		b.WriteString("</code></pre>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

var (
	linkRe  = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	imageRe = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
)

// htmlInline converts bold, italic, inline code, and links.
func htmlInline(text string) string {
	text = boldRe.ReplaceAllString(text, "<strong>$1</strong>")
	text = italicRe.ReplaceAllString(text, "<em>$1</em>")
	text = inlineCodeRe.ReplaceAllString(text, "<code>$1</code>")
	text = linkRe.ReplaceAllString(text, `<a href="$2">$1</a>`)
	return text
}

// htmlImage converts a markdown image line to an img tag.
func htmlImage(line string) string {
	m := imageRe.FindStringSubmatch(line)
	if m == nil {
		return htmlEscape(line)
	}
	return fmt.Sprintf(`<img src="%s" alt="%s">`, m[2], htmlEscape(m[1]))
}

// htmlEscape escapes the HTML special characters.
func htmlEscape(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}

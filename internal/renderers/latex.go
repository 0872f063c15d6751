package renderers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
)

// Ensure LaTeX implements the interface.
var _ driven.Renderer = (*LaTeX)(nil)

// LaTeX renders notes as standalone LaTeX documents with \hyperref links
// between related topics.
type LaTeX struct{}

// NewLaTeX creates a LaTeX renderer.
func NewLaTeX() *LaTeX {
	return &LaTeX{}
}

// Format returns the format this renderer produces.
func (r *LaTeX) Format() domain.NoteFormat {
	return domain.FormatLaTeX
}

var (
	orderedItemRe = regexp.MustCompile(`^\d+\.\s`)
	boldRe        = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe      = regexp.MustCompile(`\*(.*?)\*`)
	inlineCodeRe  = regexp.MustCompile("`(.*?)`")
)

// Render produces the LaTeX output for the note body.
func (r *LaTeX) Render(body *domain.NoteBody, nameFor func(string) string) (string, error) {
	if body == nil {
		return "", domain.ErrInvalidInput
	}
	content := composeMarkdown(body)
	for _, a := range linkAnchors(body, nameFor) {
		target := fmt.Sprintf(`\hyperref[%s]{%s}`, domain.FileSafeName(a.name), a.name)
		content = replaceUnlinked(content, a.name, target, latexLinked)
	}
	return markdownToLaTeX(body.Title, content), nil
}

// latexLinked reports whether the occurrence already sits inside a
// \hyperref label or argument.
func latexLinked(before, after string) bool {
	return strings.HasSuffix(before, "{") || strings.HasSuffix(before, "[")
}

// markdownToLaTeX converts the Markdown intermediate to a complete LaTeX
// document: headings become sections, list blocks become itemize/enumerate
// environments, fenced code becomes verbatim.
func markdownToLaTeX(title, content string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `\documentclass{article}
\usepackage[utf8]{inputenc}
\usepackage{hyperref}
\usepackage{graphicx}
\usepackage{amssymb,amsmath}

\title{%s}
\date{}

\begin{document}

\maketitle

`, title)

	inCode := false
	listEnv := ""

	closeList := func() {
		if listEnv != "" {
			fmt.Fprintf(&b, "\\end{%s}\n\n", listEnv)
			listEnv = ""
		}
	}
	openList := func(env string) {
		if listEnv != env {
			closeList()
			fmt.Fprintf(&b, "\\begin{%s}\n", env)
			listEnv = env
		}
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		// The composed title heading is already rendered by \maketitle.
		if trimmed == "# "+title {
			continue
		}

		if strings.HasPrefix(trimmed, "```") {
			if !inCode {
				b.WriteString("\\begin{verbatim}\n")
			} else {
				b.WriteString("\\end{verbatim}\n\n")
			}
			inCode = !inCode
			continue
		}
		if inCode {
			b.WriteString(line + "\n")
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "### "):
			closeList()
			fmt.Fprintf(&b, "\\subsubsection{%s}\n\n", strings.TrimPrefix(trimmed, "### "))
		case strings.HasPrefix(trimmed, "## "):
			closeList()
			fmt.Fprintf(&b, "\\subsection{%s}\n\n", strings.TrimPrefix(trimmed, "## "))
		case strings.HasPrefix(trimmed, "# "):
			closeList()
			fmt.Fprintf(&b, "\\section{%s}\n\n", strings.TrimPrefix(trimmed, "# "))
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			openList("itemize")
			item := strings.TrimPrefix(strings.TrimPrefix(trimmed, "- "), "* ")
			fmt.Fprintf(&b, "\\item %s\n", latexInline(item))
		case orderedItemRe.MatchString(trimmed):
			openList("enumerate")
			fmt.Fprintf(&b, "\\item %s\n", latexInline(orderedItemRe.ReplaceAllString(trimmed, "")))
		case trimmed == "":
			closeList()
		default:
			closeList()
			b.WriteString(latexInline(trimmed) + "\n\n")
		}
	}
	closeList()
	if inCode {
		b.WriteString("\\end{verbatim}\n\n")
	}

	b.WriteString("\\end{document}\n")
	return b.String()
}

// latexInline converts bold, italic, and inline code markers.
func latexInline(line string) string {
	line = boldRe.ReplaceAllString(line, `\textbf{$1}`)
	line = italicRe.ReplaceAllString(line, `\textit{$1}`)
	line = inlineCodeRe.ReplaceAllString(line, `\texttt{$1}`)
	return line
}

// Package plaintext extracts text and media references from plain text and
// markdown files. It is the fallback extractor: anything that is already
// readable text passes through with a title derived from the filename.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// supportedExtensions lists the file extensions this extractor handles.
var supportedExtensions = map[string]bool{
	".txt":      true,
	".text":     true,
	".md":       true,
	".markdown": true,
}

// imageRefRe matches markdown image references ![alt](target).
var imageRefRe = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)[^)]*\)`)

// Extractor handles plain text and markdown documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Supports reports whether the extractor handles the file extension.
func (e *Extractor) Supports(ext string) bool {
	return supportedExtensions[strings.ToLower(ext)]
}

// Extract reads the file at path and returns its text plus any media it
// references. Markdown image targets that resolve to files on disk become
// image paths; remote targets are recorded as media references only.
func (e *Extractor) Extract(_ context.Context, path string) (*driven.ExtractResult, error) {
	if !e.Supports(filepath.Ext(path)) {
		return nil, fmt.Errorf("%w: unsupported extension %q", domain.ErrInvalidInput, filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrExtractionFailed, path, err)
	}

	text := normaliseText(string(data))
	mediaRefs, imagePaths := collectImages(text, filepath.Dir(path))

	return &driven.ExtractResult{
		Title:      titleFromPath(path),
		Text:       text,
		MediaRefs:  mediaRefs,
		ImagePaths: imagePaths,
	}, nil
}

// titleFromPath derives a human-readable title from the filename.
func titleFromPath(path string) string {
	filename := filepath.Base(path)

	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}

	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")

	return strings.TrimSpace(filename)
}

// normaliseText strips a UTF-8 BOM and normalises line endings.
func normaliseText(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return s
}

// collectImages finds markdown image references in the text. Local targets
// are resolved against the document's directory and kept only if the file
// exists. Every reference, local or remote, lands in the media list once.
func collectImages(text, baseDir string) (mediaRefs, imagePaths []string) {
	seen := make(map[string]bool)

	for _, match := range imageRefRe.FindAllStringSubmatch(text, -1) {
		target := match[1]
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		mediaRefs = append(mediaRefs, target)

		if isRemote(target) {
			continue
		}

		local := target
		if !filepath.IsAbs(local) {
			local = filepath.Join(baseDir, local)
		}
		if info, err := os.Stat(local); err == nil && !info.IsDir() {
			imagePaths = append(imagePaths, local)
		}
	}

	return mediaRefs, imagePaths
}

// isRemote reports whether the image target is a URL rather than a path.
func isRemote(target string) bool {
	return strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "data:")
}

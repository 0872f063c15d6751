package plaintext

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
)

func TestSupports(t *testing.T) {
	e := New()

	assert.True(t, e.Supports(".txt"))
	assert.True(t, e.Supports(".md"))
	assert.True(t, e.Supports(".MD"))
	assert.True(t, e.Supports(".markdown"))
	assert.False(t, e.Supports(".pdf"))
	assert.False(t, e.Supports(".docx"))
	assert.False(t, e.Supports(""))
}

func TestExtract_PlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cell_biology-notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Mitosis has four phases.\r\nMeiosis has two divisions.\n"), 0o600))

	result, err := New().Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "cell biology notes", result.Title)
	assert.Equal(t, "Mitosis has four phases.\nMeiosis has two divisions.\n", result.Text)
	assert.Empty(t, result.MediaRefs)
	assert.Empty(t, result.ImagePaths)
}

func TestExtract_StripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("\uFEFFContent here."), 0o600))

	result, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Content here.", result.Text)
}

func TestExtract_MarkdownImages(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "mitosis.png")
	require.NoError(t, os.WriteFile(imgPath, []byte("png"), 0o600))

	content := "# Cell division\n\n" +
		"![Mitosis diagram](mitosis.png)\n\n" +
		"![Remote](https://example.com/meiosis.png)\n\n" +
		"![Missing](absent.png)\n\n" +
		"![Duplicate](mitosis.png)\n"
	docPath := filepath.Join(dir, "division.md")
	require.NoError(t, os.WriteFile(docPath, []byte(content), 0o600))

	result, err := New().Extract(context.Background(), docPath)
	require.NoError(t, err)

	assert.Equal(t, []string{"mitosis.png", "https://example.com/meiosis.png", "absent.png"}, result.MediaRefs)
	assert.Equal(t, []string{imgPath}, result.ImagePaths)
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	_, err := New().Extract(context.Background(), "/tmp/scan.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExtractionFailed))
}

func TestTitleFromPath(t *testing.T) {
	assert.Equal(t, "study guide", titleFromPath("/docs/study_guide.txt"))
	assert.Equal(t, "cell biology", titleFromPath("cell-biology.md"))
	assert.Equal(t, "notes", titleFromPath("notes"))
}

package openai

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnalyzer_RequiresAPIKey(t *testing.T) {
	_, err := NewAnalyzer(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestNewAnalyzer_AppliesDefaults(t *testing.T) {
	a, err := NewAnalyzer(Config{APIKey: "test-key"})
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, a.baseURL)
	assert.Equal(t, DefaultVisionModel, a.model)
	assert.Equal(t, DefaultTimeout, a.client.Timeout)
}

func TestEncodeImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagram.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 0x50, 0x4e, 0x47}, 0o600))

	dataURL, err := encodeImage(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))
	assert.Equal(t, "data:image/png;base64,iVBORw==", dataURL)
}

func TestEncodeImage_CaseInsensitiveExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.JPG")
	require.NoError(t, os.WriteFile(path, []byte("jpegdata"), 0o600))

	dataURL, err := encodeImage(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dataURL, "data:image/jpeg;base64,"))
}

func TestEncodeImage_UnsupportedType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("text"), 0o600))

	_, err := encodeImage(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported image type")
}

func TestEncodeImage_Missing(t *testing.T) {
	_, err := encodeImage(filepath.Join(t.TempDir(), "absent.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stat image")
}

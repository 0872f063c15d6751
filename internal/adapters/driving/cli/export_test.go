package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCmd_WritesFiles(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	outDir := filepath.Join(t.TempDir(), "notes")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"export", "--out", outDir, "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
		exportDir = "."
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Exported 2 files to "+outDir)

	index, err := os.ReadFile(filepath.Join(outDir, "index.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Cell Biology\n", string(index))

	note, err := os.ReadFile(filepath.Join(outDir, "mitosis.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Mitosis\n", string(note))
}

func TestExportCmd_RejectsUnknownFormat(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"export", "--format", "pdf", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
		exportFormat = ""
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format \"pdf\"")
}

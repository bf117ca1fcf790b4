package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDirectoryImages(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.png":      "png",
		"a.JPG":      "jpg",
		"c.jpeg":     "jpeg",
		"notes.txt":  "skip",
		"model.onnx": "skip",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o755))

	images, err := LoadDirectoryImageFiles(dir)
	require.NoError(t, err)
	require.Len(t, images, 3)

	assert.Equal(t, "a.JPG", images[0].Name())
	assert.Equal(t, "b.png", images[1].Name())
	assert.Equal(t, "c.jpeg", images[2].Name())
	assert.Equal(t, []byte("png"), images[1].Data)
}

func TestLoadDirectoryImagesMissing(t *testing.T) {
	_, err := LoadDirectoryImageFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

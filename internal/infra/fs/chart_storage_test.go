package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavePNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "charts")

	path, err := SavePNG(dir, "risk_distribution", []byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "risk_distribution.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSavePNGOverwrites(t *testing.T) {
	dir := t.TempDir()
	_, err := SavePNG(dir, "a", []byte("old"))
	require.NoError(t, err)
	path, err := SavePNG(dir, "a", []byte("new"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestSavePNGRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	_, err := SavePNG(dir, "a", nil)
	require.Error(t, err)
	_, err = SavePNG(dir, "../escape", []byte("x"))
	require.Error(t, err)
	_, err = SavePNG(dir, "", []byte("x"))
	require.Error(t, err)
}

package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "state.json")

	require.NoError(t, WriteFileAtomic(testFile, []byte("first"), 0600))
	require.NoError(t, WriteFileAtomic(testFile, []byte("second"), 0600))

	content, err := os.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))

	info, err := os.Stat(testFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// No temp files left behind
	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	err := WriteFileAtomic(filepath.Join(t.TempDir(), "nope", "x.json"), []byte("x"), 0600)
	assert.Error(t, err)
}

func TestMkdirAllWithOwnership(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "a", "b", "c")

	require.NoError(t, MkdirAllWithOwnership(nested, 0755))

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenFileWithOwnership(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "append.log")

	f, err := OpenFileWithOwnership(testFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	f.WriteString("line1\n")
	f.Close()

	f2, err := OpenFileWithOwnership(testFile, os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	f2.WriteString("line2\n")
	f2.Close()

	content, _ := os.ReadFile(testFile)
	assert.Equal(t, "line1\nline2\n", string(content))
}

func TestHomeDirWithoutSudo(t *testing.T) {
	t.Setenv("SUDO_USER", "")
	t.Setenv("HOME", t.TempDir())

	home, err := HomeDir()
	require.NoError(t, err)
	assert.Equal(t, os.Getenv("HOME"), home)
}

func TestFixFileOwnershipUnknownSudoUser(t *testing.T) {
	t.Setenv("SUDO_USER", "no-such-user-iskra")
	assert.NoError(t, FixFileOwnership(t.TempDir()))
}

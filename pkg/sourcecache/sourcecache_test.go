package sourcecache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	full := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestCache_GetParsesAndCaches(t *testing.T) {
	root := t.TempDir()
	writeTempFile(t, root, "main.go", "package main\n\nfunc main() {}\n")

	c := New(root)
	source, tree, err := c.Get("main.go", "go")
	require.NoError(t, err)
	require.NotNil(t, tree)
	assert.Contains(t, string(source), "package main")

	// second call hits the cache and returns the identical tree pointer.
	_, tree2, err2 := c.Get("main.go", "go")
	require.NoError(t, err2)
	assert.Same(t, tree, tree2)
}

func TestCache_UnknownLanguageStillCachesSource(t *testing.T) {
	root := t.TempDir()
	writeTempFile(t, root, "README", "hello\n")

	c := New(root)
	source, tree, err := c.Get("README", "plaintext")
	require.NoError(t, err)
	assert.Nil(t, tree)
	assert.Equal(t, "hello\n", string(source))
}

func TestCache_MissingFileCachesError(t *testing.T) {
	root := t.TempDir()
	c := New(root)

	_, _, err := c.Get("missing.go", "go")
	require.Error(t, err)

	_, _, err2 := c.Get("missing.go", "go")
	require.Error(t, err2)
	assert.Equal(t, err, err2)
}

func TestLines(t *testing.T) {
	got := Lines([]byte("a\nb\r\nc"))
	require.Len(t, got, 3)
	assert.Equal(t, "a", string(got[0]))
	assert.Equal(t, "b", string(got[1]))
	assert.Equal(t, "c", string(got[2]))
}

func TestLines_TrailingNewline(t *testing.T) {
	got := Lines([]byte("a\nb\n"))
	require.Len(t, got, 2)
	assert.Equal(t, "a", string(got[0]))
	assert.Equal(t, "b", string(got[1]))
}

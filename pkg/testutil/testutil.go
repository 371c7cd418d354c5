package testutil

import (
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/reposync/pkg/types"
)

// CreateFile creates a file with the given content in the specified directory,
// creating parent directories as needed, and returns its path.
func CreateFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755), "create parent of %s", path)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "create %s", path)
	return path
}

// ReadFile reads the content of a file and returns it as a string.
// It fails the test if the file cannot be read.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err, "read %s", path)
	return string(content)
}

// WriteTree writes files, keyed by slash separated paths relative to root
func WriteTree(t *testing.T, fsys types.FS, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755), "create parent of %s", path)
		require.NoError(t, fsys.WriteFile(path, []byte(content), 0644), "write %s", path)
	}
}

// ReadTree returns every regular file below root keyed by its slash
// separated relative path. Directories named in skip are not descended.
func ReadTree(t *testing.T, fsys types.FS, root string, skip ...string) map[string]string {
	t.Helper()

	skipped := make(map[string]bool, len(skip))
	for _, name := range skip {
		skipped[name] = true
	}

	tree := make(map[string]string)
	var walk func(dir, rel string)
	walk = func(dir, rel string) {
		entries, err := fsys.ReadDir(dir)
		require.NoError(t, err, "read dir %s", dir)
		for _, entry := range entries {
			name := path.Join(rel, entry.Name())
			full := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				if !skipped[entry.Name()] {
					walk(full, name)
				}
				continue
			}
			data, err := fsys.ReadFile(full)
			require.NoError(t, err, "read %s", full)
			tree[name] = string(data)
		}
	}
	walk(root, "")
	return tree
}

// RequireBinary skips the test when name is not on the PATH
func RequireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available", name)
	}
}

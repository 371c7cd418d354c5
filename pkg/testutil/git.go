package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// Signature authors every commit made by CommitFiles
var Signature = &object.Signature{
	Name:  "Sync Test",
	Email: "sync@example.com",
	When:  time.Unix(1700000000, 0),
}

// GitEnv is the environment for git binary invocations in tests. It
// provides an identity for commits and ignores the system config.
var GitEnv = []string{
	"GIT_AUTHOR_NAME=" + Signature.Name,
	"GIT_AUTHOR_EMAIL=" + Signature.Email,
	"GIT_COMMITTER_NAME=" + Signature.Name,
	"GIT_COMMITTER_EMAIL=" + Signature.Email,
	"GIT_CONFIG_NOSYSTEM=1",
}

// InitRepo creates a repository in a new temp dir with files committed as message
func InitRepo(t *testing.T, files map[string]string, message string) (string, *git.Repository) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	CommitFiles(t, dir, repo, files, message)
	return dir, repo
}

// CommitFiles writes and stages files, then commits them as message
func CommitFiles(t *testing.T, dir string, repo *git.Repository, files map[string]string, message string) {
	t.Helper()

	wt, err := repo.Worktree()
	require.NoError(t, err)
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		_, err := wt.Add(name)
		require.NoError(t, err)
	}
	_, err = wt.Commit(message, &git.CommitOptions{Author: Signature, Committer: Signature})
	require.NoError(t, err)
}

// HeadMessage returns the full message of the commit HEAD points to
func HeadMessage(t *testing.T, repo *git.Repository) string {
	t.Helper()

	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	return commit.Message
}

package errors_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/reposync/pkg/config"
	syncerrors "github.com/arthur-debert/reposync/pkg/errors"
	"github.com/arthur-debert/reposync/pkg/filesystem"
	"github.com/arthur-debert/reposync/pkg/matcher"
	"github.com/arthur-debert/reposync/pkg/pattern"
	"github.com/arthur-debert/reposync/pkg/runner"
	"github.com/arthur-debert/reposync/pkg/testutil"
	"github.com/arthur-debert/reposync/pkg/types"
	"github.com/arthur-debert/reposync/pkg/walker"
)

type readOnlyFS struct {
	types.FS
}

func (readOnlyFS) WriteFile(name string, _ []byte, _ fs.FileMode) error {
	return &fs.PathError{Op: "write", Path: name, Err: fs.ErrPermission}
}

func TestWalkerWriteFailure(t *testing.T) {
	mem := filesystem.NewMemory()
	testutil.WriteTree(t, mem, "/src", map[string]string{"docs/a.md": "a"})

	_, err := walker.New(walker.Options{Src: "/src", Dest: "/dest", FS: readOnlyFS{mem}}).Run()
	require.Error(t, err)

	assert.ErrorIs(t, err, syncerrors.ErrFileWrite)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.NotErrorIs(t, err, syncerrors.ErrFileRead)
	assert.Equal(t, "/dest/docs/a.md", syncerrors.GetErrorDetails(err)["path"])
	assert.Contains(t, err.Error(), "[FILE_WRITE]")
}

func TestCommandFailure(t *testing.T) {
	testutil.RequireBinary(t, "sh")

	r := runner.New(t.TempDir(), runner.WithSilent(true))
	err := r.Run(context.Background(), []runner.Command{runner.Shell("echo denied >&2; exit 7")})
	require.Error(t, err)

	assert.ErrorIs(t, err, syncerrors.ErrCommandFailed)
	assert.True(t, syncerrors.IsErrorCode(err, syncerrors.ErrCommandFailed))

	details := syncerrors.GetErrorDetails(err)
	assert.Equal(t, 7, details["exitCode"])
	assert.Equal(t, "denied", details["stderr"])
	assert.Equal(t, "echo denied >&2; exit 7", details["command"])
}

func TestPathEscape(t *testing.T) {
	_, err := matcher.RelPath("/work/src", "/work/dest/a.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, syncerrors.ErrPathEscape)

	rel, err := matcher.RelPath("/work/src", "/work/src/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "/a.txt", rel)
}

func TestInvalidPattern(t *testing.T) {
	_, err := pattern.Parse("re:([")
	require.Error(t, err)
	assert.ErrorIs(t, err, syncerrors.ErrPatternInvalid)

	// the regexp error stays reachable
	assert.Contains(t, err.Error(), "missing closing")
}

func TestConfigValidation(t *testing.T) {
	cfg := config.Defaults()
	cfg.Src = "/work/src"
	cfg.Dest = "/work/dest"
	cfg.Git.Probe = "libgit2"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, syncerrors.ErrConfigValid)
	assert.Equal(t, []string{config.ProbeExec, config.ProbeGoGit}, syncerrors.GetErrorDetails(err)["allowed"])
}

func TestCodesSurviveWrapping(t *testing.T) {
	cause := syncerrors.Newf(syncerrors.ErrDirCreate, "failed to create %s", "/dest").
		WithDetail("path", "/dest")
	err := fmt.Errorf("sync: %w", cause)

	assert.ErrorIs(t, err, syncerrors.ErrDirCreate)
	assert.ErrorIs(t, err, syncerrors.New(syncerrors.ErrDirCreate, "other message"))
	assert.True(t, syncerrors.IsErrorCode(err, syncerrors.ErrDirCreate))
	assert.Equal(t, "/dest", syncerrors.GetErrorDetails(err)["path"])

	var syncErr *syncerrors.SyncError
	require.True(t, errors.As(err, &syncErr))
	assert.Equal(t, "failed to create /dest", syncErr.Message)
}

func TestPlainErrors(t *testing.T) {
	plain := errors.New("boom")

	assert.Nil(t, syncerrors.Wrap(nil, syncerrors.ErrInternal, "nothing"))
	assert.Nil(t, syncerrors.Wrapf(nil, syncerrors.ErrInternal, "nothing %d", 1))
	assert.False(t, syncerrors.IsErrorCode(plain, syncerrors.ErrInternal))
	assert.Nil(t, syncerrors.GetErrorDetails(plain))
	assert.NotErrorIs(t, plain, syncerrors.ErrInternal)
}

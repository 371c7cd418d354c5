package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/reposync/pkg/errors"
	"github.com/arthur-debert/reposync/pkg/pattern"
	"github.com/arthur-debert/reposync/pkg/testutil"
)

func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newApp(dir).rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSyncCommand(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dest := filepath.Join(root, "dest")
	testutil.CreateFile(t, src, "a.txt", "hello acme-internal")
	testutil.CreateFile(t, src, "node_modules/x.js", "x")

	out, err := execute(t, root, "--src", src, "--dest", dest, "--no-git-commit", "-r", "acme-internal$$acme")
	require.NoError(t, err)

	assert.Equal(t, "hello acme", testutil.ReadFile(t, filepath.Join(dest, "a.txt")))
	assert.NoDirExists(t, filepath.Join(dest, "node_modules"))
	assert.Contains(t, out, "[reposync] copy /a.txt -> "+filepath.Join(dest, "a.txt"))
	assert.Contains(t, out, "synced 1 files")
	assert.Contains(t, out, "git: disabled")
	assert.Contains(t, out, "Done in ")
}

func TestSyncCommandSilent(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	testutil.CreateFile(t, src, "a.txt", "a")

	out, err := execute(t, root, "--src", src, "-d", filepath.Join(root, "dest"), "--no-git-commit", "-s")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.FileExists(t, filepath.Join(root, "dest", "a.txt"))
}

func TestSyncCommandUsesConfigFile(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "project")
	testutil.CreateFile(t, project, "keep.md", "keep")
	testutil.CreateFile(t, project, "secret/key.pem", "key")
	testutil.CreateFile(t, project, ".reposync.toml", `
dest = "../public"
exclude = ["secret", ".reposync.toml"]

[git]
commit = false
`)

	_, err := execute(t, project)
	require.NoError(t, err)

	public := filepath.Join(root, "public")
	assert.Equal(t, "keep", testutil.ReadFile(t, filepath.Join(public, "keep.md")))
	assert.NoDirExists(t, filepath.Join(public, "secret"))
	assert.NoFileExists(t, filepath.Join(public, ".reposync.toml"))
}

func TestSyncCommandSkipsYAMLConfigFile(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "project")
	testutil.CreateFile(t, project, "notes.md", "ask acme-secret")
	testutil.CreateFile(t, project, ".reposync.yaml", `
dest: ../public
replace_rules:
  - rules:
      - from: acme-secret
        to: acme
git:
  commit: false
`)

	_, err := execute(t, project)
	require.NoError(t, err)

	public := filepath.Join(root, "public")
	assert.Equal(t, "ask acme", testutil.ReadFile(t, filepath.Join(public, "notes.md")))
	assert.NoFileExists(t, filepath.Join(public, ".reposync.yaml"))
}

func TestSyncCommandSkipsExplicitConfigFile(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "project")
	testutil.CreateFile(t, project, "notes.md", "ask acme-secret")
	testutil.CreateFile(t, project, "publish.toml", `
dest = "../public"

[[replace_rules]]
rules = [{ from = "acme-secret", to = "acme" }]

[git]
commit = false
`)

	_, err := execute(t, project, "-c", "publish.toml")
	require.NoError(t, err)

	public := filepath.Join(root, "public")
	assert.Equal(t, "ask acme", testutil.ReadFile(t, filepath.Join(public, "notes.md")))
	assert.NoFileExists(t, filepath.Join(public, "publish.toml"))
}

func TestSyncCommandDefaultDest(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "project")
	testutil.CreateFile(t, project, "a.txt", "a")

	_, err := execute(t, project, "--no-git-commit", "-s")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "project-sync", "a.txt"))
}

func TestSyncCommandHookFailure(t *testing.T) {
	testutil.RequireBinary(t, "sh")
	root := t.TempDir()
	src := filepath.Join(root, "src")
	testutil.CreateFile(t, src, "a.txt", "a")

	_, err := execute(t, root, "--src", src, "-d", filepath.Join(root, "dest"),
		"--git-before", "exit 3", "--git-after", "touch after", "-s")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCommandFailed))
	assert.Equal(t, 3, errors.GetErrorDetails(err)["exitCode"])
	assert.NoFileExists(t, filepath.Join(root, "dest", "after"))
}

func TestSyncCommandSameDirectory(t *testing.T) {
	root := t.TempDir()
	_, err := execute(t, root, "--src", root, "--dest", root)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
}

func TestOverrides(t *testing.T) {
	a := newApp(t.TempDir())
	cmd := a.rootCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--no-git-push",
		"--include", "/src", "--include", "glob:*.md",
		"-r", "foo$$bar$$re:\\.js$",
		"-r", "not a rule",
		"-n",
		"--git-probe", "go-git",
		"--rm-before", "docs",
	}))

	o, err := a.overrides(cmd)
	require.NoError(t, err)

	require.NotNil(t, o.GitPush)
	assert.False(t, *o.GitPush)
	assert.Nil(t, o.GitCommit)
	assert.Nil(t, o.GitRebase)
	require.NotNil(t, o.GitNoVerify)
	assert.True(t, *o.GitNoVerify)
	require.NotNil(t, o.GitProbe)
	assert.Equal(t, "go-git", *o.GitProbe)
	assert.Equal(t, []string{"docs"}, o.RmBefore)
	assert.Nil(t, o.Src)
	assert.Nil(t, o.Exclude)
	assert.Nil(t, o.HooksBefore)

	require.Len(t, o.Include, 2)
	assert.Equal(t, pattern.KindGlob, o.Include[1].Kind())

	require.Len(t, o.ReplaceRules, 1)
	assert.Equal(t, "re:\\.js$", o.ReplaceRules[0].Match.String())
	assert.Equal(t, "bar", o.ReplaceRules[0].Rules[0].To)
}

func TestOverridesInvalidPattern(t *testing.T) {
	a := newApp(t.TempDir())
	cmd := a.rootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--exclude", "re:("}))

	_, err := a.overrides(cmd)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPatternInvalid))
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "config", "init")
	require.NoError(t, err)
	path := filepath.Join(dir, ".reposync.toml")
	assert.FileExists(t, path)
	assert.Contains(t, out, "created "+path)

	require.NoError(t, os.WriteFile(path, []byte("# mine\n"), 0644))
	out, err = execute(t, dir, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
	assert.Equal(t, "# mine\n", testutil.ReadFile(t, path))

	_, err = execute(t, dir, "config", "init", "--name", "sync")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "sync.toml"))
}

func TestConfigGet(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "config", "get")
	require.NoError(t, err)
	assert.Contains(t, out, "node_modules")
	assert.Contains(t, out, "[git]")

	testutil.CreateFile(t, dir, "custom.yaml", "dest: ../mirror\nexclude: [vendor]\n")
	out, err = execute(t, dir, "config", "get", "--name", "custom.yaml", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "../mirror")
	assert.Contains(t, out, "vendor")
	assert.NotContains(t, out, "node_modules")

	_, err = execute(t, dir, "config", "get", "--format", "json")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "reposync version dev")
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, t.TempDir(), "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "reposync")

	_, err = execute(t, t.TempDir(), "completion", "tcsh")
	assert.Error(t, err)
}

func TestExecuteRendersError(t *testing.T) {
	root := t.TempDir()
	var stdout, stderr bytes.Buffer

	code := Execute(context.Background(), []string{
		"--src", filepath.Join(root, "src"),
		"--dest", filepath.Join(root, "dest"),
		"--git-probe", "hg",
	}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Error: ")
	assert.Contains(t, stderr.String(), `unknown git probe "hg"`)
	assert.NotContains(t, stderr.String(), "allowed")

	stderr.Reset()
	code = Execute(context.Background(), []string{
		"--src", filepath.Join(root, "src"),
		"--dest", filepath.Join(root, "dest"),
		"--git-probe", "hg",
		"--debug",
	}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "allowed")
}

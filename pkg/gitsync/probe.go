package gitsync

import (
	"context"
	"strings"

	"github.com/arthur-debert/reposync/pkg/config"
	"github.com/arthur-debert/reposync/pkg/errors"
	"github.com/arthur-debert/reposync/pkg/runner"
)

// Probe inspects a git working tree
type Probe interface {
	// ChangedFiles lists tracked files that differ from HEAD
	ChangedFiles(ctx context.Context, dir string) ([]string, error)
	// HeadSubject returns the subject line of the HEAD commit
	HeadSubject(ctx context.Context, dir string) (string, error)
}

// OutputRunner captures the stdout of a command run in dir
type OutputRunner interface {
	Output(ctx context.Context, dir string, cmd runner.Command) (string, error)
}

// NewProbe returns the probe implementation named by kind
func NewProbe(kind string, r OutputRunner) (Probe, error) {
	switch kind {
	case "", config.ProbeExec:
		return NewExecProbe(r), nil
	case config.ProbeGoGit:
		return NewGoGitProbe(), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown git probe %q", kind)
	}
}

// ExecProbe inspects repositories by running the git binary
type ExecProbe struct {
	runner OutputRunner
}

// NewExecProbe creates a probe running git through r
func NewExecProbe(r OutputRunner) *ExecProbe {
	return &ExecProbe{runner: r}
}

// ChangedFiles runs "git diff HEAD --name-only" in dir
func (p *ExecProbe) ChangedFiles(ctx context.Context, dir string) ([]string, error) {
	out, err := p.runner.Output(ctx, dir, runner.Exec("git", "diff", "HEAD", "--name-only"))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrGitProbe, "failed to list changes in %s", dir).
			WithDetail("dir", dir)
	}

	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// HeadSubject runs "git log --pretty=%s -1" in dir
func (p *ExecProbe) HeadSubject(ctx context.Context, dir string) (string, error) {
	out, err := p.runner.Output(ctx, dir, runner.Exec("git", "log", "--pretty=%s", "-1"))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrGitProbe, "failed to read HEAD subject in %s", dir).
			WithDetail("dir", dir)
	}
	return strings.TrimSpace(out), nil
}

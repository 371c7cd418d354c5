package gitsync

import (
	"context"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/arthur-debert/reposync/pkg/errors"
)

// GoGitProbe inspects repositories with go-git, without a git binary
type GoGitProbe struct{}

// NewGoGitProbe creates a go-git backed probe
func NewGoGitProbe() *GoGitProbe {
	return &GoGitProbe{}
}

func (p *GoGitProbe) open(dir string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrGitProbe, "failed to open repository at %s", dir).
			WithDetail("dir", dir)
	}
	return repo, nil
}

// ChangedFiles lists tracked files whose index or worktree state differs
// from HEAD. Untracked files are not reported.
func (p *GoGitProbe) ChangedFiles(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	repo, err := p.open(dir)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrGitProbe, "repository at %s has no worktree", dir)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrGitProbe, "failed to get status of %s", dir)
	}

	var files []string
	for path, fileStatus := range status {
		if fileStatus.Staging == git.Untracked || fileStatus.Worktree == git.Untracked {
			continue
		}
		if fileStatus.Staging == git.Unmodified && fileStatus.Worktree == git.Unmodified {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// HeadSubject returns the subject of the HEAD commit: its first paragraph
// joined on one line, like git's %s placeholder
func (p *GoGitProbe) HeadSubject(ctx context.Context, dir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	repo, err := p.open(dir)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrGitProbe, "failed to resolve HEAD in %s", dir)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrGitProbe, "failed to read HEAD commit in %s", dir)
	}
	return subject(commit.Message), nil
}

func subject(message string) string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(message), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, " ")
}

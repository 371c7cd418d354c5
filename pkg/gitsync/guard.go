package gitsync

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/reposync/pkg/config"
	"github.com/arthur-debert/reposync/pkg/filesystem"
	"github.com/arthur-debert/reposync/pkg/logging"
	"github.com/arthur-debert/reposync/pkg/runner"
	"github.com/arthur-debert/reposync/pkg/types"
)

// Outcome is the result of one guard evaluation
type Outcome int

const (
	Disabled Outcome = iota
	NotARepository
	SourceDirty
	NoChanges
	AlreadySynced
	Committed
)

func (o Outcome) String() string {
	switch o {
	case Disabled:
		return "disabled"
	case NotARepository:
		return "not a repository"
	case SourceDirty:
		return "source has uncommitted changes"
	case NoChanges:
		return "no changes"
	case AlreadySynced:
		return "already synced"
	case Committed:
		return "committed"
	default:
		return "unknown"
	}
}

// CommandRunner runs the commit sequence in the destination
type CommandRunner interface {
	Run(ctx context.Context, commands []runner.Command) error
}

// Options configures a Guard
type Options struct {
	Src    string
	Dest   string
	Policy config.GitPolicy
	Probe  Probe
	Runner CommandRunner
	// FS is used to look for dest/.git, the OS filesystem when nil
	FS types.FS
}

// Guard commits a finished sync in the destination repository when it is
// safe and useful to do so
type Guard struct {
	src    string
	dest   string
	policy config.GitPolicy
	probe  Probe
	runner CommandRunner
	fs     types.FS
	logger zerolog.Logger
}

// New creates a guard
func New(opts Options) *Guard {
	g := &Guard{
		src:    opts.Src,
		dest:   opts.Dest,
		policy: opts.Policy,
		probe:  opts.Probe,
		runner: opts.Runner,
		fs:     opts.FS,
		logger: logging.GetLogger("gitsync"),
	}
	if g.fs == nil {
		g.fs = filesystem.NewOS()
	}
	return g
}

// Sync evaluates the preconditions and runs the commit sequence when all
// of them pass
func (g *Guard) Sync(ctx context.Context) (Outcome, error) {
	if !g.policy.Commit {
		g.logger.Debug().Msg("Git commit disabled")
		return Disabled, nil
	}

	if _, err := g.fs.Lstat(filepath.Join(g.dest, ".git")); err != nil {
		if os.IsNotExist(err) {
			g.logger.Warn().Str("dest", g.dest).Msg("Destination is not a git repository, skipping commit")
			return NotARepository, nil
		}
		return NotARepository, err
	}

	srcChanges, err := g.probe.ChangedFiles(ctx, g.src)
	if err != nil {
		return SourceDirty, err
	}
	if len(srcChanges) > 0 {
		g.logger.Warn().
			Str("src", g.src).
			Strs("files", srcChanges).
			Msg("Source has uncommitted changes, skipping commit")
		return SourceDirty, nil
	}

	destChanges, err := g.probe.ChangedFiles(ctx, g.dest)
	if err != nil {
		return NoChanges, err
	}
	if len(destChanges) == 0 {
		g.logger.Info().Str("dest", g.dest).Msg("No changes to commit")
		return NoChanges, nil
	}

	srcSubject, err := g.probe.HeadSubject(ctx, g.src)
	if err != nil {
		return AlreadySynced, err
	}
	destSubject, err := g.probe.HeadSubject(ctx, g.dest)
	if err != nil {
		return AlreadySynced, err
	}
	if srcSubject == destSubject {
		g.logger.Info().Str("subject", srcSubject).Msg("Latest commit already synced")
		return AlreadySynced, nil
	}

	g.logger.Info().
		Str("subject", srcSubject).
		Int("files", len(destChanges)).
		Msg("Committing sync")
	if err := g.runner.Run(ctx, CommitCommands(srcSubject, g.policy)); err != nil {
		return Committed, err
	}
	return Committed, nil
}

// CommitCommands returns the git commands that publish a sync
func CommitCommands(subject string, policy config.GitPolicy) []runner.Command {
	commit := runner.Exec("git", "commit", "-m", subject)
	if policy.NoVerify {
		commit.Argv = append(commit.Argv, "--no-verify")
	}

	cmds := []runner.Command{
		runner.Exec("git", "add", "--all"),
		commit,
	}
	if policy.Rebase {
		cmds = append(cmds, runner.Exec("git", "pull", "--rebase", "--no-verify"))
	}
	if policy.Push {
		cmds = append(cmds, runner.Exec("git", "push"))
	}
	return cmds
}

// Package engine runs one sync: prune, walk, hooks and the git guard.
//
// An Engine is owned by its caller and holds no process-wide state. The
// configuration is read at construction and is not modified afterwards.
package engine

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/reposync/pkg/config"
	"github.com/arthur-debert/reposync/pkg/errors"
	"github.com/arthur-debert/reposync/pkg/filesystem"
	"github.com/arthur-debert/reposync/pkg/gitsync"
	"github.com/arthur-debert/reposync/pkg/logging"
	"github.com/arthur-debert/reposync/pkg/matcher"
	"github.com/arthur-debert/reposync/pkg/prune"
	"github.com/arthur-debert/reposync/pkg/rewrite"
	"github.com/arthur-debert/reposync/pkg/runner"
	"github.com/arthur-debert/reposync/pkg/types"
	"github.com/arthur-debert/reposync/pkg/walker"
)

// Reporter receives progress of a sync run
type Reporter interface {
	walker.Reporter
	Pruned(report prune.Report)
	Synced(files int)
	Outcome(outcome gitsync.Outcome)
}

type nopReporter struct{}

func (nopReporter) DirCreated(string) {}
func (nopReporter) FileCopied(string, string) {}
func (nopReporter) Pruned(prune.Report) {}
func (nopReporter) Synced(int) {}
func (nopReporter) Outcome(gitsync.Outcome) {}

// CommandRunner runs hooks and the commit sequence in dest
type CommandRunner interface {
	gitsync.CommandRunner
	gitsync.OutputRunner
}

// Result summarizes one sync run
type Result struct {
	// Files is the number of files copied
	Files int
	Prune prune.Report
	// GitEvaluated is false when no file was copied and the guard was skipped
	GitEvaluated bool
	Outcome      gitsync.Outcome
	Duration     time.Duration
}

// Option customizes an Engine
type Option func(*Engine)

// WithFS replaces the OS filesystem used by the walker and the pruner
func WithFS(fs types.FS) Option {
	return func(e *Engine) {
		e.fs = fs
	}
}

// WithReporter sets the progress reporter
func WithReporter(r Reporter) Option {
	return func(e *Engine) {
		e.reporter = r
	}
}

// WithRunner replaces the command runner
func WithRunner(r CommandRunner) Option {
	return func(e *Engine) {
		e.runner = r
	}
}

// WithProbe replaces the git probe selected by the configuration
func WithProbe(p gitsync.Probe) Option {
	return func(e *Engine) {
		e.probe = p
	}
}

// Engine ties the sync components together for one configuration. Runs
// must not overlap.
type Engine struct {
	cfg      *config.Config
	fs       types.FS
	reporter Reporter
	runner   CommandRunner
	probe    gitsync.Probe
	matcher  *matcher.Matcher
	rewriter *rewrite.Rewriter
	logger   zerolog.Logger
}

// New creates an engine for a finalized configuration
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		logger: logging.GetLogger("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.fs == nil {
		e.fs = filesystem.NewOS()
	}
	if e.reporter == nil {
		e.reporter = nopReporter{}
	}
	if e.runner == nil {
		e.runner = runner.New(cfg.Dest, runner.WithSilent(cfg.Silent))
	}
	if e.probe == nil {
		probe, err := gitsync.NewProbe(cfg.Git.Probe, e.runner)
		if err != nil {
			return nil, err
		}
		e.probe = probe
	}

	m, err := matcher.FromConfig(cfg, e.fs)
	if err != nil {
		return nil, err
	}
	e.matcher = m
	e.rewriter = rewrite.New(cfg.ReplaceRules)
	return e, nil
}

// Config returns the configuration of the engine
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Matcher returns the include/exclude policy of the last run, or the one
// built by New before the first run
func (e *Engine) Matcher() *matcher.Matcher {
	return e.matcher
}

// Sync performs one sync run. Ignore files are read again on every run.
func (e *Engine) Sync(ctx context.Context) (Result, error) {
	start := time.Now()
	done := logging.LogOperationStart(e.logger, "sync")
	defer done()

	var result Result
	e.logger.Info().Str("src", e.cfg.Src).Str("dest", e.cfg.Dest).Msg("Starting sync")

	// ignore files may have changed since the last run
	m, err := matcher.FromConfig(e.cfg, e.fs)
	if err != nil {
		return result, err
	}
	e.matcher = m

	report, err := e.prepareDest()
	if err != nil {
		return result, err
	}
	result.Prune = report
	e.reporter.Pruned(report)

	w := walker.New(walker.Options{
		Src:      e.cfg.Src,
		Dest:     e.cfg.Dest,
		FS:       e.fs,
		Matcher:  e.matcher,
		Rewriter: e.rewriter,
		Reporter: e.reporter,
	})
	walkStart := time.Now()
	result.Files, err = w.Run()
	if err != nil {
		return result, err
	}
	logging.LogDuration(e.logger, walkStart, "walk")
	e.reporter.Synced(result.Files)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if err := e.runner.Run(ctx, runner.Shells(e.cfg.Hooks.Before)); err != nil {
		return result, err
	}

	if result.Files > 0 {
		guard := gitsync.New(gitsync.Options{
			Src:    e.cfg.Src,
			Dest:   e.cfg.Dest,
			Policy: e.cfg.Git,
			Probe:  e.probe,
			Runner: e.runner,
			FS:     e.fs,
		})
		result.GitEvaluated = true
		guardStart := time.Now()
		result.Outcome, err = guard.Sync(ctx)
		if err != nil {
			return result, err
		}
		logging.LogDuration(e.logger, guardStart, "git guard")
		e.reporter.Outcome(result.Outcome)
	}

	if err := e.runner.Run(ctx, runner.Shells(e.cfg.Hooks.After)); err != nil {
		return result, err
	}

	result.Duration = time.Since(start)
	e.logger.Info().
		Int("files", result.Files).
		Bool("gitEvaluated", result.GitEvaluated).
		Stringer("outcome", result.Outcome).
		Dur("duration", result.Duration).
		Msg("Sync finished")
	return result, nil
}

// prepareDest prunes an existing destination or creates a missing one
func (e *Engine) prepareDest() (prune.Report, error) {
	info, err := e.fs.Stat(e.cfg.Dest)
	switch {
	case err == nil && info.IsDir():
		return prune.New(e.fs).Prune(e.cfg.Dest, e.cfg.RmBefore), nil
	case err == nil:
		return prune.Report{}, errors.Newf(errors.ErrDirCreate, "dest %s exists and is not a directory", e.cfg.Dest).
			WithDetail("path", e.cfg.Dest)
	case os.IsNotExist(err):
		if err := e.fs.MkdirAll(e.cfg.Dest, 0755); err != nil {
			return prune.Report{}, errors.Wrapf(err, errors.ErrDirCreate, "failed to create dest %s", e.cfg.Dest).
				WithDetail("path", e.cfg.Dest)
		}
		e.logger.Info().Str("dest", e.cfg.Dest).Msg("Created destination")
		return prune.Report{}, nil
	default:
		return prune.Report{}, errors.Wrapf(err, errors.ErrDirRead, "failed to stat dest %s", e.cfg.Dest).
			WithDetail("path", e.cfg.Dest)
	}
}

// Package runner executes hook and git commands in the destination directory.
//
// Commands run strictly in order and each one blocks until it exits. The
// first non-zero exit aborts the batch with an ErrCommandFailed error that
// carries the command, its exit code and its captured stderr.
package runner

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/reposync/pkg/errors"
	"github.com/arthur-debert/reposync/pkg/logging"
)

// Command is either a shell line or an argv list
type Command struct {
	// Shell is run with "sh -c"
	Shell string
	// Argv is executed directly, no quoting involved
	Argv []string
}

// Shell returns a command run through the shell
func Shell(line string) Command {
	return Command{Shell: line}
}

// Exec returns a command executed without a shell
func Exec(name string, args ...string) Command {
	return Command{Argv: append([]string{name}, args...)}
}

// Shells converts hook lines to commands, skipping blank ones
func Shells(lines []string) []Command {
	out := make([]Command, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, Shell(line))
	}
	return out
}

// String renders the command for logs and errors
func (c Command) String() string {
	if c.Shell != "" {
		return c.Shell
	}
	parts := make([]string, len(c.Argv))
	for i, arg := range c.Argv {
		if arg == "" || strings.ContainsAny(arg, " \t\n'\"") {
			arg = "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
		}
		parts[i] = arg
	}
	return strings.Join(parts, " ")
}

func (c Command) build(ctx context.Context) (*exec.Cmd, error) {
	switch {
	case c.Shell != "":
		return exec.CommandContext(ctx, "sh", "-c", c.Shell), nil
	case len(c.Argv) > 0:
		return exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...), nil
	default:
		return nil, errors.New(errors.ErrInvalidInput, "empty command")
	}
}

// Runner executes commands in a working directory
type Runner struct {
	dir    string
	silent bool
	stdout io.Writer
	stderr io.Writer
	env    []string
	logger zerolog.Logger
}

// Option configures a Runner
type Option func(*Runner)

// WithSilent captures output and logs it at debug level instead of
// streaming it
func WithSilent(silent bool) Option {
	return func(r *Runner) {
		r.silent = silent
	}
}

// WithOutput sets the writers output is streamed to
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithEnv appends KEY=VALUE pairs to the inherited environment
func WithEnv(env ...string) Option {
	return func(r *Runner) {
		r.env = append(r.env, env...)
	}
}

// New creates a runner working in dir
func New(dir string, opts ...Option) *Runner {
	r := &Runner{
		dir:    dir,
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: logging.GetLogger("runner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir returns the working directory of Run
func (r *Runner) Dir() string {
	return r.dir
}

// Run executes commands in order, stopping at the first failure
func (r *Runner) Run(ctx context.Context, commands []Command) error {
	for _, c := range commands {
		if err := r.run(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) run(ctx context.Context, c Command) error {
	cmd, err := c.build(ctx)
	if err != nil {
		return err
	}
	cmd.Dir = r.dir
	r.setEnv(cmd)

	var stdout, stderr bytes.Buffer
	if r.silent {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	} else {
		cmd.Stdout = r.stdout
		cmd.Stderr = io.MultiWriter(r.stderr, &stderr)
	}

	logging.LogCommand(r.logger, c.String(), r.dir)
	err = cmd.Run()

	if stdout.Len() > 0 {
		r.logger.Debug().Str("command", c.String()).Str("output", stdout.String()).Msg("Command stdout")
	}
	if r.silent && stderr.Len() > 0 {
		r.logger.Debug().Str("command", c.String()).Str("output", stderr.String()).Msg("Command stderr")
	}

	if err != nil {
		return r.failure(c, err, stderr.String())
	}
	return nil
}

// Output runs a command in dir and returns its stdout. Output is never
// streamed.
func (r *Runner) Output(ctx context.Context, dir string, c Command) (string, error) {
	cmd, err := c.build(ctx)
	if err != nil {
		return "", err
	}
	cmd.Dir = dir
	r.setEnv(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Trace().Str("command", c.String()).Str("dir", dir).Msg("Capturing command output")
	if err := cmd.Run(); err != nil {
		return stdout.String(), r.failure(c, err, stderr.String())
	}
	return stdout.String(), nil
}

func (r *Runner) setEnv(cmd *exec.Cmd) {
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}
}

func (r *Runner) failure(c Command, err error, stderr string) error {
	exitCode := -1
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	r.logger.Error().
		Err(err).
		Str("command", c.String()).
		Int("exitCode", exitCode).
		Str("stderr", stderr).
		Msg("Command failed")

	return errors.Wrapf(err, errors.ErrCommandFailed, "command failed: %s", c.String()).
		WithDetail("command", c.String()).
		WithDetail("exitCode", exitCode).
		WithDetail("stderr", strings.TrimSpace(stderr))
}

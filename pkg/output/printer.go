package output

import (
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/reposync/pkg/gitsync"
	"github.com/arthur-debert/reposync/pkg/prune"
)

// Prefix starts every progress line
const Prefix = "[reposync]"

var (
	prefixStyle  = pterm.NewStyle(pterm.FgCyan, pterm.Bold)
	pathStyle    = pterm.NewStyle(pterm.FgLightBlue)
	mutedStyle   = pterm.NewStyle(pterm.FgGray)
	successStyle = pterm.NewStyle(pterm.FgGreen, pterm.Bold)
	warningStyle = pterm.NewStyle(pterm.FgYellow, pterm.Bold)
	errorStyle   = pterm.NewStyle(pterm.FgRed, pterm.Bold)
)

// Printer writes progress lines for a sync run
type Printer struct {
	out    io.Writer
	silent bool
	color  bool
}

// New creates a printer writing to w. Colors are detected from w.
func New(w io.Writer, silent bool) *Printer {
	return &Printer{out: w, silent: silent, color: ColorEnabled(w)}
}

// WithColor forces colors on or off
func (p *Printer) WithColor(color bool) *Printer {
	p.color = color
	return p
}

// Silent reports whether progress lines are suppressed
func (p *Printer) Silent() bool {
	return p.silent
}

func (p *Printer) style(s *pterm.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Sprint(text)
}

func (p *Printer) line(text string) {
	fmt.Fprintf(p.out, "%s %s\n", p.style(prefixStyle, Prefix), text)
}

// Info prints a progress line unless silent
func (p *Printer) Info(format string, args ...interface{}) {
	if p.silent {
		return
	}
	p.line(fmt.Sprintf(format, args...))
}

// Success prints a highlighted progress line unless silent
func (p *Printer) Success(format string, args ...interface{}) {
	if p.silent {
		return
	}
	p.line(p.style(successStyle, fmt.Sprintf(format, args...)))
}

// Warning prints a warning, even when silent
func (p *Printer) Warning(format string, args ...interface{}) {
	p.line(p.style(warningStyle, "warning: ") + fmt.Sprintf(format, args...))
}

// Error prints an error, even when silent
func (p *Printer) Error(format string, args ...interface{}) {
	p.line(p.style(errorStyle, "error: ") + fmt.Sprintf(format, args...))
}

// DirCreated reports a destination directory created by the walker
func (p *Printer) DirCreated(path string) {
	p.Info("create directory %s", p.style(pathStyle, path))
}

// FileCopied reports a file written by the walker
func (p *Printer) FileCopied(rel, dest string) {
	p.Info("copy %s %s %s", p.style(pathStyle, rel), p.style(mutedStyle, "->"), p.style(pathStyle, dest))
}

// Synced reports the number of files copied by the walk
func (p *Printer) Synced(files int) {
	p.Info("synced %d files", files)
}

// Pruned reports the outcome of the pre-sync cleanup
func (p *Printer) Pruned(report prune.Report) {
	for _, path := range report.Removed {
		p.Info("remove %s", p.style(pathStyle, path))
	}
	for _, path := range report.Refused {
		p.Warning("refusing to remove %s, it is outside of dest", path)
	}
	for _, failure := range report.Failed {
		p.Warning("failed to remove %s: %v", failure.Path, failure.Err)
	}
}

// Outcome reports the decision of the git guard
func (p *Printer) Outcome(outcome gitsync.Outcome) {
	switch outcome {
	case gitsync.Committed:
		p.Success("git: %s", outcome)
	case gitsync.NotARepository, gitsync.SourceDirty:
		p.Warning("git: %s, nothing committed", outcome)
	default:
		p.Info("git: %s", outcome)
	}
}

// Done prints the total run time in milliseconds
func (p *Printer) Done(elapsed time.Duration) {
	p.Success("Done in %dms", elapsed.Milliseconds())
}

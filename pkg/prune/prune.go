// Package prune removes destination paths before a sync.
//
// Every path is resolved against the destination root and removed on its
// own. Paths escaping the root, or naming the root itself, are refused.
// Failures are reported as warnings and never stop the sync.
package prune

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/reposync/pkg/logging"
	"github.com/arthur-debert/reposync/pkg/types"
)

// Failure is a path that could not be removed
type Failure struct {
	Path string
	Err  error
}

// Report lists what happened to each requested path
type Report struct {
	Removed []string
	Refused []string
	Missing []string
	Failed  []Failure
}

// Empty reports whether nothing was requested
func (r Report) Empty() bool {
	return len(r.Removed)+len(r.Refused)+len(r.Missing)+len(r.Failed) == 0
}

// Pruner deletes paths inside a destination root
type Pruner struct {
	fs     types.FS
	logger zerolog.Logger
}

// New creates a pruner working on fs
func New(fs types.FS) *Pruner {
	return &Pruner{
		fs:     fs,
		logger: logging.GetLogger("prune"),
	}
}

// Prune removes each path under destRoot recursively
func (p *Pruner) Prune(destRoot string, paths []string) Report {
	var report Report
	root := filepath.Clean(destRoot)

	for _, raw := range paths {
		if raw == "" {
			continue
		}
		target, ok := resolve(root, raw)
		if !ok {
			p.logger.Warn().Str("path", raw).Str("dest", root).Msg("Refusing to remove path outside of dest")
			report.Refused = append(report.Refused, raw)
			continue
		}

		if _, err := p.fs.Lstat(target); err != nil {
			if os.IsNotExist(err) {
				p.logger.Debug().Str("path", target).Msg("Nothing to remove")
				report.Missing = append(report.Missing, target)
				continue
			}
			p.logger.Warn().Err(err).Str("path", target).Msg("Failed to inspect path")
			report.Failed = append(report.Failed, Failure{Path: target, Err: err})
			continue
		}

		if err := p.fs.RemoveAll(target); err != nil {
			p.logger.Warn().Err(err).Str("path", target).Msg("Failed to remove path")
			report.Failed = append(report.Failed, Failure{Path: target, Err: err})
			continue
		}
		p.logger.Info().Str("path", target).Msg("Removed")
		report.Removed = append(report.Removed, target)
	}
	return report
}

// resolve joins path onto root and reports whether the result is strictly
// inside root
func resolve(root, path string) (string, bool) {
	var target string
	if filepath.IsAbs(path) {
		target = filepath.Clean(path)
	} else {
		target = filepath.Join(root, path)
	}

	rel, err := filepath.Rel(root, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return target, false
	}
	return target, true
}

// Package walker mirrors the source tree into the destination.
//
// The walk is depth-first in directory listing order. Directories are
// offered to the matcher before they are entered, so an excluded directory
// is never read. Each accepted file goes through the rewriter and is written
// to the same relative location under the destination root, keeping its
// permission bits. The first read or write error aborts the walk.
package walker

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/reposync/pkg/errors"
	"github.com/arthur-debert/reposync/pkg/logging"
	"github.com/arthur-debert/reposync/pkg/matcher"
	"github.com/arthur-debert/reposync/pkg/rewrite"
	"github.com/arthur-debert/reposync/pkg/types"
)

// Reporter receives progress notifications
type Reporter interface {
	DirCreated(path string)
	FileCopied(rel, dest string)
}

type nopReporter struct{}

func (nopReporter) DirCreated(string) {}
func (nopReporter) FileCopied(string, string) {}

// Options configures a Walker
type Options struct {
	Src      string
	Dest     string
	FS       types.FS
	Matcher  *matcher.Matcher
	Rewriter *rewrite.Rewriter
	Reporter Reporter
}

// Walker copies accepted files from Src to Dest
type Walker struct {
	src      string
	dest     string
	fs       types.FS
	matcher  *matcher.Matcher
	rewriter *rewrite.Rewriter
	reporter Reporter
	logger   zerolog.Logger

	count int
}

// New creates a walker. A nil Matcher includes everything, a nil Rewriter
// copies content unchanged.
func New(opts Options) *Walker {
	w := &Walker{
		src:      filepath.Clean(opts.Src),
		dest:     filepath.Clean(opts.Dest),
		fs:       opts.FS,
		matcher:  opts.Matcher,
		rewriter: opts.Rewriter,
		reporter: opts.Reporter,
		logger:   logging.GetLogger("walker"),
	}
	if w.matcher == nil {
		w.matcher = matcher.New(nil, nil)
	}
	if w.rewriter == nil {
		w.rewriter = rewrite.New(nil)
	}
	if w.reporter == nil {
		w.reporter = nopReporter{}
	}
	return w
}

// Run resets the file counter, walks the source root and returns the
// number of files copied
func (w *Walker) Run() (int, error) {
	w.count = 0
	if err := w.walk(w.src); err != nil {
		return w.count, err
	}
	return w.count, nil
}

// Count returns the number of files copied by the current or last run
func (w *Walker) Count() int {
	return w.count
}

func (w *Walker) walk(dir string) error {
	info, err := w.fs.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			w.logger.Debug().Str("path", dir).Msg("Directory does not exist")
			return nil
		}
		return errors.Wrapf(err, errors.ErrDirRead, "failed to stat directory %s", dir).
			WithDetail("path", dir)
	}
	if !info.IsDir() {
		return nil
	}
	rel, err := matcher.RelPath(w.src, dir)
	if err != nil {
		return err
	}
	if !w.matcher.ShouldInclude(rel) {
		w.logger.Debug().Str("path", rel).Msg("Skipping directory")
		return nil
	}

	entries, err := w.fs.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrDirRead, "failed to read directory %s", dir).
			WithDetail("path", dir)
	}

	for _, entry := range entries {
		child := filepath.Join(dir, entry.Name())
		if child == w.dest {
			w.logger.Debug().Str("path", child).Msg("Skipping destination inside source")
			continue
		}

		childRel, err := matcher.RelPath(w.src, child)
		if err != nil {
			return err
		}
		if !w.matcher.ShouldInclude(childRel) {
			w.logger.Debug().Str("path", childRel).Msg("Skipping")
			continue
		}

		// Stat follows symlinks, so linked directories are walked too
		childInfo, err := w.fs.Stat(child)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileRead, "failed to stat %s", child).
				WithDetail("path", child)
		}
		if childInfo.IsDir() {
			if err := w.walk(child); err != nil {
				return err
			}
			continue
		}

		if err := w.copyFile(child, childRel, childInfo.Mode().Perm()); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) copyFile(src, rel string, perm os.FileMode) error {
	target, err := w.destPath(rel)
	if err != nil {
		return err
	}

	parent := filepath.Dir(target)
	if _, err := w.fs.Stat(parent); err != nil {
		if err := w.fs.MkdirAll(parent, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory %s", parent).
				WithDetail("path", parent)
		}
		w.logger.Info().Str("path", parent).Msg("Created directory")
		w.reporter.DirCreated(parent)
	}

	data, err := w.fs.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileRead, "failed to read %s", src).
			WithDetail("path", src)
	}
	if w.rewriter.Applies(rel) {
		data = []byte(w.rewriter.Rewrite(rel, string(data)))
	}

	if err := w.fs.WriteFile(target, data, perm); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", target).
			WithDetail("path", target)
	}
	// WriteFile only applies perm to new files
	if err := w.fs.Chmod(target, perm); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to set mode of %s", target).
			WithDetail("path", target)
	}

	w.count++
	w.logger.Info().Str("from", rel).Str("to", target).Msg("Copied")
	w.reporter.FileCopied(rel, target)
	return nil
}

// destPath maps a matcher path onto the destination root
func (w *Walker) destPath(rel string) (string, error) {
	target := filepath.Join(w.dest, filepath.FromSlash(strings.TrimPrefix(rel, "/")))
	back, err := filepath.Rel(w.dest, target)
	if err != nil || back == "." || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrPathEscape, "%s resolves outside of %s", rel, w.dest).
			WithDetail("path", target)
	}
	return target, nil
}

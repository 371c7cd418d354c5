// Package watch re-runs a sync whenever the source tree changes.
//
// Directories are watched recursively with fsnotify. Directories the
// matcher rejects are never watched and events for rejected paths are
// dropped, so writes under .git or node_modules do not trigger a run.
// Events are debounced and runs are serialized on the watch loop.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/reposync/pkg/errors"
	"github.com/arthur-debert/reposync/pkg/logging"
	"github.com/arthur-debert/reposync/pkg/matcher"
)

// DefaultDebounce is the quiet period after the last event before a run
const DefaultDebounce = 500 * time.Millisecond

// SyncFunc performs one sync run
type SyncFunc func(ctx context.Context) error

// Options configures a Watcher
type Options struct {
	// Root is the source directory to watch
	Root    string
	Matcher *matcher.Matcher
	// Skip is a directory below Root that is never watched, usually dest
	Skip     string
	Debounce time.Duration
	Sync     SyncFunc
	// Reload, when set, is called after every run and replaces Matcher
	// with the policy that run used
	Reload func() *matcher.Matcher
}

// Watcher watches a source tree and runs Sync after changes settle
type Watcher struct {
	root     string
	skip     string
	matcher  *matcher.Matcher
	debounce time.Duration
	sync     SyncFunc
	reload   func() *matcher.Matcher
	fsw      *fsnotify.Watcher
	runs     int
	logger   zerolog.Logger
}

// New creates a watcher. Close must be called when Run is not used.
func New(opts Options) (*Watcher, error) {
	if opts.Sync == nil {
		return nil, errors.New(errors.ErrInvalidInput, "watch needs a sync function")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Matcher == nil {
		opts.Matcher = matcher.New(nil, nil)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrWatch, "failed to create file watcher")
	}

	return &Watcher{
		root:     filepath.Clean(opts.Root),
		skip:     opts.Skip,
		matcher:  opts.Matcher,
		debounce: opts.Debounce,
		sync:     opts.Sync,
		reload:   opts.Reload,
		fsw:      fsw,
		logger:   logging.GetLogger("watch"),
	}, nil
}

// Close releases the underlying watcher
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run performs an initial sync and then syncs again after every burst of
// changes until ctx is done. Sync errors are logged and do not stop the
// watch. Run closes the watcher before returning.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	info, err := os.Stat(w.root)
	if err != nil {
		return errors.Wrapf(err, errors.ErrWatch, "cannot watch %s", w.root).WithDetail("path", w.root)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrWatch, "cannot watch %s: not a directory", w.root).WithDetail("path", w.root)
	}
	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.logger.Info().Str("root", w.root).Dur("debounce", w.debounce).Msg("Watching for changes")

	w.runSync(ctx)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Int("runs", w.runs).Msg("Watch stopped")
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.handle(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("File watcher error")

		case <-fire:
			fire = nil
			w.runSync(ctx)
		}
	}
}

// handle reports whether ev should schedule a run. New directories are
// added to the watch.
func (w *Watcher) handle(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	rel, ok := w.relevant(ev.Name)
	if !ok {
		return false
	}
	w.logger.Debug().Str("path", rel).Stringer("op", ev.Op).Msg("Change detected")

	if ev.Has(fsnotify.Create) {
		if err := w.addTree(ev.Name); err != nil {
			w.logger.Warn().Err(err).Str("path", ev.Name).Msg("Cannot watch new directory")
		}
	}
	return true
}

func (w *Watcher) relevant(path string) (string, bool) {
	if w.skip != "" && (path == w.skip || strings.HasPrefix(path, w.skip+string(filepath.Separator))) {
		return "", false
	}
	rel, err := matcher.RelPath(w.root, path)
	if err != nil {
		return "", false
	}
	return rel, w.matcher.ShouldInclude(rel)
}

// addTree watches dir and every accepted directory below it. A path that
// is not a directory is ignored.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				if os.IsNotExist(err) {
					return nil
				}
				return errors.Wrapf(err, errors.ErrWatch, "failed to read %s", path).
					WithDetail("path", path)
			}
			w.logger.Warn().Err(err).Str("path", path).Msg("Skipping unreadable directory")
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root {
			if _, ok := w.relevant(path); !ok {
				return filepath.SkipDir
			}
		}
		if err := w.fsw.Add(path); err != nil {
			return errors.Wrapf(err, errors.ErrWatch, "failed to watch %s", path).
				WithDetail("path", path)
		}
		w.logger.Trace().Str("path", path).Msg("Watching directory")
		return nil
	})
}

func (w *Watcher) runSync(ctx context.Context) {
	w.runs++
	if err := w.sync(ctx); err != nil && ctx.Err() == nil {
		w.logger.Error().Err(err).Int("run", w.runs).Msg("Sync failed, still watching")
	}
	if w.reload == nil || ctx.Err() != nil {
		return
	}
	if m := w.reload(); m != nil && m != w.matcher {
		w.matcher = m
		// directories accepted by the new policy start being watched
		if err := w.addTree(w.root); err != nil {
			w.logger.Warn().Err(err).Msg("Cannot refresh watched directories")
		}
	}
}

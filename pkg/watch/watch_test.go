package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/reposync/pkg/errors"
	"github.com/arthur-debert/reposync/pkg/matcher"
	"github.com/arthur-debert/reposync/pkg/pattern"
)

const (
	debounce = 50 * time.Millisecond
	waitFor  = 5 * time.Second
	tick     = 10 * time.Millisecond
)

type counter struct {
	calls   atomic.Int32
	active  atomic.Int32
	overlap atomic.Bool
	delay   time.Duration
	err     error
}

func (c *counter) sync(ctx context.Context) error {
	if c.active.Add(1) > 1 {
		c.overlap.Store(true)
	}
	defer c.active.Add(-1)
	c.calls.Add(1)
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
		}
	}
	return c.err
}

func start(t *testing.T, root string, c *counter, opts ...func(*Options)) (cancel func()) {
	t.Helper()
	o := Options{
		Root:     root,
		Matcher:  matcher.New(nil, []pattern.Pattern{pattern.Literal("node_modules"), pattern.MustParse(`re:(^|/)\.git(/|$)`)}),
		Debounce: debounce,
		Sync:     c.sync,
	}
	for _, opt := range opts {
		opt(&o)
	}
	w, err := New(o)
	require.NoError(t, err)

	ctx, cancelCtx := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return c.calls.Load() >= 1 }, waitFor, tick, "initial sync")
	return func() {
		cancelCtx()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(waitFor):
			t.Fatal("watch did not stop")
		}
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNewRequiresSync(t *testing.T) {
	_, err := New(Options{Root: t.TempDir()})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestNewDefaultsDebounce(t *testing.T) {
	w, err := New(Options{Root: t.TempDir(), Sync: func(context.Context) error { return nil }})
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, DefaultDebounce, w.debounce)
}

func TestWatchResyncsOnChange(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.txt"), "a")

	c := &counter{}
	stop := start(t, root, c)
	defer stop()

	write(t, filepath.Join(root, "a.txt"), "changed")
	assert.Eventually(t, func() bool { return c.calls.Load() >= 2 }, waitFor, tick)
}

func TestWatchDebouncesBursts(t *testing.T) {
	root := t.TempDir()
	c := &counter{}
	stop := start(t, root, c, func(o *Options) { o.Debounce = 300 * time.Millisecond })
	defer stop()

	for i := 0; i < 5; i++ {
		write(t, filepath.Join(root, "burst.txt"), string(rune('a'+i)))
	}
	require.Eventually(t, func() bool { return c.calls.Load() >= 2 }, waitFor, tick)
	assert.Never(t, func() bool { return c.calls.Load() > 2 }, 600*time.Millisecond, tick)
}

func TestWatchIgnoresExcludedPaths(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "node_modules", "dep.js"), "x")
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0755))

	c := &counter{}
	stop := start(t, root, c)
	defer stop()

	write(t, filepath.Join(root, "node_modules", "dep.js"), "y")
	write(t, filepath.Join(root, ".git", "index"), "z")
	assert.Never(t, func() bool { return c.calls.Load() > 1 }, 400*time.Millisecond, tick)
}

func TestWatchSkipsDest(t *testing.T) {
	root := t.TempDir()
	dest := filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(dest, 0755))

	c := &counter{}
	stop := start(t, root, c, func(o *Options) { o.Skip = dest })
	defer stop()

	write(t, filepath.Join(dest, "copy.txt"), "x")
	assert.Never(t, func() bool { return c.calls.Load() > 1 }, 400*time.Millisecond, tick)
}

func TestWatchFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	c := &counter{}
	stop := start(t, root, c)
	defer stop()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0755))
	require.Eventually(t, func() bool { return c.calls.Load() >= 2 }, waitFor, tick)

	write(t, filepath.Join(root, "pkg", "new.go"), "package pkg")
	assert.Eventually(t, func() bool { return c.calls.Load() >= 3 }, waitFor, tick)
}

func TestWatchContinuesAfterFailure(t *testing.T) {
	root := t.TempDir()
	c := &counter{err: errors.New(errors.ErrCommandFailed, "hook failed")}
	stop := start(t, root, c)
	defer stop()

	write(t, filepath.Join(root, "a.txt"), "a")
	require.Eventually(t, func() bool { return c.calls.Load() >= 2 }, waitFor, tick)
	write(t, filepath.Join(root, "b.txt"), "b")
	assert.Eventually(t, func() bool { return c.calls.Load() >= 3 }, waitFor, tick)
}

func TestWatchRunsNeverOverlap(t *testing.T) {
	root := t.TempDir()
	c := &counter{delay: 200 * time.Millisecond}
	stop := start(t, root, c, func(o *Options) { o.Debounce = 10 * time.Millisecond })
	defer stop()

	for i := 0; i < 4; i++ {
		write(t, filepath.Join(root, "f.txt"), string(rune('a'+i)))
		time.Sleep(60 * time.Millisecond)
	}
	require.Eventually(t, func() bool { return c.calls.Load() >= 2 }, waitFor, tick)
	assert.False(t, c.overlap.Load())
}

func TestWatchMissingRoot(t *testing.T) {
	w, err := New(Options{Root: filepath.Join(t.TempDir(), "missing"), Sync: func(context.Context) error { return nil }})
	require.NoError(t, err)
	err = w.Run(context.Background())
	assert.True(t, errors.IsErrorCode(err, errors.ErrWatch))
}

func TestWatchReloadsPolicyAfterRun(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "scratch", "a.txt"), "a")

	reloaded := matcher.New(nil, []pattern.Pattern{pattern.Literal("scratch")})
	c := &counter{}
	stop := start(t, root, c, func(o *Options) {
		o.Reload = func() *matcher.Matcher { return reloaded }
	})
	defer stop()

	write(t, filepath.Join(root, "scratch", "a.txt"), "b")
	assert.Never(t, func() bool { return c.calls.Load() > 1 }, 400*time.Millisecond, tick)

	write(t, filepath.Join(root, "keep.txt"), "k")
	assert.Eventually(t, func() bool { return c.calls.Load() >= 2 }, waitFor, tick)
}

package matcher

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/arthur-debert/reposync/pkg/config"
	syncerrors "github.com/arthur-debert/reposync/pkg/errors"
	"github.com/arthur-debert/reposync/pkg/logging"
	"github.com/arthur-debert/reposync/pkg/pattern"
	"github.com/arthur-debert/reposync/pkg/types"
)

// Root is the matcher path of the source root
const Root = "/"

// paths that never take part in a sync
var alwaysExcluded = map[string]bool{
	"":    true,
	".":   true,
	"..":  true,
	"'..": true,
}

// Matcher is an immutable include/exclude policy
type Matcher struct {
	include []pattern.Pattern
	exclude []pattern.Pattern
	ignores []*ignore.GitIgnore
	// exact matcher paths rejected before any rule is consulted
	files  map[string]bool
	logger zerolog.Logger
}

// New creates a matcher from include and exclude patterns and optional
// compiled ignore files
func New(include, exclude []pattern.Pattern, ignores ...*ignore.GitIgnore) *Matcher {
	return &Matcher{
		include: include,
		exclude: exclude,
		ignores: ignores,
		files:   map[string]bool{},
		logger:  logging.GetLogger("matcher"),
	}
}

// FromConfig builds the matcher of a sync run. Ignore files are read from
// fsys, relative to cfg.Src. The config file the run was loaded from never
// syncs when it lives under cfg.Src, whatever its name.
func FromConfig(cfg *config.Config, fsys types.FS) (*Matcher, error) {
	ignores, err := LoadIgnoreFiles(fsys, cfg.Src, cfg.IgnoreFiles)
	if err != nil {
		return nil, err
	}
	m := New(cfg.Include, cfg.Exclude, ignores...)
	if file, err := filepath.Abs(cfg.File); cfg.File != "" && err == nil {
		if rel, err := RelPath(cfg.Src, file); err == nil && rel != Root {
			m.files[rel] = true
		}
	}
	return m, nil
}

// LoadIgnoreFiles compiles gitignore-format files relative to root.
// Missing files are skipped.
func LoadIgnoreFiles(fsys types.FS, root string, files []string) ([]*ignore.GitIgnore, error) {
	logger := logging.GetLogger("matcher")

	var out []*ignore.GitIgnore
	for _, name := range files {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, name)
		}
		content, err := fsys.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Debug().Str("file", path).Msg("Ignore file not found, skipping")
				continue
			}
			return nil, syncerrors.Wrapf(err, syncerrors.ErrFileRead, "failed to read ignore file %s", path).
				WithDetail("path", path)
		}
		lines := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
		logger.Debug().Str("file", path).Int("lines", len(lines)).Msg("Loaded ignore file")
		out = append(out, ignore.CompileIgnoreLines(lines...))
	}
	return out, nil
}

// ShouldInclude reports whether path takes part in the sync
func (m *Matcher) ShouldInclude(path string) bool {
	if alwaysExcluded[path] {
		return false
	}
	path = Normalize(path)
	if path == Root {
		return true
	}
	if m.files[path] {
		m.logger.Trace().Str("path", path).Msg("Config file")
		return false
	}

	if len(m.include) > 0 {
		for _, p := range m.include {
			if p.MatchPath(path) {
				return true
			}
		}
		m.logger.Trace().Str("path", path).Msg("Not in include list")
		return false
	}

	for _, p := range m.exclude {
		if p.MatchPath(path) {
			m.logger.Trace().Str("path", path).Str("pattern", p.String()).Msg("Excluded")
			return false
		}
	}

	rel := strings.TrimPrefix(path, "/")
	for _, ig := range m.ignores {
		if ig.MatchesPath(rel) {
			m.logger.Trace().Str("path", path).Msg("Ignored by ignore file")
			return false
		}
	}
	return true
}

// Normalize converts a path to matcher form: forward slashes and a leading "/"
func Normalize(path string) string {
	path = strings.ReplaceAll(path, `\`, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// RelPath returns the matcher form of path relative to root. It fails when
// path is not inside root.
func RelPath(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", syncerrors.Wrapf(err, syncerrors.ErrPathEscape, "%s is not inside %s", path, root)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", syncerrors.Newf(syncerrors.ErrPathEscape, "%s is not inside %s", path, root)
	}
	if rel == "." {
		return Root, nil
	}
	return Normalize(filepath.ToSlash(rel)), nil
}

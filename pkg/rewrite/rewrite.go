// Package rewrite applies ordered, path-scoped find/replace rules to file content.
package rewrite

import (
	"github.com/rs/zerolog"

	"github.com/arthur-debert/reposync/pkg/config"
	"github.com/arthur-debert/reposync/pkg/logging"
)

// Rewriter transforms file content according to replace rule sets.
// It never touches the filesystem.
type Rewriter struct {
	sets   []config.ReplaceRuleSet
	logger zerolog.Logger
}

// New creates a rewriter for the given rule sets, applied in order
func New(sets []config.ReplaceRuleSet) *Rewriter {
	return &Rewriter{
		sets:   sets,
		logger: logging.GetLogger("rewrite"),
	}
}

// Rewrite returns content with every applicable rule applied. path is the
// matcher form of the file path and scopes rule sets with a match pattern.
func (r *Rewriter) Rewrite(path, content string) string {
	for i, set := range r.sets {
		if len(set.Rules) == 0 {
			continue
		}
		if !set.Match.IsZero() && !set.Match.MatchPath(path) {
			continue
		}
		for _, rule := range set.Rules {
			if rule.From.IsZero() || rule.From.Source() == "" {
				continue
			}
			content = rule.From.ReplaceAll(content, rule.To)
		}
		r.logger.Trace().Str("path", path).Int("ruleSet", i).Msg("Applied rule set")
	}
	return content
}

// Applies reports whether at least one rule set is in scope for path
func (r *Rewriter) Applies(path string) bool {
	for _, set := range r.sets {
		if len(set.Rules) == 0 {
			continue
		}
		if set.Match.IsZero() || set.Match.MatchPath(path) {
			return true
		}
	}
	return false
}

package config

import (
	"strings"

	"github.com/arthur-debert/reposync/pkg/errors"
	"github.com/arthur-debert/reposync/pkg/pattern"
)

// InlineRuleSeparator splits the parts of an inline rule
const InlineRuleSeparator = "$$"

// ParseInlineRule parses "from$$to$$match" into a one-rule set. The to and
// match parts are optional. ok is false for strings without a separator,
// which are ignored.
func ParseInlineRule(text string) (set ReplaceRuleSet, ok bool, err error) {
	if !strings.Contains(text, InlineRuleSeparator) {
		return ReplaceRuleSet{}, false, nil
	}

	parts := strings.Split(text, InlineRuleSeparator)
	from, err := pattern.Parse(parts[0])
	if err != nil {
		return ReplaceRuleSet{}, false, err
	}
	if !from.IsZero() && !from.CanReplace() {
		return ReplaceRuleSet{}, false, errors.Newf(errors.ErrInvalidInput,
			"inline rule %q: %s patterns cannot be used as a replace source", text, from.Kind())
	}

	rule := ReplaceRule{From: from}
	if len(parts) > 1 {
		rule.To = parts[1]
	}

	if len(parts) > 2 {
		if set.Match, err = pattern.Parse(parts[2]); err != nil {
			return ReplaceRuleSet{}, false, err
		}
	}
	set.Rules = []ReplaceRule{rule}
	return set, true, nil
}

// ParseInlineRules parses every inline rule, dropping strings without a separator
func ParseInlineRules(texts []string) ([]ReplaceRuleSet, error) {
	sets := make([]ReplaceRuleSet, 0, len(texts))
	for _, text := range texts {
		set, ok, err := ParseInlineRule(text)
		if err != nil {
			return nil, err
		}
		if ok {
			sets = append(sets, set)
		}
	}
	return sets, nil
}

// Package pattern implements the rule values used for path filtering and
// content rewriting.
//
// A Pattern is a tagged variant: a literal string, a regular expression or a
// doublestar glob. The textual form selects the kind by prefix:
//
//	node_modules          literal, matched as a case-insensitive substring
//	re:\.txt$             regular expression (Go RE2 syntax)
//	glob:**/*.md          doublestar glob, path matching only
//
// Path matching is always case-insensitive. Content replacement is
// case-sensitive for literals and multiline for regular expressions.
package pattern

import (
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/arthur-debert/reposync/pkg/errors"
)

// Kind tags the variant held by a Pattern
type Kind int

const (
	KindNone Kind = iota
	KindLiteral
	KindRegex
	KindGlob
)

const (
	regexPrefix = "re:"
	globPrefix  = "glob:"
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindRegex:
		return "regex"
	case KindGlob:
		return "glob"
	default:
		return "none"
	}
}

// Pattern is an immutable, pre-compiled rule value. The zero value is the
// unset pattern.
type Pattern struct {
	kind   Kind
	source string

	pathRe    *regexp.Regexp
	contentRe *regexp.Regexp
	lowerText string
}

// Literal returns a literal pattern
func Literal(text string) Pattern {
	return Pattern{kind: KindLiteral, source: text, lowerText: strings.ToLower(text)}
}

// Regex compiles a regular expression pattern
func Regex(source string) (Pattern, error) {
	pathRe, err := regexp.Compile("(?i)" + source)
	if err != nil {
		return Pattern{}, errors.Wrapf(err, errors.ErrPatternInvalid, "invalid regular expression %q", source)
	}
	contentRe, err := regexp.Compile("(?m)" + source)
	if err != nil {
		return Pattern{}, errors.Wrapf(err, errors.ErrPatternInvalid, "invalid regular expression %q", source)
	}
	return Pattern{kind: KindRegex, source: source, pathRe: pathRe, contentRe: contentRe}, nil
}

// MustRegex is Regex for patterns known to be valid
func MustRegex(source string) Pattern {
	p, err := Regex(source)
	if err != nil {
		panic(err)
	}
	return p
}

// Glob validates a doublestar glob pattern
func Glob(expr string) (Pattern, error) {
	lower := strings.ToLower(expr)
	if !doublestar.ValidatePattern(lower) {
		return Pattern{}, errors.Newf(errors.ErrPatternInvalid, "invalid glob %q", expr)
	}
	return Pattern{kind: KindGlob, source: expr, lowerText: lower}, nil
}

// Parse reads the textual form of a pattern. An empty string yields the
// unset pattern.
func Parse(text string) (Pattern, error) {
	switch {
	case text == "":
		return Pattern{}, nil
	case strings.HasPrefix(text, regexPrefix):
		return Regex(strings.TrimPrefix(text, regexPrefix))
	case strings.HasPrefix(text, globPrefix):
		return Glob(strings.TrimPrefix(text, globPrefix))
	default:
		return Literal(text), nil
	}
}

// MustParse is Parse for patterns known to be valid
func MustParse(text string) Pattern {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseAll parses a list of textual patterns, skipping empty entries
func ParseAll(texts []string) ([]Pattern, error) {
	out := make([]Pattern, 0, len(texts))
	for _, text := range texts {
		p, err := Parse(text)
		if err != nil {
			return nil, err
		}
		if p.IsZero() {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Kind returns the variant tag
func (p Pattern) Kind() Kind { return p.kind }

// Source returns the pattern text without its kind prefix
func (p Pattern) Source() string { return p.source }

// IsZero reports whether the pattern is unset
func (p Pattern) IsZero() bool { return p.kind == KindNone }

// String returns the textual form accepted by Parse
func (p Pattern) String() string {
	switch p.kind {
	case KindRegex:
		return regexPrefix + p.source
	case KindGlob:
		return globPrefix + p.source
	default:
		return p.source
	}
}

// MatchPath reports whether a slash-separated path matches, ignoring case.
// The unset pattern matches nothing.
func (p Pattern) MatchPath(path string) bool {
	switch p.kind {
	case KindLiteral:
		return p.source != "" && strings.Contains(strings.ToLower(path), p.lowerText)
	case KindRegex:
		return p.pathRe.MatchString(path)
	case KindGlob:
		ok, err := doublestar.Match(p.lowerText, strings.TrimPrefix(strings.ToLower(path), "/"))
		return err == nil && ok
	default:
		return false
	}
}

// ReplaceAll replaces every occurrence of the pattern in content. Regex
// replacements expand $1 and ${name} references in repl.
func (p Pattern) ReplaceAll(content, repl string) string {
	switch p.kind {
	case KindLiteral:
		if p.source == "" {
			return content
		}
		return strings.ReplaceAll(content, p.source, repl)
	case KindRegex:
		return p.contentRe.ReplaceAllString(content, repl)
	default:
		return content
	}
}

// CanReplace reports whether the pattern may be used as a replace source
func (p Pattern) CanReplace() bool {
	return p.kind == KindLiteral || p.kind == KindRegex
}

// Equal compares kind and source
func (p Pattern) Equal(other Pattern) bool {
	return p.kind == other.kind && p.source == other.source
}

// MarshalText implements encoding.TextMarshaler
func (p Pattern) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Pattern) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

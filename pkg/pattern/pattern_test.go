package pattern

import (
	"testing"

	"github.com/arthur-debert/reposync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelectsKind(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantKind Kind
		wantSrc  string
	}{
		{"empty is unset", "", KindNone, ""},
		{"plain text is literal", "node_modules", KindLiteral, "node_modules"},
		{"re prefix", `re:\.txt$`, KindRegex, `\.txt$`},
		{"glob prefix", "glob:**/*.md", KindGlob, "**/*.md"},
		{"regex metachars stay literal", "a.b", KindLiteral, "a.b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, p.Kind())
			assert.Equal(t, tt.wantSrc, p.Source())
			assert.Equal(t, tt.text, p.String())
		})
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse("re:(unclosed")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPatternInvalid))

	_, err = Parse("glob:[a-")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPatternInvalid))
}

func TestMatchPath(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"node_modules", "/node_modules/x.js", true},
		{"NODE_MODULES", "/node_modules/x.js", true},
		{"node_modules", "/src/y.js", false},
		{"a.b", "/axb", false},
		{`re:\.txt$`, "/a/B.TXT", true},
		{`re:\.txt$`, "/a/b.txt.bak", false},
		{`re:(^|/)\.git(/|$)`, "/.git", true},
		{`re:(^|/)\.git(/|$)`, "/.git/HEAD", true},
		{`re:(^|/)\.git(/|$)`, "/.github/workflows", false},
		{"glob:**/*.md", "/docs/README.MD", true},
		{"glob:**/*.md", "/main.go", false},
		{"glob:src/**", "/src/a/b.go", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParse(tt.pattern).MatchPath(tt.path))
		})
	}
}

func TestZeroPatternMatchesNothing(t *testing.T) {
	var p Pattern
	assert.True(t, p.IsZero())
	assert.False(t, p.MatchPath("/anything"))
	assert.Equal(t, "content", p.ReplaceAll("content", "x"))
	assert.False(t, p.CanReplace())
}

func TestReplaceAll(t *testing.T) {
	t.Run("literal is exact and global", func(t *testing.T) {
		p := Literal("old")
		assert.Equal(t, "new new OLD", p.ReplaceAll("old old OLD", "new"))
	})

	t.Run("literal does not interpret regex or dollar", func(t *testing.T) {
		p := Literal("a.c")
		assert.Equal(t, "abc $1", p.ReplaceAll("abc a.c", "$1"))
	})

	t.Run("regex is multiline", func(t *testing.T) {
		p := MustRegex(`^\[.+\n`)
		assert.Equal(t, "keep\n", p.ReplaceAll("[drop me]\nkeep\n[and me]\n", ""))
	})

	t.Run("regex expands groups", func(t *testing.T) {
		p := MustRegex(`@(\w+)/`)
		assert.Equal(t, "#scope/pkg", p.ReplaceAll("@scope/pkg", "#${1}/"))
	})

	t.Run("glob cannot replace", func(t *testing.T) {
		p := MustParse("glob:*.md")
		assert.False(t, p.CanReplace())
		assert.Equal(t, "x.md", p.ReplaceAll("x.md", "y"))
	})
}

func TestTextRoundTrip(t *testing.T) {
	var p Pattern
	require.NoError(t, p.UnmarshalText([]byte(`re:^v\d+`)))
	assert.Equal(t, KindRegex, p.Kind())

	text, err := p.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, `re:^v\d+`, string(text))
	assert.True(t, p.Equal(MustParse(`re:^v\d+`)))
}

func TestParseAllSkipsEmpty(t *testing.T) {
	got, err := ParseAll([]string{"dist", "", "re:x"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, KindLiteral, got[0].Kind())
	assert.Equal(t, KindRegex, got[1].Kind())
}

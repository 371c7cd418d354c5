package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/reposync/pkg/errors"
)

//go:embed embedded/sample.toml
var sampleTOML []byte

//go:embed embedded/sample.yaml
var sampleYAML []byte

// Output formats for Render
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// NormalizeFileName appends ".toml" unless the name already has a supported extension
func NormalizeFileName(name string) string {
	if name == "" {
		name = DefaultFileName
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml", ".yaml", ".yml":
		return name
	default:
		return name + ".toml"
	}
}

// SampleContent returns the commented sample configuration for a file name
func SampleContent(name string) []byte {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return sampleYAML
	default:
		return sampleTOML
	}
}

// WriteSample creates the sample config file in dir. An existing file is
// left untouched and created is false.
func WriteSample(dir, name string) (path string, created bool, err error) {
	name = NormalizeFileName(name)
	path = name
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, name)
	}

	if _, statErr := os.Stat(path); statErr == nil {
		return path, false, nil
	}

	if err := os.WriteFile(path, SampleContent(name), 0644); err != nil {
		return path, false, errors.Wrapf(err, errors.ErrConfigWrite, "failed to write %s", path)
	}
	return path, true, nil
}

// document is the serializable view of a Config
type document struct {
	Src          string        `toml:"src" yaml:"src"`
	Dest         string        `toml:"dest" yaml:"dest"`
	Include      []string      `toml:"include" yaml:"include"`
	Exclude      []string      `toml:"exclude" yaml:"exclude"`
	IgnoreFiles  []string      `toml:"ignore_files" yaml:"ignore_files"`
	RmBefore     []string      `toml:"rm_before" yaml:"rm_before"`
	Silent       bool          `toml:"silent" yaml:"silent"`
	Debug        bool          `toml:"debug" yaml:"debug"`
	Git          gitDocument   `toml:"git" yaml:"git"`
	Hooks        hooksDocument `toml:"hooks" yaml:"hooks"`
	ReplaceRules []ruleSetDoc  `toml:"replace_rules" yaml:"replace_rules"`
}

type gitDocument struct {
	Commit   bool   `toml:"commit" yaml:"commit"`
	Rebase   bool   `toml:"rebase" yaml:"rebase"`
	Push     bool   `toml:"push" yaml:"push"`
	NoVerify bool   `toml:"no_verify" yaml:"no_verify"`
	Probe    string `toml:"probe" yaml:"probe"`
}

type hooksDocument struct {
	Before []string `toml:"before" yaml:"before"`
	After  []string `toml:"after" yaml:"after"`
}

type ruleSetDoc struct {
	Match string    `toml:"match,omitempty" yaml:"match,omitempty"`
	Rules []ruleDoc `toml:"rules" yaml:"rules"`
}

type ruleDoc struct {
	From string `toml:"from" yaml:"from"`
	To   string `toml:"to" yaml:"to"`
}

func (c *Config) document() document {
	doc := document{
		Src:         c.Src,
		Dest:        c.Dest,
		Include:     make([]string, 0, len(c.Include)),
		Exclude:     make([]string, 0, len(c.Exclude)),
		IgnoreFiles: nonNil(c.IgnoreFiles),
		RmBefore:    nonNil(c.RmBefore),
		Silent:      c.Silent,
		Debug:       c.Debug,
		Git: gitDocument{
			Commit:   c.Git.Commit,
			Rebase:   c.Git.Rebase,
			Push:     c.Git.Push,
			NoVerify: c.Git.NoVerify,
			Probe:    c.Git.Probe,
		},
		Hooks:        hooksDocument{Before: nonNil(c.Hooks.Before), After: nonNil(c.Hooks.After)},
		ReplaceRules: make([]ruleSetDoc, 0, len(c.ReplaceRules)),
	}
	for _, p := range c.Include {
		doc.Include = append(doc.Include, p.String())
	}
	for _, p := range c.Exclude {
		doc.Exclude = append(doc.Exclude, p.String())
	}
	for _, set := range c.ReplaceRules {
		sd := ruleSetDoc{Match: set.Match.String(), Rules: make([]ruleDoc, 0, len(set.Rules))}
		for _, r := range set.Rules {
			sd.Rules = append(sd.Rules, ruleDoc{From: r.From.String(), To: r.To})
		}
		doc.ReplaceRules = append(doc.ReplaceRules, sd)
	}
	return doc
}

// Render serializes the configuration as TOML or YAML
func Render(c *Config, format string) ([]byte, error) {
	doc := c.document()
	switch strings.ToLower(format) {
	case "", FormatTOML:
		out, err := toml.Marshal(doc)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to render toml")
		}
		return out, nil
	case FormatYAML, "yml":
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to render yaml")
		}
		return out, nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown format %q", format).
			WithDetail("allowed", []string{FormatTOML, FormatYAML})
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

package config

import (
	"path/filepath"

	"github.com/arthur-debert/reposync/pkg/errors"
	"github.com/arthur-debert/reposync/pkg/pattern"
)

// Git probe implementations
const (
	ProbeExec  = "exec"
	ProbeGoGit = "go-git"
)

// DefaultFileName is the config file looked up in the working directory
const DefaultFileName = ".reposync.toml"

// Config is the resolved configuration of one sync run
type Config struct {
	Src          string            `koanf:"src"`
	Dest         string            `koanf:"dest"`
	Include      []pattern.Pattern `koanf:"include"`
	Exclude      []pattern.Pattern `koanf:"exclude"`
	IgnoreFiles  []string          `koanf:"ignore_files"`
	ReplaceRules []ReplaceRuleSet  `koanf:"replace_rules"`
	RmBefore     []string          `koanf:"rm_before"`
	Git          GitPolicy         `koanf:"git"`
	Hooks        Hooks             `koanf:"hooks"`
	Silent       bool              `koanf:"silent"`
	Debug        bool              `koanf:"debug"`

	// File is the config file that was loaded, empty when none was
	File string `koanf:"-"`
}

// ReplaceRuleSet is an ordered group of rules scoped by an optional path pattern
type ReplaceRuleSet struct {
	Match pattern.Pattern `koanf:"match"`
	Rules []ReplaceRule   `koanf:"rules"`
}

// ReplaceRule replaces every occurrence of From with To
type ReplaceRule struct {
	From pattern.Pattern `koanf:"from"`
	To   string          `koanf:"to"`
}

// GitPolicy controls the commit step after a sync
type GitPolicy struct {
	Commit   bool   `koanf:"commit"`
	Rebase   bool   `koanf:"rebase"`
	Push     bool   `koanf:"push"`
	NoVerify bool   `koanf:"no_verify"`
	Probe    string `koanf:"probe"`
}

// Hooks are shell commands run in dest around the git step
type Hooks struct {
	Before []string `koanf:"before"`
	After  []string `koanf:"after"`
}

// Finalize resolves src and dest against cwd and validates the result.
// An empty src is cwd; an empty dest is the sibling "<cwd name>-sync".
func (c *Config) Finalize(cwd string) error {
	if c.Src == "" {
		c.Src = cwd
	}
	if c.Dest == "" {
		c.Dest = filepath.Join(filepath.Dir(cwd), filepath.Base(cwd)+"-sync")
	}
	c.Src = absFrom(cwd, c.Src)
	c.Dest = absFrom(cwd, c.Dest)
	if c.Git.Probe == "" {
		c.Git.Probe = ProbeExec
	}
	return c.Validate()
}

// Validate checks the invariants the engine relies on
func (c *Config) Validate() error {
	if c.Src == c.Dest {
		return errors.Newf(errors.ErrConfigValid, "src and dest are the same directory: %s", c.Src)
	}

	switch c.Git.Probe {
	case ProbeExec, ProbeGoGit:
	default:
		return errors.Newf(errors.ErrConfigValid, "unknown git probe %q", c.Git.Probe).
			WithDetail("allowed", []string{ProbeExec, ProbeGoGit})
	}

	for i, set := range c.ReplaceRules {
		for j, rule := range set.Rules {
			if rule.From.IsZero() || rule.From.CanReplace() {
				continue
			}
			return errors.Newf(errors.ErrConfigValid,
				"replace_rules[%d].rules[%d]: %s patterns cannot be used as a replace source", i, j, rule.From.Kind()).
				WithDetail("from", rule.From.String())
		}
	}
	return nil
}

func absFrom(base, path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	return filepath.Clean(path)
}

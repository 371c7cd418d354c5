package config

import "github.com/arthur-debert/reposync/pkg/pattern"

// Overrides carries command-line values on top of a loaded Config.
//
// A nil pointer or nil slice means "not given". Merge applies the
// following rules field by field:
//   - scalar pointers replace the loaded value
//   - non-nil slices replace the loaded slice wholesale, an empty non-nil
//     slice clears it
//   - nested structs (Git, Hooks) merge field by field with the same rules
type Overrides struct {
	Src  *string
	Dest *string

	Include      []pattern.Pattern
	Exclude      []pattern.Pattern
	IgnoreFiles  []string
	ReplaceRules []ReplaceRuleSet
	RmBefore     []string

	GitCommit   *bool
	GitRebase   *bool
	GitPush     *bool
	GitNoVerify *bool
	GitProbe    *string

	HooksBefore []string
	HooksAfter  []string

	Silent *bool
	Debug  *bool
}

// Merge returns a copy of c with o applied
func (c Config) Merge(o Overrides) Config {
	out := c

	setString(&out.Src, o.Src)
	setString(&out.Dest, o.Dest)

	if o.Include != nil {
		out.Include = append([]pattern.Pattern{}, o.Include...)
	}
	if o.Exclude != nil {
		out.Exclude = append([]pattern.Pattern{}, o.Exclude...)
	}
	if o.IgnoreFiles != nil {
		out.IgnoreFiles = append([]string{}, o.IgnoreFiles...)
	}
	if o.ReplaceRules != nil {
		out.ReplaceRules = append([]ReplaceRuleSet{}, o.ReplaceRules...)
	}
	if o.RmBefore != nil {
		out.RmBefore = append([]string{}, o.RmBefore...)
	}

	out.Git = c.Git.merge(o)
	out.Hooks = c.Hooks.merge(o)

	setBool(&out.Silent, o.Silent)
	setBool(&out.Debug, o.Debug)
	return out
}

func (g GitPolicy) merge(o Overrides) GitPolicy {
	setBool(&g.Commit, o.GitCommit)
	setBool(&g.Rebase, o.GitRebase)
	setBool(&g.Push, o.GitPush)
	setBool(&g.NoVerify, o.GitNoVerify)
	setString(&g.Probe, o.GitProbe)
	return g
}

func (h Hooks) merge(o Overrides) Hooks {
	if o.HooksBefore != nil {
		h.Before = append([]string{}, o.HooksBefore...)
	}
	if o.HooksAfter != nil {
		h.After = append([]string{}, o.HooksAfter...)
	}
	return h
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

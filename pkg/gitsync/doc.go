// Package gitsync decides whether a finished sync is committed in the
// destination repository, and commits it.
//
// The Guard runs a chain of preconditions. Each early exit is an Outcome,
// not an error:
//
//	Disabled        git.commit is off
//	NotARepository  dest has no .git entry
//	SourceDirty     src has uncommitted changes to tracked files
//	NoChanges       dest has no changes relative to HEAD
//	AlreadySynced   both HEAD subjects are equal
//	Committed       add, commit, optional rebase and push all ran
//
// Equal HEAD subjects are taken to mean the source commit was already
// published. This is a heuristic: two unrelated commits with the same
// subject also match.
//
// Repository state is read through a Probe. ExecProbe shells out to git,
// GoGitProbe reads the repository with go-git. Both only report changes to
// tracked files, like "git diff HEAD --name-only".
package gitsync

// Package testutil provides helpers shared by the reposync tests.
//
// Key components:
//   - WriteTree / ReadTree: declare and snapshot file trees on any types.FS
//   - CreateFile / ReadFile: the same for single files on the real filesystem
//   - InitRepo / CommitFiles: go-git repositories with deterministic commits
//   - GitEnv / RequireBinary: running the git binary in isolation
//
// All test data should be defined inline, not in external files.
package testutil

// Package matcher decides which paths of the source tree take part in a sync.
//
// Paths are source-relative, slash-separated and rooted with a leading "/";
// the source root itself is "/". The policy is:
//
//   - "", ".", ".." and "'.." are never included, "/" always is
//   - with a non-empty include list a path is included iff it matches one
//     include pattern; exclude patterns and ignore files are not consulted
//   - otherwise a path matching an exclude pattern, or ignored by one of the
//     gitignore-format ignore files, is excluded
//   - everything else is included
//
// Directories are checked before they are descended into, so excluding a
// directory prunes its whole subtree.
package matcher

// Package output prints the progress of a sync run to the console.
//
// Progress lines carry a "[reposync]" prefix and are styled with pterm when
// the writer is a color-capable terminal. Plain text is written to pipes,
// files, non-file writers and whenever NO_COLOR is set. Silent mode drops
// progress lines; warnings about refused paths and errors are always shown.
package output

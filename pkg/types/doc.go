// Package types defines the interfaces shared between reposync packages.
// The FS interface lets the walker and pruner run against the OS filesystem
// in production and an in-memory filesystem in tests.
package types

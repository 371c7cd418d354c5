// Package config handles configuration management for reposync.
//
// Configuration is layered with koanf: embedded defaults, then an optional
// TOML or YAML file, then REPOSYNC_ environment variables. Maps merge
// recursively and lists replace wholesale at every layer. Command-line
// overrides are applied last through the typed Overrides/Merge pair.
//
// Loading never fails: a missing file is the normal case and an invalid
// one is logged and ignored so the defaults apply.
package config

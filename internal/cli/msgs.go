package cli

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Mirror a source tree into a destination and commit the result"
	MsgVersionShort    = "Print version information"
	MsgVersionLong     = "Print detailed version information including commit hash and build date"
	MsgWatchShort      = "Sync, then sync again whenever the source changes"
	MsgConfigShort     = "Manage the configuration file"
	MsgConfigInitShort = "Create a sample configuration file"
	MsgConfigGetShort  = "Print the effective configuration"
	MsgConfigGetLong   = "Print the configuration read from the config file and the environment, or the defaults when no file is found."
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgConfigCreated = "created %s"
	MsgConfigExists  = "%s already exists, left untouched"
	MsgSyncFailed    = "sync failed: %v"

	// Version output
	MsgCommitFormat = "Commit: %s\n"
	MsgBuiltFormat  = "Built:  %s\n"

	// Flag descriptions
	MsgFlagConfig     = "Config file (default .reposync.toml in the working directory)"
	MsgFlagSrc        = "Source directory (default the working directory)"
	MsgFlagDest       = "Destination directory (default ../<src name>-sync)"
	MsgFlagReplace    = "Inline replace rule from$$to[$$match], repeatable; replaces configured rules"
	MsgFlagInclude    = "Only copy paths matching these patterns, repeatable"
	MsgFlagExclude    = "Skip paths matching these patterns, repeatable"
	MsgFlagRmBefore   = "Remove these dest-relative paths before copying, repeatable"
	MsgFlagNoCommit   = "Do not commit in the destination"
	MsgFlagNoRebase   = "Do not rebase before pushing"
	MsgFlagNoPush     = "Do not push after committing"
	MsgFlagNoVerify   = "Pass --no-verify to git commit"
	MsgFlagGitProbe   = "How git state is inspected: exec or go-git"
	MsgFlagGitBefore  = "Shell command run in dest before the commit, repeatable"
	MsgFlagGitAfter   = "Shell command run in dest after the commit, repeatable"
	MsgFlagSilent     = "Only print warnings and errors"
	MsgFlagDebug      = "Debug logging and error details"
	MsgFlagVerbose    = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDebounce   = "Quiet period after the last change before syncing"
	MsgFlagConfigName = "Config file name"
	MsgFlagFormat     = "Output format: toml or yaml"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/root-example.txt
	msgRootExampleRaw string
	MsgRootExample    = strings.TrimRight(msgRootExampleRaw, "\n")

	//go:embed msgs/watch-long.txt
	msgWatchLongRaw string
	MsgWatchLong    = strings.TrimSpace(msgWatchLongRaw)

	//go:embed msgs/config-init-long.txt
	msgConfigInitLongRaw string
	MsgConfigInitLong    = strings.TrimSpace(msgConfigInitLongRaw)
)

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/reposync/internal/version"
	"github.com/arthur-debert/reposync/pkg/config"
	"github.com/arthur-debert/reposync/pkg/engine"
	"github.com/arthur-debert/reposync/pkg/logging"
	"github.com/arthur-debert/reposync/pkg/output"
	"github.com/arthur-debert/reposync/pkg/pattern"
	"github.com/arthur-debert/reposync/pkg/runner"
)

// app holds the parsed flags shared by the commands of one invocation
type app struct {
	// dir is the working directory, os.Getwd when empty
	dir string

	configPath string
	src        string
	dest       string
	replace    []string
	include    []string
	exclude    []string
	rmBefore   []string
	noCommit   bool
	noRebase   bool
	noPush     bool
	noVerify   bool
	gitProbe   string
	before     []string
	after      []string
	silent     bool
	debug      bool
	verbosity  int
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newApp("").rootCmd()
}

// Execute runs the command line and returns the process exit code. Errors
// are rendered on stderr, with details when debug is enabled.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp("")
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, output.RenderError(stderr, err, a.debug))
		return 1
	}
	return 0
}

func newApp(dir string) *app {
	return &app{dir: dir}
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "reposync",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Example: MsgRootExample,
		Version: version.Version,
		Args:    cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbosity := a.verbosity
			if a.debug && verbosity < 2 {
				verbosity = 2
			}
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSync(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", MsgFlagConfig)
	flags.StringVar(&a.src, "src", "", MsgFlagSrc)
	flags.StringVarP(&a.dest, "dest", "d", "", MsgFlagDest)
	flags.StringArrayVarP(&a.replace, "replace", "r", nil, MsgFlagReplace)
	flags.StringArrayVar(&a.include, "include", nil, MsgFlagInclude)
	flags.StringArrayVar(&a.exclude, "exclude", nil, MsgFlagExclude)
	flags.StringArrayVar(&a.rmBefore, "rm-before", nil, MsgFlagRmBefore)
	flags.BoolVar(&a.noCommit, "no-git-commit", false, MsgFlagNoCommit)
	flags.BoolVar(&a.noRebase, "no-git-rebase", false, MsgFlagNoRebase)
	flags.BoolVar(&a.noPush, "no-git-push", false, MsgFlagNoPush)
	flags.BoolVarP(&a.noVerify, "no-verify", "n", false, MsgFlagNoVerify)
	flags.StringVar(&a.gitProbe, "git-probe", "", MsgFlagGitProbe)
	flags.StringArrayVar(&a.before, "git-before", nil, MsgFlagGitBefore)
	flags.StringArrayVar(&a.after, "git-after", nil, MsgFlagGitAfter)
	flags.BoolVarP(&a.silent, "silent", "s", false, MsgFlagSilent)
	flags.BoolVar(&a.debug, "debug", false, MsgFlagDebug)
	flags.CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)

	_ = rootCmd.RegisterFlagCompletionFunc("git-probe", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{config.ProbeExec, config.ProbeGoGit}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(a.newWatchCmd())
	rootCmd.AddCommand(a.newConfigCmd())

	return rootCmd
}

func (a *app) workDir() (string, error) {
	if a.dir != "" {
		return a.dir, nil
	}
	return os.Getwd()
}

// loadConfig layers the command-line flags on the loaded configuration
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cwd, err := a.workDir()
	if err != nil {
		return nil, err
	}

	cfg := config.Load(config.LoadOptions{Path: a.configPath, Dir: cwd})
	overrides, err := a.overrides(cmd)
	if err != nil {
		return nil, err
	}

	merged := cfg.Merge(overrides)
	if err := merged.Finalize(cwd); err != nil {
		return nil, err
	}
	if merged.Debug && !a.debug {
		a.debug = true
		if a.verbosity < 2 {
			logging.SetupLogger(2)
		}
	}

	log.Debug().
		Str("src", merged.Src).
		Str("dest", merged.Dest).
		Str("file", merged.File).
		Msg("Configuration resolved")
	return &merged, nil
}

// overrides converts the flags the user actually set into config overrides
func (a *app) overrides(cmd *cobra.Command) (config.Overrides, error) {
	var o config.Overrides
	changed := cmd.Flags().Changed
	var err error

	if changed("src") {
		o.Src = &a.src
	}
	if changed("dest") {
		o.Dest = &a.dest
	}
	if changed("include") {
		if o.Include, err = pattern.ParseAll(a.include); err != nil {
			return o, err
		}
	}
	if changed("exclude") {
		if o.Exclude, err = pattern.ParseAll(a.exclude); err != nil {
			return o, err
		}
	}
	if changed("replace") {
		if o.ReplaceRules, err = config.ParseInlineRules(a.replace); err != nil {
			return o, err
		}
	}
	if changed("rm-before") {
		o.RmBefore = a.rmBefore
	}

	o.GitCommit = negated(changed("no-git-commit"), a.noCommit)
	o.GitRebase = negated(changed("no-git-rebase"), a.noRebase)
	o.GitPush = negated(changed("no-git-push"), a.noPush)
	if changed("no-verify") {
		o.GitNoVerify = &a.noVerify
	}
	if changed("git-probe") {
		o.GitProbe = &a.gitProbe
	}
	if changed("git-before") {
		o.HooksBefore = a.before
	}
	if changed("git-after") {
		o.HooksAfter = a.after
	}

	if changed("silent") {
		o.Silent = &a.silent
	}
	if changed("debug") {
		o.Debug = &a.debug
	}
	return o, nil
}

func negated(set, value bool) *bool {
	if !set {
		return nil
	}
	v := !value
	return &v
}

// newEngine wires an engine that reports progress through printer
func newEngine(cmd *cobra.Command, cfg *config.Config, printer *output.Printer) (*engine.Engine, error) {
	r := runner.New(cfg.Dest,
		runner.WithSilent(cfg.Silent),
		runner.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
	)
	return engine.New(cfg,
		engine.WithReporter(printer),
		engine.WithRunner(r),
	)
}

func (a *app) runSync(cmd *cobra.Command) error {
	start := time.Now()

	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	printer := output.New(cmd.OutOrStdout(), cfg.Silent)

	eng, err := newEngine(cmd, cfg, printer)
	if err != nil {
		return err
	}
	if _, err := eng.Sync(cmd.Context()); err != nil {
		return err
	}

	printer.Done(time.Since(start))
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Long:  MsgVersionLong,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, version.String())
			if version.Commit != "" {
				fmt.Fprintf(out, MsgCommitFormat, version.Commit)
			}
			if version.Date != "" {
				fmt.Fprintf(out, MsgBuiltFormat, version.Date)
			}
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: MsgCompletionShort,
		Long: `To load completions:

Bash:
  $ source <(reposync completion bash)

Zsh:
  $ reposync completion zsh > "${fpath[1]}/_reposync"

Fish:
  $ reposync completion fish | source

PowerShell:
  PS> reposync completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

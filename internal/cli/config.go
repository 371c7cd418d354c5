package cli

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/reposync/pkg/config"
	"github.com/arthur-debert/reposync/pkg/output"
)

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(a.newConfigInitCmd())
	cmd.AddCommand(a.newConfigGetCmd())
	return cmd
}

func (a *app) newConfigInitCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init",
		Short: MsgConfigInitShort,
		Long:  MsgConfigInitLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := a.workDir()
			if err != nil {
				return err
			}
			path, created, err := config.WriteSample(cwd, name)
			if err != nil {
				return err
			}

			printer := output.New(cmd.OutOrStdout(), false)
			if created {
				printer.Success(MsgConfigCreated, path)
			} else {
				printer.Warning(MsgConfigExists, path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", config.DefaultFileName, MsgFlagConfigName)
	return cmd
}

func (a *app) newConfigGetCmd() *cobra.Command {
	var (
		name   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "get",
		Short: MsgConfigGetShort,
		Long:  MsgConfigGetLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := a.workDir()
			if err != nil {
				return err
			}
			if name == "" {
				name = a.configPath
			}

			cfg := config.Load(config.LoadOptions{Path: name, Dir: cwd})
			out, err := config.Render(cfg, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", MsgFlagConfigName)
	cmd.Flags().StringVar(&format, "format", config.FormatTOML, MsgFlagFormat)
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{config.FormatTOML, config.FormatYAML}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

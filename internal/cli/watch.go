package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/reposync/pkg/output"
	"github.com/arthur-debert/reposync/pkg/watch"
)

func (a *app) newWatchCmd() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: MsgWatchShort,
		Long:  MsgWatchLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			printer := output.New(cmd.OutOrStdout(), cfg.Silent)

			eng, err := newEngine(cmd, cfg, printer)
			if err != nil {
				return err
			}

			w, err := watch.New(watch.Options{
				Root:     cfg.Src,
				Matcher:  eng.Matcher(),
				Reload:   eng.Matcher,
				Skip:     cfg.Dest,
				Debounce: debounce,
				Sync: func(ctx context.Context) error {
					start := time.Now()
					if _, err := eng.Sync(ctx); err != nil {
						if ctx.Err() == nil {
							printer.Error(MsgSyncFailed, err)
						}
						return err
					}
					printer.Done(time.Since(start))
					return nil
				},
			})
			if err != nil {
				return err
			}
			return w.Run(cmd.Context())
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, MsgFlagDebounce)
	return cmd
}

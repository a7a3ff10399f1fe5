package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"calibcat/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	flags := &runFlags{}
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch CONFIG",
		Short: "Run once, then again whenever the configuration or its data directories change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			w, err := watch.New(args[0], debounce, logger)
			if err != nil {
				return err
			}
			defer w.Close()

			return w.Run(cmd.Context(), func(runCtx context.Context) ([]string, error) {
				return runOnce(runCtx, ctx, cmd, args[0], flags, logger)
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Quiet period after a change before re-running")
	return cmd
}

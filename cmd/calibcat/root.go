package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "calibcat",
		Short:         "Catalog and assemble FITS calibration frames",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.logLevel, "log-level", envOr("CALIBCAT_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", envOr("CALIBCAT_LOG_FORMAT", "auto"), "Log format (auto, console, json)")
	pf.StringVar(&flags.logFile, "log-file", envOr("CALIBCAT_LOG_FILE", ""), "Also write JSON logs to this file")
	pf.StringVarP(&flags.basedir, "basedir", "b", envOr("CALIBCAT_BASEDIR", "."), "Directory relative paths in the configuration resolve against")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newDiscoverCommand(ctx))
	rootCmd.AddCommand(newKeywordsCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newInitCommand())

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

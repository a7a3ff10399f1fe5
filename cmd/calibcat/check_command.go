package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"calibcat/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check CONFIG",
		Short: "Validate a configuration file and the paths it reads from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := ctx.loadConfig(args)
			if err != nil {
				return err
			}
			out := stdout(cmd)
			fmt.Fprintf(out, "Config path: %s\n", path)
			fmt.Fprintf(out, "Configuration valid (%d categories)\n", len(cfg.Categories()))

			results := preflight.RunAll(cfg, ctx.basedir())
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, passFail(r.Passed), r.Detail})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Check", "Status", "Detail"}, rows, nil))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d of %d preflight checks failed", len(failed), len(results))
			}
			return nil
		},
	}
}

func passFail(passed bool) string {
	if passed {
		return "ok"
	}
	return "FAIL"
}

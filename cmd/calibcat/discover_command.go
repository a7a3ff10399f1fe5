package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"calibcat/internal/discovery"
)

func newDiscoverCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "discover CONFIG",
		Short: "List candidate files per category before any filter is applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			cfg, _, err := ctx.loadConfig(args)
			if err != nil {
				return err
			}
			byCategory, err := discovery.FindFilepathsByCategory(cfg, ctx.basedir(), logger)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(stdout(cmd), byCategory)
			}

			out := stdout(cmd)
			var rows [][]string
			total := 0
			for _, cat := range cfg.Categories() {
				paths := byCategory[cat.Name()]
				total += len(paths)
				if len(paths) == 0 {
					rows = append(rows, []string{cat.Name(), "", "-"})
					continue
				}
				for i, p := range paths {
					rows = append(rows, []string{cat.Name(), strconv.Itoa(i + 1), p})
				}
			}
			fmt.Fprintln(out, renderTable(out, []string{"Category", "#", "Path"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
			fmt.Fprintf(out, "%d candidate files in %d categories\n", total, len(byCategory))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print candidates as JSON")
	return cmd
}

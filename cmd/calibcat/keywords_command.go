package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"calibcat/internal/gather"
)

func newKeywordsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "keywords CONFIG",
		Short: "List the header keywords read from every candidate file",
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
			kinds := gather.FiltersKeywords(cfg, logger)
			keys := gather.SortedKeys(kinds)

			if jsonOutput {
				named := make(map[string]string, len(kinds))
				for _, k := range keys {
					named[k] = kinds[k].String()
				}
				return writeJSON(stdout(cmd), named)
			}
			rows := make([][]string, 0, len(keys))
			for _, k := range keys {
				rows = append(rows, []string{k, kinds[k].String()})
			}
			out := stdout(cmd)
			fmt.Fprintln(out, renderTable(out, []string{"Keyword", "Type"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print keywords as JSON")
	return cmd
}

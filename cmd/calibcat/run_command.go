package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"calibcat/internal/assemble"
	"calibcat/internal/calibdata"
	"calibcat/internal/config"
	"calibcat/internal/discovery"
	"calibcat/internal/fileutil"
	"calibcat/internal/logging"
	"calibcat/internal/metrics"
	"calibcat/internal/preflight"
	"calibcat/internal/report"
)

type runFlags struct {
	roi         string
	noPrune     bool
	float32     bool
	reportPath  string
	metricsPath string
	jsonOutput  bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.roi, "roi", "", `Replace the configured region of interest, e.g. "(1:100, :)"`)
	cmd.Flags().BoolVar(&f.noPrune, "no-prune", false, "Keep categories that ended up without frames")
	cmd.Flags().BoolVar(&f.float32, "float32", false, "Round pixel values to float32 before accumulation")
	cmd.Flags().StringVar(&f.reportPath, "report", "", "Write a JSON run report to this file")
	cmd.Flags().StringVar(&f.metricsPath, "metrics-file", "", "Write Prometheus metrics in textfile format to this file")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Print the run report as JSON instead of a table")
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run CONFIG",
		Short: "Assemble calibration frames described by a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			_, err = runOnce(cmd.Context(), ctx, cmd, args[0], flags, logger)
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

// runOnce performs one assembly and prints its summary. It returns the
// directories the configuration reads from, for watch mode.
func runOnce(ctx context.Context, cc *commandContext, cmd *cobra.Command, path string, flags *runFlags, logger *slog.Logger) ([]string, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	basedir := cc.basedir()
	dirs := watchDirs(cfg, basedir)

	for _, r := range preflight.Failed(preflight.RunAll(cfg, basedir)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
		)
	}

	opts := assemble.Options{
		Basedir: basedir,
		NoPrune: flags.noPrune,
		Logger:  logger,
	}
	if flags.float32 {
		opts.Precision = calibdata.Float32
	}
	if text := strings.TrimSpace(flags.roi); text != "" {
		roi, err := config.ParseROI(text)
		if err != nil {
			return dirs, fmt.Errorf("--roi: %w", err)
		}
		opts.OverwriteROI = &roi
	}
	if flags.metricsPath != "" {
		opts.Metrics = metrics.NewRun()
	}

	res, err := assemble.Assemble(ctx, cfg, opts)
	if err != nil {
		return dirs, err
	}

	rep := report.Build(res, report.Meta{
		RunID:     cc.runID,
		Config:    path,
		Basedir:   basedir,
		Precision: opts.Precision.String(),
	})
	if flags.jsonOutput {
		if err := writeJSON(stdout(cmd), rep); err != nil {
			return dirs, err
		}
	} else {
		printReport(stdout(cmd), rep)
	}

	if flags.reportPath != "" {
		if err := report.WriteJSON(flags.reportPath, rep); err != nil {
			return dirs, err
		}
		logger.Info("report written", logging.Path(flags.reportPath))
	}
	if flags.metricsPath != "" {
		if err := opts.Metrics.WriteTextfile(flags.metricsPath); err != nil {
			return dirs, err
		}
		logger.Info("metrics written", logging.Path(flags.metricsPath))
	}
	return dirs, nil
}

func printReport(out io.Writer, rep report.Report) {
	rows := make([][]string, 0, len(rep.Categories))
	for _, r := range rep.Rows() {
		rows = append(rows, []string{r.Category, r.Sources, r.ROI, r.Files, r.Frames, r.Exptimes, r.Memory, r.Rejected})
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"Category", "Sources", "ROI", "Files", "Frames", "Exposures", "Memory", "Rejected"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignRight, alignLeft},
	))
	fmt.Fprintln(out, rep.Headline())
}

// watchDirs lists the directories cfg reads from: each category's dir and
// the subdirectories its walk reaches, or the parent directories of its
// explicit files.
func watchDirs(cfg *config.Config, basedir string) []string {
	seen := map[string]bool{}
	out := []string{}
	add := func(p string) {
		if seen[p] {
			return
		}
		seen[p] = true
		out = append(out, p)
	}
	for _, cat := range cfg.Categories() {
		if len(cat.Files()) == 0 {
			if root, err := fileutil.Resolve(basedir, cat.Dir()); err == nil {
				add(root)
			}
		}
		// Walk warnings are reported by the run itself.
		dirs, err := discovery.CategoryDirectories(cat, basedir, logging.NewNop())
		if err != nil {
			continue
		}
		for _, d := range dirs {
			add(d)
		}
	}
	return out
}

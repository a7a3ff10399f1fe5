package assemble

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"calibcat/internal/calibdata"
	"calibcat/internal/config"
	"calibcat/internal/discovery"
	"calibcat/internal/filter"
	"calibcat/internal/fits"
	"calibcat/internal/gather"
	"calibcat/internal/logging"
	"calibcat/internal/metrics"
)

var (
	ErrIncompatibleSize = errors.New("incompatible frame size")
	ErrNoFramesAccepted = errors.New("no file accepted by any category")
)

// Options tune a run. The zero value reads from disk relative to the
// working directory, keeps the configured ROI, prunes, and accumulates in
// float64.
type Options struct {
	Basedir      string
	OverwriteROI *config.ROI
	NoPrune      bool
	Precision    calibdata.Precision
	Reader       fits.Reader
	Logger       *slog.Logger
	Metrics      *metrics.Run
}

func (o Options) reader() fits.Reader {
	if o.Reader != nil {
		return o.Reader
	}
	return fits.NewFileReader()
}

// CategorySummary describes what one category contributed to a run.
type CategorySummary struct {
	Name       string
	Sources    string
	Candidates int
	Accepted   int
	Frames     int
	// Rejected counts rejected candidates by the keyword that failed.
	Rejected map[string]int
	ROI      string
}

// Result is the outcome of a run.
type Result struct {
	Data       *calibdata.Data
	Categories []CategorySummary
	Started    time.Time
	Finished   time.Time
}

// Duration is the wall time of the run.
func (r *Result) Duration() time.Duration { return r.Finished.Sub(r.Started) }

// ReadCalibrationFiles loads the configuration at path, choosing the
// format from its extension, and assembles it.
func ReadCalibrationFiles(ctx context.Context, path string, opts Options) (*Result, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return Assemble(ctx, cfg, opts)
}

// ReadCalibrationFilesFromYAML loads the YAML configuration at path and
// assembles it.
func ReadCalibrationFilesFromYAML(ctx context.Context, path string, opts Options) (*Result, error) {
	cfg, err := config.LoadYAML(path)
	if err != nil {
		return nil, err
	}
	return Assemble(ctx, cfg, opts)
}

// Assemble runs discovery, keyword gathering, filtering and frame
// accumulation for cfg. OverwriteROI, when set, replaces the global ROI of
// cfg before discovery.
func Assemble(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	logger := logging.NewComponentLogger(opts.Logger, "assemble")
	started := time.Now()

	if opts.OverwriteROI != nil {
		cfg.OverwriteROI(*opts.OverwriteROI)
		logger.Debug("global roi overwritten", logging.String("roi", opts.OverwriteROI.String()))
	}

	candidates, err := discovery.FindFilepathsByCategory(cfg, opts.Basedir, opts.Logger)
	if err != nil {
		return nil, err
	}

	reader := opts.reader()
	kinds := gather.FiltersKeywords(cfg, opts.Logger)
	paths := distinctPaths(candidates)
	infos := gather.FilesInfos(reader, paths, kinds, opts.Logger)
	opts.Metrics.HeadersRead(len(paths))
	logger.Debug("headers gathered",
		logging.Int("files", len(paths)),
		logging.Int("keywords", len(kinds)),
	)

	data := calibdata.New(opts.Precision)
	ld := newLoader(reader, data, opts.Metrics, logger)
	summaries := make([]CategorySummary, 0, len(cfg.Categories()))

	for _, cat := range cfg.Categories() {
		catLogger := logger.With(logging.Category(cat.Name()))
		data.AddCategory(cat.Name(), cat.Sources())

		files := candidates[cat.Name()]
		opts.Metrics.Discovered(cat.Name(), len(files))
		summary := CategorySummary{
			Name:       cat.Name(),
			Sources:    cat.Sources().String(),
			Candidates: len(files),
			Rejected:   map[string]int{},
		}

		sampler := logging.NewProgressSampler(25)
		for i, path := range files {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("assembly interrupted: %w", err)
			}
			info := infos[path]
			accepted, culprit := filter.ChallengeCategory(cat, info, path, opts.Logger)
			if !accepted {
				summary.Rejected[culprit]++
				opts.Metrics.Rejected(cat.Name(), culprit)
				continue
			}
			summary.Accepted++
			opts.Metrics.Accepted(cat.Name())

			exptime, _ := info.Get(cat.Exptime()).Number()
			pushed, err := ld.load(cat.Name(), cat.ROI(), path, cat.HDU(), exptime, nil)
			if err != nil {
				return nil, err
			}
			summary.Frames += pushed

			percent := float64(i+1) * 100 / float64(len(files))
			if sampler.ShouldLog(percent, cat.Name()) {
				catLogger.Info("category progress",
					logging.Int("processed", i+1),
					logging.Int("candidates", len(files)),
					logging.Int("frames", summary.Frames),
				)
			}
		}

		summary.ROI = ld.roiString(cat.Name(), cat.ROI())
		if summary.Frames == 0 {
			logging.WarnWithContext(catLogger, "category has no frames", "category_no_frames",
				logging.Int("candidates", summary.Candidates),
				logging.Int("accepted", summary.Accepted),
				logging.String(logging.FieldImpact, "category left empty"),
			)
		}
		summaries = append(summaries, summary)
	}

	return finish(data, summaries, opts, started, logger)
}

func finish(data *calibdata.Data, summaries []CategorySummary, opts Options, started time.Time, logger *slog.Logger) (*Result, error) {
	if data.Frames() == 0 {
		return nil, fmt.Errorf("%w: every candidate was rejected or skipped; run with debug logging to see the rejecting keyword of each file", ErrNoFramesAccepted)
	}
	if !opts.NoPrune {
		data.Prune()
	}
	finished := time.Now()
	opts.Metrics.Finished(started, finished)
	logger.Info("calibration assembled",
		logging.Int("categories", len(data.Categories())),
		logging.Int("frames", data.Frames()),
		logging.Duration("elapsed", finished.Sub(started)),
	)
	return &Result{Data: data, Categories: summaries, Started: started, Finished: finished}, nil
}

func distinctPaths(byCategory map[string][]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, paths := range byCategory {
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	sort.Strings(out)
	return out
}
